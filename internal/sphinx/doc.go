// Package sphinx turns an Invocation into a sphinx-build command line and runs it.
//
// Arguments is a pure function of the Invocation fields. Runner launches the
// external tool once, blocks until it exits and classifies the outcome as
// succeeded, failed with a nonzero exit code, or not launched at all.
package sphinx
