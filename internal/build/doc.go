// Package build runs one sphinx-build invocation end to end.
//
// Every entry point (the CLI commands, the watch loop and the report adapter)
// routes through Service. A run validates the invocation, prepares its
// directories, launches the external tool once and then records the outcome
// in the configured metrics recorder, history store and event publisher.
// Recording failures are logged and never change the outcome of the run.
package build
