// Package errors provides the classified error primitives used across sphinxbuild.
//
// Every failure that leaves the build service is a ClassifiedError carrying a
// category, a severity and structured context. The CLI adapter turns the
// category into a process exit code.
//
// Example usage:
//
//	err := errors.ExternalToolError("sphinx-build exited with a nonzero status").
//		WithContext("exit_code", 2).
//		Build()
package errors
