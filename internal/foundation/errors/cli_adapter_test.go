package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation error", err: ValidationError("invalid input").Build(), expected: 2},
		{name: "config error", err: ConfigError("bad config").Build(), expected: 7},
		{name: "launch error", err: LaunchError("sphinx-build not found").Build(), expected: 9},
		{name: "external tool failure", err: ExternalToolError("sphinx-build failed").Build(), expected: 11},
		{name: "filesystem error", err: FileSystemError("mkdir failed").Build(), expected: 11},
		{name: "internal error", err: InternalError("boom").Build(), expected: 10},
		{name: "unclassified error", err: &customError{msg: "unknown error"}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{name: "nil error", err: nil, contains: ""},
		{
			name:     "internal error in non-verbose mode",
			err:      InternalError("internal issue").Build(),
			contains: "Internal error occurred (use -v for details)",
		},
		{
			name:     "external tool failure shows exit code",
			err:      ExternalToolError("sphinx-build failed").WithContext("exit_code", 2).Build(),
			contains: "sphinx-build failed (exit code 2)",
		},
		{
			name:     "launch error shows cause",
			err:      WrapError(errors.New("executable file not found"), CategoryLaunch, "cannot start sphinx-build").Build(),
			contains: "cannot start sphinx-build: executable file not found",
		},
		{
			name:     "unclassified error",
			err:      &customError{msg: "unknown error"},
			contains: "Error: unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.FormatError(tt.err)
			if tt.contains == "" {
				if got != "" {
					t.Errorf("FormatError() = %q, want empty string", got)
				}
				return
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("FormatError() = %q, want to contain %q", got, tt.contains)
			}
		})
	}
}

func TestCLIErrorAdapter_VerboseFormat(t *testing.T) {
	adapter := NewCLIErrorAdapter(true, slog.Default())
	err := InternalError("internal issue").Build()

	if got := adapter.FormatError(err); got != err.Error() {
		t.Errorf("FormatError() = %q, want %q", got, err.Error())
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out, logs bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	exitCode := -1
	adapter.exit = func(code int) { exitCode = code }

	adapter.HandleError(ExternalToolError("sphinx-build failed").WithContext("exit_code", 2).Build())

	if exitCode != 11 {
		t.Errorf("exit code = %d, want 11", exitCode)
	}
	if !strings.Contains(out.String(), "exit code 2") {
		t.Errorf("stderr output = %q, want exit code mention", out.String())
	}
	if !strings.Contains(logs.String(), "category=external_tool") {
		t.Errorf("log output = %q, want category attribute", logs.String())
	}
}
