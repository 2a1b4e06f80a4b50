package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sphinxbuild/internal/sphinx"
)

// Service is the canonical interface for running sphinx-build.
type Service interface {
	// Run executes one invocation synchronously. The returned Result is never nil.
	Run(ctx context.Context, inv sphinx.Invocation) (*Result, error)
}

// Result contains the outcome of one invocation.
type Result struct {
	InvocationID string
	Status       Status

	// State is the final state of the external process.
	State    sphinx.State
	ExitCode int

	Arguments    []string
	ArtifactRoot string

	// Revision is the HEAD commit of the repository holding the sources, if any.
	Revision string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Status represents the outcome of an invocation.
type Status string

const (
	// StatusSucceeded indicates sphinx-build exited with status zero.
	StatusSucceeded Status = "succeeded"

	// StatusFailed indicates sphinx-build ran and exited nonzero.
	StatusFailed Status = "failed"

	// StatusLaunchError indicates sphinx-build could not be started.
	StatusLaunchError Status = "launch_error"

	// StatusRejected indicates the invocation was invalid and nothing was launched.
	StatusRejected Status = "rejected"
)

// IsSuccess returns true if the invocation completed successfully.
func (s Status) IsSuccess() bool {
	return s == StatusSucceeded
}

func statusFor(state sphinx.State) Status {
	switch state {
	case sphinx.StateSucceeded:
		return StatusSucceeded
	case sphinx.StateLaunchError:
		return StatusLaunchError
	default:
		return StatusFailed
	}
}
