package metrics

import "time"

// OutcomeLabel enumerates invocation outcomes for counters.
type OutcomeLabel string

const (
	OutcomeSucceeded   OutcomeLabel = "succeeded"
	OutcomeFailed      OutcomeLabel = "failed"
	OutcomeLaunchError OutcomeLabel = "launch_error"
	OutcomeRejected    OutcomeLabel = "rejected" // configuration error, nothing launched
)

// Recorder defines observability hooks for sphinx-build invocations. Implementations
// may forward to Prometheus; NoopRecorder is the default.
type Recorder interface {
	ObserveInvocationDuration(builder string, d time.Duration)
	IncInvocationOutcome(builder string, outcome OutcomeLabel)
	ObserveExitCode(builder string, code int)
	SetLastSuccess(builder string, t time.Time)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveInvocationDuration(string, time.Duration) {}
func (NoopRecorder) IncInvocationOutcome(string, OutcomeLabel)       {}
func (NoopRecorder) ObserveExitCode(string, int)                     {}
func (NoopRecorder) SetLastSuccess(string, time.Time)                {}
