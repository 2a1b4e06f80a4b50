package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sphinxbuild/internal/gitinfo"
	"git.home.luguber.info/inful/sphinxbuild/internal/history"
	"git.home.luguber.info/inful/sphinxbuild/internal/logfields"
	"git.home.luguber.info/inful/sphinxbuild/internal/metrics"
	"git.home.luguber.info/inful/sphinxbuild/internal/notify"
	"git.home.luguber.info/inful/sphinxbuild/internal/observability"
	"git.home.luguber.info/inful/sphinxbuild/internal/sphinx"
)

// DefaultService is the standard implementation of Service.
type DefaultService struct {
	runner    sphinx.Runner
	recorder  metrics.Recorder
	history   history.Store
	publisher notify.Publisher
	revision  func(path string) string
	newID     func() string
}

// NewService creates a DefaultService that launches real processes and records nothing.
func NewService() *DefaultService {
	return &DefaultService{
		runner:    sphinx.NewExecRunner(),
		recorder:  metrics.NoopRecorder{},
		history:   history.NoopStore{},
		publisher: notify.NoopPublisher{},
		revision:  gitinfo.CommitFor,
		newID:     uuid.NewString,
	}
}

// WithRunner replaces the process runner (for testing).
func (s *DefaultService) WithRunner(r sphinx.Runner) *DefaultService {
	s.runner = r
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	s.recorder = r
	return s
}

// WithHistory sets the store invocations are appended to.
func (s *DefaultService) WithHistory(h history.Store) *DefaultService {
	if h == nil {
		h = history.NoopStore{}
	}
	s.history = h
	return s
}

// WithPublisher sets the invocation event publisher.
func (s *DefaultService) WithPublisher(p notify.Publisher) *DefaultService {
	if p == nil {
		p = notify.NoopPublisher{}
	}
	s.publisher = p
	return s
}

// WithRevisionFunc overrides how the source revision is looked up.
func (s *DefaultService) WithRevisionFunc(fn func(path string) string) *DefaultService {
	s.revision = fn
	return s
}

// WithIDFunc overrides invocation ID generation.
func (s *DefaultService) WithIDFunc(fn func() string) *DefaultService {
	s.newID = fn
	return s
}

// Run validates, prepares and launches one invocation.
func (s *DefaultService) Run(ctx context.Context, inv sphinx.Invocation) (*Result, error) {
	startTime := time.Now()
	result := &Result{
		InvocationID: s.newID(),
		StartTime:    startTime,
		State:        sphinx.StateNotStarted,
		ExitCode:     -1,
		ArtifactRoot: inv.ArtifactRoot(),
	}

	ctx = observability.WithInvocationID(ctx, result.InvocationID)
	ctx = observability.WithBuilder(ctx, inv.Builder)

	ctx = observability.WithStage(ctx, "validate")
	if err := inv.Validate(); err != nil {
		result.Status = StatusRejected
		s.finish(ctx, inv, result, err)
		return result, err
	}

	ctx = observability.WithStage(ctx, "prepare")
	if err := inv.PrepareDirectories(); err != nil {
		result.Status = StatusRejected
		s.finish(ctx, inv, result, err)
		return result, err
	}

	result.Arguments = inv.Arguments()
	if s.revision != nil {
		result.Revision = s.revision(inv.SourceDirectory)
	}

	ctx = observability.WithStage(ctx, "sphinx")
	if inv.Verbose {
		observability.InfoContext(ctx, fmt.Sprintf("Running sphinx on %s, output will be placed in %s",
			inv.SourcePath(), inv.OutputPath()))
	}

	res, err := s.runner.Run(ctx, inv.Command())
	result.State = res.State
	result.ExitCode = res.ExitCode
	result.Status = statusFor(res.State)
	if err == nil && !result.Status.IsSuccess() {
		err = fmt.Errorf("%s finished in state %s", inv.Command().Executable, res.State)
	}

	s.finish(ctx, inv, result, err)
	return result, err
}

func (s *DefaultService) finish(ctx context.Context, inv sphinx.Invocation, result *Result, runErr error) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	ctx = observability.WithStage(ctx, "record")

	s.recorder.ObserveInvocationDuration(inv.Builder, result.Duration)
	s.recorder.IncInvocationOutcome(inv.Builder, outcomeFor(result.Status))
	if result.State == sphinx.StateSucceeded || result.State == sphinx.StateFailed {
		s.recorder.ObserveExitCode(inv.Builder, result.ExitCode)
	}
	if result.Status.IsSuccess() {
		s.recorder.SetLastSuccess(inv.Builder, result.EndTime)
	}

	rec := history.Record{
		ID:        result.InvocationID,
		StartedAt: result.StartTime,
		Builder:   inv.Builder,
		Source:    inv.SourceDirectory,
		Output:    inv.OutputDirectory,
		Args:      result.Arguments,
		State:     string(result.Status),
		ExitCode:  result.ExitCode,
		Duration:  result.Duration,
		Revision:  result.Revision,
	}
	if err := s.history.Append(ctx, rec); err != nil {
		observability.WarnContext(ctx, "Failed to record invocation history", logfields.Error(err))
	}

	event := &notify.InvocationEvent{
		InvocationID: result.InvocationID,
		Builder:      inv.Builder,
		Source:       inv.SourceDirectory,
		ArtifactRoot: result.ArtifactRoot,
		State:        string(result.Status),
		ExitCode:     result.ExitCode,
		DurationMs:   result.Duration.Milliseconds(),
		Revision:     result.Revision,
		Timestamp:    result.EndTime,
	}
	if runErr != nil {
		event.Error = runErr.Error()
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		observability.WarnContext(ctx, "Failed to publish invocation event", logfields.Error(err))
	}

	attrs := []slog.Attr{
		logfields.State(string(result.Status)),
		logfields.DurationMS(float64(result.Duration.Milliseconds())),
	}
	if result.Revision != "" {
		attrs = append(attrs, logfields.Revision(result.Revision))
	}
	if runErr != nil {
		observability.ErrorContext(ctx, "Sphinx invocation failed", append(attrs, logfields.Error(runErr))...)
		return
	}
	observability.InfoContext(ctx, "Sphinx invocation completed", attrs...)
}

func outcomeFor(status Status) metrics.OutcomeLabel {
	switch status {
	case StatusSucceeded:
		return metrics.OutcomeSucceeded
	case StatusLaunchError:
		return metrics.OutcomeLaunchError
	case StatusRejected:
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeFailed
	}
}
