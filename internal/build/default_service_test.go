package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sphinxbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/sphinxbuild/internal/history"
	"git.home.luguber.info/inful/sphinxbuild/internal/metrics"
	"git.home.luguber.info/inful/sphinxbuild/internal/notify"
	"git.home.luguber.info/inful/sphinxbuild/internal/observability"
	"git.home.luguber.info/inful/sphinxbuild/internal/sphinx"
)

// fakeRunner is a test double for sphinx.Runner.
type fakeRunner struct {
	result   sphinx.Result
	err      error
	commands []sphinx.Command
	ctxs     []context.Context
}

func (f *fakeRunner) Run(ctx context.Context, cmd sphinx.Command) (sphinx.Result, error) {
	f.commands = append(f.commands, cmd)
	f.ctxs = append(f.ctxs, ctx)
	return f.result, f.err
}

type fakeRecorder struct {
	mu          sync.Mutex
	outcomes    []metrics.OutcomeLabel
	exitCodes   []int
	durations   int
	lastSuccess time.Time
}

func (r *fakeRecorder) ObserveInvocationDuration(string, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations++
}

func (r *fakeRecorder) IncInvocationOutcome(_ string, o metrics.OutcomeLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *fakeRecorder) ObserveExitCode(_ string, code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exitCodes = append(r.exitCodes, code)
}

func (r *fakeRecorder) SetLastSuccess(_ string, t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSuccess = t
}

type fakePublisher struct {
	events []*notify.InvocationEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e *notify.InvocationEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *fakePublisher) Close() {}

func testInvocation(t *testing.T) sphinx.Invocation {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, 0o750))
	return sphinx.Invocation{
		SourceDirectory:       src,
		OutputDirectory:       filepath.Join(root, "out"),
		IntermediateDirectory: filepath.Join(root, "work"),
		Builder:               "html",
		Verbose:               true,
	}
}

func newTestService(runner sphinx.Runner) *DefaultService {
	return NewService().
		WithRunner(runner).
		WithRevisionFunc(func(string) string { return "deadbeef" }).
		WithIDFunc(func() string { return "inv-1" })
}

func TestStatus_IsSuccess(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusSucceeded, true},
		{StatusFailed, false},
		{StatusLaunchError, false},
		{StatusRejected, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.IsSuccess())
		})
	}
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService()
	require.NotNil(t, svc)
	assert.IsType(t, &sphinx.ExecRunner{}, svc.runner)
	assert.IsType(t, metrics.NoopRecorder{}, svc.recorder)
	assert.IsType(t, history.NoopStore{}, svc.history)
	assert.IsType(t, notify.NoopPublisher{}, svc.publisher)
	assert.NotEmpty(t, svc.newID())
}

func TestRun_Succeeded(t *testing.T) {
	inv := testInvocation(t)
	runner := &fakeRunner{result: sphinx.Result{State: sphinx.StateSucceeded, ExitCode: 0}}
	recorder := &fakeRecorder{}
	svc := newTestService(runner).WithRecorder(recorder)

	result, err := svc.Run(t.Context(), inv)
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, result.Status)
	assert.Equal(t, sphinx.StateSucceeded, result.State)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "inv-1", result.InvocationID)
	assert.Equal(t, "deadbeef", result.Revision)
	assert.Equal(t, inv.Arguments(), result.Arguments)
	assert.Equal(t, inv.ArtifactRoot(), result.ArtifactRoot)
	assert.False(t, result.EndTime.Before(result.StartTime))

	require.Len(t, runner.commands, 1)
	cmd := runner.commands[0]
	assert.Equal(t, inv.IntermediateDirectory, cmd.Dir)
	assert.Equal(t, inv.Arguments(), cmd.Args)
	assert.Equal(t, "inv-1", observability.GetContext(runner.ctxs[0]).InvocationID)
	assert.Equal(t, "html", observability.GetContext(runner.ctxs[0]).Builder)

	assert.DirExists(t, inv.OutputDirectory)
	assert.DirExists(t, inv.IntermediateDirectory)

	assert.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeSucceeded}, recorder.outcomes)
	assert.Equal(t, []int{0}, recorder.exitCodes)
	assert.Equal(t, 1, recorder.durations)
	assert.False(t, recorder.lastSuccess.IsZero())
}

func TestRun_VerboseLogsAbsolutePaths(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o750))
	t.Chdir(root)
	wd, err := os.Getwd()
	require.NoError(t, err)
	inv := sphinx.Invocation{
		SourceDirectory:       "src",
		OutputDirectory:       "out",
		IntermediateDirectory: "work",
		Builder:               "html",
		Verbose:               true,
	}
	svc := newTestService(&fakeRunner{result: sphinx.Result{State: sphinx.StateSucceeded}})

	_, err = svc.Run(t.Context(), inv)
	require.NoError(t, err)

	assert.Contains(t, logs.String(), fmt.Sprintf("Running sphinx on %s, output will be placed in %s",
		filepath.Join(wd, "src"), filepath.Join(wd, "out")))
}

func TestRun_ExternalToolFailure(t *testing.T) {
	inv := testInvocation(t)
	toolErr := ferrors.ExternalToolError("sphinx-build exited with a nonzero status").
		WithContext("exit_code", 2).
		Build()
	runner := &fakeRunner{result: sphinx.Result{State: sphinx.StateFailed, ExitCode: 2}, err: toolErr}
	recorder := &fakeRecorder{}
	publisher := &fakePublisher{}
	svc := newTestService(runner).WithRecorder(recorder).WithPublisher(publisher)

	result, err := svc.Run(t.Context(), inv)
	require.Error(t, err)

	assert.Equal(t, StatusFailed, result.Status)
	assert.NotEqual(t, sphinx.StateSucceeded, result.State)
	code, ok := sphinx.ExitCode(err)
	require.True(t, ok)
	assert.Equal(t, 2, code)
	assert.True(t, sphinx.IsExternalToolFailure(err))

	assert.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeFailed}, recorder.outcomes)
	assert.Equal(t, []int{2}, recorder.exitCodes)
	assert.True(t, recorder.lastSuccess.IsZero())

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, "failed", event.State)
	assert.Equal(t, 2, event.ExitCode)
	assert.Equal(t, "deadbeef", event.Revision)
	assert.NotEmpty(t, event.Error)
}

func TestRun_LaunchError(t *testing.T) {
	inv := testInvocation(t)
	launchErr := ferrors.LaunchError("could not launch sphinx-build").Build()
	runner := &fakeRunner{result: sphinx.Result{State: sphinx.StateLaunchError, ExitCode: -1}, err: launchErr}
	recorder := &fakeRecorder{}
	svc := newTestService(runner).WithRecorder(recorder)

	result, err := svc.Run(t.Context(), inv)
	require.Error(t, err)
	assert.True(t, sphinx.IsLaunchError(err))
	assert.Equal(t, StatusLaunchError, result.Status)
	assert.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeLaunchError}, recorder.outcomes)
	assert.Empty(t, recorder.exitCodes)
}

func TestRun_RejectedBeforeLaunch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*sphinx.Invocation)
	}{
		{name: "missing source", mutate: func(inv *sphinx.Invocation) { inv.SourceDirectory = filepath.Join(inv.SourceDirectory, "missing") }},
		{name: "empty builder", mutate: func(inv *sphinx.Invocation) { inv.Builder = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := testInvocation(t)
			tt.mutate(&inv)
			runner := &fakeRunner{}
			recorder := &fakeRecorder{}
			svc := newTestService(runner).WithRecorder(recorder)

			result, err := svc.Run(t.Context(), inv)
			require.Error(t, err)
			assert.True(t, sphinx.IsConfigurationError(err))
			assert.Equal(t, StatusRejected, result.Status)
			assert.Empty(t, runner.commands)
			assert.NoDirExists(t, inv.OutputDirectory)
			assert.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeRejected}, recorder.outcomes)
		})
	}
}

func TestRun_UnexpectedNonSuccessWithoutError(t *testing.T) {
	inv := testInvocation(t)
	runner := &fakeRunner{result: sphinx.Result{State: sphinx.StateFailed, ExitCode: 1}}
	svc := newTestService(runner)

	result, err := svc.Run(t.Context(), inv)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, result.Status)
}

func TestRun_RecordsHistory(t *testing.T) {
	store, err := history.NewSQLiteStore(history.InMemory)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	inv := testInvocation(t)
	inv.Tags = []string{"internal"}
	runner := &fakeRunner{result: sphinx.Result{State: sphinx.StateSucceeded, ExitCode: 0}}
	svc := newTestService(runner).WithHistory(store)

	_, err = svc.Run(t.Context(), inv)
	require.NoError(t, err)

	records, err := store.Recent(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "inv-1", rec.ID)
	assert.Equal(t, "succeeded", rec.State)
	assert.Equal(t, "html", rec.Builder)
	assert.Equal(t, "deadbeef", rec.Revision)
	assert.Equal(t, inv.Arguments(), rec.Args)
}

func TestRun_RecordingFailuresDoNotChangeOutcome(t *testing.T) {
	store, err := history.NewSQLiteStore(history.InMemory)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	inv := testInvocation(t)
	runner := &fakeRunner{result: sphinx.Result{State: sphinx.StateSucceeded, ExitCode: 0}}
	publisher := &fakePublisher{err: errors.New("bus down")}
	svc := newTestService(runner).WithHistory(store).WithPublisher(publisher)

	result, err := svc.Run(t.Context(), inv)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, result.Status)
	assert.Len(t, publisher.events, 1)
}

func TestRun_DistinctInvocationIDs(t *testing.T) {
	inv := testInvocation(t)
	runner := &fakeRunner{result: sphinx.Result{State: sphinx.StateSucceeded}}
	svc := NewService().WithRunner(runner).WithRevisionFunc(func(string) string { return "" })

	first, err := svc.Run(t.Context(), inv)
	require.NoError(t, err)
	second, err := svc.Run(t.Context(), inv)
	require.NoError(t, err)

	assert.NotEqual(t, first.InvocationID, second.InvocationID)
	assert.Empty(t, first.Revision)
}
