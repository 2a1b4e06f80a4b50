package sphinx

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/sphinxbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/sphinxbuild/internal/logfields"
	"git.home.luguber.info/inful/sphinxbuild/internal/observability"
)

// State is the lifecycle of a single external process run.
type State string

const (
	StateNotStarted  State = "not_started"
	StateRunning     State = "running"
	StateSucceeded   State = "succeeded"
	StateFailed      State = "failed"
	StateLaunchError State = "launch_error"
)

// IsTerminal reports whether no further transition can happen.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateLaunchError
}

// outputTailLines is how much captured output is attached to a failure.
const outputTailLines = 20

// Command is a fully resolved external process launch.
type Command struct {
	Executable string
	Args       []string
	Dir        string
	Env        map[string]string
	// Stream forwards the tool's output instead of capturing it.
	Stream bool
}

// Command resolves the process launch for the invocation.
func (inv Invocation) Command() Command {
	return Command{
		Executable: inv.executable(),
		Args:       inv.Arguments(),
		Dir:        inv.IntermediateDirectory,
		Env:        inv.Env,
		Stream:     inv.Verbose,
	}
}

// String renders the command as a single shell-like line.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Executable)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Result is the terminal outcome of a run.
type Result struct {
	State    State
	ExitCode int
	Duration time.Duration
	// Output holds the captured output when the command was not streamed.
	Output string
}

// Runner launches an external command and waits for it.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands as host subprocesses.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	// OnTransition, when set, observes every state change.
	OnTransition func(State)
}

// NewExecRunner returns a runner streaming to the process stdout and stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run launches cmd once and blocks until it exits. The context is only used
// for log correlation; the subprocess always runs to completion.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	res := Result{State: StateNotStarted, ExitCode: -1}
	start := time.Now()
	finish := func(state State) Result {
		res.State = state
		res.Duration = time.Since(start)
		r.transition(state)
		return res
	}

	path, err := resolveExecutable(cmd.Executable)
	if err != nil {
		return finish(StateLaunchError), launchError(err, cmd)
	}

	// #nosec G204 -- arguments come from the build configuration
	c := exec.Command(path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = mergeEnv(c.Environ(), cmd.Env)

	var captured bytes.Buffer
	if cmd.Stream {
		c.Stdout = r.stdout()
		c.Stderr = r.stderr()
	} else {
		c.Stdout = &captured
		c.Stderr = &captured
	}

	observability.DebugContext(ctx, "Launching external tool",
		slog.String("executable", path),
		slog.String("dir", cmd.Dir),
		slog.Any("args", cmd.Args))

	if err := c.Start(); err != nil {
		return finish(StateLaunchError), launchError(err, cmd)
	}
	r.transition(StateRunning)

	waitErr := c.Wait()
	res.Output = captured.String()
	if res.Output != "" {
		observability.DebugContext(ctx, "External tool output", slog.String("output", res.Output))
	}

	if waitErr == nil {
		res.ExitCode = 0
		return finish(StateSucceeded), nil
	}

	var exitErr *exec.ExitError
	if !stderrors.As(waitErr, &exitErr) {
		return finish(StateFailed), ferrors.WrapError(waitErr, ferrors.CategoryRuntime, "external tool did not complete").
			Fatal().
			WithContext("executable", cmd.Executable).
			Build()
	}

	res.ExitCode = exitErr.ExitCode()
	observability.WarnContext(ctx, "External tool exited with nonzero status",
		slog.String("executable", cmd.Executable),
		logfields.ExitCode(res.ExitCode))

	b := ferrors.ExternalToolError(fmt.Sprintf("%s exited with a nonzero status", cmd.Executable)).
		WithContext("exit_code", res.ExitCode).
		WithContext("executable", cmd.Executable)
	if tail := outputTail(res.Output, outputTailLines); tail != "" {
		b = b.WithContext("output_tail", tail)
	}
	return finish(StateFailed), b.Build()
}

func (r *ExecRunner) transition(s State) {
	if r.OnTransition != nil {
		r.OnTransition(s)
	}
}

func (r *ExecRunner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *ExecRunner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

// resolveExecutable looks the tool up on PATH. A path with a separator is made
// absolute against the current directory, since the OS would otherwise resolve
// it against the command's working directory.
func resolveExecutable(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", err
	}
	if !strings.ContainsRune(path, '/') && !strings.ContainsRune(path, filepath.Separator) {
		return path, nil
	}
	return filepath.Abs(path)
}

func launchError(err error, cmd Command) error {
	return ferrors.WrapError(err, ferrors.CategoryLaunch, fmt.Sprintf("could not launch %s", cmd.Executable)).
		Fatal().
		WithContext("executable", cmd.Executable).
		WithContext("dir", cmd.Dir).
		Build()
}

// mergeEnv appends overrides in key order; later entries win in os/exec.
func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	merged := append([]string{}, base...)
	for _, k := range keys {
		merged = append(merged, k+"="+overrides[k])
	}
	return merged
}

func outputTail(output string, n int) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
