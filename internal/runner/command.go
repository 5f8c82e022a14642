package runner

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
)

// CommandRunner executes an external tool synchronously. A process that ran
// to completion yields its exit code and a nil error; a non-nil error means
// the process could not be started or was cut short by the context.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (int, error)
}

// ExecRunner runs commands with the parent's standard streams so tool output
// lands in the build log unmodified.
type ExecRunner struct {
	logger zerolog.Logger
}

var _ CommandRunner = &ExecRunner{}

func NewExecRunner(logger zerolog.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (int, error) {
	r.logger.Debug().Str("cmd", name).Strs("args", args).Msg("exec")
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctx.Err() != nil {
			return exitErr.ExitCode(), ctx.Err()
		}
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// FakeRunner scripts command results for tests and records every invocation.
type FakeRunner struct {
	Calls  [][]string
	Script func(name string, args []string) (int, error)
}

var _ CommandRunner = &FakeRunner{}

func (f *FakeRunner) Run(_ context.Context, name string, args ...string) (int, error) {
	f.Calls = append(f.Calls, append([]string{name}, args...))
	if f.Script == nil {
		return 0, nil
	}
	return f.Script(name, args)
}
