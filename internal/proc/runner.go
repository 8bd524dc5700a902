package proc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"cxxforge/internal/ports"
)

// Runner executes external commands under the lifetime scope, feeding
// their output to the progress parser and diagnostics buffer.
type Runner struct {
	Scope     Scope
	Presenter Presenter
}

func NewRunner(scope Scope) *Runner {
	return &Runner{Scope: scope, Presenter: NewPresenter()}
}

// Run executes one command to completion. On a non-zero exit the result
// carries the prioritized diagnostics slice and the compile-error
// classification alongside the returned error.
func (r *Runner) Run(ctx context.Context, c ports.Command) (ports.RunResult, error) {
	diag := NewDiagBuffer()
	status := &StatusHolder{}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	r.Scope.Prepare(cmd)
	cmd.Cancel = func() error { return r.Scope.Terminate(cmd) }
	cmd.WaitDelay = terminateGrace

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return ports.RunResult{}, pipeError(err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return ports.RunResult{}, pipeError(err)
	}

	if err := cmd.Start(); err != nil {
		return ports.RunResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to start %s", c.Name)).
			WithCause(err)
	}
	if err := r.Scope.Track(cmd); err != nil {
		_ = r.Scope.Terminate(cmd)
		return ports.RunResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to register process in lifetime scope").
			WithCause(err)
	}

	r.Presenter.Start(c.Phase, status.Get)

	var wg sync.WaitGroup
	for _, stream := range []io.Reader{stdout, stderr} {
		wg.Add(1)
		go func(reader io.Reader) {
			defer wg.Done()
			scanner := bufio.NewScanner(reader)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				line := scanner.Text()
				diag.Add(line)
				if s, ok := ProgressLine(c.Phase, line); ok {
					status.Set(s)
				}
			}
		}(stream)
	}

	wg.Wait()
	waitErr := cmd.Wait()
	r.Scope.Untrack(cmd)
	r.Presenter.Stop()

	if waitErr == nil {
		return ports.RunResult{ExitCode: 0}, nil
	}

	result := ports.RunResult{
		ExitCode:     exitCode(cmd),
		Diagnostics:  diag.Diagnostics(),
		CompileError: diag.CompileError(),
	}
	log.Ctx(ctx).Debug().
		Str("phase", c.Phase).
		Int("exit_code", result.ExitCode).
		Bool("compile_error", result.CompileError).
		Msg("supervised command failed")
	return result, errbuilder.New().
		WithCode(errbuilder.CodeAborted).
		WithMsg(fmt.Sprintf("%s failed with exit code %d", c.Phase, result.ExitCode)).
		WithCause(waitErr)
}

// RunBinary executes a built binary with inherited console streams.
func (r *Runner) RunBinary(ctx context.Context, path string, args []string) (int, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	r.Scope.Prepare(cmd)
	cmd.Cancel = func() error { return r.Scope.Terminate(cmd) }
	cmd.WaitDelay = terminateGrace

	if err := cmd.Start(); err != nil {
		return -1, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to start %s", path)).
			WithCause(err)
	}
	if err := r.Scope.Track(cmd); err != nil {
		_ = r.Scope.Terminate(cmd)
		return -1, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to register process in lifetime scope").
			WithCause(err)
	}
	err := cmd.Wait()
	r.Scope.Untrack(cmd)
	if err != nil {
		return exitCode(cmd), err
	}
	return 0, nil
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}

func pipeError(err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to open process output pipe").
		WithCause(err)
}

var _ ports.RunnerPort = (*Runner)(nil)
var _ ports.BinaryRunnerPort = (*Runner)(nil)
