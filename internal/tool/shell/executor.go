package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// gracefulShutdownWait is how long a timed-out process gets to exit after
// an interrupt before it is killed.
const gracefulShutdownWait = 2 * time.Second

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

// Executor runs commands via os/exec with output caps and timeouts.
type Executor struct {
	detector  binaryDetector
	maxOutput int
}

// NewExecutor creates an Executor. maxOutput caps the bytes captured from
// each of stdout and stderr.
func NewExecutor(detector binaryDetector, maxOutput int) *Executor {
	if detector == nil {
		panic("detector is required")
	}
	return &Executor{
		detector:  detector,
		maxOutput: maxOutput,
	}
}

// RunWithTimeout executes a command with a timeout and graceful shutdown.
// On timeout the process first receives an interrupt, then a kill, and the
// call returns ErrTimeout along with whatever output was captured.
func (e *Executor) RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	if len(command) == 0 {
		return nil, ErrCommandRequired
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	// Collect output concurrently so it doesn't block the timeout select.
	var stdoutStr, stderrStr string
	var truncated bool
	collectDone := make(chan struct{})
	go func() {
		stdoutStr, stderrStr, truncated = e.collectOutput(stdoutPipe, stderrPipe)
		close(collectDone)
	}()

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var execErr error
	select {
	case err := <-done:
		execErr = err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		execErr = ctx.Err()
	case <-time.After(timeout):
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(gracefulShutdownWait):
			_ = cmd.Process.Kill()
			<-done
		}
		execErr = ErrTimeout
	}

	<-collectDone

	exitCode := 0
	if execErr != nil {
		exitCode = exitCodeOf(execErr)
	}

	return &Result{
		Stdout:    stdoutStr,
		Stderr:    stderrStr,
		ExitCode:  exitCode,
		Truncated: truncated,
	}, execErr
}

func (e *Executor) collectOutput(stdout, stderr io.Reader) (string, string, bool) {
	stdoutCollector := newCollector(e.detector, e.maxOutput, 8000)
	stderrCollector := newCollector(e.detector, e.maxOutput, 8000)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_, _ = io.Copy(stdoutCollector, stdout)
	}()
	go func() {
		defer wg.Done()
		_, _ = io.Copy(stderrCollector, stderr)
	}()

	wg.Wait()

	truncated := stdoutCollector.Truncated() || stderrCollector.Truncated()
	return stdoutCollector.String(), stderrCollector.String(), truncated
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
