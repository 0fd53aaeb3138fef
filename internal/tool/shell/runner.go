package shell

import (
	"context"
	"os"
	"time"

	"github.com/arlo-cli/arlo/internal/config"
)

// commandExecutor defines the interface the runner needs for execution.
type commandExecutor interface {
	RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error)
}

// Runner executes shell snippets on behalf of the model, one interpreter
// invocation per request.
// NOTE: The runner does NOT enforce policy - the caller is responsible
// for confirmation and allow/deny checks before invoking it.
type Runner struct {
	executor   commandExecutor
	config     *config.Config
	workingDir string
}

// NewRunner creates a Runner executing in workingDir.
func NewRunner(executor commandExecutor, cfg *config.Config, workingDir string) *Runner {
	if executor == nil {
		panic("executor is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &Runner{
		executor:   executor,
		config:     cfg,
		workingDir: workingDir,
	}
}

// SetWorkingDir changes the directory subsequent commands run in.
func (r *Runner) SetWorkingDir(dir string) {
	r.workingDir = dir
}

// RunBash executes a command string through bash -c.
func (r *Runner) RunBash(ctx context.Context, command string) (*Result, error) {
	return r.run(ctx, []string{"bash", "-c", command})
}

// RunPowerShell executes a command string through powershell -Command.
func (r *Runner) RunPowerShell(ctx context.Context, command string) (*Result, error) {
	return r.run(ctx, []string{"powershell", "-NoProfile", "-Command", command})
}

func (r *Runner) run(ctx context.Context, command []string) (*Result, error) {
	timeout := time.Duration(r.config.Shell.TimeoutSeconds) * time.Second
	result, err := r.executor.RunWithTimeout(ctx, command, r.workingDir, os.Environ(), timeout)
	if result == nil {
		result = &Result{ExitCode: -1}
	}
	return result, err
}
