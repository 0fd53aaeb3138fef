package shell

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/arlo-cli/arlo/internal/config"
	"github.com/arlo-cli/arlo/internal/tool/fsutil"
)

func newTestExecutor(maxOutput int) *Executor {
	return NewExecutor(fsutil.NewBinaryDetector(8192), maxOutput)
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("bash not available on windows")
	}
}

func TestRunWithTimeout(t *testing.T) {
	skipOnWindows(t)
	exec := newTestExecutor(1 << 20)

	t.Run("simple command", func(t *testing.T) {
		res, err := exec.RunWithTimeout(context.Background(), []string{"echo", "hello"}, "", nil, 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(res.Stdout) != "hello" {
			t.Errorf("unexpected stdout %q", res.Stdout)
		}
		if res.ExitCode != 0 {
			t.Errorf("unexpected exit code %d", res.ExitCode)
		}
	})

	t.Run("nonzero exit", func(t *testing.T) {
		res, err := exec.RunWithTimeout(context.Background(), []string{"sh", "-c", "exit 3"}, "", nil, 5*time.Second)
		if err == nil {
			t.Fatal("expected error for nonzero exit")
		}
		if res.ExitCode != 3 {
			t.Errorf("expected exit code 3, got %d", res.ExitCode)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		res, err := exec.RunWithTimeout(context.Background(), []string{"sleep", "10"}, "", nil, 100*time.Millisecond)
		if !errors.Is(err, ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
		if res == nil {
			t.Fatal("expected partial result on timeout")
		}
	})

	t.Run("stderr captured", func(t *testing.T) {
		res, err := exec.RunWithTimeout(context.Background(), []string{"sh", "-c", "echo oops >&2"}, "", nil, 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(res.Stderr) != "oops" {
			t.Errorf("unexpected stderr %q", res.Stderr)
		}
	})

	t.Run("empty command", func(t *testing.T) {
		_, err := exec.RunWithTimeout(context.Background(), nil, "", nil, time.Second)
		if !errors.Is(err, ErrCommandRequired) {
			t.Fatalf("expected ErrCommandRequired, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()
		_, err := exec.RunWithTimeout(ctx, []string{"sleep", "10"}, "", nil, time.Minute)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func TestOutputCap(t *testing.T) {
	skipOnWindows(t)
	exec := newTestExecutor(64)

	res, err := exec.RunWithTimeout(context.Background(), []string{"sh", "-c", "yes x | head -c 1000"}, "", nil, 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Truncated {
		t.Error("expected truncated output")
	}
	if len(res.Stdout) > 64 {
		t.Errorf("stdout exceeds cap: %d bytes", len(res.Stdout))
	}
}

func TestCollectorBinaryOutput(t *testing.T) {
	c := newCollector(fsutil.NewBinaryDetector(8192), 1024, 8000)

	if _, err := c.Write([]byte{'a', 0x00, 'b'}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.String() != "[Binary Content]" {
		t.Errorf("expected binary placeholder, got %q", c.String())
	}
	if !c.Truncated() {
		t.Error("binary output should report truncated")
	}
}

func TestRunnerBash(t *testing.T) {
	skipOnWindows(t)
	cfg := config.DefaultConfig()
	runner := NewRunner(newTestExecutor(cfg.Shell.MaxOutputSize), cfg, t.TempDir())

	res, err := runner.RunBash(context.Background(), "pwd && echo done")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Stdout, "done") {
		t.Errorf("unexpected stdout %q", res.Stdout)
	}
}

func TestRunnerTimeoutFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Shell.TimeoutSeconds = 1

	var gotTimeout time.Duration
	fake := executorFunc(func(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
		gotTimeout = timeout
		return &Result{}, nil
	})
	runner := NewRunner(fake, cfg, ".")

	if _, err := runner.RunBash(context.Background(), "true"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTimeout != time.Second {
		t.Errorf("expected 1s timeout, got %v", gotTimeout)
	}
}

type executorFunc func(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error)

func (f executorFunc) RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	return f(ctx, command, dir, env, timeout)
}
