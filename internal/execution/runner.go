package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"simrun/internal/ctxlog"
	"simrun/internal/domain"
)

// ErrTimeout is returned when a command outlives its timeout.
var ErrTimeout = errors.New("command timed out")

// ExitError is returned when a command exits with a non-zero status.
type ExitError struct {
	Dir  string
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command in %s exited with status %d", e.Dir, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// IsStepFailure reports whether err is a failure of the command itself (non-zero
// exit or timeout) rather than a failure to run it.
func IsStepFailure(err error) bool {
	var exit *ExitError
	return errors.As(err, &exit) || errors.Is(err, ErrTimeout)
}

// CommandRunner runs one shell command in a directory with a timeout.
type CommandRunner interface {
	Run(ctx context.Context, command, dir string, timeout time.Duration) error
}

// Runner executes shell commands under /bin/sh -c, each in its own process
// group so that a kill reaches every child the scripts spawn.
type Runner struct {
	Shell  string
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner creates a new Runner writing command output to stdout and stderr
func NewRunner(stdout, stderr io.Writer) *Runner {
	return &Runner{Shell: "/bin/sh", Stdout: stdout, Stderr: stderr}
}

// Run executes command in dir. A watchdog kills the process group when
// timeout elapses (timeout <= 0 disables it) and the watchdog is stopped on
// every return path. Cancelling ctx kills the process group and returns an
// error wrapping domain.ErrInterrupted.
func (r *Runner) Run(ctx context.Context, command, dir string, timeout time.Duration) error {
	logger := ctxlog.FromContext(ctx)

	shell := r.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.Command(shell, "-c", command)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	setProcessGroup(cmd)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInterrupted, err)
	}
	logger.Debug("Running command", "dir", dir, "command", command, "timeout", timeout)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command in %s: %w", dir, err)
	}

	var (
		mu       sync.Mutex
		exited   bool
		timedOut bool
	)
	kill := func() {
		mu.Lock()
		defer mu.Unlock()
		if !exited {
			killProcessGroup(cmd)
		}
	}

	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			mu.Lock()
			timedOut = true
			mu.Unlock()
			logger.Warn("Subprocess killed by timeout", "dir", dir, "timeout", timeout)
			kill()
		})
		defer timer.Stop()
	}

	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		mu.Lock()
		exited = true
		mu.Unlock()
		done <- err
	}()

	select {
	case err := <-done:
		mu.Lock()
		expired := timedOut
		mu.Unlock()
		if expired {
			return fmt.Errorf("%w after %s in %s", ErrTimeout, timeout, dir)
		}
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return &ExitError{Dir: dir, Code: exitErr.ExitCode(), Err: err}
			}
			return fmt.Errorf("wait for command in %s: %w", dir, err)
		}
		return nil
	case <-ctx.Done():
		logger.Warn("Caught interrupt, shutting down", "dir", dir)
		kill()
		<-done
		return fmt.Errorf("%w: %w", domain.ErrInterrupted, context.Cause(ctx))
	}
}
