package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"valska/internal/logging"
)

// Executor runs commands directly on the host using os/exec. No sandboxing;
// the hygiene tools need the project environment exactly as the developer
// has it.
type Executor struct {
	config ExecutorConfig
}

// NewExecutor creates an executor with default config.
func NewExecutor() *Executor {
	return NewExecutorWithConfig(DefaultExecutorConfig())
}

// NewExecutorWithConfig creates an executor with custom config.
func NewExecutorWithConfig(config ExecutorConfig) *Executor {
	logging.RunnerDebug("Creating executor: timeout=%s, maxOutput=%d bytes",
		config.DefaultTimeout, config.MaxOutputBytes)
	return &Executor{config: config}
}

// Execute runs a command and captures its outcome. A non-zero exit is not an
// error; only infrastructure failures (binary missing, context dead before
// start) are.
func (e *Executor) Execute(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("binary is required")
	}

	timer := logging.StartTimer(logging.CategoryRunner, "Command "+cmd.Binary)
	defer timer.Stop()

	logging.Runner("Executing: %s", cmd.String())

	workdir := cmd.WorkingDirectory
	if workdir == "" {
		workdir = e.config.DefaultWorkingDir
	}
	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = e.config.DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	execCmd := exec.CommandContext(execCtx, cmd.Binary, cmd.Arguments...)
	execCmd.Dir = workdir
	execCmd.Env = e.buildEnvironment(cmd.Environment)

	if cmd.Stdin != "" {
		execCmd.Stdin = strings.NewReader(cmd.Stdin)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: e.config.MaxOutputBytes}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: e.config.MaxOutputBytes}
	execCmd.Stdout = stdoutLimited
	execCmd.Stderr = stderrLimited

	result := &Result{ExitCode: -1}

	started := time.Now()
	err := execCmd.Run()
	result.Duration = time.Since(started)

	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()
	result.Truncated = stdoutLimited.truncated || stderrLimited.truncated
	if result.Truncated {
		logging.RunnerWarn("Output of %s truncated at %d bytes", cmd.Binary, e.config.MaxOutputBytes)
	}

	switch {
	case err == nil:
		result.Success = true
		result.ExitCode = 0
	case execCtx.Err() == context.DeadlineExceeded:
		result.Success = true
		result.Killed = true
		result.KillReason = fmt.Sprintf("timeout after %s", timeout)
		logging.RunnerWarn("Command killed (timeout): %s after %s", cmd.Binary, timeout)
	case execCtx.Err() == context.Canceled:
		result.Success = true
		result.Killed = true
		result.KillReason = "context canceled"
	default:
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.Success = true
			result.ExitCode = exitErr.ExitCode()
			logging.RunnerDebug("Command exited non-zero: %s -> %d", cmd.Binary, result.ExitCode)
		} else {
			result.Success = false
			result.Error = err.Error()
			logging.RunnerError("Command failed: %s - %v", cmd.Binary, err)
		}
	}

	logging.Runner("Completed: %s -> exit=%d, duration=%s", cmd.Binary, result.ExitCode, result.Duration)
	return result, nil
}

// buildEnvironment creates the environment variable list.
func (e *Executor) buildEnvironment(cmdEnv []string) []string {
	env := make([]string, 0)
	for _, key := range e.config.AllowedEnvironment {
		if val := os.Getenv(key); val != "" {
			env = append(env, fmt.Sprintf("%s=%s", key, val))
		}
	}
	return append(env, cmdEnv...)
}

// limitedWriter is an io.Writer that limits total bytes written.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)

	if lw.written >= lw.max {
		lw.truncated = true
		return n, nil // Pretend we wrote it
	}

	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err // Return original length to avoid "short write" errors
	}

	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
