// Package runner executes the Python package hygiene targets: formatting,
// linting, testing, building, publishing and scanning, plus the notebook
// variants. Every target is a pipeline of external tool invocations
// (isort, black, flake8, pylint, pytest, nbqa, twine, python -m build,
// pip-audit); the runner adds nothing but configuration, timeouts and
// exit-code propagation.
package runner

import (
	"strings"
	"time"
)

// Command represents one external tool invocation.
type Command struct {
	// Binary is the executable to run (e.g. "black", "pytest").
	Binary string

	// Arguments are the command-line arguments.
	Arguments []string

	// WorkingDirectory is the directory to execute in.
	// If empty, uses the executor's default working directory.
	WorkingDirectory string

	// Environment variables to set (in KEY=VALUE format), merged with the
	// executor's allowed environment.
	Environment []string

	// Stdin provides input to the command's standard input.
	Stdin string

	// Timeout caps execution time. Zero means the executor default.
	Timeout time.Duration
}

// String returns the full command line for display and logging.
func (c Command) String() string {
	if len(c.Arguments) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Arguments, " ")
}

// Result is the outcome of one command execution.
type Result struct {
	// Success indicates the execution infrastructure worked. A command
	// that ran and returned non-zero still has Success=true.
	Success bool

	// ExitCode is the command's exit code (-1 if not available).
	ExitCode int

	// Stdout is the captured standard output.
	Stdout string

	// Stderr is the captured standard error.
	Stderr string

	// Duration is how long the command ran.
	Duration time.Duration

	// Killed indicates the command was forcibly terminated.
	Killed bool

	// KillReason explains why the command was killed.
	KillReason string

	// Truncated indicates output was cut at the size limit.
	Truncated bool

	// Error contains any infrastructure-level error message.
	Error string
}

// Output returns stdout and stderr joined for display.
func (r *Result) Output() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// ExecutorConfig configures the direct executor.
type ExecutorConfig struct {
	// DefaultWorkingDir is used when Command.WorkingDirectory is empty.
	DefaultWorkingDir string

	// DefaultTimeout is used when Command.Timeout is zero.
	DefaultTimeout time.Duration

	// AllowedEnvironment lists environment variables passed through to
	// the tools.
	AllowedEnvironment []string

	// MaxOutputBytes caps captured stdout/stderr (each).
	MaxOutputBytes int64
}

// DefaultExecutorConfig returns sensible defaults.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		DefaultWorkingDir:  ".",
		DefaultTimeout:     10 * time.Minute,
		MaxOutputBytes:     10 * 1024 * 1024, // 10MB
		AllowedEnvironment: []string{"PATH", "HOME", "USER", "LANG", "LC_ALL", "VIRTUAL_ENV", "PYTHONPATH"},
	}
}
