package runner

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"valska/internal/config"
	"valska/internal/logging"
)

// Target names.
const (
	TargetFormat         = "format"
	TargetLint           = "lint"
	TargetTest           = "test"
	TargetBuild          = "build"
	TargetPublish        = "publish"
	TargetScan           = "scan"
	TargetNotebookFormat = "notebook-format"
	TargetNotebookLint   = "notebook-lint"
	TargetNotebookTest   = "notebook-test"
)

// StepResult pairs an invocation with its outcome.
type StepResult struct {
	Command Command
	Result  *Result
}

// TargetResult is the outcome of a whole target pipeline.
type TargetResult struct {
	Target string
	Steps  []StepResult

	// ExitCode is the first non-zero tool exit, or zero when every step
	// succeeded.
	ExitCode int
}

// Failed reports whether the target should fail the invocation.
func (t *TargetResult) Failed() bool { return t.ExitCode != 0 }

// Tasks builds target pipelines from the hygiene configuration.
type Tasks struct {
	cfg      config.HygieneConfig
	executor *Executor
}

// NewTasks wires the hygiene config to an executor.
func NewTasks(cfg config.HygieneConfig, executor *Executor) *Tasks {
	return &Tasks{cfg: cfg, executor: executor}
}

// Names returns the supported target names, sorted.
func Names() []string {
	names := []string{
		TargetFormat, TargetLint, TargetTest, TargetBuild,
		TargetPublish, TargetScan,
		TargetNotebookFormat, TargetNotebookLint, TargetNotebookTest,
	}
	sort.Strings(names)
	return names
}

// command builds one tool invocation, applying the configured runner prefix
// (e.g. "poetry run isort ..." when runner is "poetry run").
func (t *Tasks) command(binary string, args ...string) Command {
	argv := append([]string{binary}, args...)
	if prefix := strings.Fields(t.cfg.Runner); len(prefix) > 0 {
		argv = append(append([]string{}, prefix...), argv...)
	}
	return Command{Binary: argv[0], Arguments: argv[1:]}
}

func (t *Tasks) lineLength() string {
	return strconv.Itoa(t.cfg.LineLength)
}

// Pipeline returns the tool invocations for a target.
func (t *Tasks) Pipeline(target string) ([]Command, error) {
	src := t.cfg.Source
	nb := t.cfg.Notebooks
	ll := t.lineLength()

	switch target {
	case TargetFormat:
		return []Command{
			t.command("isort", "--profile", "black", "--line-length", ll, src),
			t.command("black", "--line-length", ll, src),
		}, nil

	case TargetLint:
		return []Command{
			t.command("isort", "--profile", "black", "--line-length", ll, "--check-only", "--diff", src),
			t.command("black", "--line-length", ll, "--check", "--diff", src),
			t.command("flake8", "--max-line-length", ll, src),
			t.command("pylint", "--max-line-length", ll, src),
		}, nil

	case TargetTest:
		return []Command{
			t.command("pytest", "--cov="+src, "--cov-report", "term-missing"),
		}, nil

	case TargetBuild:
		return []Command{
			t.command("python", "-m", "build"),
		}, nil

	case TargetPublish:
		return []Command{
			t.command("twine", "check", t.cfg.DistDir+"/*"),
			t.command("twine", "upload", "--repository", t.cfg.Repository, t.cfg.DistDir+"/*"),
		}, nil

	case TargetScan:
		return []Command{
			t.command("pip-audit"),
		}, nil

	case TargetNotebookFormat:
		return []Command{
			t.command("nbqa", "isort", "--profile", "black", "--line-length", ll, nb),
			t.command("nbqa", "black", "--line-length", ll, nb),
		}, nil

	case TargetNotebookLint:
		return []Command{
			t.command("nbqa", "isort", "--profile", "black", "--line-length", ll, "--check-only", nb),
			t.command("nbqa", "black", "--line-length", ll, "--check", nb),
			t.command("nbqa", "flake8", "--max-line-length", ll, nb),
		}, nil

	case TargetNotebookTest:
		return []Command{
			t.command("pytest", "--nbmake", nb),
		}, nil
	}

	return nil, fmt.Errorf("unknown target %q (valid: %s)", target, strings.Join(Names(), ", "))
}

// Run executes a target pipeline. Steps run in order and the pipeline stops
// at the first non-zero exit, whose code becomes the target's exit code.
func (t *Tasks) Run(ctx context.Context, target string) (*TargetResult, error) {
	pipeline, err := t.Pipeline(target)
	if err != nil {
		return nil, err
	}

	logging.Runner("Target %s: %d steps", target, len(pipeline))

	result := &TargetResult{Target: target}
	for _, cmd := range pipeline {
		res, err := t.executor.Execute(ctx, cmd)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", target, err)
		}
		result.Steps = append(result.Steps, StepResult{Command: cmd, Result: res})

		if !res.Success {
			return nil, fmt.Errorf("target %s: %s: %s", target, cmd.String(), res.Error)
		}
		if res.Killed {
			result.ExitCode = 124
			logging.RunnerWarn("Target %s: %s killed (%s)", target, cmd.String(), res.KillReason)
			break
		}
		if res.ExitCode != 0 {
			result.ExitCode = res.ExitCode
			logging.RunnerWarn("Target %s: %s exited %d", target, cmd.String(), res.ExitCode)
			break
		}
	}

	return result, nil
}
