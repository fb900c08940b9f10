package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"valska/internal/runner"
)

// taskCmd runs a Python package hygiene target
var taskCmd = &cobra.Command{
	Use:   "task [target]",
	Short: "Run a Python package hygiene target",
	Long: `Runs one of the package hygiene targets against the configured Python
source tree. Each target is a pipeline of external tool invocations; the
pipeline stops at the first failing tool and valska exits with that tool's
exit code.

Targets:
  format           reformat sources (isort, black)
  lint             static checks (isort, black, flake8, pylint)
  test             unit tests with coverage (pytest)
  build            build the distribution (python -m build)
  publish          check and upload the distribution (twine)
  scan             dependency vulnerability scan (pip-audit)
  notebook-format  reformat notebooks (nbqa isort/black)
  notebook-lint    notebook static checks (nbqa)
  notebook-test    execute notebooks as tests (pytest --nbmake)

Configuration comes from the hygiene section of the config file; the
PYTHON_SRC, PYTHON_LINE_LENGTH and PYTHON_RUNNER environment variables
override it.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: runner.Names(),
	RunE:      runTask,
}

func runTask(cmd *cobra.Command, args []string) error {
	target := args[0]

	ctx, cancel := signalContext()
	defer cancel()

	execCfg := runner.DefaultExecutorConfig()
	execCfg.DefaultWorkingDir = workspace
	execCfg.DefaultTimeout = cfg.GetToolTimeout()
	if len(cfg.Hygiene.AllowedEnvVars) > 0 {
		execCfg.AllowedEnvironment = cfg.Hygiene.AllowedEnvVars
	}

	tasks := runner.NewTasks(cfg.Hygiene, runner.NewExecutorWithConfig(execCfg))

	logger.Info("Running target", zap.String("target", target))

	result, err := tasks.Run(ctx, target)
	if err != nil {
		return err
	}

	for _, step := range result.Steps {
		fmt.Printf("$ %s\n", step.Command.String())
		if out := strings.TrimRight(step.Result.Output(), "\n"); out != "" {
			fmt.Println(out)
		}
	}

	if result.Failed() {
		last := result.Steps[len(result.Steps)-1]
		fmt.Fprintf(os.Stderr, "target %s failed: %s exited %d\n",
			target, last.Command.Binary, result.ExitCode)
		os.Exit(result.ExitCode)
	}

	fmt.Printf("target %s ok (%d step(s))\n", target, len(result.Steps))
	return nil
}
