package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"valska/internal/chains"
	"valska/internal/evidence"
	"valska/internal/report"
	"valska/internal/store"
)

var (
	onlyNegative bool
	onlyPositive bool
	levelArgs    []string
	writeReport  bool
	noHistory    bool
)

// validateCmd runs the BaNTER null-test sweep
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the BaNTER null-test sweep over the catalog",
	Long: `Evaluates the Bayesian null test for every perturbation level that has
both a foreground+EoR and a foreground-only chain in the catalog.

A case passes when the foreground-only model is favored (negative log Bayes
factor): detecting an EoR signal in data that contains none means the
pipeline's evidence ratios cannot be trusted.

Examples:
  valska validate
  valska validate --only-negative --report
  valska validate --level -1e-3pp --level +1e0pp`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&onlyNegative, "only-negative", false, "Only analyze negative perturbations")
	validateCmd.Flags().BoolVar(&onlyPositive, "only-positive", false, "Only analyze positive perturbations")
	validateCmd.Flags().StringSliceVar(&levelArgs, "level", nil, "Specific perturbation level(s) to analyze")
	validateCmd.Flags().BoolVar(&writeReport, "report", false, "Write a Markdown report into the results directory")
	validateCmd.Flags().BoolVar(&noHistory, "no-history", false, "Skip recording the sweep in the history database")
}

// signalContext derives a timeout context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// selectSweepLevels resolves the requested levels from flags and catalog.
func selectSweepLevels(catalog chains.Catalog) ([]chains.Level, error) {
	if len(levelArgs) > 0 {
		if onlyNegative || onlyPositive {
			return nil, fmt.Errorf("--level cannot be combined with --only-negative/--only-positive")
		}
		levels := make([]chains.Level, 0, len(levelArgs))
		for _, raw := range levelArgs {
			level, err := chains.ParseLevel(raw)
			if err != nil {
				return nil, err
			}
			levels = append(levels, level)
		}
		return levels, nil
	}
	return evidence.SelectLevels(catalog, onlyNegative, onlyPositive)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	pm, err := pathManager()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(pm)
	if err != nil {
		return err
	}

	levels, err := selectSweepLevels(catalog)
	if err != nil {
		return err
	}
	if len(levels) == 0 {
		return fmt.Errorf("no perturbation levels with paired FgEoR/FgOnly chains in catalog")
	}

	logger.Info("Starting BaNTER sweep",
		zap.Int("levels", len(levels)),
		zap.String("chains", pm.ChainsDir()))

	analyzer := &evidence.Analyzer{
		ChainsRoot:  pm.ChainsDir(),
		Catalog:     catalog,
		FileRoot:    cfg.Analysis.FileRoot,
		Concurrency: cfg.Analysis.Concurrency,
	}

	summary, err := analyzer.Sweep(ctx, levels)
	if err != nil {
		return err
	}

	fmt.Print(report.RenderSummary("BaNTER perturbation sweep", summary))

	if writeReport {
		path, err := report.Write(pm.ResultsDir(), "BaNTER perturbation sweep", summary)
		if err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", path)
	}

	if !noHistory {
		history, err := store.NewHistory(historyPath())
		if err != nil {
			logger.Warn("History unavailable", zap.Error(err))
		} else {
			defer history.Close()
			runID, err := history.RecordSweep(pm.ChainsDir(), summary)
			if err != nil {
				logger.Warn("Failed to record sweep", zap.Error(err))
			} else {
				logger.Info("Sweep recorded", zap.String("run_id", runID))
			}
		}
	}

	if summary.Fail > 0 {
		return fmt.Errorf("BaNTER validation failed for %d of %d cases", summary.Fail, summary.Total())
	}
	if summary.Error == summary.Total() {
		return fmt.Errorf("no cases could be evaluated")
	}
	return nil
}

// historyPath resolves the history database path against the workspace.
func historyPath() string {
	path := cfg.Paths.History
	if path == "" {
		path = ".valska/history.db"
	}
	if !os.IsPathSeparator(path[0]) {
		path = workspace + string(os.PathSeparator) + path
	}
	return path
}
