package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"valska/internal/chains"
	"valska/internal/evidence"
	"valska/internal/report"
	"valska/internal/store"
	"valska/internal/watch"
)

var watchNoHistory bool

// watchCmd re-validates as sampler runs complete
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the chains directory and re-validate on new stats files",
	Long: `Watches the chains directory tree for sampler stats files. When a
completed run's stats settle (no writes for the debounce window), the full
BaNTER sweep is re-evaluated and the summary printed. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoHistory, "no-history", false, "Skip recording sweeps in the history database")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	pm, err := pathManager()
	if err != nil {
		return err
	}

	trigger := func(ctx context.Context, chainDirs []string) {
		logger.Info("Stats files settled", zap.Int("dirs", len(chainDirs)))
		for _, dir := range chainDirs {
			logger.Debug("Settled chain dir", zap.String("dir", dir))
		}
		if err := revalidate(ctx, pm); err != nil {
			logger.Warn("Re-validation failed", zap.Error(err))
		}
	}

	watcher, err := watch.NewChainsWatcher(pm.ChainsDir(), trigger)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Printf("Watching %s for sampler stats files (Ctrl-C to stop)\n", pm.ChainsDir())

	<-ctx.Done()

	stats := watcher.Snapshot()
	logger.Info("Watcher stopped",
		zap.Int("events", stats.Events),
		zap.Int("triggered", stats.Triggered),
		zap.Int("errors", stats.Errors))
	return nil
}

// revalidate reloads the catalog and runs the full sweep. The catalog is
// re-read each time so newly registered chains are picked up.
func revalidate(ctx context.Context, pm *chains.PathManager) error {
	catalog, err := loadCatalog(pm)
	if err != nil {
		return err
	}

	levels, err := evidence.SelectLevels(catalog, false, false)
	if err != nil {
		return err
	}
	if len(levels) == 0 {
		logger.Info("No paired perturbation levels in catalog yet")
		return nil
	}

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

	if !watchNoHistory {
		history, err := store.NewHistory(historyPath())
		if err != nil {
			return err
		}
		defer history.Close()
		runID, err := history.RecordSweep(pm.ChainsDir(), summary)
		if err != nil {
			return err
		}
		logger.Info("Sweep recorded", zap.String("run_id", runID))
	}
	return nil
}
