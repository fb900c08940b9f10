package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"valska/internal/chains"
	"valska/internal/config"
	"valska/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	workspace  string
	timeout    time.Duration

	// Loaded configuration
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "valska",
	Short: "valska - BaNTER validation toolkit for 21-cm Bayesian pipelines",
	Long: `valska evaluates Bayesian Null-Test Evidence Ratios (BaNTER) over
completed sampler runs and keeps the surrounding Python package honest.

The validation side reads the log-evidences that MultiNest/PolyChord left in
chain directories, forms Bayes factors between foreground+EoR and
foreground-only analyses, and reports PASS/FAIL per beam perturbation level.
The inference itself always happens elsewhere (BayesEoR and its samplers);
valska only judges the artifacts.

The task side runs the package hygiene targets (format, lint, test, build,
publish, scan and the notebook variants) against the configured Python tree.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if workspace == "" {
			workspace, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to determine workspace: %w", err)
			}
		}
		if err := logging.Initialize(workspace); err != nil {
			logger.Warn("Debug logging unavailable", zap.Error(err))
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// pathManager builds the PathManager from config, anchored at the workspace
// when base_dir is relative.
func pathManager() (*chains.PathManager, error) {
	base := cfg.Paths.BaseDir
	if base == "" || base == "." {
		base = workspace
	}
	return chains.NewPathManager(base, cfg.Paths.ChainsDir, cfg.Paths.DataDir, cfg.Paths.ResultsDir)
}

// loadCatalog resolves the catalog path against the base dir and loads it.
func loadCatalog(pm *chains.PathManager) (chains.Catalog, error) {
	path := cfg.Paths.Catalog
	if path == "" {
		path = "config/paths.yaml"
	}
	if !os.IsPathSeparator(path[0]) {
		path = pm.BaseDir() + string(os.PathSeparator) + path
	}
	return chains.LoadCatalog(path)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".valska/config.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Minute, "Operation timeout")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(evidenceCmd)
	rootCmd.AddCommand(perturbationsCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
