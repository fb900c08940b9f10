package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"valska/internal/evidence"
)

var (
	model1Name string
	model2Name string
	fileRoot   string
)

// evidenceCmd compares two chain directories
var evidenceCmd = &cobra.Command{
	Use:   "evidence [chain-dir-1] [chain-dir-2]",
	Short: "Compute the Bayes factor between two completed sampler runs",
	Long: `Reads the global log-evidence from each chain directory's stats file
and reports ln(Z1/Z2) with a Jeffreys-scale interpretation. The first
directory is the numerator model.

Example:
  valska evidence chains/v5d0/GSM_FgEoR_-1e-3pp/MN-.../ chains/v5d0/GSM_FgOnly_-1e-3pp/MN-.../`,
	Args: cobra.ExactArgs(2),
	RunE: runEvidence,
}

func init() {
	evidenceCmd.Flags().StringVar(&model1Name, "model1", "Model 1", "Display name of the first model")
	evidenceCmd.Flags().StringVar(&model2Name, "model2", "Model 2", "Display name of the second model")
	evidenceCmd.Flags().StringVar(&fileRoot, "file-root", "", "Sampler file root inside the chain dirs (default from config)")
}

func runEvidence(cmd *cobra.Command, args []string) error {
	root := fileRoot
	if root == "" {
		root = cfg.Analysis.FileRoot
	}

	logger.Info("Comparing evidences",
		zap.String("model1", args[0]),
		zap.String("model2", args[1]))

	bf, err := evidence.Compare(args[0], args[1], root, model1Name, model2Name)
	if err != nil {
		return err
	}

	fmt.Printf("%s log evidence: %.6f +/- %.6f\n", bf.Model1, bf.Evidence1.LogZ, bf.Evidence1.Err)
	fmt.Printf("%s log evidence: %.6f +/- %.6f\n", bf.Model2, bf.Evidence2.LogZ, bf.Evidence2.Err)
	fmt.Printf("Log Bayes factor ln(%s/%s): %.6f\n", bf.Model1, bf.Model2, bf.LogBF)
	fmt.Printf("Interpretation: %s\n", bf.Interpretation)
	return nil
}
