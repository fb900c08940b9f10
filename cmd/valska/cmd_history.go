package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"valska/internal/store"
)

var (
	historyLimit int
	historyRunID string
)

// historyCmd inspects recorded validation sweeps
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded validation sweeps",
	Long: `Shows sweeps recorded in the history database, newest first. Use --run
to print the per-case outcomes of one sweep.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Maximum number of runs to list")
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "Show the cases of a specific run ID")
}

func runHistory(cmd *cobra.Command, args []string) error {
	history, err := store.NewHistory(historyPath())
	if err != nil {
		return err
	}
	defer history.Close()

	if historyRunID != "" {
		return showRunCases(history, historyRunID)
	}

	runs, err := history.RecentRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded sweeps")
		return nil
	}

	fmt.Printf("%-36s  %-19s  %5s  %5s  %5s  %5s\n",
		"RUN", "RECORDED", "TOTAL", "PASS", "FAIL", "ERROR")
	for _, r := range runs {
		fmt.Printf("%-36s  %-19s  %5d  %5d  %5d  %5d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Total, r.Pass, r.Fail, r.Error)
	}
	return nil
}

func showRunCases(history *store.History, runID string) error {
	cases, err := history.RunCases(runID)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return fmt.Errorf("no cases recorded for run %s", runID)
	}

	fmt.Printf("%-12s  %-7s  %12s  %s\n", "PERTURBATION", "VERDICT", "LN BF", "INTERPRETATION")
	for _, c := range cases {
		logBF := "-"
		if c.LogBF.Valid {
			logBF = fmt.Sprintf("%.4f", c.LogBF.Float64)
		}
		detail := c.Interpretation
		if c.Error != "" {
			detail = c.Error
		}
		fmt.Printf("%-12s  %-7s  %12s  %s\n", c.Perturbation, c.Verdict, logBF, detail)
	}
	return nil
}
