package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"valska/internal/chains"
)

// perturbationsCmd lists the sweep cases the catalog supports
var perturbationsCmd = &cobra.Command{
	Use:   "perturbations",
	Short: "List perturbation levels with paired FgEoR/FgOnly chains",
	RunE:  runPerturbations,
}

func runPerturbations(cmd *cobra.Command, args []string) error {
	pm, err := pathManager()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(pm)
	if err != nil {
		return err
	}

	all, negative, positive := chains.AvailableLevels(catalog)
	if len(all) == 0 {
		fmt.Println("No paired perturbation levels in catalog")
		return nil
	}

	fmt.Printf("%d perturbation level(s): %d negative, %d positive\n",
		len(all), len(negative), len(positive))
	for _, level := range all {
		fmt.Printf("  %-10s (|%g| pp)\n", level.Raw, level.Magnitude)
	}
	return nil
}
