// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/grid"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/regions"
	"github.com/spf13/cobra"
)

var gridOptions struct {
	Region  string
	Radius  float64
	Overlap float64
	Format  string
	Output  string
}

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Coverage grids for ingestion sweeps",
}

var gridGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an overlapping grid of search centers over a region",
	RunE: func(_ *cobra.Command, _ []string) error {
		catalog := regions.NewCatalog(regionsDir)

		bounds, err := catalog.BoundsFor(gridOptions.Region)
		if err != nil {
			return err
		}

		points, err := grid.Generate(bounds, gridOptions.Radius, gridOptions.Overlap)
		if err != nil {
			return err
		}

		out := os.Stdout

		if gridOptions.Output != "-" {
			f, err := os.Create(gridOptions.Output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()

			out = f
		}

		switch gridOptions.Format {
		case "json":
			err = grid.WriteJSON(out, points)
		case "csv":
			err = grid.WriteCSV(out, points)
		default:
			return fmt.Errorf("unknown format %q, expected json or csv", gridOptions.Format)
		}

		if err != nil {
			return err
		}

		log.Printf("Generated %d grid points covering %s", len(points), bounds.Name)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(gridCmd)
	gridCmd.AddCommand(gridGenerateCmd)
	gridCmd.PersistentFlags().StringVar(
		&gridOptions.Region,
		"region",
		"US",
		"Region code to cover",
	)
	gridCmd.PersistentFlags().Float64Var(
		&gridOptions.Radius,
		"radius",
		80,
		"Search radius in miles around each grid point",
	)
	gridCmd.PersistentFlags().Float64Var(
		&gridOptions.Overlap,
		"overlap",
		0.30,
		"Fractional overlap between adjacent circles, in [0, 1)",
	)
	gridGenerateCmd.PersistentFlags().StringVar(
		&gridOptions.Format,
		"format",
		"json",
		"Output format: json or csv",
	)
	gridGenerateCmd.PersistentFlags().StringVar(
		&gridOptions.Output,
		"output",
		"-",
		"Output file, - for stdout",
	)
}
