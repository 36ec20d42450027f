// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"os"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/regions"
	"github.com/spf13/cobra"
)

var regionsDir string

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Inspect the region catalog",
}

var regionsShowCmd = &cobra.Command{
	Use:   "show <code>",
	Short: "Print the bounding box for a region code",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		catalog := regions.NewCatalog(regionsDir)

		bounds, err := catalog.BoundsFor(args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(bounds)
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
	regionsCmd.AddCommand(regionsShowCmd)
	rootCmd.PersistentFlags().StringVar(
		&regionsDir,
		"regions-dir",
		"regions",
		"Directory holding per-state GeoJSON boundary files",
	)
}
