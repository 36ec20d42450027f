// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/geocode"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/query"
	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"
)

var geocodeOptions struct {
	DbPath string
	State  string
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve coordinates for stored records",
}

var geocodeBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Geocode every record missing coordinates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		apiKey, err := geocode.ResolveAPIKey(cmd.Context())
		if err != nil {
			return fmt.Errorf("resolving Google Maps API key: %w", err)
		}

		db, err := sql.Open("duckdb", filepath.Join(geocodeOptions.DbPath, "ppr.duckdb"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		repo := query.NewLocationRepository(db)
		if err := repo.CreateSchema(); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}

		_, err = geocode.Backfill(
			cmd.Context(),
			repo,
			geocode.NewGoogleMapsGeocoder(apiKey),
			geocodeOptions.State,
		)

		return err
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
	geocodeCmd.AddCommand(geocodeBackfillCmd)
	geocodeCmd.PersistentFlags().StringVar(
		&geocodeOptions.DbPath,
		"db-path",
		"db",
		"Directory holding the location database",
	)
	geocodeBackfillCmd.PersistentFlags().StringVar(
		&geocodeOptions.State,
		"state",
		"",
		"Two letter state code used to bias the geocoder",
	)
}
