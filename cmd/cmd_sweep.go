// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/grid"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/query"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/regions"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/sweep"
	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"
)

var sweepOptions struct {
	ProviderURL         string
	Org                 string
	Region              string
	Radius              float64
	Overlap             float64
	Workers             int
	RequestsPerMinute   int
	MaxDepth            int
	ResultCap           int
	DbPath              string
	DryRun              bool
	EnableHTTPTrace     bool
	EnableHTTPBodyTrace bool
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep an external directory across a coverage grid",
	RunE: func(cmd *cobra.Command, _ []string) error {
		providerURL := sweepOptions.ProviderURL
		if providerURL == "" {
			providerURL = os.Getenv("PPR_PROVIDER_URL")
		}

		if providerURL == "" {
			return fmt.Errorf("no provider url: set --provider-url or PPR_PROVIDER_URL")
		}

		catalog := regions.NewCatalog(regionsDir)

		bounds, err := catalog.BoundsFor(sweepOptions.Region)
		if err != nil {
			return err
		}

		points, err := grid.Generate(bounds, sweepOptions.Radius, sweepOptions.Overlap)
		if err != nil {
			return err
		}

		log.Printf("Sweeping %d cells over %s", len(points), bounds.Name)

		provider := sweep.NewHTTPProvider(&sweep.ProviderOptions{
			BaseURL:             providerURL,
			UserAgent:           fmt.Sprintf("pantry-pirate-radio/%s (+https://github.com/For-The-Greater-Good)", Version),
			EnableHTTPTrace:     sweepOptions.EnableHTTPTrace,
			EnableHTTPBodyTrace: sweepOptions.EnableHTTPBodyTrace,
		})

		searcher := sweep.NewSearcher(provider, sweep.Options{
			ResultCap:         sweepOptions.ResultCap,
			MaxDepth:          sweepOptions.MaxDepth,
			Workers:           sweepOptions.Workers,
			RequestsPerMinute: sweepOptions.RequestsPerMinute,
		})

		start := time.Now()

		raw, metrics, err := searcher.Run(cmd.Context(), sweep.CellsFromGrid(points, sweepOptions.Radius))
		if err != nil {
			log.Printf("Sweep interrupted, keeping %d records collected so far - %v", len(raw), err)
		}

		log.Printf(
			"Sweep complete in %v - %d cells searched, %d split, %d provider errors, %d records seen, %d kept, %d duplicates",
			time.Since(start).Round(time.Second),
			metrics.CellsSearched,
			metrics.CellsSplit,
			metrics.ProviderErrors,
			metrics.RecordsSeen,
			metrics.RecordsKept,
			metrics.Duplicates,
		)

		if sweepOptions.DryRun {
			log.Printf("Dry run, discarding %d records", len(raw))

			return nil
		}

		return storeRecords(raw)
	},
}

func storeRecords(raw []sweep.RawRecord) error {
	if err := os.MkdirAll(sweepOptions.DbPath, 0o750); err != nil {
		return fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(sweepOptions.DbPath, "ppr.duckdb"))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	repo := query.NewLocationRepository(db)
	if err := repo.CreateSchema(); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	records := make([]*query.LocationRecord, 0, len(raw))

	for i := range raw {
		r := &raw[i]

		rec := &query.LocationRecord{
			ID:      sweep.Key(r),
			Name:    r.Name,
			Address: r.Address,
			Org:     sweepOptions.Org,
		}

		// directories report missing coordinates as 0,0
		if r.Latitude != 0 || r.Longitude != 0 {
			p := spatial.Point{Lat: r.Latitude, Lng: r.Longitude}
			rec.Point = &p
		}

		records = append(records, rec)
	}

	written, err := repo.Upsert(records)
	if err != nil {
		return fmt.Errorf("storing records: %w", err)
	}

	log.Printf("Stored %d records", written)

	return nil
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.PersistentFlags().StringVar(
		&sweepOptions.ProviderURL,
		"provider-url",
		"",
		"Base URL of the external search directory",
	)
	sweepCmd.PersistentFlags().StringVar(
		&sweepOptions.Org,
		"org",
		"",
		"Organization label stored with every record",
	)
	sweepCmd.PersistentFlags().StringVar(
		&sweepOptions.Region,
		"region",
		"US",
		"Region code to cover",
	)
	sweepCmd.PersistentFlags().Float64Var(
		&sweepOptions.Radius,
		"radius",
		80,
		"Search radius in miles around each grid point",
	)
	sweepCmd.PersistentFlags().Float64Var(
		&sweepOptions.Overlap,
		"overlap",
		0.30,
		"Fractional overlap between adjacent circles, in [0, 1)",
	)
	sweepCmd.PersistentFlags().IntVar(
		&sweepOptions.Workers,
		"workers",
		0,
		"Concurrent top-level cells. Defaults to the number of CPUs",
	)
	sweepCmd.PersistentFlags().IntVar(
		&sweepOptions.RequestsPerMinute,
		"rate",
		120,
		"Request budget per minute, 0 disables rate limiting",
	)
	sweepCmd.PersistentFlags().IntVar(
		&sweepOptions.MaxDepth,
		"max-depth",
		sweep.DefaultMaxDepth,
		"Subdivision limit for saturated cells",
	)
	sweepCmd.PersistentFlags().IntVar(
		&sweepOptions.ResultCap,
		"cap",
		sweep.DefaultResultCap,
		"Response size at which the provider truncates",
	)
	sweepCmd.PersistentFlags().StringVar(
		&sweepOptions.DbPath,
		"db-path",
		"db",
		"Directory holding the location database",
	)
	sweepCmd.PersistentFlags().BoolVar(
		&sweepOptions.DryRun,
		"dry-run",
		false,
		"Run the sweep without persisting anything",
	)
	sweepCmd.PersistentFlags().BoolVar(
		&sweepOptions.EnableHTTPTrace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	sweepCmd.PersistentFlags().BoolVar(
		&sweepOptions.EnableHTTPBodyTrace,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}
