// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"path/filepath"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/query"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/regions"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/server"
	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"
)

var serveOptions struct {
	DbPath  string
	Backend string
	Addr    string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve location queries over HTTP",
	RunE: func(_ *cobra.Command, _ []string) error {
		db, err := sql.Open("duckdb", filepath.Join(serveOptions.DbPath, "ppr.duckdb"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		repo := query.NewLocationRepository(db)
		if err := repo.CreateSchema(); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}

		records, err := repo.AllLocated()
		if err != nil {
			return fmt.Errorf("loading located records: %w", err)
		}

		var backend query.SpatialBackend

		switch serveOptions.Backend {
		case "indexed":
			backend, err = query.NewH3Backend(records)
			if err != nil {
				return fmt.Errorf("building spatial index: %w", err)
			}
		case "fallback":
			backend = query.NewFallbackBackend(records)
		default:
			return fmt.Errorf("unknown backend %q, expected indexed or fallback", serveOptions.Backend)
		}

		log.Printf("Serving %d located records on %s using the %s backend",
			len(records), serveOptions.Addr, serveOptions.Backend)

		s := server.NewServer(query.NewEngine(backend), regions.NewCatalog(regionsDir))

		return s.Run(serveOptions.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.PersistentFlags().StringVar(
		&serveOptions.DbPath,
		"db-path",
		"db",
		"Directory holding the location database",
	)
	serveCmd.PersistentFlags().StringVar(
		&serveOptions.Backend,
		"backend",
		"indexed",
		"Query backend: indexed or fallback",
	)
	serveCmd.PersistentFlags().StringVar(
		&serveOptions.Addr,
		"addr",
		"localhost:8080",
		"Address to listen on",
	)
}
