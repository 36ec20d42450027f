// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package grid

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteJSON serializes points as a JSON array of
// {latitude, longitude, name} objects.
func WriteJSON(w io.Writer, points []Point) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(points); err != nil {
		return fmt.Errorf("encoding grid points: %w", err)
	}

	return nil
}

// WriteCSV serializes points as CSV with a latitude,longitude,name header.
func WriteCSV(w io.Writer, points []Point) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"latitude", "longitude", "name"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, p := range points {
		record := []string{
			strconv.FormatFloat(p.Latitude, 'f', 4, 64),
			strconv.FormatFloat(p.Longitude, 'f', 4, 64),
			p.Name,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV record %q: %w", p.Name, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}

	return nil
}
