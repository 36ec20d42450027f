// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package geocode

import (
	"context"
	"fmt"
	"log"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/query"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
)

// BackfillMetrics tracks statistics about one backfill pass.
type BackfillMetrics struct {
	Attempted int
	Updated   int
	Skipped   int
	Failed    int
}

// Merge combines two BackfillMetrics.
func (m *BackfillMetrics) Merge(o *BackfillMetrics) *BackfillMetrics {
	if o == nil {
		return m
	}

	m.Attempted += o.Attempted
	m.Updated += o.Updated
	m.Skipped += o.Skipped
	m.Failed += o.Failed

	return m
}

// Backfill geocodes every stored record that is missing coordinates and
// writes the resolved points back. Low-confidence results are skipped so
// a bad match never poisons the store. A failed record is logged and
// skipped; the pass continues.
func Backfill(
	ctx context.Context,
	repo query.LocationRepository,
	geocoder Geocoder,
	state string,
) (*BackfillMetrics, error) {
	missing, err := repo.MissingCoordinates()
	if err != nil {
		return nil, fmt.Errorf("listing records without coordinates: %w", err)
	}

	metrics := &BackfillMetrics{}

	for _, rec := range missing {
		if ctx.Err() != nil {
			return metrics, ctx.Err()
		}

		metrics.Attempted++

		result, err := geocoder.Geocode(rec.Address, state)
		if err != nil {
			metrics.Failed++
			log.Printf("Geocoding %q failed, skipping - %v", rec.ID, err)

			continue
		}

		if result.Confidence == "low" {
			metrics.Skipped++
			log.Printf("Geocoding %q returned a low confidence match (%s), skipping",
				rec.ID, result.DisplayName)

			continue
		}

		p, err := spatial.NewPoint(result.Latitude, result.Longitude)
		if err != nil {
			metrics.Failed++
			log.Printf("Geocoding %q returned out-of-range coordinates, skipping - %v", rec.ID, err)

			continue
		}

		if err := repo.UpdatePoint(rec.ID, p); err != nil {
			metrics.Failed++
			log.Printf("Storing coordinates for %q failed - %v", rec.ID, err)

			continue
		}

		metrics.Updated++
	}

	log.Printf("Backfill complete - %d attempted, %d updated, %d skipped, %d failed",
		metrics.Attempted, metrics.Updated, metrics.Skipped, metrics.Failed)

	return metrics, nil
}
