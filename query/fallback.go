// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package query

import (
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
)

// FallbackLonScale is the fixed longitude-degree scaling used by the
// analytic backend's box prefilter instead of cos(queryLatitude). 0.7
// matches cos at ~45.6°N; below that latitude the prefilter box is wider
// than needed, which keeps the backend over-inclusive. Overridable for
// review; see FallbackBackend.
var FallbackLonScale = 0.7

// FallbackBackend answers queries analytically when no spatial index is
// available. Radius queries prefilter with an axis-aligned box sized by
// FallbackLonScale, so they over-include near box corners relative to the
// true radius but never under-include. Distances reported on results are
// exact haversine values; inclusion is decided by the box alone.
type FallbackBackend struct {
	records []*LocationRecord
}

// NewFallbackBackend wraps the located records in store order.
func NewFallbackBackend(records []*LocationRecord) *FallbackBackend {
	return &FallbackBackend{records: located(records)}
}

// Radius returns records whose coordinates fall in the prefilter box, in
// store order, each with its exact distance for display.
func (b *FallbackBackend) Radius(center spatial.Point, radiusMiles float64) ([]Result, error) {
	latDelta := radiusMiles / spatial.MilesPerLatDegree
	lonDelta := radiusMiles / (spatial.MilesPerLatDegree * FallbackLonScale)

	box := spatial.BoundingBox{
		North: center.Lat + latDelta,
		South: center.Lat - latDelta,
		East:  center.Lng + lonDelta,
		West:  center.Lng - lonDelta,
	}

	var results []Result

	for _, r := range b.records {
		if box.Contains(*r.Point) {
			results = append(results, Result{
				Record:        r,
				DistanceMiles: spatial.HaversineMiles(center, *r.Point),
			})
		}
	}

	return results, nil
}

// Bbox returns records inside the box in store order.
func (b *FallbackBackend) Bbox(box spatial.BoundingBox) ([]*LocationRecord, error) {
	var results []*LocationRecord

	for _, r := range b.records {
		if box.Contains(*r.Point) {
			results = append(results, r)
		}
	}

	return results, nil
}
