// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package query answers proximity and bounding-box queries against stored
// food-assistance location points through two interchangeable backends: a
// spatial-index-accelerated one and an analytic fallback.
package query

import (
	"time"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
)

// LocationRecord is a stored food-assistance location. The query engine only
// reads it; ownership stays with the persistence layer. Point is nil for
// records whose listing carried no usable coordinates (candidates for
// geocoding backfill).
type LocationRecord struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Address   string         `json:"address"`
	Org       string         `json:"org,omitempty"`
	Point     *spatial.Point `json:"point,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
	H3Res6    int64          `json:"-"`
}

// Result pairs a record with its great-circle distance from a radius query
// center.
type Result struct {
	Record        *LocationRecord `json:"record"`
	DistanceMiles float64         `json:"distance_miles"`
}

// Filters narrows query results on non-spatial fields. Zero values match
// everything.
type Filters struct {
	Org string
}

func (f Filters) matches(r *LocationRecord) bool {
	return f.Org == "" || f.Org == r.Org
}
