// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package query

import (
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
)

// SpatialBackend is the capability interface behind the query engine. A
// backend is selected once at engine construction and never re-probed on the
// hot path.
type SpatialBackend interface {
	// Radius returns records within radiusMiles of center, each with its
	// distance. Ordering guarantees are backend-specific.
	Radius(center spatial.Point, radiusMiles float64) ([]Result, error)

	// Bbox returns records inside the box, in store order.
	Bbox(box spatial.BoundingBox) ([]*LocationRecord, error)
}

// located filters out records without coordinates, preserving store order.
func located(records []*LocationRecord) []*LocationRecord {
	out := make([]*LocationRecord, 0, len(records))

	for _, r := range records {
		if r.Point != nil {
			out = append(out, r)
		}
	}

	return out
}
