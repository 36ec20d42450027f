// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package query

import (
	"fmt"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
)

// Engine filters stored location points by radius or bounding box through a
// backend chosen once at construction.
type Engine struct {
	backend SpatialBackend
}

// NewEngine wires the engine to its backend.
func NewEngine(backend SpatialBackend) *Engine {
	return &Engine{backend: backend}
}

// FilterByRadius returns records within radiusMiles of center, narrowed by
// filters. Inputs are validated before the backend runs; a validation
// failure means no partial execution happened.
func (e *Engine) FilterByRadius(center spatial.Point, radiusMiles float64, filters Filters) ([]Result, error) {
	if _, err := spatial.NewPoint(center.Lat, center.Lng); err != nil {
		return nil, err
	}

	if radiusMiles <= 0 {
		return nil, &spatial.ValidationError{
			Field:   "radius",
			Message: fmt.Sprintf("must be positive, got %f", radiusMiles),
		}
	}

	results, err := e.backend.Radius(center, radiusMiles)
	if err != nil {
		return nil, fmt.Errorf("radius query: %w", err)
	}

	if filters == (Filters{}) {
		return results, nil
	}

	filtered := results[:0]

	for _, res := range results {
		if filters.matches(res.Record) {
			filtered = append(filtered, res)
		}
	}

	return filtered, nil
}

// FilterByBbox returns records inside the box, narrowed by filters.
func (e *Engine) FilterByBbox(box spatial.BoundingBox, filters Filters) ([]*LocationRecord, error) {
	validated, err := spatial.NewBoundingBox(box.Name, box.North, box.South, box.East, box.West)
	if err != nil {
		return nil, err
	}

	records, err := e.backend.Bbox(validated)
	if err != nil {
		return nil, fmt.Errorf("bbox query: %w", err)
	}

	if filters == (Filters{}) {
		return records, nil
	}

	filtered := records[:0]

	for _, r := range records {
		if filters.matches(r) {
			filtered = append(filtered, r)
		}
	}

	return filtered, nil
}
