// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package grid produces overlapping lattices of sample points covering a
// bounding region, used as search-circle centers for ingestion sweeps.
package grid

import (
	"fmt"
	"math"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
)

// Point is a sample coordinate acting as the center of a fixed-radius search
// circle. Coordinates are rounded to 4 decimal places so labels are
// reproducible across runs.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
}

// ConfigurationError reports radius/overlap values that would keep the sweep
// from terminating or advancing. Rejected before any loop starts.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "grid: " + e.Message
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Generate produces an ordered lattice of points covering bounds so that
// circles of radiusMiles centered on the points leave no gaps. The overlap
// factor in [0, 1) shrinks the nominal spacing to guarantee circle overlap.
//
// Rows sweep latitude south→north and columns longitude west→east, both with
// an inclusive upper bound: the last row/column is emitted even when it
// overshoots the edge, so the northern and eastern edges are always covered.
// Output order is row-major and deterministic; identical inputs yield
// identical output.
func Generate(bounds spatial.BoundingBox, radiusMiles, overlap float64) ([]Point, error) {
	if radiusMiles <= 0 {
		return nil, &ConfigurationError{
			Message: fmt.Sprintf("radius must be positive, got %f", radiusMiles),
		}
	}

	if overlap < 0 || overlap >= 1 {
		return nil, &ConfigurationError{
			Message: fmt.Sprintf("overlap factor must be in [0, 1), got %f", overlap),
		}
	}

	spacing := radiusMiles * (1 - overlap)
	latStep := spatial.MilesToLatDegrees(spacing)

	var points []Point

	for lat := bounds.South; ; lat += latStep {
		lonStep, err := spatial.MilesToLonDegrees(spacing, math.Min(lat, 89.0))
		if err != nil {
			return nil, err
		}

		for lng := bounds.West; ; lng += lonStep {
			rlat, rlng := round4(lat), round4(lng)
			points = append(points, Point{
				Latitude:  rlat,
				Longitude: rlng,
				Name:      fmt.Sprintf("%s %.4f,%.4f", bounds.Name, rlat, rlng),
			})

			if lng >= bounds.East {
				break
			}
		}

		if lat >= bounds.North {
			break
		}
	}

	return points, nil
}
