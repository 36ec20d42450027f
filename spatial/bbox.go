// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"
)

// BoundingBox is an axis-aligned box in degrees with a human-readable name.
// Invariant: North > South and East > West; boxes crossing the antimeridian
// are unsupported and rejected at construction.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
	Name  string  `json:"name"`
}

// NewBoundingBox builds a validated BoundingBox.
func NewBoundingBox(name string, north, south, east, west float64) (BoundingBox, error) {
	if _, err := NewPoint(north, east); err != nil {
		return BoundingBox{}, err
	}

	if _, err := NewPoint(south, west); err != nil {
		return BoundingBox{}, err
	}

	if north <= south {
		return BoundingBox{}, &ValidationError{
			Field:   "bounds",
			Message: fmt.Sprintf("north (%f) must be greater than south (%f)", north, south),
		}
	}

	if east <= west {
		return BoundingBox{}, &ValidationError{
			Field:   "bounds",
			Message: fmt.Sprintf("east (%f) must be greater than west (%f)", east, west),
		}
	}

	return BoundingBox{North: north, South: south, East: east, West: west, Name: name}, nil
}

// Center returns the geometric center of the box.
func (b BoundingBox) Center() Point {
	return Point{
		Lat: (b.North + b.South) / 2,
		Lng: (b.East + b.West) / 2,
	}
}

// Contains reports whether the point lies inside the box. Boundaries are
// inclusive.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.South && p.Lat <= b.North &&
		p.Lng >= b.West && p.Lng <= b.East
}

// ExpandByPercent grows the box by percent of its span on every side, clamped
// to valid coordinate ranges.
func (b BoundingBox) ExpandByPercent(percent float64) BoundingBox {
	latPad := (b.North - b.South) * percent / 100
	lngPad := (b.East - b.West) * percent / 100

	return BoundingBox{
		North: math.Min(b.North+latPad, 90),
		South: math.Max(b.South-latPad, -90),
		East:  math.Min(b.East+lngPad, 180),
		West:  math.Max(b.West-lngPad, -180),
		Name:  b.Name,
	}
}

// ClampTo returns the box restricted to the given region. The result never
// exceeds the region on any side.
func (b BoundingBox) ClampTo(region BoundingBox) BoundingBox {
	return BoundingBox{
		North: math.Min(b.North, region.North),
		South: math.Max(b.South, region.South),
		East:  math.Min(b.East, region.East),
		West:  math.Max(b.West, region.West),
		Name:  b.Name,
	}
}

// ClampPoint moves a point to the nearest position inside the box. Points
// already inside are returned unchanged.
func (b BoundingBox) ClampPoint(p Point) Point {
	return Point{
		Lat: math.Min(math.Max(p.Lat, b.South), b.North),
		Lng: math.Min(math.Max(p.Lng, b.West), b.East),
	}
}
