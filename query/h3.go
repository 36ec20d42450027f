// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package query

import (
	"fmt"
	"math"
	"sort"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
	"github.com/uber/h3-go/v4"
)

// IndexResolution is the H3 resolution used for the in-memory cell index.
// Res 6 hexagons have an average edge of roughly two miles, a good
// compromise for city-to-county sized queries.
const IndexResolution = 6

// avgHexEdgeMiles is the approximate average hexagon edge length at
// IndexResolution, used to size grid disks. Underestimating it only widens
// the candidate set; the haversine filter below stays authoritative.
const avgHexEdgeMiles = 2.0

// H3Backend prunes candidates with an H3 cell index before computing exact
// distances. Its distances are authoritative.
type H3Backend struct {
	records []*LocationRecord
	cells   map[h3.Cell][]int // record index in store order per cell
}

// NewH3Backend indexes the located records. Store order is preserved for
// tie-breaking.
func NewH3Backend(records []*LocationRecord) (*H3Backend, error) {
	backend := &H3Backend{
		records: located(records),
		cells:   make(map[h3.Cell][]int),
	}

	for i, r := range backend.records {
		cell, err := h3.LatLngToCell(h3.NewLatLng(r.Point.Lat, r.Point.Lng), IndexResolution)
		if err != nil {
			return nil, fmt.Errorf("indexing %q: %w", r.ID, err)
		}

		backend.cells[cell] = append(backend.cells[cell], i)
	}

	return backend, nil
}

// diskSize returns the grid-disk ring count needed to cover a distance in
// miles, deliberately generous.
func diskSize(miles float64) int {
	return int(math.Ceil(miles/avgHexEdgeMiles)) + 2
}

func (b *H3Backend) candidates(center spatial.Point, reachMiles float64) ([]int, error) {
	origin, err := h3.LatLngToCell(h3.NewLatLng(center.Lat, center.Lng), IndexResolution)
	if err != nil {
		return nil, fmt.Errorf("locating query origin: %w", err)
	}

	disk, err := h3.GridDisk(origin, diskSize(reachMiles))
	if err != nil {
		return nil, fmt.Errorf("expanding grid disk: %w", err)
	}

	var idx []int
	for _, cell := range disk {
		idx = append(idx, b.cells[cell]...)
	}

	sort.Ints(idx) // back to store order

	return idx, nil
}

// Radius returns every record with true distance ≤ radiusMiles, ascending by
// distance, ties broken by store order.
func (b *H3Backend) Radius(center spatial.Point, radiusMiles float64) ([]Result, error) {
	idx, err := b.candidates(center, radiusMiles)
	if err != nil {
		return nil, err
	}

	var results []Result

	for _, i := range idx {
		r := b.records[i]

		d := spatial.HaversineMiles(center, *r.Point)
		if d <= radiusMiles {
			results = append(results, Result{Record: r, DistanceMiles: d})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceMiles < results[j].DistanceMiles
	})

	return results, nil
}

// Bbox returns records inside the box in store order.
func (b *H3Backend) Bbox(box spatial.BoundingBox) ([]*LocationRecord, error) {
	center := box.Center()

	// reach from the center to the farthest corner; the southern corners can
	// be farther than the northern ones because longitude miles grow toward
	// the equator
	reach := math.Max(
		spatial.HaversineMiles(center, spatial.Point{Lat: box.North, Lng: box.East}),
		spatial.HaversineMiles(center, spatial.Point{Lat: box.South, Lng: box.East}),
	)

	idx, err := b.candidates(center, reach)
	if err != nil {
		return nil, err
	}

	var results []*LocationRecord

	for _, i := range idx {
		if box.Contains(*b.records[i].Point) {
			results = append(results, b.records[i])
		}
	}

	return results, nil
}
