// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package sweep

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"testing"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/grid"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticProvider serves seeded records, truncating each response at a
// fixed cap the way the real directory does.
type syntheticProvider struct {
	mu      sync.Mutex
	calls   int
	cap     int
	fail    func(center spatial.Point) bool
	records []RawRecord
}

func (p *syntheticProvider) Search(
	_ context.Context,
	center spatial.Point,
	radiusMiles float64,
) ([]RawRecord, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.fail != nil && p.fail(center) {
		return nil, ClassifyHTTPError(http.StatusServiceUnavailable)
	}

	var out []RawRecord

	for _, r := range p.records {
		if spatial.HaversineMiles(center, r.Point()) <= radiusMiles {
			out = append(out, r)
			if len(out) == p.cap {
				break
			}
		}
	}

	return out, nil
}

func syntheticRecords(n int) []RawRecord {
	rng := rand.New(rand.NewSource(11))
	records := make([]RawRecord, 0, n)

	for i := 0; i < n; i++ {
		records = append(records, RawRecord{
			ID:        fmt.Sprintf("rec-%04d", i),
			Name:      fmt.Sprintf("Pantry %d", i),
			Address:   fmt.Sprintf("%d Main St", i),
			Latitude:  40 + rng.Float64(),
			Longitude: -75 + rng.Float64(),
		})
	}

	return records
}

func TestSearcher_CappedProviderSubdivides(t *testing.T) {
	const resultCap = 25

	records := syntheticRecords(5 * resultCap)

	bounds, err := spatial.NewBoundingBox("test", 41, 40, -74, -75)
	require.NoError(t, err)

	points, err := grid.Generate(bounds, 40, 0.3)
	require.NoError(t, err)
	require.NotEmpty(t, points)

	provider := &syntheticProvider{cap: resultCap, records: records}
	searcher := NewSearcher(provider, Options{ResultCap: resultCap, Workers: 4})

	got, metrics, err := searcher.Run(context.Background(), CellsFromGrid(points, 40))
	require.NoError(t, err)

	seen := make(map[string]bool, len(got))
	for _, rec := range got {
		assert.False(t, seen[rec.ID], "duplicate id %s in output", rec.ID)
		seen[rec.ID] = true
	}

	assert.GreaterOrEqual(t, len(got), resultCap,
		"subdivision must recover more than one capped response")
	assert.Equal(t, len(got), metrics.RecordsKept)
	assert.Positive(t, metrics.CellsSplit, "dense cells must have been quartered")
	assert.Positive(t, metrics.Duplicates, "overlapping cells must have re-seen records")
	assert.Greater(t, metrics.CellsSearched, len(points))
	assert.Zero(t, metrics.ProviderErrors)
}

func TestSearcher_DeterministicOutputOrder(t *testing.T) {
	records := syntheticRecords(60)

	bounds, err := spatial.NewBoundingBox("test", 41, 40, -74, -75)
	require.NoError(t, err)

	points, err := grid.Generate(bounds, 40, 0.3)
	require.NoError(t, err)

	cells := CellsFromGrid(points, 40)

	run := func() []RawRecord {
		provider := &syntheticProvider{cap: 1000, records: records}
		searcher := NewSearcher(provider, Options{Workers: 4})

		got, _, err := searcher.Run(context.Background(), cells)
		require.NoError(t, err)

		return got
	}

	assert.Equal(t, run(), run(), "repeated sweeps must emit identical order")
}

func TestSearcher_FailedCellIsSkipped(t *testing.T) {
	provider := &syntheticProvider{
		cap:     1000,
		records: syntheticRecords(50),
		fail: func(center spatial.Point) bool {
			return center.Lng < -74.5
		},
	}

	searcher := NewSearcher(provider, Options{Workers: 2})

	cells := []Cell{
		{Center: spatial.Point{Lat: 40.5, Lng: -74.75}, RadiusMiles: 30},
		{Center: spatial.Point{Lat: 40.5, Lng: -74.25}, RadiusMiles: 30},
	}

	got, metrics, err := searcher.Run(context.Background(), cells)
	require.NoError(t, err, "a failed cell must not abort the run")

	assert.NotEmpty(t, got)
	assert.Equal(t, 1, metrics.ProviderErrors)
	assert.Equal(t, 2, metrics.CellsSearched)
}

func TestSearcher_CancelledContextReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &syntheticProvider{cap: 1000, records: syntheticRecords(10)}
	searcher := NewSearcher(provider, Options{Workers: 1})

	cells := []Cell{
		{Center: spatial.Point{Lat: 40.5, Lng: -74.5}, RadiusMiles: 30},
	}

	got, metrics, err := searcher.Run(ctx, cells)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)
	assert.Zero(t, metrics.CellsSearched, "no cells issued after cancellation")
	assert.Zero(t, provider.calls)
}

func TestCellSplit(t *testing.T) {
	parent := Cell{Center: spatial.Point{Lat: 40, Lng: -74}, RadiusMiles: 20, Depth: 1}
	children := parent.split()

	offset := spatial.MilesToLatDegrees(10)

	for _, child := range children {
		assert.InDelta(t, 10, child.RadiusMiles, 1e-9)
		assert.Equal(t, 2, child.Depth)
		assert.InDelta(t, offset, absFloat(child.Center.Lat-parent.Center.Lat), 1e-9)
		assert.InDelta(t, offset, absFloat(child.Center.Lng-parent.Center.Lng), 1e-9)
	}

	// all four diagonals are distinct
	centers := make(map[spatial.Point]bool)
	for _, child := range children {
		centers[child.Center] = true
	}

	assert.Len(t, centers, 4)
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}

	return f
}
