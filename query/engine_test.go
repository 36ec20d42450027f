// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package query

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queryCenter sits in central New Jersey, well below the latitude where the
// fallback's fixed longitude scaling stops over-including.
var queryCenter = spatial.Point{Lat: 40.2206, Lng: -74.7597}

func fixtureRecords(t *testing.T) []*LocationRecord {
	t.Helper()

	rng := rand.New(rand.NewSource(7))
	records := make([]*LocationRecord, 0, 150)

	for i := 0; i < 150; i++ {
		p := spatial.Point{
			Lat: queryCenter.Lat + (rng.Float64()-0.5)*2,
			Lng: queryCenter.Lng + (rng.Float64()-0.5)*2,
		}
		records = append(records, &LocationRecord{
			ID:      fmt.Sprintf("loc-%03d", i),
			Name:    fmt.Sprintf("Pantry %d", i),
			Address: fmt.Sprintf("%d Main St", i),
			Org:     []string{"feeding-nj", "mutual-aid"}[i%2],
			Point:   &p,
		})
	}

	// one record without coordinates must never surface from a backend
	records = append(records, &LocationRecord{ID: "loc-nocoords", Name: "Unknown", Address: "?"})

	return records
}

func newBackends(t *testing.T) (*H3Backend, *FallbackBackend, []*LocationRecord) {
	t.Helper()

	records := fixtureRecords(t)

	indexed, err := NewH3Backend(records)
	require.NoError(t, err)

	return indexed, NewFallbackBackend(records), records
}

func TestEngine_FilterByRadius_IndexedWithinRadiusAndSorted(t *testing.T) {
	indexed, _, _ := newBackends(t)
	engine := NewEngine(indexed)

	results, err := engine.FilterByRadius(queryCenter, 30, Filters{})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, res := range results {
		assert.LessOrEqual(t, res.DistanceMiles, 30.0)
		assert.InDelta(t,
			spatial.HaversineMiles(queryCenter, *res.Record.Point),
			res.DistanceMiles, 1e-9,
			"reported distance must be the true haversine distance")
	}

	assert.True(t, sort.SliceIsSorted(results, func(i, j int) bool {
		return results[i].DistanceMiles < results[j].DistanceMiles
	}))
}

func TestEngine_FilterByRadius_IndexedFindsEverything(t *testing.T) {
	indexed, _, records := newBackends(t)
	engine := NewEngine(indexed)

	const radius = 40.0

	results, err := engine.FilterByRadius(queryCenter, radius, Filters{})
	require.NoError(t, err)

	got := make(map[string]bool, len(results))
	for _, res := range results {
		got[res.Record.ID] = true
	}

	for _, r := range records {
		if r.Point == nil {
			assert.False(t, got[r.ID])

			continue
		}

		if spatial.HaversineMiles(queryCenter, *r.Point) <= radius {
			assert.True(t, got[r.ID], "record %s within radius is missing", r.ID)
		}
	}
}

func TestEngine_FilterByRadius_FallbackOverIncludesOnly(t *testing.T) {
	indexed, fallback, _ := newBackends(t)

	const radius = 25.0

	exact, err := NewEngine(indexed).FilterByRadius(queryCenter, radius, Filters{})
	require.NoError(t, err)

	loose, err := NewEngine(fallback).FilterByRadius(queryCenter, radius, Filters{})
	require.NoError(t, err)

	looseIDs := make(map[string]bool, len(loose))
	for _, res := range loose {
		looseIDs[res.Record.ID] = true
	}

	// every true in-radius record is present; extras near corners are allowed
	for _, res := range exact {
		assert.True(t, looseIDs[res.Record.ID],
			"fallback under-included %s at %.2f miles", res.Record.ID, res.DistanceMiles)
	}

	assert.GreaterOrEqual(t, len(loose), len(exact))
}

func TestEngine_FilterByBbox_BackendsAgree(t *testing.T) {
	indexed, fallback, _ := newBackends(t)

	box := spatial.BoundingBox{
		North: queryCenter.Lat + 0.4,
		South: queryCenter.Lat - 0.4,
		East:  queryCenter.Lng + 0.5,
		West:  queryCenter.Lng - 0.5,
		Name:  "window",
	}

	a, err := NewEngine(indexed).FilterByBbox(box, Filters{})
	require.NoError(t, err)

	b, err := NewEngine(fallback).FilterByBbox(box, Filters{})
	require.NoError(t, err)

	require.Equal(t, len(b), len(a))

	for i := range a {
		assert.Equal(t, b[i].ID, a[i].ID)
		assert.True(t, box.Contains(*a[i].Point))
	}
}

func TestEngine_Filters(t *testing.T) {
	_, fallback, _ := newBackends(t)
	engine := NewEngine(fallback)

	results, err := engine.FilterByRadius(queryCenter, 50, Filters{Org: "feeding-nj"})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, res := range results {
		assert.Equal(t, "feeding-nj", res.Record.Org)
	}
}

func TestEngine_Validation(t *testing.T) {
	_, fallback, _ := newBackends(t)
	engine := NewEngine(fallback)

	var verr *spatial.ValidationError

	_, err := engine.FilterByRadius(spatial.Point{Lat: 95, Lng: 0}, 10, Filters{})
	require.Error(t, err)
	assert.True(t, errors.As(err, &verr))

	_, err = engine.FilterByRadius(queryCenter, 0, Filters{})
	require.Error(t, err)
	assert.True(t, errors.As(err, &verr))

	_, err = engine.FilterByBbox(spatial.BoundingBox{North: 40, South: 41, East: -71, West: -72}, Filters{})
	require.Error(t, err)
	assert.True(t, errors.As(err, &verr), "min > max on the latitude axis must be rejected")

	_, err = engine.FilterByBbox(spatial.BoundingBox{North: 41, South: 40, East: -72, West: -71}, Filters{})
	require.Error(t, err)
	assert.True(t, errors.As(err, &verr), "min > max on the longitude axis must be rejected")
}
