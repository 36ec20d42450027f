// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package geocode

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/query"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	missing []*query.LocationRecord
	updated map[string]spatial.Point
}

func (f *fakeRepository) CreateSchema() error { return nil }

func (f *fakeRepository) Upsert([]*query.LocationRecord) (int, error) { return 0, nil }

func (f *fakeRepository) AllLocated() ([]*query.LocationRecord, error) { return nil, nil }

func (f *fakeRepository) MissingCoordinates() ([]*query.LocationRecord, error) {
	return f.missing, nil
}

func (f *fakeRepository) UpdatePoint(id string, p spatial.Point) error {
	if f.updated == nil {
		f.updated = make(map[string]spatial.Point)
	}

	f.updated[id] = p

	return nil
}

func (f *fakeRepository) Count() (int, error) { return len(f.missing), nil }

func (f *fakeRepository) DB() *sql.DB { return nil }

type scriptedGeocoder struct {
	results map[string]*Result
}

func (g *scriptedGeocoder) Geocode(address string, _ string) (*Result, error) {
	if r, ok := g.results[address]; ok {
		return r, nil
	}

	return nil, errors.New("no results found")
}

func TestBackfill(t *testing.T) {
	repo := &fakeRepository{
		missing: []*query.LocationRecord{
			{ID: "a", Name: "Pantry A", Address: "12 Oak St, Trenton"},
			{ID: "b", Name: "Pantry B", Address: "99 Elm Ave, Princeton"},
			{ID: "c", Name: "Pantry C", Address: "1 Vague Rd"},
			{ID: "d", Name: "Pantry D", Address: "unparseable"},
		},
	}

	geocoder := &scriptedGeocoder{
		results: map[string]*Result{
			"12 Oak St, Trenton": {
				Latitude: 40.2206, Longitude: -74.7597,
				Confidence: "high", Provider: "google_maps",
			},
			"99 Elm Ave, Princeton": {
				Latitude: 40.3573, Longitude: -74.6672,
				Confidence: "medium", Provider: "google_maps",
			},
			"1 Vague Rd": {
				Latitude: 39.0, Longitude: -74.5,
				Confidence: "low", Provider: "google_maps",
			},
		},
	}

	metrics, err := Backfill(context.Background(), repo, geocoder, "NJ")
	require.NoError(t, err)

	assert.Equal(t, 4, metrics.Attempted)
	assert.Equal(t, 2, metrics.Updated)
	assert.Equal(t, 1, metrics.Skipped, "low confidence results must not be stored")
	assert.Equal(t, 1, metrics.Failed)

	require.Len(t, repo.updated, 2)
	assert.InDelta(t, 40.2206, repo.updated["a"].Lat, 1e-9)
	assert.InDelta(t, -74.6672, repo.updated["b"].Lng, 1e-9)
}

func TestBackfill_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := &fakeRepository{
		missing: []*query.LocationRecord{
			{ID: "a", Name: "Pantry A", Address: "12 Oak St"},
		},
	}

	metrics, err := Backfill(ctx, repo, &scriptedGeocoder{}, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, metrics.Attempted)
	assert.Empty(t, repo.updated)
}
