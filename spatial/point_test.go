// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoint(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid", 40.7128, -74.0060, false},
		{"north pole", 90, 0, false},
		{"south pole", -90, 0, false},
		{"lat too high", 90.01, 0, true},
		{"lat too low", -91, 0, true},
		{"lng too high", 0, 180.5, true},
		{"lng too low", 0, -181, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p, err := NewPoint(test.lat, test.lng)
			if test.wantErr {
				var verr *ValidationError

				require.Error(t, err)
				assert.True(t, errors.As(err, &verr))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.lat, p.Lat)
			assert.Equal(t, test.lng, p.Lng)
		})
	}
}

func TestHaversineMiles_Identity(t *testing.T) {
	p := Point{Lat: 40.7128, Lng: -74.0060}
	assert.InDelta(t, 0, HaversineMiles(p, p), 1e-9)
}

func TestHaversineMiles_Symmetry(t *testing.T) {
	a := Point{Lat: 40.7128, Lng: -74.0060} // New York
	b := Point{Lat: 39.9526, Lng: -75.1652} // Philadelphia

	d1 := HaversineMiles(a, b)
	d2 := HaversineMiles(b, a)

	assert.Equal(t, d1, d2)
	assert.Positive(t, d1)
	// NY to Philadelphia is roughly 80 miles
	assert.InDelta(t, 80, d1, 5)
}

func TestMilesToLatDegrees(t *testing.T) {
	assert.InDelta(t, 1.0, MilesToLatDegrees(69), 1e-9)
	assert.InDelta(t, 0.5, MilesToLatDegrees(34.5), 1e-9)
}

func TestMilesToLonDegrees(t *testing.T) {
	// At the equator one longitude degree is ~69 miles
	d, err := MilesToLonDegrees(69, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d, 1e-9)

	// Degrees shrink with latitude, so more degrees per mile
	d45, err := MilesToLonDegrees(69, 45)
	require.NoError(t, err)
	assert.InDelta(t, 1/math.Cos(45*math.Pi/180), d45, 1e-9)
	assert.Greater(t, d45, d)
}

func TestMilesToLonDegrees_PoleGuard(t *testing.T) {
	_, err := MilesToLonDegrees(10, 89.95)
	require.Error(t, err)

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestPoint_ScanValue(t *testing.T) {
	p := Point{Lat: -34.9011, Lng: -56.1645}

	v, err := p.Value()
	require.NoError(t, err)
	assert.Equal(t, "POINT(-56.164500 -34.901100)", v)

	var scanned Point
	require.NoError(t, scanned.Scan([]byte("POINT (-56.1645 -34.9011)")))
	assert.InDelta(t, p.Lat, scanned.Lat, 1e-9)
	assert.InDelta(t, p.Lng, scanned.Lng, 1e-9)

	require.NoError(t, scanned.Scan(map[string]interface{}{"x": -74.0, "y": 40.0}))
	assert.Equal(t, Point{Lat: 40.0, Lng: -74.0}, scanned)

	assert.Error(t, scanned.Scan(42))
}
