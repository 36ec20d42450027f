// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves street addresses to coordinates for records
// that arrive from directories without location data.
package geocode

// Result represents a geocoding result from any provider.
type Result struct {
	Latitude    float64
	Longitude   float64
	Confidence  string // high, medium, low
	Provider    string
	DisplayName string
}

// Geocoder interface for different geocoding providers.
type Geocoder interface {
	Geocode(address string, state string) (*Result, error)
}
