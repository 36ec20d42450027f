// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"database/sql/driver"
	"fmt"
	"math"
)

// EarthRadiusMiles is the spherical-Earth radius used throughout. Geodesy at
// the ellipsoidal level is out of scope.
const EarthRadiusMiles = 3959.0

// MilesPerLatDegree is the (latitude-invariant) length of one degree of
// latitude in miles.
const MilesPerLatDegree = 69.0

// maxUsableLat is the latitude beyond which mile→longitude-degree conversion
// degenerates (cos approaches 0).
const maxUsableLat = 89.9

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewPoint builds a range-validated Point.
func NewPoint(lat, lng float64) (Point, error) {
	if lat < -90 || lat > 90 {
		return Point{}, &ValidationError{
			Field:   "latitude",
			Message: fmt.Sprintf("must be between -90 and 90, got %f", lat),
		}
	}

	if lng < -180 || lng > 180 {
		return Point{}, &ValidationError{
			Field:   "longitude",
			Message: fmt.Sprintf("must be between -180 and 180, got %f", lng),
		}
	}

	return Point{Lat: lat, Lng: lng}, nil
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Value implements the driver.Valuer interface for database serialization.
func (p Point) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (p *Point) Scan(value interface{}) error {
	if value == nil {
		p.Lat, p.Lng = 0, 0

		return nil
	}

	switch v := value.(type) {
	case []byte:
		// The format from DuckDB is "POINT (lng lat)"
		_, err := fmt.Sscanf(string(v), "POINT (%f %f)", &p.Lng, &p.Lat)

		return err
	case map[string]interface{}:
		x, okX := v["x"].(float64)
		y, okY := v["y"].(float64)

		if !okX || !okY {
			return fmt.Errorf("spatial: invalid map for point: expected 'x' and 'y' float64 fields, got %+v", v)
		}

		p.Lng = x
		p.Lat = y

		return nil
	default:
		return fmt.Errorf("spatial: unsupported type for Point scan: %T", value)
	}
}

// HaversineMiles calculates the great-circle distance between two points in
// miles. Non-negative, ~0 iff both points coincide, symmetric.
func HaversineMiles(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMiles * c
}

// MilesToLatDegrees converts a distance in miles to degrees of latitude.
func MilesToLatDegrees(miles float64) float64 {
	return miles / MilesPerLatDegree
}

// MilesToLonDegrees converts a distance in miles to degrees of longitude at
// the given latitude. Near the poles the conversion degenerates, so
// latitudes beyond ±89.9° are rejected.
func MilesToLonDegrees(miles, lat float64) (float64, error) {
	if math.Abs(lat) > maxUsableLat {
		return 0, &ValidationError{
			Field:   "latitude",
			Message: fmt.Sprintf("longitude spacing is undefined at %f", lat),
		}
	}

	return miles / (math.Cos(lat*math.Pi/180) * MilesPerLatDegree), nil
}

// ValidationError reports an out-of-range coordinate or a malformed bounding
// box. It fails fast and is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
