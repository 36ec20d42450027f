// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package regions maps 2-letter region codes to named bounding boxes. The
// continental-US box is a built-in constant; state boxes are derived once
// from on-disk GeoJSON polygon boundary files by taking vertex min/max.
package regions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
)

// ContinentalUS covers the lower 48 states.
var ContinentalUS = spatial.BoundingBox{
	North: 49.384358,
	South: 24.396308,
	East:  -66.885444,
	West:  -124.848974,
	Name:  "Continental US",
}

// Catalog resolves region codes against a directory of boundary files. Safe
// for concurrent readers; derived boxes are cached after the first lookup.
type Catalog struct {
	dir string

	mu    sync.RWMutex
	cache map[string]spatial.BoundingBox
}

// NewCatalog creates a catalog reading boundary files from dir. Each state
// is expected at <dir>/<code>.json (lowercase code).
func NewCatalog(dir string) *Catalog {
	return &Catalog{
		dir:   dir,
		cache: make(map[string]spatial.BoundingBox),
	}
}

// BoundsFor resolves a 2-letter, case-insensitive region code. "US" resolves
// to the built-in continental box. Unknown codes return a NotFoundError and
// malformed boundary files an ExtractionError.
func (c *Catalog) BoundsFor(code string) (spatial.BoundingBox, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if len(normalized) != 2 {
		return spatial.BoundingBox{}, &NotFoundError{Code: code}
	}

	if normalized == "US" {
		return ContinentalUS, nil
	}

	c.mu.RLock()
	box, ok := c.cache[normalized]
	c.mu.RUnlock()

	if ok {
		return box, nil
	}

	box, err := c.deriveBounds(normalized)
	if err != nil {
		return spatial.BoundingBox{}, err
	}

	c.mu.Lock()
	c.cache[normalized] = box
	c.mu.Unlock()

	return box, nil
}

// boundary file layout: GeoJSON Feature or FeatureCollection carrying
// Polygon/MultiPolygon geometries.
type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type geoJSONFeature struct {
	Geometry geoJSONGeometry `json:"geometry"`
}

type geoJSONDocument struct {
	Type     string           `json:"type"`
	Geometry *geoJSONGeometry `json:"geometry"`
	Features []geoJSONFeature `json:"features"`
}

func (c *Catalog) deriveBounds(code string) (spatial.BoundingBox, error) {
	path := filepath.Join(c.dir, strings.ToLower(code)+".json")

	data, err := os.ReadFile(path) // #nosec G304 - boundary dir is provided by admin
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return spatial.BoundingBox{}, &NotFoundError{Code: code}
		}

		return spatial.BoundingBox{}, &ExtractionError{Code: code, Err: err}
	}

	var doc geoJSONDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return spatial.BoundingBox{}, &ExtractionError{Code: code, Err: fmt.Errorf("parsing boundary JSON: %w", err)}
	}

	var geometries []geoJSONGeometry

	if doc.Geometry != nil {
		geometries = append(geometries, *doc.Geometry)
	}

	for _, f := range doc.Features {
		geometries = append(geometries, f.Geometry)
	}

	north, east := math.Inf(-1), math.Inf(-1)
	south, west := math.Inf(1), math.Inf(1)
	vertices := 0

	for _, g := range geometries {
		if len(g.Coordinates) == 0 {
			continue
		}

		var nested any
		if err := json.Unmarshal(g.Coordinates, &nested); err != nil {
			return spatial.BoundingBox{}, &ExtractionError{Code: code, Err: fmt.Errorf("parsing coordinates: %w", err)}
		}

		if err := visitVertices(nested, func(lng, lat float64) {
			vertices++
			north = math.Max(north, lat)
			south = math.Min(south, lat)
			east = math.Max(east, lng)
			west = math.Min(west, lng)
		}); err != nil {
			return spatial.BoundingBox{}, &ExtractionError{Code: code, Err: err}
		}
	}

	if vertices == 0 {
		return spatial.BoundingBox{}, &ExtractionError{
			Code: code,
			Err:  errors.New("boundary file contains no polygon vertices"),
		}
	}

	box, err := spatial.NewBoundingBox(code, north, south, east, west)
	if err != nil {
		return spatial.BoundingBox{}, &ExtractionError{Code: code, Err: err}
	}

	return box, nil
}

// visitVertices walks the arbitrarily nested GeoJSON coordinate arrays and
// calls fn for every innermost [lng, lat] pair.
func visitVertices(v any, fn func(lng, lat float64)) error {
	arr, ok := v.([]any)
	if !ok {
		return fmt.Errorf("unexpected coordinate element %T", v)
	}

	if len(arr) == 0 {
		return nil
	}

	if _, leaf := arr[0].(float64); leaf {
		if len(arr) < 2 {
			return fmt.Errorf("coordinate pair has %d elements", len(arr))
		}

		lng, okLng := arr[0].(float64)
		lat, okLat := arr[1].(float64)

		if !okLng || !okLat {
			return errors.New("coordinate pair is not numeric")
		}

		fn(lng, lat)

		return nil
	}

	for _, child := range arr {
		if err := visitVertices(child, fn); err != nil {
			return err
		}
	}

	return nil
}
