// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package sweep drives an external capped search API across a coverage
// grid, recursively quartering any cell that saturates the cap and
// deduplicating records across cells.
package sweep

import (
	"context"
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/grid"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

const (
	// DefaultResultCap is the observed provider truncation size.
	DefaultResultCap = 1000

	// DefaultMaxDepth bounds the subdivision recursion. Records past the
	// cap at max depth are silently lost.
	DefaultMaxDepth = 3
)

// Cell is one search unit: a circle to query, possibly subdivided. Cells
// live only within a single Run invocation.
type Cell struct {
	Center      spatial.Point
	RadiusMiles float64
	Depth       int
}

// split quarters the cell along the NW/NE/SW/SE diagonals. The offset
// uses the latitude degree scale on both axes; subdivision only needs
// eventual coverage, not exact quadrant geometry.
func (c Cell) split() [4]Cell {
	half := c.RadiusMiles / 2
	offset := spatial.MilesToLatDegrees(half)

	quadrants := [4][2]float64{
		{+offset, -offset}, // NW
		{+offset, +offset}, // NE
		{-offset, -offset}, // SW
		{-offset, +offset}, // SE
	}

	var children [4]Cell

	for i, q := range quadrants {
		children[i] = Cell{
			Center: spatial.Point{
				Lat: c.Center.Lat + q[0],
				Lng: c.Center.Lng + q[1],
			},
			RadiusMiles: half,
			Depth:       c.Depth + 1,
		}
	}

	return children
}

// CellsFromGrid converts generated grid points into top-level search cells.
func CellsFromGrid(points []grid.Point, radiusMiles float64) []Cell {
	cells := make([]Cell, 0, len(points))

	for _, p := range points {
		cells = append(cells, Cell{
			Center:      spatial.Point{Lat: p.Latitude, Lng: p.Longitude},
			RadiusMiles: radiusMiles,
		})
	}

	return cells
}

// Options configures a sweep run.
type Options struct {
	ResultCap         int // provider truncation size, defaults to DefaultResultCap
	MaxDepth          int // subdivision limit, defaults to DefaultMaxDepth
	Workers           int // concurrent top-level cells, defaults to NumCPU
	RequestsPerMinute int // 0 disables rate limiting
}

// Metrics tracks statistics about one sweep run.
type Metrics struct {
	CellsSearched  int
	CellsSplit     int
	ProviderErrors int
	RecordsSeen    int
	RecordsKept    int
	Duplicates     int
}

// Merge combines two Metrics.
func (m *Metrics) Merge(o *Metrics) *Metrics {
	if o == nil {
		return m
	}

	m.CellsSearched += o.CellsSearched
	m.CellsSplit += o.CellsSplit
	m.ProviderErrors += o.ProviderErrors
	m.RecordsSeen += o.RecordsSeen
	m.RecordsKept += o.RecordsKept
	m.Duplicates += o.Duplicates

	return m
}

// Searcher runs the adaptive coverage search against one provider.
type Searcher struct {
	provider Provider
	limiter  *TokenBucket
	options  Options
}

// NewSearcher creates a searcher, applying option defaults.
func NewSearcher(provider Provider, options Options) *Searcher {
	if options.ResultCap <= 0 {
		options.ResultCap = DefaultResultCap
	}

	if options.MaxDepth <= 0 {
		options.MaxDepth = DefaultMaxDepth
	}

	if options.Workers <= 0 {
		options.Workers = runtime.NumCPU()
	}

	var limiter *TokenBucket
	if options.RequestsPerMinute > 0 {
		limiter = NewTokenBucket(options.RequestsPerMinute)
	}

	return &Searcher{
		provider: provider,
		limiter:  limiter,
		options:  options,
	}
}

// Run searches every top-level cell concurrently, subdividing saturated
// ones sequentially, and returns the deduplicated records in cell order.
// A failed cell is logged and skipped, so results are partial but usable.
// On cancellation the records collected so far are returned along with
// the context error.
func (s *Searcher) Run(ctx context.Context, cells []Cell) ([]RawRecord, *Metrics, error) {
	perCell := make([][]RawRecord, len(cells))
	perMetrics := make([]*Metrics, len(cells))

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(cells),
			progressbar.OptionSetDescription("Sweeping"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var wg sync.WaitGroup

	semaphore := make(chan struct{}, s.options.Workers)

	for i, cell := range cells {
		wg.Add(1)

		go func(i int, cell Cell) {
			defer wg.Done()
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			// cancellation stops issuing further cells
			if ctx.Err() != nil {
				return
			}

			metrics := &Metrics{}
			perCell[i] = s.searchCell(ctx, cell, metrics)
			perMetrics[i] = metrics

			if bar != nil {
				if err := bar.Add(1); err != nil {
					log.Printf("updating progress bar: %v", err)
				}
			}
		}(i, cell)
	}

	wg.Wait()

	// single-writer aggregation: dedup after all cells return, in cell
	// order, so repeated runs over the same data are byte-identical
	total := &Metrics{}
	deduper := NewDeduper()

	var records []RawRecord

	for i, batch := range perCell {
		total.Merge(perMetrics[i])

		for _, rec := range batch {
			if deduper.Admit(&rec) {
				records = append(records, rec)
			} else {
				total.Duplicates++
			}
		}
	}

	total.RecordsKept = len(records)

	return records, total, ctx.Err()
}

// searchCell queries one cell, quartering it when the response hits the
// provider cap and depth allows. Children are searched sequentially to
// bound burst load; their concatenated results replace the truncated
// parent response.
func (s *Searcher) searchCell(ctx context.Context, cell Cell, metrics *Metrics) []RawRecord {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil
	}

	records, err := s.provider.Search(ctx, cell.Center, cell.RadiusMiles)
	metrics.CellsSearched++

	if err != nil {
		metrics.ProviderErrors++
		log.Printf("Search failed for cell %.4f,%.4f at depth %d, skipping - %v",
			cell.Center.Lat, cell.Center.Lng, cell.Depth, err)

		return nil
	}

	metrics.RecordsSeen += len(records)

	if len(records) < s.options.ResultCap || cell.Depth >= s.options.MaxDepth {
		return records
	}

	metrics.CellsSplit++

	var merged []RawRecord

	for _, child := range cell.split() {
		if ctx.Err() != nil {
			break
		}

		merged = append(merged, s.searchCell(ctx, child, metrics)...)
	}

	return merged
}
