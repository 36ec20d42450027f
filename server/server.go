// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the geo query engine and region catalog over a
// small JSON API.
package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/query"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/regions"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
	"github.com/gin-gonic/gin"
)

// Server answers location and region lookups.
type Server struct {
	engine  *query.Engine
	catalog *regions.Catalog
}

// NewServer wires the API to its engine and catalog.
func NewServer(engine *query.Engine, catalog *regions.Catalog) *Server {
	return &Server{
		engine:  engine,
		catalog: catalog,
	}
}

// Router builds the gin router. Exposed separately so tests can serve
// requests without binding a port.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/api/health", s.health)
	r.GET("/api/locations/radius", s.locationsByRadius)
	r.GET("/api/locations/bbox", s.locationsByBbox)
	r.GET("/api/regions/:code", s.regionBounds)

	return r
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type locationWithDistance struct {
	query.LocationRecord
	DistanceMiles float64 `json:"distance_miles"`
}

func floatParam(ctx *gin.Context, name string) (float64, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": name + " query parameter is required"})

		return 0, false
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a number"})

		return 0, false
	}

	return v, true
}

func writeQueryError(ctx *gin.Context, err error) {
	var verr *spatial.ValidationError
	if errors.As(err, &verr) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})

		return
	}

	ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (s *Server) locationsByRadius(ctx *gin.Context) {
	lat, ok := floatParam(ctx, "latitude")
	if !ok {
		return
	}

	lng, ok := floatParam(ctx, "longitude")
	if !ok {
		return
	}

	radius, ok := floatParam(ctx, "radius")
	if !ok {
		return
	}

	filters := query.Filters{Org: ctx.Query("org")}

	results, err := s.engine.FilterByRadius(spatial.Point{Lat: lat, Lng: lng}, radius, filters)
	if err != nil {
		writeQueryError(ctx, err)

		return
	}

	out := make([]locationWithDistance, 0, len(results))
	for _, res := range results {
		out = append(out, locationWithDistance{
			LocationRecord: *res.Record,
			DistanceMiles:  res.DistanceMiles,
		})
	}

	ctx.JSON(http.StatusOK, out)
}

func (s *Server) locationsByBbox(ctx *gin.Context) {
	north, ok := floatParam(ctx, "north")
	if !ok {
		return
	}

	south, ok := floatParam(ctx, "south")
	if !ok {
		return
	}

	east, ok := floatParam(ctx, "east")
	if !ok {
		return
	}

	west, ok := floatParam(ctx, "west")
	if !ok {
		return
	}

	box := spatial.BoundingBox{North: north, South: south, East: east, West: west, Name: "query"}
	filters := query.Filters{Org: ctx.Query("org")}

	records, err := s.engine.FilterByBbox(box, filters)
	if err != nil {
		writeQueryError(ctx, err)

		return
	}

	out := make([]*query.LocationRecord, 0, len(records))
	out = append(out, records...)

	ctx.JSON(http.StatusOK, out)
}

func (s *Server) regionBounds(ctx *gin.Context) {
	bounds, err := s.catalog.BoundsFor(ctx.Param("code"))
	if err != nil {
		var nferr *regions.NotFoundError
		if errors.As(err, &nferr) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": nferr.Error()})

			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, bounds)
}
