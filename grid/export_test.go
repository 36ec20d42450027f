// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package grid

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportPoints = []Point{
	{Latitude: 41.0, Longitude: -72.0, Name: "test 41.0000,-72.0000"},
	{Latitude: 41.5072, Longitude: -71.1234, Name: "test 41.5072,-71.1234"},
}

func TestWriteJSON_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, exportPoints))

	var decoded []Point
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	if diff := cmp.Diff(exportPoints, decoded); diff != "" {
		t.Errorf("JSON export mismatch (-expected +got):\n%s", diff)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportPoints))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "latitude,longitude,name", lines[0])
	assert.Equal(t, `41.0000,-72.0000,"test 41.0000,-72.0000"`, lines[1])
	assert.Equal(t, `41.5072,-71.1234,"test 41.5072,-71.1234"`, lines[2])
}
