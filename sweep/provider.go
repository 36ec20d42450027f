// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package sweep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/utils/httputils"
)

// RawRecord is a location listing as returned by the external directory.
// The ID is an opaque provider identifier and may be absent.
type RawRecord struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point returns the record coordinates.
func (r *RawRecord) Point() spatial.Point {
	return spatial.Point{Lat: r.Latitude, Lng: r.Longitude}
}

// Provider is an external search API whose single response is silently
// truncated at a fixed cap.
type Provider interface {
	// Search returns the records within radiusMiles of center.
	Search(ctx context.Context, center spatial.Point, radiusMiles float64) ([]RawRecord, error)
}

// ProviderOptions configures the HTTP provider client.
type ProviderOptions struct {
	BaseURL             string
	UserAgent           string
	EnableHTTPTrace     bool
	EnableHTTPBodyTrace bool
}

// HTTPProvider queries a JSON search endpoint.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a provider with the usual transport chain.
func NewHTTPProvider(options *ProviderOptions) *HTTPProvider {
	if options == nil {
		options = &ProviderOptions{}
	}

	var httpLogWriter io.Writer
	if options.EnableHTTPTrace {
		httpLogWriter = os.Stderr
	}

	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		MaxConnsPerHost:       4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		DisableKeepAlives:     false,
		DisableCompression:    false,
	}

	loggingTransport := &httputils.LoggingRoundTripper{
		Writer:    httpLogWriter,
		DumpBody:  options.EnableHTTPBodyTrace,
		Transport: transport,
	}

	userAgent := "pantry-pirate-radio/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	headerTransport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "application/json",
		},
		Transport: loggingTransport,
	}

	return &HTTPProvider{
		baseURL: strings.TrimRight(options.BaseURL, "/"),
		client: &http.Client{
			Timeout:   60 * time.Second,
			Transport: headerTransport,
		},
	}
}

// Search implements Provider against GET <base>/locations/search.
func (p *HTTPProvider) Search(
	ctx context.Context,
	center spatial.Point,
	radiusMiles float64,
) (ret []RawRecord, err error) {
	u, err := url.Parse(p.baseURL + "/locations/search")
	if err != nil {
		return nil, fmt.Errorf("parsing provider url: %w", err)
	}

	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(center.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(center.Lng, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(radiusMiles, 'f', -1, 64))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		typ := ErrorTypeNetworkError
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			typ = ErrorTypeTimeout
		}

		return nil, &ProviderError{Type: typ, Message: "calling search provider", Err: err}
	}

	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing resp.Body: %w", cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	r, err := httputils.AsJSONReader(resp)
	if err != nil {
		return nil, &ProviderError{
			Type:    ErrorTypeUnknown,
			Message: "reading search response",
			Err:     err,
		}
	}

	var records []RawRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, &ProviderError{
			Type:    ErrorTypeUnknown,
			Message: "decoding search response",
			Err:     err,
		}
	}

	return records, nil
}
