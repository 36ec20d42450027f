// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package sweep

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ProviderError reports a failed external-API call for one search cell. It is
// caught per cell, logged, and never propagates: the enclosing search returns
// partial results.
type ProviderError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies provider failures.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit provider throttled the request.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded quota exhausted or access denied.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout connection or deadline timeout.
	ErrorTypeTimeout
	// ErrorTypeInvalidRequest the provider rejected the query.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError transport-level failure.
	ErrorTypeNetworkError
)

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRateLimitError reports whether the error is a provider throttle.
func IsRateLimitError(err error) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Type == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsTimeoutError reports whether the error is a timeout.
func IsTimeoutError(err error) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Type == ErrorTypeTimeout
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// ClassifyHTTPError maps an HTTP status to a ProviderError.
func ClassifyHTTPError(statusCode int) *ProviderError {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return &ProviderError{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusForbidden, http.StatusUnauthorized:
		return &ProviderError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "quota exceeded or access denied",
		}
	case http.StatusBadRequest:
		return &ProviderError{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
		}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &ProviderError{
			Type:    ErrorTypeTimeout,
			Message: fmt.Sprintf("provider timed out (status %d)", statusCode),
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return &ProviderError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("provider unavailable (status %d)", statusCode),
		}
	default:
		return &ProviderError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}
