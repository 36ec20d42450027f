// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package regions

import "fmt"

// NotFoundError reports an unknown region code. Callers decide the fallback;
// no default box is substituted.
type NotFoundError struct {
	Code string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("regions: unknown region code %q", e.Code)
}

// ExtractionError reports a malformed polygon boundary source, wrapping the
// parse cause.
type ExtractionError struct {
	Code string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("regions: extracting bounds for %q: %v", e.Code, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
