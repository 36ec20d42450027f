// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package sweep

import (
	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/utils/textutils"
)

// Deduper drops records already seen in an earlier cell or sibling. The
// first occurrence wins. It is not safe for concurrent use: deduplication
// runs as a single-writer pass after all cells return.
type Deduper struct {
	seen map[string]struct{}
}

// NewDeduper creates an empty dedup set scoped to one sweep run.
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]struct{})}
}

// Key derives the identity of a record: the provider ID when present,
// otherwise a normalized name and address composite.
func Key(rec *RawRecord) string {
	if rec.ID != "" {
		return rec.ID
	}

	return textutils.LowerASCIIFolding(textutils.CollapseSpaces(rec.Name)) +
		"|" +
		textutils.LowerASCIIFolding(textutils.CollapseSpaces(rec.Address))
}

// Admit reports whether the record is new, recording it as seen.
func (d *Deduper) Admit(rec *RawRecord) bool {
	k := Key(rec)
	if _, ok := d.seen[k]; ok {
		return false
	}

	d.seen[k] = struct{}{}

	return true
}

// Len returns the number of distinct records admitted so far.
func (d *Deduper) Len() int {
	return len(d.seen)
}
