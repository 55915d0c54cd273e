// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"strconv"

	"github.com/jeranaias/askdesk/internal/model"
)

// =============================================================================
// CITATION RESOLUTION
// =============================================================================

// ReferencedCitations maps the inline [n] markers in an answer to the
// citations the backend returned. It builds a lookup keyed by citation ID,
// scans the cleaned answer text for bracketed integers, and returns the
// citations actually referenced, each at most once, ordered by first
// appearance. IDs with no matching citation are silently dropped.
//
// An empty answer or an empty citation set yields an empty slice and an
// empty lookup, so the formatter has nothing to link.
func ReferencedCitations(aiResponse string, citations []model.Citation) ([]model.Citation, map[int]model.Citation) {
	lookup := make(map[int]model.Citation)
	if aiResponse == "" || len(citations) == 0 {
		return nil, lookup
	}

	for _, c := range citations {
		lookup[c.ID] = c
	}

	cleaned := Clean(aiResponse)
	seen := make(map[int]bool)
	var referenced []model.Citation
	for _, match := range citationRefRegex.FindAllStringSubmatch(cleaned, -1) {
		id, err := strconv.Atoi(match[1])
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		if c, ok := lookup[id]; ok {
			referenced = append(referenced, c)
		}
	}

	return referenced, lookup
}
