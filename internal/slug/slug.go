// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug generates URL-friendly slugs for catalog entities.
// Product and pack names routinely carry punctuation, quote-marked
// sizes, and code-style underscores; all of it collapses to lowercase
// hyphenated ASCII.
package slug

import (
	"regexp"
	"strings"
)

// maxLen bounds generated slugs well under the 255-char column limit,
// leaving room for uniqueness suffixes appended by callers.
const maxLen = 100

var (
	// separators become hyphens before anything else is stripped, so
	// "SKU_15 Pro" keeps its word boundaries.
	separators = regexp.MustCompile(`[\s_]+`)
	// nonSlug matches anything that isn't a lowercase letter, digit,
	// or hyphen.
	nonSlug = regexp.MustCompile(`[^a-z0-9-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: `Gaming Laptop 15" PRO_MAX` → "gaming-laptop-15-pro-max"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = separators.ReplaceAllString(result, "-")
	result = nonSlug.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > maxLen {
		result = result[:maxLen]
		// Never cut mid-word: drop the trailing fragment.
		if idx := strings.LastIndexByte(result, '-'); idx > 0 {
			result = result[:idx]
		}
	}
	return result
}
