// Package filter derives order-preserving filtered views from the in-memory
// record set (or collection-name set) using fuzzy subsequence matching.
package filter

import (
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"lazyddb/internal/models"
)

// Records filters records by free-text input. Empty input is the identity.
// Non-empty input is split on whitespace into keywords; a record matches iff
// every keyword fuzzy-matches somewhere in it — any object key or any scalar
// value, recursively. Records whose stored representation failed to parse
// never match.
func Records(records []models.Record, text string) []models.Record {
	keywords := strings.Fields(text)
	if len(keywords) == 0 {
		return records
	}

	filtered := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if rec.Value == nil {
			continue
		}
		if matchesAll(keywords, rec.Value) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// Names filters plain strings (collection names) with the same keyword rule.
func Names(names []string, text string) []string {
	keywords := strings.Fields(text)
	if len(keywords) == 0 {
		return names
	}

	filtered := make([]string, 0, len(names))
	for _, name := range names {
		ok := true
		for _, kw := range keywords {
			if !Match(kw, name) {
				ok = false
				break
			}
		}
		if ok {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

func matchesAll(keywords []string, value any) bool {
	for _, kw := range keywords {
		if !matchesKeyword(kw, value) {
			return false
		}
	}
	return true
}

// matchesKeyword walks the structure, short-circuiting on the first hit.
func matchesKeyword(keyword string, value any) bool {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			if Match(keyword, key) {
				return true
			}
			if matchesKeyword(keyword, val) {
				return true
			}
		}
		return false
	case []any:
		for _, item := range v {
			if matchesKeyword(keyword, item) {
				return true
			}
		}
		return false
	case string:
		return Match(keyword, v)
	case float64:
		return Match(keyword, strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		return Match(keyword, strconv.FormatBool(v))
	default:
		// null and anything unrecognized
		return false
	}
}

// Match reports whether pattern fuzzy-subsequence-matches target. A bare
// subsequence hit is not enough: the match must score positively, which
// requires some anchoring (start of the target, a word boundary, or adjacent
// characters). This keeps scattered one-character-here-one-character-there
// hits like "al" against "Carol" out of the filtered view.
func Match(pattern, target string) bool {
	if pattern == "" {
		return true
	}
	matches := fuzzy.Find(pattern, []string{target})
	return len(matches) > 0 && matches[0].Score > 0
}
