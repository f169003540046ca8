package channel

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// AllCategories disables category filtering.
const AllCategories = "all"

// Filter narrows the registry down to what the channel list shows.
type Filter struct {
	// Category is a category name or AllCategories. Empty behaves like AllCategories.
	Category string
	// Query matches channel names case-insensitively.
	Query string
	// Fuzzy switches Query from substring to fuzzy subsequence matching.
	Fuzzy bool
}

// Match reports whether c passes both the category and the query.
func (f Filter) Match(c Channel) bool {
	if f.Category != "" && f.Category != AllCategories && c.Category != f.Category {
		return false
	}

	query := strings.TrimSpace(f.Query)
	if query == "" {
		return true
	}

	if f.Fuzzy {
		return fuzzy.MatchNormalizedFold(query, c.Name)
	}
	return strings.Contains(strings.ToLower(c.Name), strings.ToLower(query))
}
