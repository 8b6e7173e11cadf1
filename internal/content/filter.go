package content

import (
	"slices"
	"strings"
)

// AllCategories is the selector sentinel that matches every record. An empty
// selector behaves the same way.
const AllCategories = "all"

// Record is the minimal surface the filter engine needs: the fields checked
// for free-text search and the category (or tag) values the record carries.
type Record interface {
	SearchText() []string
	CategoryValues() []string
}

// Visible computes the subset of records matching both the free-text query
// and the category selector. It is pure: the input slice is never modified
// and the store-provided order is preserved. A query of only whitespace
// matches everything.
func Visible[T Record](records []T, query, selector string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	visible := make([]T, 0, len(records))
	for _, r := range records {
		if matchesText(r, q) && matchesCategory(r, selector) {
			visible = append(visible, r)
		}
	}
	return visible
}

func matchesText(r Record, q string) bool {
	if q == "" {
		return true
	}
	for _, field := range r.SearchText() {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func matchesCategory(r Record, selector string) bool {
	if selector == "" || selector == AllCategories {
		return true
	}
	return slices.Contains(r.CategoryValues(), selector)
}

// CategoryRail returns "all" followed by each distinct category present in
// the record set, in record order. Used for the blog page's category buttons.
func CategoryRail[T Record](records []T) []string {
	rail := []string{AllCategories}
	seen := map[string]bool{}
	for _, r := range records {
		for _, c := range r.CategoryValues() {
			if c == "" || seen[c] {
				continue
			}
			seen[c] = true
			rail = append(rail, c)
		}
	}
	return rail
}
