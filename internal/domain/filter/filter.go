// Package filter implements the name/category predicate and the read-only
// filtered projection shown by every record screen.
package filter

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Filter matches a record when its name contains Name and its category
// contains Category, ignoring case. Empty terms match everything.
type Filter struct {
	name     string
	category string
}

// New builds a filter from raw user input.
func New(name, category string) Filter {
	return Filter{name: fold(name), category: fold(category)}
}

// IsZero reports whether the filter accepts every record.
func (f Filter) IsZero() bool { return f.name == "" && f.category == "" }

// Accepts applies the predicate to one record.
func (f Filter) Accepts(name, category string) bool {
	if f.name != "" && !strings.Contains(fold(name), f.name) {
		return false
	}
	if f.category != "" && !strings.Contains(fold(category), f.category) {
		return false
	}
	return true
}

// fold trims, composes and case-folds s so "GRADUAÇÃO" matches "graduação"
// however either was typed.
func fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Fold().String(norm.NFC.String(s))
}

// Label renders a screen footer count: "1 <one>" or "<n> <many>".
func Label(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
