package discovery

import (
	"path/filepath"
	"strings"
)

// Filter filters testcase names by pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the names matching pattern. Patterns with * or ? are
// wildcards (e.g. "uart_*" or "*_smoke*"), anything else is a substring.
// Names may be paths; only the base name is matched.
func (f *Filter) FilterByName(names []string, pattern string) []string {
	if pattern == "" {
		return names
	}

	var filtered []string
	for _, name := range names {
		if matchName(filepath.Base(name), pattern) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

func matchName(name, pattern string) bool {
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}
	if ok, err := filepath.Match(pattern, name); err == nil && ok {
		return true
	}
	if strings.Contains(pattern, "?") {
		return false
	}

	// "*a*b*": every fragment must appear, in order
	rest := name
	found := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
		found = true
	}
	return found
}
