package workout

import (
	"slices"
	"strings"
)

// UniqueNames collects the distinct exercise names of the routines, sorted case-insensitively.
func UniqueNames(routines []Routine) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range routines {
		for _, ex := range r.Exercises {
			name := strings.TrimSpace(ex.Name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	SortNames(names)
	return names
}

func SortNames(names []string) {
	slices.SortFunc(names, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

// MatchNames filters names by a case-insensitive substring. An empty query matches nothing.
// limit <= 0 means no limit.
func MatchNames(names []string, query string, limit int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var matches []string
	for _, name := range names {
		if !strings.Contains(strings.ToLower(name), query) {
			continue
		}
		matches = append(matches, name)
		if limit > 0 && len(matches) == limit {
			break
		}
	}
	return matches
}
