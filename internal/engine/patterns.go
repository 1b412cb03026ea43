package engine

import (
	"strings"

	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/types"
)

// ExtractBreadcrumbs scans title and body against the configured pattern
// dictionary. Matching is case-insensitive substring containment. Title is
// checked first, so a phrase present in both fields is attributed to the
// title; each (category, phrase) pair yields at most one breadcrumb.
func ExtractBreadcrumbs(title, body string, groups []config.PatternGroup) []types.Breadcrumb {
	lowerTitle := strings.ToLower(title)
	lowerBody := strings.ToLower(body)

	var crumbs []types.Breadcrumb
	for _, g := range groups {
		for _, phrase := range g.Phrases {
			p := strings.ToLower(strings.TrimSpace(phrase))
			if p == "" {
				continue
			}
			switch {
			case strings.Contains(lowerTitle, p):
				crumbs = append(crumbs, types.Breadcrumb{
					Category:      g.Category,
					MatchedPhrase: phrase,
					SourceField:   types.FieldTitle,
				})
			case strings.Contains(lowerBody, p):
				crumbs = append(crumbs, types.Breadcrumb{
					Category:      g.Category,
					MatchedPhrase: phrase,
					SourceField:   types.FieldBody,
				})
			}
		}
	}
	return crumbs
}

// hasCategory reports whether at least one breadcrumb carries the category.
// Presence, not count, is what the scorer keys on.
func hasCategory(crumbs []types.Breadcrumb, category string) bool {
	for _, c := range crumbs {
		if c.Category == category {
			return true
		}
	}
	return false
}
