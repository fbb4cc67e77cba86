package search

import (
	"sort"
	"strings"

	"storefront-service/internal/models"
)

// SuggestionLimit caps the ranked list shown in the autocomplete dropdown.
const SuggestionLimit = 10

// Engine ranks and filters a product list against a free-text query.
type Engine struct {
	limit int
}

// NewEngine creates a search engine with the default suggestion cap.
func NewEngine() *Engine {
	return &Engine{limit: SuggestionLimit}
}

// Filter returns the ranked matches for query, capped at the suggestion
// limit. An empty or whitespace-only query yields no suggestions.
//
// Ranking, strictly in this priority: exact case-insensitive name match
// first, then name starts-with, then case-insensitive lexicographic name
// order. The sort is stable so equal keys keep their input order.
func (e *Engine) Filter(products []models.Product, query string) []models.Product {
	q := normalize(query)
	if q == "" {
		return nil
	}

	matched := make([]models.Product, 0)
	for _, p := range products {
		if matches(p, q) {
			matched = append(matched, p)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return rankLess(matched[i], matched[j], q)
	})

	if len(matched) > e.limit {
		matched = matched[:e.limit]
	}
	return matched
}

// CountMatches returns the uncapped number of matches, for
// "showing N of M" messaging. Empty query counts zero by convention.
func (e *Engine) CountMatches(products []models.Product, query string) int {
	q := normalize(query)
	if q == "" {
		return 0
	}

	count := 0
	for _, p := range products {
		if matches(p, q) {
			count++
		}
	}
	return count
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// matches reports whether the normalized query is a substring of the
// product's name, description, category or any tag.
func matches(p models.Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Category), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func rankLess(a, b models.Product, q string) bool {
	an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)

	if (an == q) != (bn == q) {
		return an == q
	}
	if strings.HasPrefix(an, q) != strings.HasPrefix(bn, q) {
		return strings.HasPrefix(an, q)
	}
	return an < bn
}
