package catalog

import (
	"strings"

	"buyzo/internal/domain"
)

// Filter derives the display list from the cached products, a free-text
// query, and a category selector. Category matching is a case-sensitive
// exact match against the lowercase enum; the query is a case-insensitive
// substring match over title and description. Order is preserved from the
// cache and the cache itself is never mutated.
func Filter(products []domain.Product, query, category string) []domain.Product {
	filtered := make([]domain.Product, 0, len(products))

	for _, p := range products {
		if category != domain.CategoryAll && string(p.Category) != strings.ToLower(category) {
			continue
		}
		filtered = append(filtered, p)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return filtered
	}

	matched := make([]domain.Product, 0, len(filtered))
	for _, p := range filtered {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			matched = append(matched, p)
		}
	}

	return matched
}
