package catalog

import (
	"sort"
	"strings"

	"storefront/internal/domain"
)

// Query returns the products matching filter, ordered by filter.SortBy.
// Unknown sort keys fall back to the featured ordering.
func (c *Catalog) Query(filter domain.ProductFilter) []*domain.Product {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := []*domain.Product{}
	for _, p := range c.products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if filter.Category != nil && p.Category != *filter.Category {
			continue
		}
		if p.Price < filter.PriceRange[0] || p.Price > filter.PriceRange[1] {
			continue
		}
		if p.Rating < filter.MinRating {
			continue
		}
		if filter.InStock && !p.InStock {
			continue
		}
		if filter.IsNew && !p.IsNew {
			continue
		}
		if filter.IsFeatured && !p.IsFeatured {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, filter.SortBy)
	return out
}

func sortProducts(products []*domain.Product, sortBy string) {
	var less func(a, b *domain.Product) bool

	switch sortBy {
	case domain.SortPriceLow:
		less = func(a, b *domain.Product) bool { return a.Price < b.Price }
	case domain.SortPriceHigh:
		less = func(a, b *domain.Product) bool { return a.Price > b.Price }
	case domain.SortRating:
		less = func(a, b *domain.Product) bool { return a.Rating > b.Rating }
	case domain.SortNewest:
		less = func(a, b *domain.Product) bool { return a.IsNew && !b.IsNew }
	case domain.SortName:
		less = func(a, b *domain.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	default:
		less = func(a, b *domain.Product) bool { return a.IsFeatured && !b.IsFeatured }
	}

	sort.SliceStable(products, func(i, j int) bool {
		return less(products[i], products[j])
	})
}
