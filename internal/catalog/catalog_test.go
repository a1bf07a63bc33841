package catalog

import (
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	require.NoError(t, err)
	return c
}

func fullRange() [2]int64 {
	return [2]int64{0, 1000000000}
}

func TestDefaultCatalogLoads(t *testing.T) {
	c := mustDefault(t)

	assert.NotEmpty(t, c.Products())
	assert.NotEmpty(t, c.Categories())
	assert.NotEmpty(t, c.Deals())

	for _, p := range c.Products() {
		_, err := c.FindCategory(p.Category)
		assert.NoError(t, err, "product %s references unknown category %s", p.ID, p.Category)
	}
}

func TestFindProductNotFound(t *testing.T) {
	c := mustDefault(t)

	p, err := c.FindProduct("does-not-exist")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrProductNotFound)

	cat, err := c.FindCategory("does-not-exist")
	assert.Nil(t, cat)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestFindProductReturnsSharedRecord(t *testing.T) {
	c := mustDefault(t)

	a, err := c.FindProduct("hp-elitebook-840")
	require.NoError(t, err)
	b, err := c.FindProduct("hp-elitebook-840")
	require.NoError(t, err)

	assert.Same(t, a, b)
}

func TestLoadRejectsDuplicateProducts(t *testing.T) {
	doc := `{"products":[{"id":"a","name":"A"},{"id":"a","name":"B"}]}`

	_, err := Load(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrDuplicateProduct)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := Load(strings.NewReader(`{"products":`))
	assert.Error(t, err)
}

func TestRelatedExcludesSelfAndStaysInCategory(t *testing.T) {
	c := mustDefault(t)

	related, err := c.Related("hp-elitebook-840", 0)
	require.NoError(t, err)
	require.NotEmpty(t, related)
	assert.LessOrEqual(t, len(related), DefaultRelatedLimit)

	for _, p := range related {
		assert.NotEqual(t, "hp-elitebook-840", p.ID)
		assert.Equal(t, "laptops", p.Category)
	}

	one, err := c.Related("hp-elitebook-840", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	_, err = c.Related("missing", 4)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestFeatured(t *testing.T) {
	c := mustDefault(t)

	for _, p := range c.Featured(0) {
		assert.True(t, p.IsFeatured)
	}
	assert.Len(t, c.Featured(2), 2)
}

func TestActiveDeals(t *testing.T) {
	c := mustDefault(t)

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	active := c.ActiveDeals(now)

	require.Len(t, active, 1)
	assert.Equal(t, "back-to-office", active[0].ID)
}

func TestDiscountPercentage(t *testing.T) {
	tests := []struct {
		original, sale int64
		want           int
	}{
		{300000, 240000, 20},
		{920000, 850000, 8},
		{350000, 310000, 11},
		{100, 100, 0},
		{0, 50, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DiscountPercentage(tt.original, tt.sale), "original=%d sale=%d", tt.original, tt.sale)
	}
}

func TestQuerySorting(t *testing.T) {
	c := mustDefault(t)

	low := c.Query(domain.ProductFilter{PriceRange: fullRange(), SortBy: domain.SortPriceLow})
	for i := 1; i < len(low); i++ {
		assert.LessOrEqual(t, low[i-1].Price, low[i].Price)
	}

	high := c.Query(domain.ProductFilter{PriceRange: fullRange(), SortBy: domain.SortPriceHigh})
	for i := 1; i < len(high); i++ {
		assert.GreaterOrEqual(t, high[i-1].Price, high[i].Price)
	}

	rating := c.Query(domain.ProductFilter{PriceRange: fullRange(), SortBy: domain.SortRating})
	for i := 1; i < len(rating); i++ {
		assert.GreaterOrEqual(t, rating[i-1].Rating, rating[i].Rating)
	}

	featured := c.Query(domain.ProductFilter{PriceRange: fullRange(), SortBy: "unknown-key"})
	seenNonFeatured := false
	for _, p := range featured {
		if !p.IsFeatured {
			seenNonFeatured = true
			continue
		}
		assert.False(t, seenNonFeatured, "featured product %s sorted after a non-featured one", p.ID)
	}
	assert.Len(t, featured, len(c.Products()))
}

func TestQueryFilters(t *testing.T) {
	c := mustDefault(t)
	printers := "printers"

	byCategory := c.Query(domain.ProductFilter{PriceRange: fullRange(), Category: &printers})
	require.NotEmpty(t, byCategory)
	for _, p := range byCategory {
		assert.Equal(t, printers, p.Category)
	}

	search := c.Query(domain.ProductFilter{PriceRange: fullRange(), Search: "  LOGITECH "})
	assert.Len(t, search, 2)

	inStock := c.Query(domain.ProductFilter{PriceRange: fullRange(), InStock: true})
	for _, p := range inStock {
		assert.True(t, p.InStock)
	}

	none := c.Query(domain.ProductFilter{PriceRange: [2]int64{0, 10}})
	assert.Empty(t, none)
}

// Feature: storefront-state, Property 1: Price range filtering is inclusive and exact
func TestProperty_QueryRespectsPriceRange(t *testing.T) {
	c := mustDefault(t)
	properties := gopter.NewProperties(nil)

	properties.Property("every returned product lies within the requested price range", prop.ForAll(
		func(low int64, span int64) bool {
			high := low + span
			results := c.Query(domain.ProductFilter{PriceRange: [2]int64{low, high}})

			for _, p := range results {
				if p.Price < low || p.Price > high {
					t.Logf("FAIL: product %s price %d outside [%d, %d]", p.ID, p.Price, low, high)
					return false
				}
			}

			expected := 0
			for _, p := range c.Products() {
				if p.Price >= low && p.Price <= high {
					expected++
				}
			}
			return expected == len(results)
		},
		gen.Int64Range(0, 1500000),
		gen.Int64Range(0, 1500000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
