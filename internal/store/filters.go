package store

import (
	"errors"
	"sync"

	"storefront/internal/domain"
)

var (
	ErrInvalidPriceRange = errors.New("price range low bound exceeds high bound")
	ErrInvalidViewMode   = errors.New("view mode must be grid or list")
)

// ViewMode selects how listings are laid out
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// Filter defaults restored by ResetFilters
const (
	DefaultSortBy   = domain.SortFeatured
	DefaultMinPrice = int64(0)
	DefaultMaxPrice = int64(1000000)
)

// FilterState is the listing filter state
type FilterState struct {
	IsLoading        bool     `json:"isLoading"`
	SearchQuery      string   `json:"searchQuery"`
	SelectedCategory *string  `json:"selectedCategory"`
	PriceRange       [2]int64 `json:"priceRange"`
	SortBy           string   `json:"sortBy"`
	ViewMode         ViewMode `json:"viewMode"`
}

// ProductFilter converts the state into a catalog query
func (s FilterState) ProductFilter() domain.ProductFilter {
	return domain.ProductFilter{
		Search:     s.SearchQuery,
		Category:   s.SelectedCategory,
		PriceRange: s.PriceRange,
		SortBy:     s.SortBy,
	}
}

// DefaultFilterState returns the state of a fresh session
func DefaultFilterState() FilterState {
	return FilterState{
		PriceRange: [2]int64{DefaultMinPrice, DefaultMaxPrice},
		SortBy:     DefaultSortBy,
		ViewMode:   ViewGrid,
	}
}

// Filters holds transient listing state. It is never persisted.
type Filters struct {
	Observable

	mu    sync.Mutex
	state FilterState
}

// NewFilters creates a filter store at its defaults
func NewFilters() *Filters {
	return &Filters{state: DefaultFilterState()}
}

// SetLoading sets the loading flag. Nothing clears it automatically.
func (f *Filters) SetLoading(loading bool) {
	f.update(func(s *FilterState) { s.IsLoading = loading })
}

// SetSearchQuery sets the free-text search
func (f *Filters) SetSearchQuery(query string) {
	f.update(func(s *FilterState) { s.SearchQuery = query })
}

// SetSelectedCategory sets or, with nil, clears the category
func (f *Filters) SetSelectedCategory(category *string) {
	var c *string
	if category != nil {
		v := *category
		c = &v
	}
	f.update(func(s *FilterState) { s.SelectedCategory = c })
}

// SetPriceRange sets the inclusive price bounds
func (f *Filters) SetPriceRange(low, high int64) error {
	if low > high {
		return ErrInvalidPriceRange
	}
	f.update(func(s *FilterState) { s.PriceRange = [2]int64{low, high} })
	return nil
}

// SetSortBy sets the sort key
func (f *Filters) SetSortBy(sortBy string) {
	f.update(func(s *FilterState) { s.SortBy = sortBy })
}

// SetViewMode switches between grid and list layouts
func (f *Filters) SetViewMode(mode ViewMode) error {
	if mode != ViewGrid && mode != ViewList {
		return ErrInvalidViewMode
	}
	f.update(func(s *FilterState) { s.ViewMode = mode })
	return nil
}

// ResetFilters restores search, category, price range and sort to their
// defaults. View mode and the loading flag are kept.
func (f *Filters) ResetFilters() {
	f.update(func(s *FilterState) {
		d := DefaultFilterState()
		s.SearchQuery = d.SearchQuery
		s.SelectedCategory = d.SelectedCategory
		s.PriceRange = d.PriceRange
		s.SortBy = d.SortBy
	})
}

// Snapshot returns the current state
func (f *Filters) Snapshot() FilterState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Filters) update(apply func(*FilterState)) {
	f.mu.Lock()
	apply(&f.state)
	f.mu.Unlock()

	f.notify()
}
