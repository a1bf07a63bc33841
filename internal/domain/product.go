package domain

import (
	"time"
)

// Product represents a product in the catalog. Products are shared by
// reference between the catalog, cart lines and wishlist entries and are
// never mutated after the catalog is loaded.
type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	Price          int64             `json:"price"`
	OriginalPrice  *int64            `json:"originalPrice,omitempty"`
	Discount       *int              `json:"discount,omitempty"`
	Rating         float64           `json:"rating"`
	ReviewCount    int               `json:"reviewCount"`
	InStock        bool              `json:"inStock"`
	IsNew          bool              `json:"isNew"`
	IsFeatured     bool              `json:"isFeatured"`
	Images         []string          `json:"images"`
	Specifications map[string]string `json:"specifications"`
	Features       []string          `json:"features"`
}

// Category represents a product category
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// Deal represents a time-limited promotion over a set of products
type Deal struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	OriginalPrice int64     `json:"originalPrice"`
	SalePrice     int64     `json:"salePrice"`
	Discount      int       `json:"discount"`
	ValidUntil    time.Time `json:"validUntil"`
	Products      []string  `json:"products"`
}

// Active reports whether the deal is still valid at the given time
func (d *Deal) Active(now time.Time) bool {
	return now.Before(d.ValidUntil)
}

// Sort keys understood by the product listing
const (
	SortFeatured  = "featured"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortNewest    = "newest"
	SortName      = "name"
)

// ProductFilter narrows and orders a product listing
type ProductFilter struct {
	Search     string
	Category   *string
	PriceRange [2]int64
	SortBy     string
	MinRating  float64
	InStock    bool
	IsNew      bool
	IsFeatured bool
}
