package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"storefront/internal/domain"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrDuplicateProduct = errors.New("duplicate product id")
)

// DefaultRelatedLimit is how many related products a product page shows
const DefaultRelatedLimit = 4

//go:embed catalog.json
var defaultCatalog []byte

// document is the on-disk shape of the bundled catalog
type document struct {
	Products   []*domain.Product  `json:"products"`
	Categories []*domain.Category `json:"categories"`
	Deals      []*domain.Deal     `json:"deals"`
}

// Catalog is the static, read-only set of products, categories and deals.
// It is safe for concurrent use because nothing mutates it after Load.
type Catalog struct {
	products   []*domain.Product
	byID       map[string]*domain.Product
	categories []*domain.Category
	categoryID map[string]*domain.Category
	deals      []*domain.Deal
}

// Load decodes a catalog document
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c := &Catalog{
		products:   doc.Products,
		byID:       make(map[string]*domain.Product, len(doc.Products)),
		categories: doc.Categories,
		categoryID: make(map[string]*domain.Category, len(doc.Categories)),
		deals:      doc.Deals,
	}
	for _, p := range doc.Products {
		if _, exists := c.byID[p.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProduct, p.ID)
		}
		c.byID[p.ID] = p
	}
	for _, cat := range doc.Categories {
		c.categoryID[cat.ID] = cat
	}

	return c, nil
}

// LoadFile reads a catalog document from disk
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Default returns the catalog bundled with the binary
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// FindProduct returns the product with the given id
func (c *Catalog) FindProduct(id string) (*domain.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// FindCategory returns the category with the given id
func (c *Catalog) FindCategory(id string) (*domain.Category, error) {
	cat, ok := c.categoryID[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return cat, nil
}

// Products returns all products in catalog order
func (c *Catalog) Products() []*domain.Product {
	out := make([]*domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Categories returns all categories in catalog order
func (c *Catalog) Categories() []*domain.Category {
	out := make([]*domain.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Deals returns all deals, expired or not
func (c *Catalog) Deals() []*domain.Deal {
	out := make([]*domain.Deal, len(c.deals))
	copy(out, c.deals)
	return out
}

// ActiveDeals returns the deals still valid at now
func (c *Catalog) ActiveDeals(now time.Time) []*domain.Deal {
	out := []*domain.Deal{}
	for _, d := range c.deals {
		if d.Active(now) {
			out = append(out, d)
		}
	}
	return out
}

// Featured returns up to limit featured products. A limit <= 0 means no limit.
func (c *Catalog) Featured(limit int) []*domain.Product {
	out := []*domain.Product{}
	for _, p := range c.products {
		if limit > 0 && len(out) == limit {
			break
		}
		if p.IsFeatured {
			out = append(out, p)
		}
	}
	return out
}

// Related returns up to limit other products from the same category
func (c *Catalog) Related(id string, limit int) ([]*domain.Product, error) {
	product, err := c.FindProduct(id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	out := []*domain.Product{}
	for _, p := range c.products {
		if len(out) == limit {
			break
		}
		if p.Category == product.Category && p.ID != product.ID {
			out = append(out, p)
		}
	}
	return out, nil
}

// DiscountPercentage returns the whole-percent saving of sale over original
func DiscountPercentage(original, sale int64) int {
	if original <= 0 {
		return 0
	}
	return int(math.Round(float64(original-sale) / float64(original) * 100))
}
