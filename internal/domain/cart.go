package domain

import "time"

// CartLine is one entry in the cart: a product and how many of it.
// The product is referenced, not owned.
type CartLine struct {
	ID            string            `json:"id"`
	Product       *Product          `json:"product"`
	Quantity      int               `json:"quantity"`
	SelectedSpecs map[string]string `json:"selectedSpecs,omitempty"`
}

// Subtotal is the line price at the product's current price
func (l CartLine) Subtotal() int64 {
	if l.Product == nil {
		return 0
	}
	return l.Product.Price * int64(l.Quantity)
}

// WishlistEntry records a favorited product
type WishlistEntry struct {
	ID      string    `json:"id"`
	Product *Product  `json:"product"`
	AddedAt time.Time `json:"addedAt"`
}
