package transport

import (
	"fmt"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddCartItemRequest represents the add-to-cart payload. Quantity defaults to 1.
type AddCartItemRequest struct {
	ProductID     string            `json:"product_id" validate:"required"`
	Quantity      int               `json:"quantity" validate:"omitempty,gte=1"`
	SelectedSpecs map[string]string `json:"selected_specs"`
}

// UpdateCartItemRequest sets a line quantity; zero or less removes the line
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartHandler handles HTTP requests for the session cart
type CartHandler struct {
	sessions service.SessionService
	products store.ProductResolver
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(sessions service.SessionService, products store.ProductResolver, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, sessionMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/toggle", h.ToggleCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.UpdateItem)
		r.Delete("/items/{productID}", h.RemoveItem)
	})
}

// GetCart returns the cart with derived totals
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stores.Cart.Snapshot())
}

// AddItem adds a catalog product to the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	product, err := h.products.FindProduct(req.ProductID)
	if err != nil {
		respondProductError(w, err)
		return
	}

	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	stores.Cart.AddItemWithSpecs(product, quantity, req.SelectedSpecs)
	stores.Notifications.AddNotification(domain.Notification{
		Type:    domain.NotificationSuccess,
		Title:   "Added to cart",
		Message: fmt.Sprintf("%s has been added to your cart", product.Name),
	})

	middleware.RespondWithJSON(w, http.StatusOK, stores.Cart.Snapshot())
}

// UpdateItem sets the quantity of a cart line
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateCartItemRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	stores.Cart.UpdateQuantity(chi.URLParam(r, "productID"), *req.Quantity)
	middleware.RespondWithJSON(w, http.StatusOK, stores.Cart.Snapshot())
}

// RemoveItem deletes a cart line. Unknown products are ignored.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")
	line, found := stores.Cart.Line(productID)
	stores.Cart.RemoveItem(productID)

	if found {
		stores.Notifications.AddNotification(domain.Notification{
			Type:    domain.NotificationInfo,
			Title:   "Removed from cart",
			Message: fmt.Sprintf("%s has been removed from your cart", line.Product.Name),
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, stores.Cart.Snapshot())
}

// ClearCart empties the cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	stores.Cart.ClearCart()
	middleware.RespondWithJSON(w, http.StatusOK, stores.Cart.Snapshot())
}

// ToggleCart flips the cart drawer
func (h *CartHandler) ToggleCart(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	stores.Cart.ToggleCart()
	middleware.RespondWithJSON(w, http.StatusOK, stores.Cart.Snapshot())
}
