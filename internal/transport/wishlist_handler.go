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

// WishlistItemRequest names a catalog product
type WishlistItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// WishlistMembershipResponse reports whether a product is saved
type WishlistMembershipResponse struct {
	InWishlist bool `json:"in_wishlist"`
}

// WishlistToggleResponse is the result of a toggle
type WishlistToggleResponse struct {
	InWishlist bool                `json:"in_wishlist"`
	Wishlist   store.WishlistState `json:"wishlist"`
}

// WishlistHandler handles HTTP requests for the session wishlist
type WishlistHandler struct {
	sessions service.SessionService
	products store.ProductResolver
	logger   *zap.Logger
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(sessions service.SessionService, products store.ProductResolver, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{
		sessions: sessions,
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers all wishlist routes
func (h *WishlistHandler) RegisterRoutes(r chi.Router, sessionMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Get("/", h.GetWishlist)
		r.Post("/toggle", h.Toggle)
		r.Post("/items", h.AddItem)
		r.Get("/items/{productID}", h.Contains)
		r.Delete("/items/{productID}", h.RemoveItem)
	})
}

// GetWishlist returns the saved products
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stores.Wishlist.Snapshot())
}

// AddItem saves a product. Saving it twice changes nothing.
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req WishlistItemRequest
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

	if !stores.Wishlist.IsInWishlist(product.ID) {
		stores.Wishlist.AddItem(product)
		h.notifyAdded(stores, product)
	}

	middleware.RespondWithJSON(w, http.StatusOK, stores.Wishlist.Snapshot())
}

// RemoveItem deletes a saved product. Unknown products are ignored.
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")
	if stores.Wishlist.IsInWishlist(productID) {
		stores.Wishlist.RemoveItem(productID)
		if product, err := h.products.FindProduct(productID); err == nil {
			h.notifyRemoved(stores, product)
		}
	}

	middleware.RespondWithJSON(w, http.StatusOK, stores.Wishlist.Snapshot())
}

// Contains reports whether a product is saved
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, WishlistMembershipResponse{
		InWishlist: stores.Wishlist.IsInWishlist(chi.URLParam(r, "productID")),
	})
}

// Toggle saves the product if absent, otherwise removes it
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req WishlistItemRequest
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

	added := stores.Wishlist.Toggle(product)
	if added {
		h.notifyAdded(stores, product)
	} else {
		h.notifyRemoved(stores, product)
	}

	middleware.RespondWithJSON(w, http.StatusOK, WishlistToggleResponse{
		InWishlist: added,
		Wishlist:   stores.Wishlist.Snapshot(),
	})
}

func (h *WishlistHandler) notifyAdded(stores *store.Stores, product *domain.Product) {
	stores.Notifications.AddNotification(domain.Notification{
		Type:    domain.NotificationSuccess,
		Title:   "Added to wishlist",
		Message: fmt.Sprintf("%s has been saved to your wishlist", product.Name),
	})
}

func (h *WishlistHandler) notifyRemoved(stores *store.Stores, product *domain.Product) {
	stores.Notifications.AddNotification(domain.Notification{
		Type:    domain.NotificationInfo,
		Title:   "Removed from wishlist",
		Message: fmt.Sprintf("%s has been removed from your wishlist", product.Name),
	})
}
