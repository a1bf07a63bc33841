package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductListResponse is a filtered product listing
type ProductListResponse struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
}

// CatalogHandler serves the static catalog
type CatalogHandler struct {
	catalog  *catalog.Catalog
	sessions service.SessionService
	logger   *zap.Logger
	now      func() time.Time
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(c *catalog.Catalog, sessions service.SessionService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog:  c,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterRoutes registers all catalog routes. Only the filtered listing needs a session.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, sessionMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Get("/{id}", h.GetCategory)
	})

	r.Get("/api/deals", h.ListDeals)

	r.Route("/api/products", func(r chi.Router) {
		r.With(sessionMiddleware).Get("/", h.ListProducts)
		r.Get("/featured", h.ListFeatured)
		r.Get("/{id}", h.GetProduct)
		r.Get("/{id}/related", h.ListRelated)
	})
}

// ListCategories returns every category
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.Categories())
}

// GetCategory returns one category
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.catalog.FindCategory(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// ListDeals returns deals that have not expired
func (h *CatalogHandler) ListDeals(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.ActiveDeals(h.now()))
}

// ListFeatured returns featured products, optionally capped by ?limit=
func (h *CatalogHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 0)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.Featured(limit))
}

// GetProduct returns one product
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.FindProduct(chi.URLParam(r, "id"))
	if err != nil {
		respondProductError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// ListRelated returns products from the same category
func (h *CatalogHandler) ListRelated(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, catalog.DefaultRelatedLimit)
	if !ok {
		return
	}

	related, err := h.catalog.Related(chi.URLParam(r, "id"), limit)
	if err != nil {
		respondProductError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, related)
}

// ListProducts lists the catalog through the session's filter state.
// ?rating=, ?in_stock=, ?new= and ?featured= narrow the listing further.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	filter := stores.Filters.Snapshot().ProductFilter()
	if err := applyListingParams(r, &filter); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	products := h.catalog.Query(filter)
	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    len(products),
	})
}

// applyListingParams reads the product attribute filters from the query string
func applyListingParams(r *http.Request, filter *domain.ProductFilter) error {
	q := r.URL.Query()

	if raw := q.Get("rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil || rating < 0 || rating > 5 {
			return fmt.Errorf("invalid rating %q", raw)
		}
		filter.MinRating = rating
	}

	flags := []struct {
		name   string
		target *bool
	}{
		{"in_stock", &filter.InStock},
		{"new", &filter.IsNew},
		{"featured", &filter.IsFeatured},
	}
	for _, flag := range flags {
		raw := q.Get(flag.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q", flag.name, raw)
		}
		*flag.target = v
	}
	return nil
}

func parseLimit(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid limit")
		return 0, false
	}
	return limit, true
}

func respondProductError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrProductNotFound) {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}
	middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
}
