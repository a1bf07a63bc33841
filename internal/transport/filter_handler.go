package transport

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UpdateFiltersRequest carries the filter fields to change; absent fields are
// kept. An empty selected_category clears the category.
type UpdateFiltersRequest struct {
	IsLoading        *bool     `json:"is_loading"`
	SearchQuery      *string   `json:"search_query"`
	SelectedCategory *string   `json:"selected_category"`
	PriceRange       *[2]int64 `json:"price_range"`
	SortBy           *string   `json:"sort_by" validate:"omitempty,oneof=featured price-low price-high rating newest name"`
	ViewMode         *string   `json:"view_mode" validate:"omitempty,oneof=grid list"`
}

// FilterHandler handles HTTP requests for listing filters
type FilterHandler struct {
	sessions service.SessionService
	logger   *zap.Logger
}

// NewFilterHandler creates a new FilterHandler
func NewFilterHandler(sessions service.SessionService, logger *zap.Logger) *FilterHandler {
	return &FilterHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers all filter routes
func (h *FilterHandler) RegisterRoutes(r chi.Router, sessionMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/filters", func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Get("/", h.GetFilters)
		r.Patch("/", h.UpdateFilters)
		r.Post("/reset", h.ResetFilters)
	})
}

// GetFilters returns the current filter state
func (h *FilterHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stores.Filters.Snapshot())
}

// UpdateFilters applies each supplied field through its setter. The price
// range is checked before anything is applied.
func (h *FilterHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var req UpdateFiltersRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	if req.PriceRange != nil && req.PriceRange[0] > req.PriceRange[1] {
		middleware.RespondWithError(w, http.StatusBadRequest, store.ErrInvalidPriceRange.Error())
		return
	}

	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	filters := stores.Filters

	if req.IsLoading != nil {
		filters.SetLoading(*req.IsLoading)
	}
	if req.SearchQuery != nil {
		filters.SetSearchQuery(*req.SearchQuery)
	}
	if req.SelectedCategory != nil {
		if *req.SelectedCategory == "" {
			filters.SetSelectedCategory(nil)
		} else {
			filters.SetSelectedCategory(req.SelectedCategory)
		}
	}
	if req.PriceRange != nil {
		if err := filters.SetPriceRange(req.PriceRange[0], req.PriceRange[1]); err != nil {
			respondFilterError(w, err)
			return
		}
	}
	if req.SortBy != nil {
		filters.SetSortBy(*req.SortBy)
	}
	if req.ViewMode != nil {
		if err := filters.SetViewMode(store.ViewMode(*req.ViewMode)); err != nil {
			respondFilterError(w, err)
			return
		}
	}

	middleware.RespondWithJSON(w, http.StatusOK, filters.Snapshot())
}

// ResetFilters restores the defaults, keeping the view mode and loading flag
func (h *FilterHandler) ResetFilters(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	stores.Filters.ResetFilters()
	middleware.RespondWithJSON(w, http.StatusOK, stores.Filters.Snapshot())
}

func respondFilterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidPriceRange), errors.Is(err, store.ErrInvalidViewMode):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update filters")
	}
}
