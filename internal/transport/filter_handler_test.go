package transport

import (
	"net/http"
	"testing"

	"storefront/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiltersDriveProductListing(t *testing.T) {
	api := newTestAPI(t)
	token := api.newSession(t)

	w := api.do(t, http.MethodGet, "/api/products", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing ProductListResponse
	decodeBody(t, w, &listing)
	assert.Equal(t, 7, listing.Total)

	category := "printers"
	sortBy := "price-low"
	w = api.do(t, http.MethodPatch, "/api/filters", token, UpdateFiltersRequest{
		SelectedCategory: &category,
		SortBy:           &sortBy,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/products", token, nil)
	decodeBody(t, w, &listing)
	require.Equal(t, 2, listing.Total)
	assert.Equal(t, "epson-ecotank-l3250", listing.Products[0].ID)
	assert.Equal(t, "hp-laserjet-m404", listing.Products[1].ID)

	search := "laserjet"
	w = api.do(t, http.MethodPatch, "/api/filters", token, UpdateFiltersRequest{SearchQuery: &search})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/products", token, nil)
	decodeBody(t, w, &listing)
	require.Equal(t, 1, listing.Total)
}

func TestFiltersPatchRejectsInvalidValues(t *testing.T) {
	api := newTestAPI(t)
	token := api.newSession(t)

	inverted := [2]int64{500, 100}
	w := api.do(t, http.MethodPatch, "/api/filters", token, UpdateFiltersRequest{PriceRange: &inverted})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mode := "carousel"
	w = api.do(t, http.MethodPatch, "/api/filters", token, UpdateFiltersRequest{ViewMode: &mode})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	sortBy := "random"
	w = api.do(t, http.MethodPatch, "/api/filters", token, UpdateFiltersRequest{SortBy: &sortBy})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/filters", token, nil)
	var state store.FilterState
	decodeBody(t, w, &state)
	assert.Equal(t, store.DefaultFilterState(), state)
}

func TestFiltersResetKeepsViewMode(t *testing.T) {
	api := newTestAPI(t)
	token := api.newSession(t)

	category := "laptops"
	mode := "list"
	priceRange := [2]int64{100000, 900000}
	none := ""
	w := api.do(t, http.MethodPatch, "/api/filters", token, UpdateFiltersRequest{
		SelectedCategory: &category,
		ViewMode:         &mode,
		PriceRange:       &priceRange,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var state store.FilterState
	decodeBody(t, w, &state)
	require.NotNil(t, state.SelectedCategory)
	assert.Equal(t, priceRange, state.PriceRange)

	w = api.do(t, http.MethodPatch, "/api/filters", token, UpdateFiltersRequest{SelectedCategory: &none})
	decodeBody(t, w, &state)
	assert.Nil(t, state.SelectedCategory)

	w = api.do(t, http.MethodPost, "/api/filters/reset", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &state)

	expected := store.DefaultFilterState()
	expected.ViewMode = store.ViewList
	assert.Equal(t, expected, state)
}
