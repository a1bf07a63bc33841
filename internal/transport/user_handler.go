package transport

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddressPayload represents a postal address
type AddressPayload struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country" validate:"required"`
}

// UserPayload represents the user supplied at login
type UserPayload struct {
	ID      string          `json:"id" validate:"required"`
	Name    string          `json:"name" validate:"required"`
	Email   string          `json:"email" validate:"required,email"`
	Phone   *string         `json:"phone"`
	Avatar  *string         `json:"avatar" validate:"omitempty,url"`
	Address *AddressPayload `json:"address"`
	Orders  []domain.Order  `json:"orders"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	User *UserPayload `json:"user" validate:"required"`
}

// UpdateProfileRequest carries the profile fields to overwrite; absent fields are kept
type UpdateProfileRequest struct {
	Name    *string         `json:"name" validate:"omitempty,min=1"`
	Email   *string         `json:"email" validate:"omitempty,email"`
	Phone   *string         `json:"phone"`
	Avatar  *string         `json:"avatar" validate:"omitempty,url"`
	Address *AddressPayload `json:"address"`
	Orders  []domain.Order  `json:"orders"`
}

// UserHandler handles HTTP requests for the signed-in user of a session
type UserHandler struct {
	sessions service.SessionService
	logger   *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(sessions service.SessionService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(r chi.Router, sessionMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/user", func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Get("/", h.GetUser)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Patch("/profile", h.UpdateProfile)
	})
}

// GetUser returns the session's user state
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stores.Account.Snapshot())
}

// Login records the supplied user as signed in, replacing any previous one
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	stores.Account.Login(req.User.toDomain())

	if sessionID, ok := middleware.GetSessionID(r.Context()); ok {
		logger.ForSession(h.logger, sessionID).Info("User logged in", zap.String("user_id", req.User.ID))
	}
	middleware.RespondWithJSON(w, http.StatusOK, stores.Account.Snapshot())
}

// Logout clears the signed-in user
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	stores.Account.Logout()
	middleware.RespondWithJSON(w, http.StatusOK, stores.Account.Snapshot())
}

// UpdateProfile merges the supplied fields into the signed-in user.
// Without a signed-in user nothing changes.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	update := store.ProfileUpdate{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Avatar: req.Avatar,
		Orders: req.Orders,
	}
	if req.Address != nil {
		update.Address = req.Address.toDomain()
	}

	stores.Account.UpdateProfile(update)
	middleware.RespondWithJSON(w, http.StatusOK, stores.Account.Snapshot())
}

func (p *UserPayload) toDomain() domain.User {
	user := domain.User{
		ID:     p.ID,
		Name:   p.Name,
		Email:  p.Email,
		Phone:  p.Phone,
		Avatar: p.Avatar,
		Orders: p.Orders,
	}
	if p.Address != nil {
		user.Address = p.Address.toDomain()
	}
	if user.Orders == nil {
		user.Orders = []domain.Order{}
	}
	return user
}

func (a *AddressPayload) toDomain() *domain.Address {
	return &domain.Address{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		ZipCode: a.ZipCode,
		Country: a.Country,
	}
}
