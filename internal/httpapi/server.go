// Package httpapi wires the HTTP surface to the user and place services.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"placehub/internal/app/places"
	"placehub/internal/auth"
	"placehub/internal/geocode"
	"placehub/internal/models"
	"placehub/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, name, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	List(ctx context.Context) ([]*models.User, error)
}

// PlaceService captures the place workflows needed by the HTTP handlers.
type PlaceService interface {
	Create(ctx context.Context, creatorID int64, in places.CreateInput) (*models.Place, error)
	Update(ctx context.Context, callerID, placeID int64, title, description string) (*models.Place, error)
	Delete(ctx context.Context, callerID, placeID int64) error
	Get(ctx context.Context, id int64) (*models.Place, error)
	List(ctx context.Context) ([]*models.Place, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Place, error)
}

// TokenVerifier resolves a bearer token to the caller's user id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users  UserService
	places PlaceService
	tokens TokenVerifier
}

// New configures a Server with the given services.
func New(users UserService, placeSvc PlaceService, tokens TokenVerifier) *Server {
	return &Server{users: users, places: placeSvc, tokens: tokens}
}

// Routes exposes the HTTP handlers for accounts and places.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Account routes
	mux.HandleFunc("POST /api/v1/users/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/users/login", s.handleLogin)
	mux.HandleFunc("GET /api/v1/users", s.handleListUsers)

	// Place routes
	mux.HandleFunc("GET /api/v1/places", s.handleListPlaces)
	mux.HandleFunc("GET /api/v1/places/{id}", s.handleGetPlace)
	mux.HandleFunc("GET /api/v1/places/user/{id}", s.handlePlacesByOwner)
	mux.HandleFunc("POST /api/v1/places", s.requireAuth(s.handleCreatePlace))
	mux.HandleFunc("PATCH /api/v1/places/{id}", s.requireAuth(s.handleUpdatePlace))
	mux.HandleFunc("DELETE /api/v1/places/{id}", s.requireAuth(s.handleDeletePlace))

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// authedHandler is a handler that already knows the caller's user id.
type authedHandler func(w http.ResponseWriter, r *http.Request, callerID int64)

// requireAuth parses the Authorization header and rejects requests without a
// valid bearer token.
func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
			return
		}
		callerID, err := s.tokens.Verify(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
			return
		}
		next(w, r, callerID)
	}
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

// placeErrorStatus maps workflow errors to HTTP status codes. Internal
// details (storage handles, raw provider payloads) never reach the client;
// only the sentinel messages do.
func placeErrorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrPlaceNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrNoPlaces):
		return http.StatusNotFound
	case errors.Is(err, places.ErrNotOwner):
		return http.StatusUnauthorized
	case errors.Is(err, places.ErrInvalidInput),
		errors.Is(err, geocode.ErrAddressNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writePlaceError(w http.ResponseWriter, r *http.Request, err error) {
	status := placeErrorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("request failed")
		msg = "something went wrong, please try again"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
