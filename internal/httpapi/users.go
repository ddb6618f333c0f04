package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"placehub/internal/app/users"
	"placehub/internal/models"
	"placehub/internal/store"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  models.UserResponse `json:"user"`
	Token string              `json:"token"`
}

type usersResponse struct {
	Users []models.UserResponse `json:"users"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid JSON payload"})
		return
	}

	u, token, err := s.users.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "email already registered"})
		case errors.Is(err, users.ErrInvalidSignup):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "signup failed"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: models.NewUserResponse(u), Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid JSON payload"})
		return
	}

	u, token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "login failed"})
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: models.NewUserResponse(u), Token: token})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "listing users failed"})
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: models.NewUserResponses(list)})
}
