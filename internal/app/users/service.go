// Package users implements account signup, login and listing.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"placehub/internal/auth"
	"placehub/internal/models"
	"placehub/internal/store"
)

var (
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidSignup signals a malformed signup request.
	ErrInvalidSignup = errors.New("invalid signup input")

	dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC"
)

// Store defines the user persistence operations the service needs.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// TokenIssuer signs tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// Service coordinates account workflows.
type Service interface {
	Signup(ctx context.Context, name, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	List(ctx context.Context) ([]*models.User, error)
}

type service struct {
	store  Store
	tokens TokenIssuer
}

// New constructs a user Service backed by the provided Store.
func New(store Store, tokens TokenIssuer) Service {
	return &service{store: store, tokens: tokens}
}

// Signup registers an account and returns it with a fresh token.
func (s *service) Signup(ctx context.Context, name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" {
		return nil, "", fmt.Errorf("%w: name and email are required", ErrInvalidSignup)
	}
	if len(password) < 6 {
		return nil, "", fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidSignup)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	u := &models.User{Name: name, Email: email, PasswordHash: hash}
	id, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return nil, "", err
	}
	u.ID = id

	token, err := s.tokens.Issue(id)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

// Login checks credentials and returns the user with a fresh token. An
// unknown email still burns a bcrypt compare so timing does not reveal
// which half was wrong.
func (s *service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			_ = auth.CheckPassword(dummyPasswordHash, password)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

// List returns every account.
func (s *service) List(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}
