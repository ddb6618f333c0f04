package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"placehub/internal/models"
)

// CreateUser registers a new user and returns the assigned id.
func (s *Store) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, image_url, image_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, u.Name, u.Email, u.PasswordHash, u.Image.URL, u.Image.Key).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrEmailTaken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// UserByID loads a user together with the ids of the places it owns.
func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, image_url, image_key, created_at
		FROM users
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, err
	}

	u.Places, err = s.PlaceIDsByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UserByEmail loads a user by email, including the password hash for
// credential checks.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, image_url, image_key, created_at
		FROM users
		WHERE email = $1
	`, email))
}

func (s *Store) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Image.URL, &u.Image.Key, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users with their owned place ids attached.
func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, password_hash, image_url, image_key, created_at
		FROM users
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	byID := make(map[int64]*models.User)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
			&u.Image.URL, &u.Image.Key, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &u)
		byID[u.ID] = &u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	memberships, err := s.db.QueryContext(ctx, `
		SELECT user_id, place_id
		FROM user_places
		ORDER BY user_id ASC, position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select memberships: %w", err)
	}
	defer memberships.Close()

	for memberships.Next() {
		var userID, placeID int64
		if err := memberships.Scan(&userID, &placeID); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		if u, ok := byID[userID]; ok {
			u.Places = append(u.Places, placeID)
		}
	}
	if err := memberships.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}

	return users, nil
}

// PlaceIDsByUser returns the owner's place ids in list order.
func (s *Store) PlaceIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT place_id
		FROM user_places
		WHERE user_id = $1
		ORDER BY position ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select place ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan place id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AppendPlace adds a place id to the end of the owner's list. It must run in
// the same scope as the paired place insert.
func (s *Store) AppendPlace(ctx context.Context, sc Scope, userID, placeID int64) error {
	tx, err := scopeTx(sc)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_places (user_id, position, place_id)
		VALUES ($1, (SELECT COALESCE(MAX(position) + 1, 0) FROM user_places WHERE user_id = $1), $2)
	`, userID, placeID); err != nil {
		return fmt.Errorf("append place to user: %w", err)
	}
	return nil
}

// RemovePlace detaches a place id from the owner's list. It must run in the
// same scope as the paired place delete.
func (s *Store) RemovePlace(ctx context.Context, sc Scope, userID, placeID int64) error {
	tx, err := scopeTx(sc)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		DELETE FROM user_places
		WHERE user_id = $1 AND place_id = $2
	`, userID, placeID)
	if err != nil {
		return fmt.Errorf("remove place from user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove place from user: %w", err)
	}
	if rows == 0 {
		return ErrPlaceNotFound
	}
	return nil
}
