package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"placehub/internal/models"
)

const placeColumns = `id, title, description, address, lat, lng, image_url, image_key, creator_id, created_at`

// InsertPlace writes a new place inside the given scope and returns the
// assigned id. The paired AppendPlace call must share the scope.
func (s *Store) InsertPlace(ctx context.Context, sc Scope, p *models.Place) (int64, error) {
	tx, err := scopeTx(sc)
	if err != nil {
		return 0, err
	}
	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO places (title, description, address, lat, lng, image_url, image_key, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, p.Title, p.Description, p.Address, p.Location.Lat, p.Location.Lng,
		p.Image.URL, p.Image.Key, p.CreatorID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert place: %w", err)
	}
	return id, nil
}

// PlaceByID loads a single place.
func (s *Store) PlaceByID(ctx context.Context, id int64) (*models.Place, error) {
	return scanPlace(s.db.QueryRowContext(ctx, `
		SELECT `+placeColumns+`
		FROM places
		WHERE id = $1
	`, id))
}

// PlaceWithOwner loads a place joined with its owning user. The owner comes
// back without the password hash; the place keeps its storage handle so the
// delete workflow can clean up the stored image.
func (s *Store) PlaceWithOwner(ctx context.Context, id int64) (*models.Place, *models.User, error) {
	var (
		p models.Place
		u models.User
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.title, p.description, p.address, p.lat, p.lng,
		       p.image_url, p.image_key, p.creator_id, p.created_at,
		       u.id, u.name, u.email
		FROM places p
		JOIN users u ON u.id = p.creator_id
		WHERE p.id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Description, &p.Address,
		&p.Location.Lat, &p.Location.Lng, &p.Image.URL, &p.Image.Key,
		&p.CreatorID, &p.CreatedAt, &u.ID, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrPlaceNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("select place with owner: %w", err)
	}
	return &p, &u, nil
}

// UpdatePlace rewrites title and description, the only mutable fields.
func (s *Store) UpdatePlace(ctx context.Context, id int64, title, description string) (*models.Place, error) {
	p, err := scanPlace(s.db.QueryRowContext(ctx, `
		UPDATE places
		SET title = $1, description = $2
		WHERE id = $3
		RETURNING `+placeColumns+`
	`, title, description, id))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePlace removes a place inside the given scope. The paired RemovePlace
// call must share the scope.
func (s *Store) DeletePlace(ctx context.Context, sc Scope, id int64) error {
	tx, err := scopeTx(sc)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		DELETE FROM places
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete place: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete place: %w", err)
	}
	if rows == 0 {
		return ErrPlaceNotFound
	}
	return nil
}

// ListPlaces returns every place.
func (s *Store) ListPlaces(ctx context.Context) ([]*models.Place, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+placeColumns+`
		FROM places
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select places: %w", err)
	}
	defer rows.Close()
	return collectPlaces(rows)
}

// PlacesByCreator returns the owner's places in list order. Both an unknown
// owner and an owner with an empty list yield ErrNoPlaces.
func (s *Store) PlacesByCreator(ctx context.Context, userID int64) ([]*models.Place, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, p.description, p.address, p.lat, p.lng,
		       p.image_url, p.image_key, p.creator_id, p.created_at
		FROM user_places up
		JOIN places p ON p.id = up.place_id
		WHERE up.user_id = $1
		ORDER BY up.position ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select places by creator: %w", err)
	}
	defer rows.Close()

	places, err := collectPlaces(rows)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, ErrNoPlaces
	}
	return places, nil
}

func scanPlace(row *sql.Row) (*models.Place, error) {
	var p models.Place
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Address,
		&p.Location.Lat, &p.Location.Lng, &p.Image.URL, &p.Image.Key,
		&p.CreatorID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan place: %w", err)
	}
	return &p, nil
}

func collectPlaces(rows *sql.Rows) ([]*models.Place, error) {
	var places []*models.Place
	for rows.Next() {
		var p models.Place
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Address,
			&p.Location.Lat, &p.Location.Lng, &p.Image.URL, &p.Image.Key,
			&p.CreatorID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate places: %w", err)
	}
	return places, nil
}
