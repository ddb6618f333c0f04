package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"placehub/internal/models"
)

func TestCreatePlaceWithMembershipCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO places (title, description, address, lat, lng, image_url, image_key, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`)).
		WithArgs("Office", "HQ", "1600 Amphitheatre Pkwy, Mountain View, CA", "37.422", "-122.084",
			"https://cdn.example.com/img.png", "abc-img.png", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(31)))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO user_places (user_id, position, place_id)
		VALUES ($1, (SELECT COALESCE(MAX(position) + 1, 0) FROM user_places WHERE user_id = $1), $2)
	`)).
		WithArgs(int64(7), int64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sc, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	p := &models.Place{
		Title:       "Office",
		Description: "HQ",
		Address:     "1600 Amphitheatre Pkwy, Mountain View, CA",
		Location:    models.Location{Lat: "37.422", Lng: "-122.084"},
		Image:       models.Image{URL: "https://cdn.example.com/img.png", Key: "abc-img.png"},
		CreatorID:   7,
	}
	id, err := s.InsertPlace(ctx, sc, p)
	if err != nil {
		t.Fatalf("InsertPlace: %v", err)
	}
	if id != 31 {
		t.Fatalf("expected place id 31, got %d", id)
	}

	if err := s.AppendPlace(ctx, sc, 7, id); err != nil {
		t.Fatalf("AppendPlace: %v", err)
	}
	if err := sc.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreatePlaceMembershipFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO places (title, description, address, lat, lng, image_url, image_key, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`)).
		WithArgs("Office", "HQ", "addr", "1", "2", "u", "k", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(31)))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO user_places (user_id, position, place_id)
		VALUES ($1, (SELECT COALESCE(MAX(position) + 1, 0) FROM user_places WHERE user_id = $1), $2)
	`)).
		WithArgs(int64(7), int64(31)).
		WillReturnError(errors.New("membership write failed"))
	mock.ExpectRollback()

	sc, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	p := &models.Place{
		Title: "Office", Description: "HQ", Address: "addr",
		Location:  models.Location{Lat: "1", Lng: "2"},
		Image:     models.Image{URL: "u", Key: "k"},
		CreatorID: 7,
	}
	if _, err := s.InsertPlace(ctx, sc, p); err != nil {
		t.Fatalf("InsertPlace: %v", err)
	}
	if err := s.AppendPlace(ctx, sc, 7, 31); err == nil {
		t.Fatal("expected AppendPlace error")
	}
	if err := sc.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeletePlaceWithMembershipCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM places
		WHERE id = $1
	`)).
		WithArgs(int64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM user_places
		WHERE user_id = $1 AND place_id = $2
	`)).
		WithArgs(int64(7), int64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sc, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.DeletePlace(ctx, sc, 31); err != nil {
		t.Fatalf("DeletePlace: %v", err)
	}
	if err := s.RemovePlace(ctx, sc, 7, 31); err != nil {
		t.Fatalf("RemovePlace: %v", err)
	}
	if err := sc.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeletePlaceMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM places
		WHERE id = $1
	`)).
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	sc, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.DeletePlace(ctx, sc, 404); !errors.Is(err, ErrPlaceNotFound) {
		t.Fatalf("expected ErrPlaceNotFound, got %v", err)
	}
	if err := sc.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestScopeRejectedAfterCommit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()

	sc, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := sc.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := sc.Abort(); err != nil {
		t.Fatalf("Abort after Commit should be a no-op, got %v", err)
	}
	if _, err := s.InsertPlace(ctx, sc, &models.Place{}); err == nil {
		t.Fatal("expected error using a finished scope")
	}
}

func TestPlaceWithOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT p.id, p.title, p.description, p.address, p.lat, p.lng,
		       p.image_url, p.image_key, p.creator_id, p.created_at,
		       u.id, u.name, u.email
		FROM places p
		JOIN users u ON u.id = p.creator_id
		WHERE p.id = $1
	`)).
		WithArgs(int64(31)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "description", "address", "lat", "lng",
			"image_url", "image_key", "creator_id", "created_at",
			"uid", "name", "email",
		}).AddRow(int64(31), "Office", "HQ", "addr", "37.422", "-122.084",
			"https://cdn.example.com/img.png", "abc-img.png", int64(7), testTime(),
			int64(7), "Max", "max@example.com"))

	p, owner, err := s.PlaceWithOwner(context.Background(), 31)
	if err != nil {
		t.Fatalf("PlaceWithOwner: %v", err)
	}
	if p.Image.Key != "abc-img.png" {
		t.Fatalf("expected storage key to be loaded for cleanup, got %q", p.Image.Key)
	}
	if owner.ID != 7 || owner.Name != "Max" {
		t.Fatalf("unexpected owner: %#v", owner)
	}
	if owner.PasswordHash != "" {
		t.Fatalf("owner password hash should not be loaded, got %q", owner.PasswordHash)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPlaceWithOwnerNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT p.id, p.title, p.description, p.address, p.lat, p.lng,
		       p.image_url, p.image_key, p.creator_id, p.created_at,
		       u.id, u.name, u.email
		FROM places p
		JOIN users u ON u.id = p.creator_id
		WHERE p.id = $1
	`)).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, _, err = s.PlaceWithOwner(context.Background(), 404)
	if !errors.Is(err, ErrPlaceNotFound) {
		t.Fatalf("expected ErrPlaceNotFound, got %v", err)
	}
}

func TestPlacesByCreatorEmptyList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT p.id, p.title, p.description, p.address, p.lat, p.lng,
		       p.image_url, p.image_key, p.creator_id, p.created_at
		FROM user_places up
		JOIN places p ON p.id = up.place_id
		WHERE up.user_id = $1
		ORDER BY up.position ASC
	`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "description", "address", "lat", "lng",
			"image_url", "image_key", "creator_id", "created_at",
		}))

	// An unknown owner produces the same empty result set, so both cases
	// surface as ErrNoPlaces.
	_, err = s.PlacesByCreator(context.Background(), 9)
	if !errors.Is(err, ErrNoPlaces) {
		t.Fatalf("expected ErrNoPlaces, got %v", err)
	}
}

func TestUpdatePlaceNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		UPDATE places
		SET title = $1, description = $2
		WHERE id = $3
		RETURNING `+placeColumns+`
	`)).
		WithArgs("Title", "Desc", int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err = s.UpdatePlace(context.Background(), 404, "Title", "Desc")
	if !errors.Is(err, ErrPlaceNotFound) {
		t.Fatalf("expected ErrPlaceNotFound, got %v", err)
	}
}
