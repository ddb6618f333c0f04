// Package places implements the place lifecycle workflows: geocode, upload,
// then a transactional write that keeps a place and its owner's place list
// in step.
package places

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"placehub/internal/blobstore"
	"placehub/internal/geocode"
	"placehub/internal/models"
	"placehub/internal/store"
)

var (
	// ErrNotOwner signals an authenticated caller that does not own the place.
	ErrNotOwner = errors.New("not authorized to modify this place")
	// ErrInvalidInput signals a missing or empty required field.
	ErrInvalidInput = errors.New("invalid place input")
	// ErrCreateFailed is the generic write-phase failure for creation.
	ErrCreateFailed = errors.New("creating place failed")
	// ErrDeleteFailed is the generic write-phase failure for deletion.
	ErrDeleteFailed = errors.New("deleting place failed")
)

// PlaceStore defines the place persistence operations the workflows need.
// Writes that must pair with a user-list write take a store.Scope.
type PlaceStore interface {
	Begin(ctx context.Context) (store.Scope, error)
	InsertPlace(ctx context.Context, sc store.Scope, p *models.Place) (int64, error)
	DeletePlace(ctx context.Context, sc store.Scope, id int64) error
	PlaceByID(ctx context.Context, id int64) (*models.Place, error)
	PlaceWithOwner(ctx context.Context, id int64) (*models.Place, *models.User, error)
	UpdatePlace(ctx context.Context, id int64, title, description string) (*models.Place, error)
	ListPlaces(ctx context.Context) ([]*models.Place, error)
	PlacesByCreator(ctx context.Context, userID int64) ([]*models.Place, error)
}

// UserStore defines the owner-side operations the workflows need.
type UserStore interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
	AppendPlace(ctx context.Context, sc store.Scope, userID, placeID int64) error
	RemovePlace(ctx context.Context, sc store.Scope, userID, placeID int64) error
}

// CreateInput carries the validated fields for a new place.
type CreateInput struct {
	Title       string
	Description string
	Address     string
	Image       []byte
	ImageName   string
}

// Service coordinates place workflows.
type Service interface {
	Create(ctx context.Context, creatorID int64, in CreateInput) (*models.Place, error)
	Update(ctx context.Context, callerID, placeID int64, title, description string) (*models.Place, error)
	Delete(ctx context.Context, callerID, placeID int64) error
	Get(ctx context.Context, id int64) (*models.Place, error)
	List(ctx context.Context) ([]*models.Place, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Place, error)
}

type service struct {
	places PlaceStore
	users  UserStore
	geo    geocode.Geocoder
	blobs  blobstore.ObjectStore
	log    zerolog.Logger
}

// New constructs a place Service from its collaborators.
func New(places PlaceStore, users UserStore, geo geocode.Geocoder, blobs blobstore.ObjectStore, log zerolog.Logger) Service {
	return &service{places: places, users: users, geo: geo, blobs: blobs, log: log}
}

// Create runs the creation workflow in fixed order: resolve the address,
// upload the image, then insert the place and append it to the owner's list
// in one scope. The external calls happen before the scope opens and are
// never rolled back; a write-phase failure leaves the upload orphaned, which
// is logged and accepted.
func (s *service) Create(ctx context.Context, creatorID int64, in CreateInput) (*models.Place, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	if _, err := s.users.UserByID(ctx, creatorID); err != nil {
		return nil, err
	}

	loc, err := s.geo.Resolve(ctx, in.Address)
	if err != nil {
		return nil, err
	}

	obj, err := s.blobs.Upload(ctx, in.Image, in.ImageName)
	if err != nil {
		return nil, err
	}

	p := &models.Place{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Address:     loc.Address,
		Location:    models.Location{Lat: loc.Lat, Lng: loc.Lng},
		Image:       models.Image{URL: obj.URL, Key: obj.Key},
		CreatorID:   creatorID,
	}

	sc, err := s.places.Begin(ctx)
	if err != nil {
		s.logOrphan(obj.Key, err)
		return nil, ErrCreateFailed
	}
	defer sc.Abort()

	id, err := s.places.InsertPlace(ctx, sc, p)
	if err != nil {
		s.logOrphan(obj.Key, err)
		return nil, ErrCreateFailed
	}
	if err := s.users.AppendPlace(ctx, sc, creatorID, id); err != nil {
		s.logOrphan(obj.Key, err)
		return nil, ErrCreateFailed
	}
	if err := sc.Commit(); err != nil {
		s.logOrphan(obj.Key, err)
		return nil, ErrCreateFailed
	}

	p.ID = id
	return p, nil
}

// Update rewrites title and description after checking ownership. A single
// document changes, so no scope is needed.
func (s *service) Update(ctx context.Context, callerID, placeID int64, title, description string) (*models.Place, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrInvalidInput)
	}

	p, err := s.places.PlaceByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if p.CreatorID != callerID {
		return nil, ErrNotOwner
	}

	return s.places.UpdatePlace(ctx, placeID, title, description)
}

// Delete removes a place and its owner-list entry in one scope, then makes a
// best-effort attempt to delete the stored image. Cleanup failures are
// logged, never surfaced; the deletion has already committed.
func (s *service) Delete(ctx context.Context, callerID, placeID int64) error {
	p, owner, err := s.places.PlaceWithOwner(ctx, placeID)
	if err != nil {
		return err
	}
	if owner.ID != callerID {
		return ErrNotOwner
	}

	sc, err := s.places.Begin(ctx)
	if err != nil {
		return ErrDeleteFailed
	}
	defer sc.Abort()

	if err := s.places.DeletePlace(ctx, sc, placeID); err != nil {
		return ErrDeleteFailed
	}
	if err := s.users.RemovePlace(ctx, sc, owner.ID, placeID); err != nil {
		return ErrDeleteFailed
	}
	if err := sc.Commit(); err != nil {
		return ErrDeleteFailed
	}

	if p.Image.Key != "" {
		if err := s.blobs.Delete(ctx, p.Image.Key); err != nil {
			s.log.Warn().Err(err).Str("storage_key", p.Image.Key).
				Int64("place_id", placeID).
				Msg("best-effort image cleanup failed")
		}
	}
	return nil
}

// Get loads a single place.
func (s *service) Get(ctx context.Context, id int64) (*models.Place, error) {
	return s.places.PlaceByID(ctx, id)
}

// List returns every place.
func (s *service) List(ctx context.Context) ([]*models.Place, error) {
	return s.places.ListPlaces(ctx)
}

// ListByOwner returns the owner's places. A missing owner and an owner with
// zero places surface the same way (store.ErrNoPlaces).
func (s *service) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Place, error) {
	return s.places.PlacesByCreator(ctx, ownerID)
}

func validateCreate(in CreateInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Address) == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidInput)
	}
	if len(in.Image) == 0 {
		return fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	return nil
}

func (s *service) logOrphan(key string, err error) {
	s.log.Error().Err(err).Str("storage_key", key).
		Msg("place write failed after image upload, stored object orphaned")
}
