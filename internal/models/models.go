package models

import "time"

// Image holds a stored picture. Key is the provider-side storage handle and
// must never be serialized to clients; only projections leave this package.
type Image struct {
	URL string
	Key string
}

// Location is a geocoded coordinate pair. Coordinates are kept as the
// provider-formatted strings rather than floats.
type Location struct {
	Lat string
	Lng string
}

// Place is a user-owned point of interest.
type Place struct {
	ID          int64
	Title       string
	Description string
	Address     string
	Location    Location
	Image       Image
	CreatorID   int64
	CreatedAt   time.Time
}

// User is an account that owns places. Places holds the ids of owned places
// in insertion order; it is mutated only by the place workflows.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Image        Image
	Places       []int64
	CreatedAt    time.Time
}

// PlaceResponse is the external projection of a Place. It carries the public
// image URL but not the storage handle.
type PlaceResponse struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Address     string           `json:"address"`
	Location    LocationResponse `json:"location"`
	ImageURL    string           `json:"imageUrl"`
	CreatorID   int64            `json:"creatorId"`
}

// LocationResponse mirrors Location for serialization.
type LocationResponse struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

// NewPlaceResponse maps a Place to its external projection.
func NewPlaceResponse(p *Place) PlaceResponse {
	return PlaceResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		Location:    LocationResponse{Lat: p.Location.Lat, Lng: p.Location.Lng},
		ImageURL:    p.Image.URL,
		CreatorID:   p.CreatorID,
	}
}

// NewPlaceResponses maps a slice of places, keeping order.
func NewPlaceResponses(places []*Place) []PlaceResponse {
	out := make([]PlaceResponse, 0, len(places))
	for _, p := range places {
		out = append(out, NewPlaceResponse(p))
	}
	return out
}

// UserResponse is the external projection of a User. Password hash and image
// storage handle are not part of it.
type UserResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Places   []int64 `json:"places"`
}

// NewUserResponse maps a User to its external projection.
func NewUserResponse(u *User) UserResponse {
	places := u.Places
	if places == nil {
		places = []int64{}
	}
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		ImageURL: u.Image.URL,
		Places:   places,
	}
}

// NewUserResponses maps a slice of users, keeping order.
func NewUserResponses(users []*User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
