// Package geocode resolves free-text addresses into coordinates via an
// external provider.
package geocode

import (
	"context"
	"errors"
)

var (
	// ErrAddressNotFound signals the provider could not resolve the text.
	ErrAddressNotFound = errors.New("address could not be resolved")
	// ErrUnavailable signals a transport or provider failure.
	ErrUnavailable = errors.New("geocoding service unavailable")
)

// Location is a resolved address with provider-formatted coordinates.
type Location struct {
	Address string
	Lat     string
	Lng     string
}

// Geocoder turns free-text addresses into locations. Implementations decide
// timeouts; no retries happen at this layer.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (Location, error)
}
