// Package geocode provides reverse geocoding (coordinate → street name)
// via OSM Nominatim (primary) and Google (fallback).
package geocode

import (
	"context"

	"github.com/rotisserie/eris"
)

// ErrNoResult means the provider answered but knows no street at the
// coordinate. It is a miss, not a failure.
var ErrNoResult = eris.New("geocode: no result")

// ReverseResult holds the street-level outcome of a reverse geocode.
type ReverseResult struct {
	Street      string `json:"street"`
	Suburb      string `json:"suburb,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// ReverseProvider is a single reverse-geocoding backend. Implementations
// own their HTTP timeout and rate limiting; callers treat any error other
// than ErrNoResult as a transient provider failure.
type ReverseProvider interface {
	Name() string
	Available() bool
	ReverseGeocode(ctx context.Context, lat, lon float64) (*ReverseResult, error)
}
