// Package resolver decides which parking zone a raw GPS coordinate falls
// in. It chains three strategies: an exact geofence hit, a cascade of
// external reverse-geocode providers matched against catalog street names,
// and a nearest-street fallback.
package resolver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/parkhaus/parking-cli/internal/catalog"
	"github.com/parkhaus/parking-cli/internal/model"
	"github.com/parkhaus/parking-cli/internal/namematch"
	"github.com/parkhaus/parking-cli/pkg/geocode"
)

const (
	defaultNearestMaxDistanceM = 200.0
	defaultProviderTimeout     = 8 * time.Second
)

// Resolver resolves coordinates against the current catalog snapshot.
// Providers are tried strictly in the order given; a provider failure is
// logged and treated as no answer, never aborting the chain. Resolver
// itself is stateless and safe for concurrent use.
type Resolver struct {
	catalog         *catalog.Catalog
	providers       []geocode.ReverseProvider
	nearestMaxDist  float64
	providerTimeout time.Duration
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithNearestMaxDistance sets the cap in meters for the nearest-street
// fallback.
func WithNearestMaxDistance(meters float64) Option {
	return func(r *Resolver) {
		if meters > 0 {
			r.nearestMaxDist = meters
		}
	}
}

// WithProviderTimeout sets the independent timeout applied to each
// provider call. The chain as a whole has no global timeout.
func WithProviderTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.providerTimeout = d
		}
	}
}

// New creates a Resolver over cat, querying providers in priority order.
func New(cat *catalog.Catalog, providers []geocode.ReverseProvider, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:         cat,
		providers:       providers,
		nearestMaxDist:  defaultNearestMaxDistanceM,
		providerTimeout: defaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the zone and street for a coordinate, or an empty
// ResolvedLocation (method "none") when no strategy decides. A resolution
// miss is not an error.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64) model.ResolvedLocation {
	snap := r.catalog.Snapshot()

	// 1. Exact geofence hit: offline, zero network cost.
	if street := snap.GeofenceIndex().Locate(lat, lon); street != nil {
		return model.ResolvedLocation{
			Zone:   snap.ZoneByID(street.ZoneID),
			Street: street,
			Method: model.MethodGeofenceHit,
		}
	}

	// 2. Provider cascade, sequential to respect per-provider rate limits.
	for _, p := range r.providers {
		if !p.Available() {
			continue
		}
		if loc, ok := r.tryProvider(ctx, snap, p, lat, lon); ok {
			return loc
		}
	}

	// 3. Nearest street within the configured cap.
	if street := snap.GeofenceIndex().Nearest(lat, lon, r.nearestMaxDist); street != nil {
		return model.ResolvedLocation{
			Zone:   snap.ZoneByID(street.ZoneID),
			Street: street,
			Method: model.MethodNearestStreet,
		}
	}

	return model.ResolvedLocation{Method: model.MethodNone}
}

// tryProvider queries one provider and matches the returned street name
// against every catalog street. It reports ok=false on provider failure,
// no result, or no name match.
func (r *Resolver) tryProvider(ctx context.Context, snap *catalog.Snapshot, p geocode.ReverseProvider, lat, lon float64) (model.ResolvedLocation, bool) {
	callCtx, cancel := context.WithTimeout(ctx, r.providerTimeout)
	defer cancel()

	result, err := p.ReverseGeocode(callCtx, lat, lon)
	if err != nil {
		zap.L().Debug("resolver: provider gave no answer, trying next",
			zap.String("provider", p.Name()),
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err),
		)
		return model.ResolvedLocation{}, false
	}

	streets := snap.Streets()
	for i := range streets {
		if namematch.Matches(streets[i].Name, result.Street) {
			return model.ResolvedLocation{
				Zone:     snap.ZoneByID(streets[i].ZoneID),
				Street:   &streets[i],
				Method:   model.MethodProviderMatch,
				Provider: p.Name(),
			}, true
		}
	}

	zap.L().Debug("resolver: provider street not in catalog",
		zap.String("provider", p.Name()),
		zap.String("street", result.Street),
	)
	return model.ResolvedLocation{}, false
}
