// Package geofence answers point-in-circle and nearest-circle queries over
// a fixed set of streets.
package geofence

import (
	"math"

	"github.com/parkhaus/parking-cli/internal/model"
)

// earthRadiusM is the mean Earth radius used for great-circle distances.
const earthRadiusM = 6371000.0

// Index is an immutable in-memory set of streets in catalog insertion
// order. All queries are pure functions of the index and their inputs.
type Index struct {
	streets []model.Street
}

// NewIndex builds an index over streets. The slice order is significant:
// Locate returns the first match in this order.
func NewIndex(streets []model.Street) *Index {
	return &Index{streets: streets}
}

// Streets returns the indexed streets in insertion order.
func (ix *Index) Streets() []model.Street {
	return ix.streets
}

// Locate returns the first street whose any circle contains the point
// (distance to center ≤ radius). Ties break on insertion order, not
// distance. Returns nil when no circle contains the point.
func (ix *Index) Locate(lat, lon float64) *model.Street {
	for i := range ix.streets {
		for _, c := range ix.streets[i].Circles {
			if Haversine(lat, lon, c.Latitude, c.Longitude) <= c.RadiusM {
				return &ix.streets[i]
			}
		}
	}
	return nil
}

// Nearest returns the street with the globally minimum circle-center
// distance, or nil if that minimum exceeds maxDistanceM.
func (ix *Index) Nearest(lat, lon, maxDistanceM float64) *model.Street {
	var best *model.Street
	bestDist := math.Inf(1)
	for i := range ix.streets {
		for _, c := range ix.streets[i].Circles {
			d := Haversine(lat, lon, c.Latitude, c.Longitude)
			if d < bestDist {
				bestDist = d
				best = &ix.streets[i]
			}
		}
	}
	if best == nil || bestDist > maxDistanceM {
		return nil
	}
	return best
}

// Haversine returns the great-circle distance in meters between two
// WGS-84 coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180.0
	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lon2 - lon1) * degToRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusM * math.Asin(math.Min(1, math.Sqrt(a)))
}
