package model

import "fmt"

// ResolutionMethod identifies which strategy produced a ResolvedLocation.
type ResolutionMethod string

const (
	MethodGeofenceHit   ResolutionMethod = "geofence-hit"
	MethodProviderMatch ResolutionMethod = "provider-match"
	MethodNearestStreet ResolutionMethod = "nearest-street-fallback"
	MethodNone          ResolutionMethod = "none"
)

// ResolvedLocation is the outcome of resolving a coordinate against the
// catalog. It is recomputed on every coordinate update and never persisted.
// Zone and Street are nil when Method is MethodNone.
type ResolvedLocation struct {
	Zone     *Zone            `json:"zone,omitempty"`
	Street   *Street          `json:"street,omitempty"`
	Method   ResolutionMethod `json:"method"`
	Provider string           `json:"provider,omitempty"`
}

// MethodString renders the method, including the provider name for
// provider matches, e.g. "provider-match[nominatim]".
func (r ResolvedLocation) MethodString() string {
	if r.Method == MethodProviderMatch && r.Provider != "" {
		return fmt.Sprintf("%s[%s]", r.Method, r.Provider)
	}
	return string(r.Method)
}
