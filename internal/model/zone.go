// Package model defines the core domain types for zoned parking.
package model

// GeofenceCircle is a circular membership region around a point on a street.
type GeofenceCircle struct {
	Latitude  float64 `yaml:"lat" json:"lat"`
	Longitude float64 `yaml:"lon" json:"lon"`
	RadiusM   float64 `yaml:"radius_m" json:"radius_m"`
}

// Street is a named road segment mapped to exactly one zone and approximated
// by one or more geofence circles.
type Street struct {
	Name    string           `yaml:"name" json:"name"`
	ZoneID  string           `yaml:"-" json:"zone_id"`
	Circles []GeofenceCircle `yaml:"circles" json:"circles"`
}

// Zone is a billing/administrative parking area. Code is unique across the
// catalog. ActivationAddress is the opaque destination (e.g. an SMS
// short-code) that session activations are dispatched to.
type Zone struct {
	ID                string   `yaml:"id" json:"id"`
	Name              string   `yaml:"name" json:"name"`
	Code              string   `yaml:"code" json:"code"`
	HourlyRate        float64  `yaml:"hourly_rate" json:"hourly_rate"`
	ActivationAddress string   `yaml:"activation_address" json:"activation_address"`
	Streets           []Street `yaml:"streets" json:"streets"`
}
