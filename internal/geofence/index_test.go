package geofence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkhaus/parking-cli/internal/model"
)

func testStreets() []model.Street {
	return []model.Street{
		{
			Name:   "Main Street",
			ZoneID: "cc",
			Circles: []model.GeofenceCircle{
				{Latitude: 40.7128, Longitude: -74.0060, RadiusM: 100},
			},
		},
		{
			Name:   "Oak Avenue",
			ZoneID: "cc",
			Circles: []model.GeofenceCircle{
				{Latitude: 40.7200, Longitude: -74.0000, RadiusM: 80},
				{Latitude: 40.7210, Longitude: -73.9990, RadiusM: 80},
			},
		},
	}
}

func TestHaversine(t *testing.T) {
	// Identical points.
	assert.Zero(t, Haversine(40.7128, -74.0060, 40.7128, -74.0060))

	// One degree of latitude is roughly 111 km.
	d := Haversine(40.0, -74.0, 41.0, -74.0)
	assert.InDelta(t, 111195, d, 300)
}

func TestIndex_Locate_Inside(t *testing.T) {
	ix := NewIndex(testStreets())

	got := ix.Locate(40.7128, -74.0060)
	require.NotNil(t, got)
	assert.Equal(t, "Main Street", got.Name)

	// ~50 m north of the Main Street center is still inside the 100 m circle.
	got = ix.Locate(40.71325, -74.0060)
	require.NotNil(t, got)
	assert.Equal(t, "Main Street", got.Name)
}

func TestIndex_Locate_Outside(t *testing.T) {
	ix := NewIndex(testStreets())
	assert.Nil(t, ix.Locate(41.0, -74.0))
}

func TestIndex_Locate_FirstMatchWins(t *testing.T) {
	// Two overlapping circles on different streets: insertion order decides,
	// even when the second street's center is closer.
	streets := []model.Street{
		{Name: "First Street", ZoneID: "a", Circles: []model.GeofenceCircle{
			{Latitude: 40.7000, Longitude: -74.0000, RadiusM: 500},
		}},
		{Name: "Second Street", ZoneID: "b", Circles: []model.GeofenceCircle{
			{Latitude: 40.7020, Longitude: -74.0000, RadiusM: 500},
		}},
	}
	ix := NewIndex(streets)

	got := ix.Locate(40.7019, -74.0000)
	require.NotNil(t, got)
	assert.Equal(t, "First Street", got.Name)
}

func TestIndex_Nearest(t *testing.T) {
	ix := NewIndex(testStreets())

	// ~150 m from the Main Street center: outside the circle, within 200 m.
	got := ix.Nearest(40.71415, -74.0060, 200)
	require.NotNil(t, got)
	assert.Equal(t, "Main Street", got.Name)

	// Same point, tighter cap: no result.
	assert.Nil(t, ix.Nearest(40.71415, -74.0060, 100))
}

func TestIndex_Nearest_PicksGlobalMinimum(t *testing.T) {
	ix := NewIndex(testStreets())

	// Near Oak Avenue's second circle.
	got := ix.Nearest(40.7215, -73.9985, 200)
	require.NotNil(t, got)
	assert.Equal(t, "Oak Avenue", got.Name)
}

func TestIndex_Empty(t *testing.T) {
	ix := NewIndex(nil)
	assert.Nil(t, ix.Locate(40.0, -74.0))
	assert.Nil(t, ix.Nearest(40.0, -74.0, 1000))
}
