package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkhaus/parking-cli/internal/model"
)

const testCatalogYAML = `
zones:
  - id: cc
    name: City Center
    code: CC
    hourly_rate: 2.50
    activation_address: "1980"
    streets:
      - name: Main Street
        circles:
          - lat: 40.7128
            lon: -74.0060
            radius_m: 100
      - name: Oak Avenue
        circles:
          - lat: 40.7200
            lon: -74.0000
  - id: rs
    name: Riverside
    code: RS
    hourly_rate: 1.20
    activation_address: "1981"
    streets:
      - name: Harbor Road
        circles:
          - lat: 40.7300
            lon: -74.0100
            radius_m: 150
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew_LoadsAndIndexes(t *testing.T) {
	c, err := New(writeCatalog(t, testCatalogYAML), 75)
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Len(t, snap.Zones(), 2)
	assert.Len(t, snap.Streets(), 3)

	// Streets keep catalog insertion order across zones.
	assert.Equal(t, "Main Street", snap.Streets()[0].Name)
	assert.Equal(t, "Harbor Road", snap.Streets()[2].Name)

	// Default radius applied when omitted.
	assert.Equal(t, 75.0, snap.Streets()[1].Circles[0].RadiusM)

	// Streets carry their owning zone id.
	assert.Equal(t, "cc", snap.Streets()[0].ZoneID)
	assert.Equal(t, "rs", snap.Streets()[2].ZoneID)
}

func TestSnapshot_Lookups(t *testing.T) {
	c, err := New(writeCatalog(t, testCatalogYAML), 75)
	require.NoError(t, err)
	snap := c.Snapshot()

	require.NotNil(t, snap.ZoneByID("cc"))
	assert.Equal(t, "City Center", snap.ZoneByID("cc").Name)

	require.NotNil(t, snap.ZoneByCode("rs"))
	assert.Equal(t, "Riverside", snap.ZoneByCode("rs").Name)
	assert.Equal(t, snap.ZoneByCode("RS"), snap.ZoneByCode(" rs "))

	require.NotNil(t, snap.ZoneByName("city center"))
	assert.Equal(t, "CC", snap.ZoneByName("city center").Code)

	assert.Nil(t, snap.ZoneByID("nope"))
	assert.Nil(t, snap.ZoneByCode("XX"))
	assert.Nil(t, snap.ZoneByName("Nowhere"))
}

func TestNew_DuplicateCode(t *testing.T) {
	const dup = `
zones:
  - id: a
    name: A
    code: CC
    hourly_rate: 1
  - id: b
    name: B
    code: cc
    hourly_rate: 1
`
	_, err := New(writeCatalog(t, dup), 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate zone code")
}

func TestNew_NegativeRate(t *testing.T) {
	const bad = `
zones:
  - id: a
    name: A
    code: AA
    hourly_rate: -1
`
	_, err := New(writeCatalog(t, bad), 100)
	require.Error(t, err)
}

func TestReload_SwapsSnapshot(t *testing.T) {
	path := writeCatalog(t, testCatalogYAML)
	c, err := New(path, 75)
	require.NoError(t, err)
	before := c.Snapshot()

	const updated = `
zones:
  - id: cc
    name: City Center
    code: CC
    hourly_rate: 3.00
    activation_address: "1980"
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	require.NoError(t, c.Reload())

	after := c.Snapshot()
	assert.NotSame(t, before, after)
	assert.Equal(t, 3.00, after.ZoneByCode("CC").HourlyRate)

	// The old snapshot is untouched.
	assert.Equal(t, 2.50, before.ZoneByCode("CC").HourlyRate)
}

func TestReload_FailureKeepsOldSnapshot(t *testing.T) {
	path := writeCatalog(t, testCatalogYAML)
	c, err := New(path, 75)
	require.NoError(t, err)
	before := c.Snapshot()

	require.NoError(t, os.WriteFile(path, []byte("zones: ["), 0o644))
	require.Error(t, c.Reload())
	assert.Same(t, before, c.Snapshot())
}

func TestNewFromZones(t *testing.T) {
	c, err := NewFromZones([]model.Zone{
		{ID: "z1", Name: "Zone One", Code: "Z1", HourlyRate: 1.5, Streets: []model.Street{
			{Name: "Side Street", Circles: []model.GeofenceCircle{{Latitude: 1, Longitude: 2}}},
		}},
	}, 50)
	require.NoError(t, err)

	snap := c.Snapshot()
	require.Len(t, snap.Streets(), 1)
	assert.Equal(t, 50.0, snap.Streets()[0].Circles[0].RadiusM)
	require.NoError(t, c.Reload())
}
