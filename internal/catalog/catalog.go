// Package catalog holds the zone/street registry. The registry is loaded
// from a YAML file into an immutable Snapshot; reloads install a new
// snapshot with a single atomic pointer swap so in-flight resolutions
// never observe a half-updated catalog.
package catalog

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/parkhaus/parking-cli/internal/geofence"
	"github.com/parkhaus/parking-cli/internal/model"
)

// File is the on-disk catalog format.
type File struct {
	Zones []model.Zone `yaml:"zones"`
}

// Snapshot is an immutable view of the catalog plus a prebuilt geofence
// index over all streets in catalog insertion order.
type Snapshot struct {
	zones    []model.Zone
	byID     map[string]*model.Zone
	byCode   map[string]*model.Zone
	streets  []model.Street
	geoIndex *geofence.Index
}

// Zones returns all zones in catalog order.
func (s *Snapshot) Zones() []model.Zone {
	return s.zones
}

// ZoneByID looks a zone up by identifier.
func (s *Snapshot) ZoneByID(id string) *model.Zone {
	return s.byID[id]
}

// ZoneByCode looks a zone up by its short code, case-insensitively.
func (s *Snapshot) ZoneByCode(code string) *model.Zone {
	return s.byCode[strings.ToUpper(strings.TrimSpace(code))]
}

// ZoneByName looks a zone up by display name, case-insensitively.
func (s *Snapshot) ZoneByName(name string) *model.Zone {
	for i := range s.zones {
		if strings.EqualFold(s.zones[i].Name, strings.TrimSpace(name)) {
			return &s.zones[i]
		}
	}
	return nil
}

// Streets returns every street of every zone in insertion order.
func (s *Snapshot) Streets() []model.Street {
	return s.streets
}

// GeofenceIndex returns the index built over Streets.
func (s *Snapshot) GeofenceIndex() *geofence.Index {
	return s.geoIndex
}

// Catalog is a reloadable handle on the current Snapshot.
type Catalog struct {
	path           string
	defaultRadiusM float64
	current        atomic.Pointer[Snapshot]
}

// New loads the catalog file at path and returns a reloadable Catalog.
// Circles with no radius take defaultRadiusM.
func New(path string, defaultRadiusM float64) (*Catalog, error) {
	c := &Catalog{path: path, defaultRadiusM: defaultRadiusM}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromZones builds a catalog directly from zones, without a backing
// file. Reload is a no-op for such catalogs.
func NewFromZones(zones []model.Zone, defaultRadiusM float64) (*Catalog, error) {
	snap, err := buildSnapshot(zones, defaultRadiusM)
	if err != nil {
		return nil, err
	}
	c := &Catalog{defaultRadiusM: defaultRadiusM}
	c.current.Store(snap)
	return c, nil
}

// Snapshot returns the current immutable snapshot.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Reload re-reads the catalog file and atomically swaps in the new
// snapshot. On failure the previous snapshot stays installed.
func (c *Catalog) Reload() error {
	if c.path == "" {
		return nil
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return eris.Wrapf(err, "catalog: read %s", c.path)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return eris.Wrapf(err, "catalog: parse %s", c.path)
	}

	snap, err := buildSnapshot(f.Zones, c.defaultRadiusM)
	if err != nil {
		return err
	}

	c.current.Store(snap)
	zap.L().Info("catalog loaded",
		zap.String("path", c.path),
		zap.Int("zones", len(snap.zones)),
		zap.Int("streets", len(snap.streets)),
	)
	return nil
}

func buildSnapshot(zones []model.Zone, defaultRadiusM float64) (*Snapshot, error) {
	snap := &Snapshot{
		zones:  zones,
		byID:   make(map[string]*model.Zone, len(zones)),
		byCode: make(map[string]*model.Zone, len(zones)),
	}

	for i := range snap.zones {
		z := &snap.zones[i]
		if z.ID == "" {
			return nil, eris.Errorf("catalog: zone %q has no id", z.Name)
		}
		if z.HourlyRate < 0 {
			return nil, eris.Errorf("catalog: zone %s has negative hourly rate", z.ID)
		}
		code := strings.ToUpper(strings.TrimSpace(z.Code))
		if code == "" {
			return nil, eris.Errorf("catalog: zone %s has no code", z.ID)
		}
		if _, dup := snap.byCode[code]; dup {
			return nil, eris.Errorf("catalog: duplicate zone code %s", code)
		}
		if _, dup := snap.byID[z.ID]; dup {
			return nil, eris.Errorf("catalog: duplicate zone id %s", z.ID)
		}
		snap.byID[z.ID] = z
		snap.byCode[code] = z

		for j := range z.Streets {
			st := &z.Streets[j]
			if st.Name == "" {
				return nil, eris.Errorf("catalog: zone %s has an unnamed street", z.ID)
			}
			st.ZoneID = z.ID
			for k := range st.Circles {
				if st.Circles[k].RadiusM == 0 {
					st.Circles[k].RadiusM = defaultRadiusM
				}
				if st.Circles[k].RadiusM <= 0 {
					return nil, eris.Errorf("catalog: street %s circle %d has non-positive radius", st.Name, k)
				}
			}
			snap.streets = append(snap.streets, *st)
		}
	}

	snap.geoIndex = geofence.NewIndex(snap.streets)
	return snap, nil
}
