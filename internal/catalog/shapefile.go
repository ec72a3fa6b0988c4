package catalog

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/parkhaus/parking-cli/internal/model"
)

// ImportOptions controls building a catalog zone from a point shapefile.
type ImportOptions struct {
	// StreetField is the attribute holding the street name.
	StreetField string
	// RadiusM is the circle radius applied to every imported point.
	RadiusM float64
	// Zone supplies the metadata of the zone the streets are imported
	// into; its Streets field is ignored.
	Zone model.Zone
}

// ImportPointShapefile reads a point shapefile where each record is a
// geofence circle center, groups points by street name (preserving record
// order), and returns a single-zone catalog file.
func ImportPointShapefile(shpPath string, opts ImportOptions) (*File, error) {
	if opts.StreetField == "" {
		opts.StreetField = "street"
	}

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	// Field name → index, shapefile attribute names are zero-padded.
	fields := reader.Fields()
	streetIdx := -1
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(name, opts.StreetField) {
			streetIdx = i
			break
		}
	}
	if streetIdx < 0 {
		return nil, eris.Errorf("catalog: shapefile has no %q field", opts.StreetField)
	}

	zone := opts.Zone
	zone.Streets = nil
	byName := make(map[string]int)
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		point, ok := shape.(*shp.Point)
		if !ok {
			skipped++
			continue
		}

		name := strings.TrimSpace(strings.TrimRight(reader.Attribute(streetIdx), "\x00"))
		if name == "" {
			skipped++
			continue
		}

		circle := model.GeofenceCircle{
			Latitude:  point.Y,
			Longitude: point.X,
			RadiusM:   opts.RadiusM,
		}

		idx, exists := byName[name]
		if !exists {
			zone.Streets = append(zone.Streets, model.Street{Name: name, ZoneID: zone.ID})
			idx = len(zone.Streets) - 1
			byName[name] = idx
		}
		zone.Streets[idx].Circles = append(zone.Streets[idx].Circles, circle)
	}

	if skipped > 0 {
		zap.L().Debug("catalog: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}
	if len(zone.Streets) == 0 {
		return nil, eris.Errorf("catalog: shapefile %s yielded no streets", shpPath)
	}

	return &File{Zones: []model.Zone{zone}}, nil
}

// WriteFile marshals a catalog file to path as YAML.
func WriteFile(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return eris.Wrap(err, "catalog: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "catalog: write %s", path)
	}
	return nil
}
