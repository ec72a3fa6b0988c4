package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parkhaus/parking-cli/internal/catalog"
	"github.com/parkhaus/parking-cli/internal/model"
)

var (
	importOut         string
	importStreetField string
	importRadius      float64
	importZoneID      string
	importZoneName    string
	importZoneCode    string
	importRate        float64
	importActivation  string
)

var catalogImportCmd = &cobra.Command{
	Use:   "import-shp <file.shp>",
	Short: "Build a zone catalog from a point shapefile",
	Long: `Reads a point shapefile where each record marks a geofence circle
center and carries the street name in an attribute field. Points sharing a
street name are grouped into one street, in record order. The result is
written as a catalog YAML file for a single zone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		radius := importRadius
		if radius <= 0 {
			radius = cfg.Catalog.DefaultRadiusM
		}

		f, err := catalog.ImportPointShapefile(args[0], catalog.ImportOptions{
			StreetField: importStreetField,
			RadiusM:     radius,
			Zone: model.Zone{
				ID:                importZoneID,
				Name:              importZoneName,
				Code:              importZoneCode,
				HourlyRate:        importRate,
				ActivationAddress: importActivation,
			},
		})
		if err != nil {
			return err
		}

		if err := catalog.WriteFile(importOut, f); err != nil {
			return err
		}

		zone := f.Zones[0]
		circles := 0
		for _, s := range zone.Streets {
			circles += len(s.Circles)
		}
		fmt.Printf("wrote %s: zone %s, %d streets, %d circles\n",
			importOut, zone.Code, len(zone.Streets), circles)
		return nil
	},
}

func init() {
	catalogImportCmd.Flags().StringVarP(&importOut, "out", "o", "catalog.yaml", "output catalog file")
	catalogImportCmd.Flags().StringVar(&importStreetField, "street-field", "street", "attribute field holding the street name")
	catalogImportCmd.Flags().Float64Var(&importRadius, "radius", 0, "circle radius in meters (default from config)")
	catalogImportCmd.Flags().StringVar(&importZoneID, "zone-id", "", "zone identifier")
	catalogImportCmd.Flags().StringVar(&importZoneName, "zone-name", "", "zone display name")
	catalogImportCmd.Flags().StringVar(&importZoneCode, "zone-code", "", "zone tariff code")
	catalogImportCmd.Flags().Float64Var(&importRate, "rate", 0, "hourly rate")
	catalogImportCmd.Flags().StringVar(&importActivation, "activation", "", "activation address for the zone")
	_ = catalogImportCmd.MarkFlagRequired("zone-id")
	_ = catalogImportCmd.MarkFlagRequired("zone-code")
	catalogCmd.AddCommand(catalogImportCmd)
}
