package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and build the zone catalog",
}

var catalogZonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List catalog zones and their streets",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		for _, z := range e.Catalog.Snapshot().Zones() {
			fmt.Printf("%s  %-20s  %.2f/h  activation %s\n", z.Code, z.Name, z.HourlyRate, z.ActivationAddress)
			for _, s := range z.Streets {
				fmt.Printf("    %s (%d circles)\n", s.Name, len(s.Circles))
			}
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogZonesCmd)
	rootCmd.AddCommand(catalogCmd)
}
