package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <lat> <lon>",
	Short: "Resolve a coordinate to a parking zone",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return eris.Wrapf(err, "invalid latitude %q", args[0])
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return eris.Wrapf(err, "invalid longitude %q", args[1])
		}

		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		loc := e.Resolver.Resolve(cmd.Context(), lat, lon)
		if loc.Zone == nil {
			fmt.Println("no zone found for coordinate")
			return nil
		}

		fmt.Printf("zone:   %s (%s, %.2f/h)\n", loc.Zone.Name, loc.Zone.Code, loc.Zone.HourlyRate)
		fmt.Printf("street: %s\n", loc.Street.Name)
		fmt.Printf("method: %s\n", loc.MethodString())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
