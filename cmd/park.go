package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var parkCmd = &cobra.Command{
	Use:   "park <plate> <zone-code> <hours>",
	Short: "Start a parking session",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, err := strconv.Atoi(args[2])
		if err != nil {
			return eris.Wrapf(err, "invalid duration %q", args[2])
		}

		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		zone := e.Catalog.Snapshot().ZoneByCode(args[1])
		if zone == nil {
			return eris.Errorf("unknown zone code %q", args[1])
		}

		t, err := e.Manager.StartSession(cmd.Context(), args[0], *zone, hours)
		if err != nil {
			return err
		}

		fmt.Printf("ticket:  %s\n", t.ID)
		fmt.Printf("zone:    %s (%s)\n", t.ZoneName, t.ZoneCode)
		fmt.Printf("until:   %s\n", t.EndTime.Format("2006-01-02 15:04 MST"))
		fmt.Printf("cost:    %.2f\n", t.TotalCost)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parkCmd)
}
