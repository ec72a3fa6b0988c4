package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <ticket-id>",
	Short: "Cancel an active parking session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		t, err := e.Manager.Cancel(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("cancelled ticket %s (plate %s, zone %s)\n", t.ID, t.Plate, t.ZoneCode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
