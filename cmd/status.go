package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parkhaus/parking-cli/internal/model"
)

var statusHistory bool

var statusCmd = &cobra.Command{
	Use:   "status <plate>",
	Short: "Show the active session (and history) for a plate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		active := e.Manager.ActiveTicketFor(args[0])
		if active == nil {
			fmt.Println("no active session")
		} else {
			printTicket(*active)
		}

		if !statusHistory {
			return nil
		}

		history := e.Manager.HistoryFor(cmd.Context(), args[0])
		if len(history) == 0 {
			return nil
		}
		fmt.Println("\nhistory:")
		for _, t := range history {
			fmt.Printf("  %s  %s  %-9s  %dh  %.2f\n",
				t.CreatedAt.Format("2006-01-02 15:04"), t.ZoneCode, t.Status, t.DurationHours, t.TotalCost)
		}
		return nil
	},
}

func printTicket(t model.Ticket) {
	fmt.Printf("ticket:  %s\n", t.ID)
	fmt.Printf("plate:   %s\n", t.Plate)
	fmt.Printf("zone:    %s (%s)\n", t.ZoneName, t.ZoneCode)
	fmt.Printf("status:  %s\n", t.Status)
	fmt.Printf("until:   %s\n", t.EndTime.Format("2006-01-02 15:04 MST"))
	fmt.Printf("cost:    %.2f\n", t.TotalCost)
}

func init() {
	statusCmd.Flags().BoolVar(&statusHistory, "history", false, "include past sessions")
	rootCmd.AddCommand(statusCmd)
}
