package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkleiva/dugnadsplan/pkg/core/services"
)

// AssignShiftsCmd creates the assignShifts command
func AssignShiftsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assignShifts",
		Short: "Distribute pending shifts across families, lowest points first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")

			result, err := services.AssignShiftsAutomatically(
				app.Ctx,
				app.Store,
				app.Notifier,
				app.Policy(),
				app.Logger,
				app.Cfg.TeamID,
				date,
			)
			if err != nil {
				return err
			}

			if result.Success {
				fmt.Printf("\n✓ All pending shifts assigned (%d assignments)\n\n", len(result.Assignments))
			} else {
				fmt.Printf("\n⚠️  Assignment run finished with gaps: %d assignments, %d shifts unfilled\n\n",
					len(result.Assignments), len(result.UnassignedShifts))
			}

			for _, a := range result.Assignments {
				fmt.Printf("  ✓ shift %s → family %s\n", a.ShiftID, a.FamilyID)
			}
			if len(result.UnassignedShifts) > 0 {
				fmt.Println()
				for _, s := range result.UnassignedShifts {
					fmt.Printf("  ✗ %s %s unfilled\n", s.Date, s.Role)
				}
			}
			for _, w := range result.Warnings {
				fmt.Printf("  ! %s\n", w)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("date", "", "Only assign shifts on this date (YYYY-MM-DD)")

	return cmd
}
