package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ListFamiliesCmd creates the listFamilies command
func ListFamiliesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listFamilies",
		Short: "List the team roster with point totals and assignment counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := app.Store.GetFamilyRoster(app.Ctx, app.Cfg.TeamID)
			if err != nil {
				return fmt.Errorf("failed to fetch family roster: %w", err)
			}

			app.Logger.Info("Roster fetched", zap.Int("count", len(roster)))

			fmt.Printf("\nFound %d families:\n\n", len(roster))
			for _, f := range roster {
				protected := ""
				if f.ProtectedGroup {
					protected = " [protected]"
				}
				fmt.Printf("- %s (%s) - %d points (level %d) - %d shifts%s\n",
					f.FamilyName, f.FamilyID, f.TotalPoints, f.Level, f.AssignedShifts, protected)
			}
			fmt.Println()

			return nil
		},
	}
}
