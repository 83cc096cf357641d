package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkleiva/dugnadsplan/pkg/core/services"
)

// DashboardCmd creates the dashboard command
func DashboardCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the coordinator overview: shift counts, follow-ups, upcoming issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := services.Dashboard(app.Ctx, app.Store, app.Logger, app.Cfg.TeamID, time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("\nShifts: %d total - %d pending, %d assigned, %d completed\n",
				summary.TotalShifts, summary.PendingShifts, summary.AssignedShifts, summary.CompletedShifts)

			if len(summary.FamiliesNeedingFollowup) > 0 {
				fmt.Printf("\nFamilies needing follow-up:\n")
				for _, f := range summary.FamiliesNeedingFollowup {
					fmt.Printf("  - %s (%d points): %s\n", f.FamilyName, f.Points, f.Reason)
				}
			}

			if len(summary.UpcomingIssues) > 0 {
				fmt.Printf("\nUpcoming issues:\n")
				for _, issue := range summary.UpcomingIssues {
					fmt.Printf("  ⚠️  %s: %s\n", issue.Date, issue.Message)
				}
			}
			fmt.Println()

			return nil
		},
	}
}
