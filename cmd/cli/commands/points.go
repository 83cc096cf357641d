package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/core/services"
)

// RecordPointsCmd creates the recordPoints command
func RecordPointsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recordPoints <family_id> <amount> <reason>",
		Short: "Append a manual entry to a family's point ledger",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("amount must be a number: %w", err)
			}
			pointType, _ := cmd.Flags().GetString("type")

			entry, err := services.RecordPoints(
				app.Ctx,
				app.Store,
				app.Logger,
				args[0],
				model.PointType(pointType),
				amount,
				args[2],
				"",
				"",
			)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Recorded %+d %s points for family %s (%s)\n\n",
				entry.PointsEarned, entry.PointType, entry.FamilyID, entry.Reason)

			return nil
		},
	}

	cmd.Flags().String("type", string(model.PointBonus), "Ledger bucket: base, family or bonus")

	return cmd
}

// ShowPointsCmd creates the points command
func ShowPointsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "points <family_id>",
		Short: "Show a family's point totals and ledger history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			familyID := args[0]

			totals, err := services.TotalPointsFor(app.Ctx, app.Store, familyID)
			if err != nil {
				return err
			}

			history, err := app.Store.GetPointHistory(app.Ctx, familyID)
			if err != nil {
				return fmt.Errorf("failed to fetch point history: %w", err)
			}

			fmt.Printf("\nFamily %s\n", familyID)
			fmt.Printf("  Base points:   %d\n", totals.BasePoints)
			fmt.Printf("  Family points: %d\n", totals.FamilyPoints)
			fmt.Printf("  Total:         %d (level %d)\n\n", totals.TotalPoints, model.LevelFor(totals.TotalPoints))

			for _, entry := range history {
				fmt.Printf("  %s  %+5d  %-6s  %s\n",
					entry.CreatedAt.Format("2006-01-02"), entry.PointsEarned, entry.PointType, entry.Reason)
			}
			fmt.Println()

			return nil
		},
	}
}

// CompleteShiftCmd creates the completeShift command
func CompleteShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "completeShift <assignment_id>",
		Short: "Mark a worked assignment completed and credit its points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := services.CompleteAssignment(app.Ctx, app.Store, app.Notifier, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Assignment completed - %d points credited to family %s\n\n",
				entry.PointsEarned, entry.FamilyID)

			return nil
		},
	}
}

// RecordNoShowCmd creates the recordNoShow command
func RecordNoShowCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recordNoShow <assignment_id>",
		Short: "Mark a missed assignment and apply the no-show penalty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := services.RecordNoShow(app.Ctx, app.Store, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ No-show recorded - %d points deducted from family %s\n\n",
				-entry.PointsEarned, entry.FamilyID)

			return nil
		},
	}
}
