package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkleiva/dugnadsplan/pkg/core/services"
)

// RequestSwapCmd creates the requestSwap command
func RequestSwapCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "requestSwap <assignment_id> <requesting_family_id> <target_family_id>",
		Short: "Ask another family to take over an assigned shift",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := services.RequestSwap(
				app.Ctx,
				app.Store,
				app.Notifier,
				app.Logger,
				args[0],
				args[1],
				args[2],
			)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Swap requested\n\n")
			fmt.Printf("Swap ID:        %s\n", request.ID)
			fmt.Printf("Target family:  %s\n", request.TargetFamilyID)
			fmt.Printf("Status:         %s\n\n", request.Status)

			return nil
		},
	}
}

// RespondSwapCmd creates the respondSwap command
func RespondSwapCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "respondSwap <swap_id> <accept|decline>",
		Short: "Accept or decline a pending swap request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var accept bool
			switch args[1] {
			case "accept":
				accept = true
			case "decline":
				accept = false
			default:
				return fmt.Errorf("response must be accept or decline, got %q", args[1])
			}

			result, err := services.RespondToSwap(
				app.Ctx,
				app.Store,
				app.Notifier,
				app.Policy(),
				app.Logger,
				args[0],
				accept,
			)
			if err != nil {
				return err
			}

			if result.NewAssignment != nil {
				fmt.Printf("\n✓ Swap completed - shift now assigned to family %s\n", result.NewAssignment.FamilyID)
			} else {
				fmt.Printf("\n✓ Swap declined\n")
			}
			for _, w := range result.Warnings {
				fmt.Printf("  ! %s\n", w)
			}
			fmt.Println()

			return nil
		},
	}
}
