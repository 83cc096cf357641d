package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkleiva/dugnadsplan/pkg/core/services"
)

// ScanBufferCmd creates the scanBuffer command
func ScanBufferCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scanBuffer",
		Short: "Escalate shifts past their buffer deadline to the substitute marketplace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pricer := &services.HistoricalPricer{
				Store:       app.Store,
				DefaultRate: app.Cfg.DefaultSubstituteRate,
			}

			result, err := services.ScanBufferDeadlines(
				app.Ctx,
				app.Store,
				pricer,
				app.Notifier,
				app.Logger,
				app.Cfg.TeamID,
				time.Now(),
			)
			if err != nil {
				return err
			}

			if len(result.Escalated) == 0 && len(result.Warnings) == 0 {
				fmt.Println("\nNo shifts past their buffer deadline.")
				return nil
			}

			fmt.Printf("\n✓ Buffer scan done: %d shifts escalated\n\n", len(result.Escalated))
			for _, s := range result.Escalated {
				fmt.Printf("  → %s %s listed on marketplace\n", s.Date, s.Role)
			}
			for _, w := range result.Warnings {
				fmt.Printf("  ! %s\n", w)
			}
			fmt.Println()

			return nil
		},
	}
}
