package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/core/season"
	"github.com/mkleiva/dugnadsplan/pkg/core/services"
)

// seasonPlanFile is the on-disk YAML shape of a coordinator's season plan
type seasonPlanFile struct {
	StartDate string   `yaml:"startDate"`
	EndDate   string   `yaml:"endDate"`
	Weekdays  []string `yaml:"weekdays"`
	StartTime string   `yaml:"startTime,omitempty"`
	EndTime   string   `yaml:"endTime,omitempty"`
	Roles     []struct {
		Role          string `yaml:"role"`
		PeopleNeeded  int    `yaml:"peopleNeeded"`
		PointsPerSlot int    `yaml:"pointsPerSlot,omitempty"`
		PointsPerHour int    `yaml:"pointsPerHour,omitempty"`
	} `yaml:"roles"`
}

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// CreateSeasonCmd creates the createSeason command
func CreateSeasonCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createSeason <plan.yaml>",
		Short: "Expand a season plan into pending shifts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coordinatorID, _ := cmd.Flags().GetString("coordinator")

			tmpl, err := loadSeasonPlan(app, args[0])
			if err != nil {
				return err
			}

			result, err := services.CreateSeasonShifts(
				app.Ctx,
				app.Store,
				app.Logger,
				app.Cfg.TeamID,
				coordinatorID,
				*tmpl,
				app.Cfg.BufferDays,
			)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Season created: %d shifts\n\n", len(result.Shifts))
			for _, shift := range result.Shifts {
				fmt.Printf("  %s  %-12s %d people  %d points\n",
					shift.Date, shift.Role, shift.RequiredPeople, shift.PointValue)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("coordinator", "", "Coordinator user ID recorded on the created shifts")

	return cmd
}

// loadSeasonPlan parses a plan file into a season template, filling role
// rates from the club configuration where the plan leaves them out
func loadSeasonPlan(app *AppContext, path string) (*season.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read season plan: %w", err)
	}

	var plan seasonPlanFile
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse season plan: %w", err)
	}

	start, err := time.Parse("2006-01-02", plan.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid startDate %q: %w", plan.StartDate, err)
	}
	end, err := time.Parse("2006-01-02", plan.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid endDate %q: %w", plan.EndDate, err)
	}

	weekdays := make([]time.Weekday, 0, len(plan.Weekdays))
	for _, name := range plan.Weekdays {
		weekday, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		weekdays = append(weekdays, weekday)
	}

	roles := make([]season.RoleDefinition, 0, len(plan.Roles))
	for _, r := range plan.Roles {
		role := model.ShiftRole(r.Role)
		pointsPerHour := r.PointsPerHour
		if pointsPerHour == 0 && r.PointsPerSlot == 0 {
			pointsPerHour = app.Cfg.PointsPerHour(role)
		}
		roles = append(roles, season.RoleDefinition{
			Role:          role,
			PeopleNeeded:  r.PeopleNeeded,
			PointsPerSlot: r.PointsPerSlot,
			PointsPerHour: pointsPerHour,
		})
	}

	return &season.Template{
		StartDate: start,
		EndDate:   end,
		Weekdays:  weekdays,
		StartTime: plan.StartTime,
		EndTime:   plan.EndTime,
		Roles:     roles,
	}, nil
}
