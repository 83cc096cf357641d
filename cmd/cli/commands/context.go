package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/mkleiva/dugnadsplan/internal/config"
	"github.com/mkleiva/dugnadsplan/pkg/core/assigner"
	"github.com/mkleiva/dugnadsplan/pkg/db"
	"github.com/mkleiva/dugnadsplan/pkg/notify"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Store    db.Store
	Notifier notify.Notifier
	Logger   *zap.Logger
	Ctx      context.Context
}

// Policy returns the fair-share eligibility policy configured for this
// installation
func (app *AppContext) Policy() assigner.MaxShiftsPolicy {
	return assigner.MaxShiftsPolicy{MaxShiftsPerSeason: app.Cfg.MaxShiftsPerFamily}
}
