package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkleiva/dugnadsplan/cmd/cli/commands"
	"github.com/mkleiva/dugnadsplan/internal/config"
	"github.com/mkleiva/dugnadsplan/pkg/clients/gmailclient"
	"github.com/mkleiva/dugnadsplan/pkg/notify"
	"github.com/mkleiva/dugnadsplan/pkg/postgres"
	"github.com/mkleiva/dugnadsplan/pkg/utils/logging"
)

var (
	env string
	app *commands.AppContext
	db  *postgres.DB
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dugnadsplan",
		Short: "Dugnadsplan CLI - Manage volunteer shift assignment and fairness points",
		Long:  `A CLI tool for sports-club dugnad coordination: season planning, fairness-ordered shift assignment, point ledgers, swaps and substitute escalation.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	// Add all commands
	rootCmd.AddCommand(
		commands.CreateSeasonCmd(getApp()),
		commands.AssignShiftsCmd(getApp()),
		commands.ScanBufferCmd(getApp()),
		commands.RequestSwapCmd(getApp()),
		commands.RespondSwapCmd(getApp()),
		commands.CompleteShiftCmd(getApp()),
		commands.RecordNoShowCmd(getApp()),
		commands.RecordPointsCmd(getApp()),
		commands.ShowPointsCmd(getApp()),
		commands.ListFamiliesCmd(getApp()),
		commands.DashboardCmd(getApp()),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getApp returns the shared AppContext. Commands capture the pointer at
// construction time; initApp fills it in before any RunE executes.
func getApp() *commands.AppContext {
	if app == nil {
		app = &commands.AppContext{}
	}
	return app
}

// initApp sets up logger, config, database and notifier
func initApp() error {
	var err error
	appCtx := getApp()
	appCtx.Ctx = context.Background()

	// Initialize logger
	appCtx.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appCtx.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	appCtx.Logger.Info("Loading configuration")
	appCtx.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	appCtx.Logger.Debug("Configuration loaded successfully")

	// Connect to the database and apply pending migrations
	appCtx.Logger.Info("Connecting to database")
	db, err = postgres.NewDB(appCtx.Ctx, appCtx.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.RunMigrations(appCtx.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	appCtx.Store = db
	appCtx.Logger.Info("Database initialized successfully")

	// Notifications go out as email when Gmail is configured, otherwise
	// to the log
	if appCtx.Cfg.GmailUserID != "" {
		appCtx.Logger.Info("Initializing gmail client")
		oauthCfg, err := config.LoadOAuthClientWithEnv(env)
		if err != nil {
			return fmt.Errorf("failed to load OAuth client config: %w", err)
		}
		gmailClient, err := gmailclient.NewClient(appCtx.Ctx, oauthCfg, appCtx.Cfg.GmailSender, env)
		if err != nil {
			return fmt.Errorf("failed to create gmail client: %w", err)
		}
		appCtx.Notifier = &gmailclient.Notifier{Client: gmailClient, Contacts: db}
		appCtx.Logger.Debug("Gmail client initialized successfully")
	} else {
		appCtx.Notifier = &notify.LogNotifier{Logger: appCtx.Logger}
		appCtx.Logger.Info("No gmail user configured, notifications go to the log")
	}

	return nil
}
