// Package root contains the root command and the state shared by every
// sub-command: the loaded configuration, the logger and the lazily built
// dependency container.
package root

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"fjacquet/bank-ingest/internal/config"
	"fjacquet/bank-ingest/internal/container"
	"fjacquet/bank-ingest/internal/logging"
)

// GlobalFlags are the persistent flags of the root command.
type GlobalFlags struct {
	ConfigFile string
	Database   string
	LogLevel   string
	LogFormat  string
	NoAI       bool
}

var (
	// Log is the shared logger for commands.
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// Config is loaded by the persistent pre-run.
	Config *config.Config

	// Flags holds the persistent flag values.
	Flags = GlobalFlags{}

	app      *container.Container
	initOnce sync.Once

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "bank-ingest",
		Short: "Import Israeli bank and credit-card statements into a categorized ledger.",
		Long: `bank-ingest reads statement exports from Israeli banks and credit-card
issuers (CSV, XLS/XLSX and PDF), normalizes them, removes duplicates,
categorizes transactions and suggests recurring payments.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return Teardown()
		},
	}
)

// Init registers the persistent flags. Later calls are no-ops.
func Init() {
	initOnce.Do(func() {
		pf := Cmd.PersistentFlags()
		pf.StringVar(&Flags.ConfigFile, "config", "", "Config file (default: config.yaml in $HOME/.bank-ingest, .bank-ingest or .)")
		pf.StringVar(&Flags.Database, "db", "", "SQLite database path (overrides database.path)")
		pf.StringVar(&Flags.LogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
		pf.StringVar(&Flags.LogFormat, "log-format", "", "Log format: text or json")
		pf.BoolVar(&Flags.NoAI, "no-ai", false, "Disable AI categorization for this run")
	})
}

// Setup loads .env and the configuration, applies flag overrides and
// configures the logger.
func Setup() error {
	if _, err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := config.InitializeConfigFrom(Flags.ConfigFile)
	if err != nil {
		return err
	}
	if Flags.Database != "" {
		cfg.Database.Path = Flags.Database
	}
	if Flags.LogLevel != "" {
		cfg.Log.Level = Flags.LogLevel
	}
	if Flags.LogFormat != "" {
		cfg.Log.Format = Flags.LogFormat
	}
	if Flags.NoAI {
		cfg.AI.Enabled = false
	}
	Config = cfg
	Log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	return nil
}

// GetContainer builds the container on first use. Commands that never call
// it do not open the database.
func GetContainer(ctx context.Context) (*container.Container, error) {
	if app != nil {
		return app, nil
	}
	if Config == nil {
		if err := Setup(); err != nil {
			return nil, err
		}
	}
	c, err := container.NewContainerWithOptions(ctx, Config, container.Options{Logger: Log})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	app = c
	return app, nil
}

// Teardown closes the container if one was built.
func Teardown() error {
	if app == nil {
		return nil
	}
	err := app.Close()
	app = nil
	return err
}
