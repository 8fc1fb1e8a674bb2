package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stratfolio/config"
	"github.com/rustyeddy/stratfolio/export"
	"github.com/rustyeddy/stratfolio/ingest"
	"github.com/rustyeddy/stratfolio/library"
	"github.com/rustyeddy/stratfolio/pkg/logger"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg *config.Config
	log *logger.Logger
}

// NewRootCmd builds the stratfolio command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "stratfolio",
		Short: "Combine backtested strategies into portfolios",
		Long: `Stratfolio imports strategy backtest exports, measures how the strategies
correlate, and combines them into portfolio snapshots that can be exported
back out as zip archives or CSV summaries.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite library database (overrides config)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd)
	}

	cmd.AddCommand(
		newImportCmd(a),
		newUploadsCmd(a),
		newListCmd(a),
		newRemoveCmd(a),
		newAnalyzeCmd(a),
		newPortfolioCmd(a),
		newServeCmd(a),
		newConfigCmd(),
		newVersionCmd(),
	)

	return cmd
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Library.DBPath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	a.cfg = cfg
	a.log = logger.NewWithWriter(cfg.Log, cmd.ErrOrStderr())
	return nil
}

// openLibrary opens the configured store and loads it.
func (a *app) openLibrary(cmd *cobra.Command) (*library.Library, error) {
	store, err := library.NewSQLite(a.cfg.Library.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	lib := library.New(store, library.WithLogger(a.log))
	if err := lib.Load(cmd.Context()); err != nil {
		lib.Close()
		return nil, err
	}
	return lib, nil
}

func (a *app) normalizer() *ingest.Normalizer {
	return &ingest.Normalizer{
		Workers:        a.cfg.Ingest.Workers,
		MaxUploadBytes: a.cfg.Ingest.MaxUploadBytes,
		Logger:         a.log,
	}
}

func (a *app) exporter() *export.Exporter {
	return &export.Exporter{
		MaxArchiveBytes: a.cfg.Export.MaxArchiveBytes,
		Logger:          a.log,
	}
}
