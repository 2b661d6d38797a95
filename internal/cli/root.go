package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/config"
	"github.com/roach88/rollcall/internal/pgstore"
	"github.com/roach88/rollcall/internal/service"
	"github.com/roach88/rollcall/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	EnvFile     string
	DB          string
	Driver      string
	DatabaseURL string
	LogLevel    string
	LogFormat   string

	// Config is resolved in PersistentPreRunE: environment first, then
	// any flag the user set explicitly.
	Config config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rollcall CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rollcall",
		Short: "rollcall - sign-up lists with reserves and cutoff payments",
		Long: `Manage sign-up listings for recurring events.

Each listing keeps an append-only log of sign-ups and withdrawals. The main
list, the reserve list and who has to pay are recomputed from that log on
every read.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.resolve(cmd)
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.EnvFile, "env-file", "", "load environment from this file instead of ./.env")
	pf.StringVar(&opts.DB, "db", "", "path to SQLite database (env ROLLCALL_DB_PATH)")
	pf.StringVar(&opts.Driver, "driver", "", "storage driver: sqlite|postgres (env ROLLCALL_DB_DRIVER)")
	pf.StringVar(&opts.DatabaseURL, "database-url", "", "PostgreSQL URL (env ROLLCALL_DATABASE_URL)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "debug|info|warn|error (env ROLLCALL_LOG_LEVEL)")
	pf.StringVar(&opts.LogFormat, "log-format", "", "text|json (env ROLLCALL_LOG_FORMAT)")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewListingCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolve loads configuration, applies flag overrides and installs the logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.EnvFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = o.DB
	}
	if flags.Changed("driver") {
		cfg.Driver = o.Driver
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = o.DatabaseURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.LogFormat
	}
	if o.Verbose && !flags.Changed("log-level") {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Config = cfg

	logger, err := newLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Logger = logger
	slog.SetDefault(logger)
	return nil
}

func newLogger(w io.Writer, cfg config.Config) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == config.FormatJSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
}

// openService opens the configured store and builds a ListingService on it.
// The returned func closes the store.
func (o *RootOptions) openService(ctx context.Context) (*service.ListingService, func(), error) {
	var (
		st      service.Storage
		closeFn func() error
	)
	switch o.Config.Driver {
	case config.DriverPostgres:
		pg, err := pgstore.Open(ctx, o.Config.DatabaseURL)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		st, closeFn = pg, pg.Close
	default:
		sq, err := store.Open(o.Config.DBPath)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		st, closeFn = sq, sq.Close
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	svc, err := service.New(st, service.WithLogger(logger))
	if err != nil {
		closeFn()
		return nil, nil, WrapExitError(ExitCommandError, "failed to start listing service", err)
	}
	return svc, func() { closeFn() }, nil
}

// formatter builds an OutputFormatter bound to cmd's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
