package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"BillSync/internal/app"
	"BillSync/internal/config"
	"BillSync/internal/domain"
	"BillSync/internal/logging"
)

// Exit codes returned by main.
const (
	ExitSuccess = 0
	ExitFailure = 1 // at least one jurisdiction failed
	ExitError   = 2 // configuration or startup error
)

// Runner is the application surface the commands drive.
type Runner interface {
	SyncStates(ctx context.Context, codes []string, limit int, full bool) domain.BatchSummary
	SyncScheduled(ctx context.Context) domain.ScheduledSummary
	DefaultLimit() int
	Serve(ctx context.Context) error
	Close() error
}

// RunnerFactory builds a Runner from loaded configuration.
type RunnerFactory func(ctx context.Context, cfg config.Config, logger *slog.Logger) (Runner, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string

	// NewRunner overrides application construction in tests.
	NewRunner RunnerFactory
}

// ExitCodeError carries a process exit code.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string { return e.Err.Error() }

func (e *ExitCodeError) Unwrap() error { return e.Err }

// ExitCode extracts the exit code from an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitError
}

// NewRootCommand creates the billsync command tree.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts == nil {
		opts = &RootOptions{}
	}
	if opts.NewRunner == nil {
		opts.NewRunner = func(ctx context.Context, cfg config.Config, logger *slog.Logger) (Runner, error) {
			return app.New(ctx, cfg, logger)
		}
	}

	cmd := &cobra.Command{
		Use:           "billsync",
		Short:         "Sync state legislative bills into a record store",
		Long:          "billsync pulls bills, sponsors, subjects and jurisdictions from the Open States API and upserts them into Airtable or a SQL database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config (default $BILLSYNC_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (text|json)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewSyncAllCommand(opts))
	return cmd
}

// setup loads configuration, applies flag overrides and builds the runner.
// Logs go to logOut so stdout stays reserved for command output.
func (o *RootOptions) setup(ctx context.Context, logOut io.Writer) (*slog.Logger, Runner, error) {
	var cfg config.Config
	if o.ConfigPath != "" {
		cfg = config.LoadFrom(o.ConfigPath)
	} else {
		cfg = config.Load()
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Logging.Format = o.LogFormat
	}

	logger := logging.NewWithWriter(logOut, cfg.Logging.Level, cfg.Logging.Format)
	runner, err := o.NewRunner(ctx, cfg, logger)
	if err != nil {
		return logger, nil, &ExitCodeError{Code: ExitError, Err: fmt.Errorf("startup: %w", err)}
	}
	return logger, runner, nil
}
