package cli

import (
	"github.com/spf13/cobra"
)

// NewServeCommand runs the HTTP triggers and the optional scheduler.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the sync trigger endpoints",
		Long: `Start the HTTP server exposing POST /api/sync, POST /api/sync/scheduled,
GET /healthz and GET /metrics. When scheduler.enabled is set the scheduled
sync also runs at scheduler.interval.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, runner, err := opts.setup(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer runner.Close()

			if err := runner.Serve(cmd.Context()); err != nil {
				return &ExitCodeError{Code: ExitError, Err: err}
			}
			logger.Info("server stopped")
			return nil
		},
	}
}
