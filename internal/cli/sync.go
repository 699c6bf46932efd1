package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"BillSync/internal/domain"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	State  string
	States []string
	Limit  int
	Full   bool
}

// NewSyncCommand syncs the named jurisdictions once.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync one or more jurisdictions once",
		Long: `Sync bills of the given jurisdictions and print the batch summary as JSON.

Example:
  billsync sync --state ca --limit 10
  billsync sync --states ca,tx,ny --full`,
		Args: cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.State == "" && len(opts.States) == 0 {
				return &ExitCodeError{Code: ExitError, Err: fmt.Errorf("one of --state or --states is required")}
			}
			if opts.Limit < 0 {
				return &ExitCodeError{Code: ExitError, Err: fmt.Errorf("--limit must not be negative")}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, runner, err := opts.setup(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer runner.Close()

			limit := opts.Limit
			if limit == 0 {
				limit = runner.DefaultLimit()
			}

			summary := runner.SyncStates(cmd.Context(), opts.codes(), limit, opts.Full)
			if err := printJSON(cmd.OutOrStdout(), summary); err != nil {
				return err
			}
			if !summary.Success {
				return &ExitCodeError{Code: ExitFailure, Err: fmt.Errorf("%d of %d states failed", countFailed(summary.Results), summary.TotalStates)}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.State, "state", "s", "", "jurisdiction code, e.g. ca")
	cmd.Flags().StringSliceVar(&opts.States, "states", nil, "comma-separated jurisdiction codes")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "bills per jurisdiction (default from config)")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "ignore the stored watermark")
	cmd.MarkFlagsMutuallyExclusive("state", "states")
	return cmd
}

func (o *SyncOptions) codes() []string {
	if len(o.States) > 0 {
		return o.States
	}
	return []string{strings.TrimSpace(o.State)}
}

// NewSyncAllCommand runs the scheduled walk over the configured states once.
func NewSyncAllCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-all",
		Short: "Run the scheduled sync over every configured state once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, runner, err := opts.setup(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer runner.Close()

			summary := runner.SyncScheduled(cmd.Context())
			if err := printJSON(cmd.OutOrStdout(), summary); err != nil {
				return err
			}
			if summary.FailedCount > 0 {
				return &ExitCodeError{Code: ExitFailure, Err: fmt.Errorf("%d states failed", summary.FailedCount)}
			}
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func countFailed(results []domain.StateResult) int {
	n := 0
	for _, r := range results {
		if !r.Success {
			n++
		}
	}
	return n
}
