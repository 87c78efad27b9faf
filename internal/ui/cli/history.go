package cli

import (
	"fmt"
	"time"

	"corocheck/internal/data/history"
	"corocheck/internal/ui/report"

	"github.com/spf13/cobra"
)

func newHistoryCommand(opts *cliOptions) *cobra.Command {
	var (
		since  time.Duration
		asJSON bool
		runID  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show mismatch trends, or the verdicts of one recorded run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup := configureLogging(false, opts.verbose, cmd.ErrOrStderr())
			defer cleanup()

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return fault(fmt.Errorf("load config: %w", err))
			}

			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fault(err)
			}
			defer store.Close()

			if runID != "" {
				return printVerdicts(cmd, store, runID, asJSON)
			}

			var cutoff time.Time
			if since > 0 {
				cutoff = time.Now().Add(-since)
			}
			runs, err := store.LoadRuns(cmd.Context(), cfg.History.Project, cutoff)
			if err != nil {
				return fault(err)
			}

			trends := history.BuildTrends(runs)
			out := report.RenderTrendTSV(trends)
			if asJSON {
				if out, err = report.RenderTrendJSON(trends); err != nil {
					return fault(err)
				}
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().DurationVar(&since, "since", 0, "Only include runs newer than this age (e.g. 24h)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print trends as JSON")
	cmd.Flags().StringVar(&runID, "run", "", "Show the verdicts of one run instead of trends")
	return cmd
}

func printVerdicts(cmd *cobra.Command, store *history.Store, runID string, asJSON bool) error {
	verdicts, err := store.LoadVerdicts(cmd.Context(), runID)
	if err != nil {
		return fault(err)
	}
	out := report.RenderVerdictTSV(verdicts)
	if asJSON {
		if out, err = report.RenderVerdictJSON(verdicts); err != nil {
			return fault(err)
		}
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
