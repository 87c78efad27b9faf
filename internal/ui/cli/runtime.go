package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"corocheck/internal/core/app"
	"corocheck/internal/core/config"
	"corocheck/internal/shared/observability"
	"corocheck/internal/ui/report"
	"corocheck/internal/ui/tui"

	"github.com/spf13/cobra"
)

// historyQueueSize bounds pending history writes in watch mode.
const historyQueueSize = 256

func loadConfig(cmd *cobra.Command, opts *cliOptions) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cmd, opts, cfg)
	return cfg, nil
}

// applyFlagOverrides lets explicitly set flags win over the config file.
func applyFlagOverrides(cmd *cobra.Command, opts *cliOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if opts.noColor {
		off := false
		cfg.Output.Color = &off
	}
	if opts.noExec {
		off := false
		cfg.Environment.ExecuteImports = &off
	}
	if flags.Changed("python") {
		cfg.Environment.Python = opts.python
	}
	if opts.history {
		cfg.History.Enabled = true
	}
}

func runAnalysis(cmd *cobra.Command, opts *cliOptions, args []string) error {
	cleanup := configureLogging(opts.ui, opts.verbose, cmd.ErrOrStderr())
	defer cleanup()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return fault(fmt.Errorf("load config: %w", err))
	}

	rep, err := report.New(cfg.Output.Format, cmd.OutOrStdout(), cfg.Output.ColorEnabled())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint, cfg.Observability.ServiceName)
	if err != nil {
		return fault(err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	var appOpts []app.Option
	if opts.ui || opts.watch {
		appOpts = append(appOpts, app.WithAsyncHistory(historyQueueSize))
	}
	a, err := app.New(cfg, appOpts...)
	if err != nil {
		return fault(err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("failed to close app", "error", err)
		}
	}()

	if opts.ui || opts.watch {
		stopServer, err := startMetricsServer(ctx, cfg.Observability.MetricsAddr)
		if err != nil {
			return fault(err)
		}
		defer stopServer()

		if opts.ui {
			if err := tui.Run(ctx, a, args); err != nil {
				return fault(err)
			}
			return nil
		}
		if err := a.Watch(ctx, args, rep); err != nil {
			return fault(err)
		}
		return nil
	}

	totals, err := a.Run(ctx, args, rep)
	if err != nil {
		return fault(err)
	}
	slog.Debug("run complete", "files", totals.Files, "calls", totals.Calls, "mismatches", totals.Mismatches)
	if cfg.Analysis.FailOnMismatch && totals.Mismatches > 0 {
		return &exitError{code: ExitMismatch}
	}
	return nil
}

func startMetricsServer(ctx context.Context, addr string) (func(), error) {
	if addr == "" {
		return func() {}, nil
	}
	srv := observability.NewServer(addr)
	if err := srv.Start(ctx); err != nil {
		return nil, fmt.Errorf("start metrics server: %w", err)
	}
	slog.Info("metrics server listening", "addr", srv.Addr())
	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(stopCtx); err != nil {
			slog.Warn("failed to stop metrics server", "error", err)
		}
	}, nil
}
