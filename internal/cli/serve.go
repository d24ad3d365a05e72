package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/abunai/impact/internal/config"
	"github.com/abunai/impact/internal/observability"
	"github.com/abunai/impact/internal/runner"
	"github.com/abunai/impact/internal/server"
	"github.com/abunai/impact/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Config config.Config
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts, Config: config.Load()}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis over HTTP",
		Long: `Start the HTTP server.

Models are uploaded to the case studies directory and analyzed on request.
Defaults come from ABUNAI_* environment variables; flags override them.

Example:
  abunai serve --addr :2406 --casestudies ./casestudies
  abunai serve --db ./runs.db --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config.Addr, "addr", opts.Config.Addr, "listen address")
	cmd.Flags().StringVar(&opts.Config.CaseStudiesDir, "casestudies", opts.Config.CaseStudiesDir, "case studies directory")
	cmd.Flags().StringVar(&opts.Config.DBPath, "db", opts.Config.DBPath, "persist runs to this SQLite database")
	cmd.Flags().StringVar(&opts.Config.LogFile, "log-file", opts.Config.LogFile, "also write JSON logs to this file")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg := opts.Config
	if opts.Verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)
	logger.Info("configuration", "config", cfg.String())

	if err := os.MkdirAll(cfg.CaseStudiesDir, 0o755); err != nil {
		return WrapExitError(ExitCommandError, "failed to create case studies directory", err)
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	r := &runner.Runner{
		Logger:       logger,
		Observer:     metrics,
		MaxSequences: cfg.MaxSequences,
		Parallel:     cfg.Parallel,
		Timeout:      cfg.RunTimeout,
	}

	var st *store.Store
	if cfg.DBPath != "" {
		logger.Info("opening database", "path", cfg.DBPath)
		var err error
		st, err = store.Open(cfg.DBPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		r.Store = st
	}

	srv := server.New(server.Options{
		CaseStudiesDir: cfg.CaseStudiesDir,
		Runner:         r,
		Store:          st,
		Metrics:        metrics,
		Logger:         logger,
	})

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
