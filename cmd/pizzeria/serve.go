package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pizza-hq/pizzeria/pkg/api"
	"pizza-hq/pizzeria/pkg/auth"
	"pizza-hq/pizzeria/pkg/cli"
	"pizza-hq/pizzeria/pkg/config"
	"pizza-hq/pizzeria/pkg/factory"
	"pizza-hq/pizzeria/pkg/store"
	"pizza-hq/pizzeria/pkg/telemetry/health"
	"pizza-hq/pizzeria/pkg/telemetry/logging"
	"pizza-hq/pizzeria/pkg/telemetry/metrics"
	"pizza-hq/pizzeria/pkg/telemetry/otlp"
	"pizza-hq/pizzeria/pkg/telemetry/reporter"
	"pizza-hq/pizzeria/pkg/telemetry/tracing"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pizzeria server",
	Long: `Start the pizzeria HTTP server with the specified configuration.

The server opens the database, seeds the menu on first start, and begins
flushing metrics every flush interval when metrics are enabled.

Examples:
  # Start with default config
  pizzeria serve

  # Start with custom config
  pizzeria serve --config /etc/pizzeria/config.yaml

  # Override listen address
  pizzeria serve --listen 0.0.0.0:8080

  # Validate config without starting server
  pizzeria serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Logging.Level = serveFlags.logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.FromConfig(cfg.Logging))
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	slog.SetDefault(logger)

	out := cmd.OutOrStdout()
	if serveFlags.dryRun {
		fmt.Fprintf(out, "%s Configuration valid\n", okMark("✓"))
		return nil
	}

	ctx, stop := cli.ShutdownContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer a.Close()
	printBanner(out, cfg)

	if err := a.Run(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}

var okMark = color.New(color.FgGreen).SprintFunc()

func printBanner(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "Pizzeria %s\n", Version)
	fmt.Fprintf(w, "%s Configuration loaded from %s\n", okMark("✓"), cfgFile)
	fmt.Fprintf(w, "%s Database ready at %s\n", okMark("✓"), cfg.Database.Path)
	fmt.Fprintf(w, "%s Listening on %s\n", okMark("✓"), cfg.Server.ListenAddress)
	fmt.Fprintf(w, "%s Metrics summary: http://%s/api/health/metrics\n", okMark("✓"), cfg.Server.ListenAddress)
	fmt.Fprintf(w, "%s Prometheus endpoint: http://%s%s\n", okMark("✓"), cfg.Server.ListenAddress, cfg.Metrics.PrometheusPath)
	fmt.Fprintln(w, "\nPress Ctrl+C to stop")
}

// app is the wired service.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *metrics.Store
	publisher *otlp.Publisher
	db        *store.DB
	tracer    *tracing.Tracer
	reporter  *reporter.Reporter
	server    *api.Server
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	tracer, err := tracing.New(cfg.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pub := otlp.NewPublisher(otlp.FromConfig(cfg.Metrics), otlp.WithLogger(logger))
	m := metrics.NewStore(metrics.Options{
		Logger:              logger,
		Sink:                pub,
		SessionTTL:          cfg.Metrics.SessionTTL,
		RolloverMinInterval: reporter.RolloverInterval(cfg.Metrics.FlushInterval),
		SlowQueryThreshold:  cfg.Metrics.SlowQueryThreshold,
		SummaryTopN:         cfg.Metrics.SummaryTopN,
	})

	db, err := store.Open(ctx, store.Options{
		Path:               cfg.Database.Path,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		BusyTimeout:        cfg.Database.BusyTimeout,
		WALMode:            cfg.Database.WALMode,
		SlowQueryThreshold: cfg.Metrics.SlowQueryThreshold,
		Tracker:            m,
		Logger:             logger,
	})
	if err != nil {
		_ = tracer.Shutdown(ctx)
		return nil, err
	}

	if ac := cfg.Auth; ac.AdminName != "" && ac.AdminEmail != "" && ac.AdminPassword != "" {
		hash, err := auth.HashPassword(ac.AdminPassword)
		if err != nil {
			db.Close()
			return nil, err
		}
		if _, err := db.EnsureAdmin(ctx, ac.AdminName, ac.AdminEmail, hash); err != nil {
			db.Close()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	fc := factory.New(cfg.Factory, m, factory.WithLogger(logger), factory.WithTracer(tracer))

	checker := health.New(cfg.Server.RequestTimeout)
	checker.RegisterCheck("database", db.Ping)
	checker.RegisterCheck("factory", enabledCheck(fc.Enabled))
	checker.RegisterCheck("collector", enabledCheck(pub.Enabled))

	srv := api.NewServer(cfg.Server, api.Deps{
		DB:          db,
		Issuer:      auth.NewIssuer(cfg.Auth),
		Factory:     fc,
		Health:      checker,
		Tracer:      tracer,
		Metrics:     m,
		Registry:    metrics.NewRegistry(m, cfg.Metrics.Namespace),
		MetricsPath: cfg.Metrics.PrometheusPath,
		Version:     Version,
		Logger:      logger,
	})

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		publisher: pub,
		db:        db,
		tracer:    tracer,
		reporter: reporter.New(m, pub, reporter.Options{
			Interval: cfg.Metrics.FlushInterval,
			Pool:     db,
			Logger:   logger,
		}),
		server: srv,
	}, nil
}

// enabledCheck reports a component as disabled when it is not configured.
func enabledCheck(enabled func() bool) health.CheckFunc {
	return func(context.Context) error {
		if !enabled() {
			return health.ErrDisabled
		}
		return nil
	}
}

// Run starts the flush loop and the config watcher, then serves until ctx
// is cancelled.
func (a *app) Run(ctx context.Context) error {
	if a.cfg.Metrics.Enabled {
		if err := a.reporter.Start(ctx); err != nil {
			return err
		}
		defer a.reporter.Stop()
	} else {
		a.logger.Info("metrics flush disabled")
	}

	if a.cfg.Watch {
		w := config.NewWatcher(cfgFile, a.cfg, a.logger)
		go func() {
			if err := w.Watch(ctx, a.applyConfig); err != nil {
				a.logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	return a.server.Start(ctx)
}

// applyConfig hands a reloaded configuration to the components that can
// change at runtime. Only the collector settings are hot-reloaded.
func (a *app) applyConfig(cfg *config.Config) {
	a.publisher.Update(otlp.FromConfig(cfg.Metrics))
}

// Close drains the publisher, flushes pending spans and closes the
// database.
func (a *app) Close() {
	a.publisher.Close()
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Error("flushing traces", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("closing database", "error", err)
	}
}
