package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/negocios/consola/cmd/consola/cli"
	"github.com/negocios/consola/internal/app"
	"github.com/negocios/consola/internal/observability"
	"github.com/negocios/consola/internal/platform/cache"
	reportinghttp "github.com/negocios/consola/internal/reporting/http"
	"github.com/negocios/consola/internal/transactions"
	"github.com/negocios/consola/internal/view"
	"github.com/negocios/consola/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "export":
			os.Exit(runExport(ctx, cfg, logger, args[1:]))
		case "jobs":
			os.Exit(runJobs(ctx, cfg, args[1:]))
		case "serve":
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q (serve, export, jobs)\n", args[0])
			os.Exit(2)
		}
	}
	if err := serve(ctx, stop, cfg, logger); err != nil {
		logger.Error("serve", slog.Any("error", err))
		os.Exit(1)
	}
}

func serve(ctx context.Context, stop context.CancelFunc, cfg *app.Config, logger *slog.Logger) error {
	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer backend.Close()

	metrics := observability.NewMetrics()
	reports, err := app.NewReports(backend, cfg, logger, metrics.Registerer())
	if err != nil {
		return err
	}
	if err := reports.Load(ctx); err != nil {
		logger.Warn("initial report load", slog.Any("error", err))
	}
	if err := backend.Cache.ListenForInvalidation(ctx, func(version int64) {
		logger.Info("cache bumped, reloading reports", slog.Int64("version", version))
		if err := reports.Load(ctx); err != nil {
			logger.Warn("reload after cache bump", slog.Any("error", err))
		}
	}); err != nil {
		logger.Warn("listen for cache bumps", slog.Any("error", err))
	}

	exporter, err := app.NewExporter(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init exporter: %w", err)
	}

	templates, err := view.NewEngine()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	queueOpt := cache.QueueOpt(cfg.RedisAddr)
	jobClient := jobs.NewClient(queueOpt)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("close job client", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(queueOpt)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("close inspector", slog.Any("error", err))
		}
	}()

	reportHandler, err := reportinghttp.NewHandler(reportinghttp.Config{
		Logger:    logger,
		Reports:   reports,
		Exporter:  exporter,
		Queue:     jobClient,
		Cache:     backend.Source,
		Templates: templates,
	})
	if err != nil {
		return err
	}
	txService := transactions.NewService(backend.Source, cfg.Location(), logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		ReportHandler:       reportHandler,
		TransactionsHandler: transactions.NewHandler(logger, txService, templates),
		JobHandler:          jobs.NewHandler(inspector, logger),
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	return nil
}

func runExport(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	report := fs.String("informe", "diario", "report: diario or mensual")
	window := fs.String("ventana", "", "day (YYYY-MM-DD) or month (YYYY-MM); empty exports every row")
	format := fs.String("formato", "csv", "pdf, xlsx or csv")
	out := fs.String("salida", ".", "output directory")
	asJSON := fs.Bool("json", false, "print a JSON summary")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: open record store: %v\n", err)
		return 1
	}
	defer backend.Close()
	reports, err := app.NewReports(backend, cfg, logger, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		return 1
	}
	exporter, err := app.NewExporter(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		return 1
	}
	command, err := cli.NewExportCLI(reports, exporter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		return 1
	}
	return command.ExportCommand(ctx, cli.ExportOptions{
		Report:     *report,
		Window:     *window,
		Format:     *format,
		OutDir:     *out,
		JSONOutput: *asJSON,
	})
}

func runJobs(ctx context.Context, cfg *app.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "jobs: expected stats or trigger")
		return 2
	}
	command := cli.NewJobsCLI(cache.QueueOpt(cfg.RedisAddr))
	defer func() { _ = command.Close() }()

	switch args[0] {
	case "stats":
		return command.StatsCommand(ctx, os.Stdout, os.Stderr)
	case "trigger":
		fs := flag.NewFlagSet("jobs trigger", flag.ContinueOnError)
		job := fs.String("job", jobs.TaskCacheBump, "report:export or cache:bump")
		report := fs.String("informe", "diario", "report for report:export")
		window := fs.String("ventana", "", "window for report:export")
		format := fs.String("formato", "csv", "format for report:export")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		return command.TriggerCommand(ctx, cli.TriggerOptions{
			Job:    *job,
			Report: *report,
			Window: *window,
			Format: *format,
		})
	default:
		fmt.Fprintf(os.Stderr, "jobs: unknown subcommand %q\n", args[0])
		return 2
	}
}
