package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"msg-generator/internal/config"
	"msg-generator/internal/domain/models"
	httpserver "msg-generator/internal/infrastructure/http"
	"msg-generator/internal/infrastructure/kafka"
	"msg-generator/internal/infrastructure/postgres"
	"msg-generator/internal/infrastructure/stdout"
	"msg-generator/internal/logger"
	"msg-generator/internal/metrics"
	"msg-generator/internal/usecase"
	"msg-generator/pkg/interfaces"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	parseFlags(cfg, os.Args[1:])

	logger.InitLogger(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		slog.Error("Message generation failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("generator", flag.ExitOnError)

	var (
		brokers   = fs.String("brokers", strings.Join(cfg.KafkaBrokers, ","), "Comma separated Kafka broker addresses")
		printOnly = fs.Bool("print-only", cfg.Output == config.OutputStdout, "Only print messages, don't send to Kafka")
		pacing    = fs.String("pacing", string(cfg.Generation.Pacing), "Pacing strategy when rate limited: sleep or bucket")
		logLevel  = fs.String("log-level", cfg.LogLevel.String(), "Log level: debug, info, warn, error")
	)

	fs.StringVar(&cfg.Label, "label", cfg.Label, "Label used to build each worker's correlation id")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of parallel generator pipelines")
	fs.IntVar(&cfg.Generation.Count, "msg-count", cfg.Generation.Count, fmt.Sprintf("Messages per worker, %d for unbounded", models.UnboundedCount))
	fs.Float64Var(&cfg.Generation.Size, "msg-size", cfg.Generation.Size, "Target payload body size")
	fs.StringVar(&cfg.Generation.AppID, "aid", cfg.Generation.AppID, "Application id placed in every message")
	fs.StringVar(&cfg.Generation.AppName, "aname", cfg.Generation.AppName, "Application name placed in every message")
	fs.StringVar(&cfg.Generation.Topic, "topic", cfg.Generation.Topic, "Topic to publish to")
	fs.BoolVar(&cfg.Generation.Timing, "timing", cfg.Generation.Timing, "Prefix payloads with the send time")
	fs.Float64Var(&cfg.Generation.MessagesPerSecond, "msgs-per-second", cfg.Generation.MessagesPerSecond, "Per worker rate limit, 0 for unlimited")
	fs.Float64Var(&cfg.Generation.Jitter, "jitter", cfg.Generation.Jitter, "Fraction of the rate limit delay to randomize, 0 to disable")
	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Messages per Kafka write")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "Address for /metrics, /health and /runs, empty to disable")
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL DSN for run history, empty to disable")

	_ = fs.Parse(args)

	cfg.KafkaBrokers = strings.Split(*brokers, ",")
	cfg.Generation.Pacing = models.Pacing(*pacing)
	if *printOnly {
		cfg.Output = config.OutputStdout
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q: %v\n", *logLevel, err)
		os.Exit(2)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var publisher interfaces.Publisher
	switch cfg.Output {
	case config.OutputStdout:
		publisher = stdout.NewPublisher(os.Stdout, m)
	default:
		publisher = kafka.NewPublisher(cfg.KafkaBrokers, kafka.BatchSizeFor(cfg.Generation, cfg.BatchSize), cfg.WriteTimeout, m)
	}

	var runs interfaces.RunRepository
	if cfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		db, err := postgres.ConnectToDB(connectCtx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				slog.Error("Failed to close database connection", "error", err)
			}
		}()

		repo := postgres.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		runs = repo
	}

	var server interfaces.HTTPServer
	if cfg.HTTPAddr != "" {
		server = httpserver.NewMetricsHTTPServer(cfg.HTTPAddr, reg, runs)
	}

	app := usecase.NewApplication(cfg, publisher, runs, server)
	if err := app.Start(ctx); err != nil {
		return err
	}

	reports, runErr := app.Run(ctx)

	total := 0
	for _, r := range reports {
		total += r.Sent
	}
	slog.Info("Message generation completed", "sent", total, "workers", len(reports))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shutdown gracefully", "error", err)
	}

	return runErr
}
