package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"msg-generator/internal/config"
	"msg-generator/internal/domain/models"
	"msg-generator/internal/generator"
	"msg-generator/pkg/interfaces"
)

const saveRunTimeout = 5 * time.Second

type Application struct {
	publisher interfaces.Publisher
	runs      interfaces.RunRepository
	http      interfaces.HTTPServer
	config    *config.Config
	options   []generator.Option
}

// NewApplication wires the components. runs and http may be nil when run
// history or the metrics endpoint are disabled.
func NewApplication(config *config.Config, publisher interfaces.Publisher, runs interfaces.RunRepository, http interfaces.HTTPServer, opts ...generator.Option) *Application {
	return &Application{
		publisher: publisher,
		runs:      runs,
		http:      http,
		config:    config,
		options:   opts,
	}
}

func (app *Application) Start(ctx context.Context) error {
	if app.http == nil {
		return nil
	}
	if err := app.http.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Run drives one pipeline per worker and blocks until every pipeline is
// exhausted, ctx is cancelled or a publisher fails. Workers share nothing but
// the publisher; each owns its generator and random source.
func (app *Application) Run(ctx context.Context) ([]models.RunReport, error) {
	workers := app.config.Workers
	reports := make([]models.RunReport, workers)

	slog.Info("Starting message generation",
		"workers", workers,
		"publisher", app.publisher.Name(),
		"count", app.config.Generation.Count,
		"size", app.config.Generation.Size,
		"topic", app.config.Generation.Topic,
		"msgs_per_second", app.config.Generation.MessagesPerSecond)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		index := i + 1
		if workers == 1 {
			index = 0
		}

		g.Go(func() error {
			cid := generator.CorrelationID(app.config.Label, index)
			gen := generator.CreateGenerator(app.config.Label, index, app.config.Generation, app.options...)

			report, err := app.publisher.Publish(gctx, cid, gen)
			reports[i] = report
			app.saveRun(ctx, report)
			if err != nil {
				return fmt.Errorf("worker %s: %w", cid, err)
			}

			slog.Info("Worker finished",
				"cid", cid,
				"sent", report.Sent,
				"failed", report.Failed,
				"bytes", report.Bytes,
				"duration", report.Duration(),
				"rate", report.Rate())
			return nil
		})
	}

	err := g.Wait()
	return reports, err
}

func (app *Application) saveRun(ctx context.Context, report models.RunReport) {
	if app.runs == nil {
		return
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveRunTimeout)
	defer cancel()

	if err := app.runs.SaveRun(saveCtx, report); err != nil {
		slog.Error("Failed to save run report", "error", err, "cid", report.CorrelationID)
	}
}

func (app *Application) Shutdown(ctx context.Context) error {
	if app.http != nil {
		if err := app.http.Shutdown(ctx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}

	if err := app.publisher.Close(); err != nil {
		slog.Error("Publisher close error", "error", err)
		return err
	}

	return nil
}
