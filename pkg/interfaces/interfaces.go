// pkg/interfaces/interfaces.go
package interfaces

import (
	"context"

	"msg-generator/internal/domain/models"
	"msg-generator/internal/generator"
)

// Publisher drains a generator pipeline into some output.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, cid string, gen generator.Generator) (models.RunReport, error)
	Close() error
}

// RunRepository keeps the history of generator runs.
type RunRepository interface {
	SaveRun(ctx context.Context, report models.RunReport) error
	ListRuns(ctx context.Context, limit int) ([]models.RunReport, error)
}

// HTTPServer serves metrics and health checks.
type HTTPServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}
