package stdout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"msg-generator/internal/domain/models"
	"msg-generator/internal/generator"
	"msg-generator/internal/metrics"
)

const Name = "stdout"

// Publisher prints envelopes as "<index>\t<topic>\t<payload>" lines. It is
// safe for several workers to share one Publisher.
type Publisher struct {
	mu      sync.Mutex
	out     io.Writer
	metrics *metrics.Metrics
}

func NewPublisher(out io.Writer, m *metrics.Metrics) *Publisher {
	return &Publisher{out: out, metrics: m}
}

func (p *Publisher) Name() string {
	return Name
}

func (p *Publisher) Publish(ctx context.Context, cid string, gen generator.Generator) (models.RunReport, error) {
	report := models.RunReport{
		CorrelationID: cid,
		Publisher:     Name,
		StartedAt:     time.Now(),
	}

	for env := range generator.Seq(ctx, gen) {
		report.Topic = env.Topic

		start := time.Now()
		if err := p.write(env); err != nil {
			report.FinishedAt = time.Now()
			p.metrics.ObserveErrors(Name, cid, 1)
			return report, fmt.Errorf("stdout: write message %d: %w", env.Index, err)
		}
		p.metrics.ObserveSent(Name, cid, len(env.Payload), time.Since(start))

		report.Sent++
		report.Bytes += int64(len(env.Payload))
	}

	report.FinishedAt = time.Now()
	slog.Debug("Messages printed", "cid", cid, "count", report.Sent)
	return report, nil
}

func (p *Publisher) write(env models.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := fmt.Fprintf(p.out, "%d\t%s\t%s\n", env.Index, env.Topic, env.Payload)
	return err
}

func (p *Publisher) Close() error {
	return nil
}
