package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"msg-generator/internal/domain/models"
	"msg-generator/internal/generator"
	"msg-generator/internal/metrics"
)

const Name = "kafka"

// flushTimeout bounds the final write after the run context is cancelled.
const flushTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes envelopes to Kafka, using the envelope topic for every
// message. Failed writes are counted and logged, never retried.
type Publisher struct {
	writer       messageWriter
	batchSize    int
	writeTimeout time.Duration
	metrics      *metrics.Metrics
}

// BatchSizeFor returns the batch size a run of cfg may use. Paced or timed
// runs write every message as soon as it is pulled, otherwise the pauses
// would reach the broker as bursts and capture stamps would go stale.
func BatchSizeFor(cfg models.GenerationConfig, requested int) int {
	if requested < 1 || cfg.MessagesPerSecond > 0 || cfg.Timing {
		return 1
	}
	return requested
}

func NewPublisher(brokers []string, batchSize int, writeTimeout time.Duration, m *metrics.Metrics) *Publisher {
	if batchSize < 1 {
		batchSize = 1
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              batchSize,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           writeTimeout,
		AllowAutoTopicCreation: true,
	}

	slog.Info("Kafka publisher created", "brokers", brokers, "batch_size", batchSize)

	return newPublisher(writer, batchSize, writeTimeout, m)
}

func newPublisher(writer messageWriter, batchSize int, writeTimeout time.Duration, m *metrics.Metrics) *Publisher {
	return &Publisher{
		writer:       writer,
		batchSize:    batchSize,
		writeTimeout: writeTimeout,
		metrics:      m,
	}
}

func (p *Publisher) Name() string {
	return Name
}

// Publish pulls gen until it is exhausted or ctx is done. Cancellation ends
// the run normally; an error is returned only when nothing could be written.
func (p *Publisher) Publish(ctx context.Context, cid string, gen generator.Generator) (models.RunReport, error) {
	report := models.RunReport{
		CorrelationID: cid,
		Publisher:     Name,
		StartedAt:     time.Now(),
	}

	batch := make([]kafka.Message, 0, p.batchSize)
	for env := range generator.Seq(ctx, gen) {
		report.Topic = env.Topic
		batch = append(batch, kafka.Message{
			Topic: env.Topic,
			Key:   []byte(cid + "-" + strconv.Itoa(env.Index)),
			Value: []byte(env.Payload),
		})

		if len(batch) >= p.batchSize {
			p.flush(ctx, cid, batch, &report)
			batch = make([]kafka.Message, 0, p.batchSize)
		}
	}

	if len(batch) > 0 {
		p.flush(context.WithoutCancel(ctx), cid, batch, &report)
	}
	report.FinishedAt = time.Now()

	if report.Sent == 0 && report.Failed > 0 {
		return report, fmt.Errorf("kafka: all %d messages for %s failed", report.Failed, cid)
	}
	return report, nil
}

func (p *Publisher) flush(ctx context.Context, cid string, batch []kafka.Message, report *models.RunReport) {
	timeout := p.writeTimeout
	if ctx.Err() != nil || timeout <= 0 {
		timeout = flushTimeout
		ctx = context.WithoutCancel(ctx)
	}
	writeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := p.writer.WriteMessages(writeCtx, batch...)
	elapsed := time.Since(start)

	if err != nil {
		slog.Error("Error sending messages to Kafka", "error", err, "cid", cid, "count", len(batch))
		p.metrics.ObserveErrors(Name, cid, len(batch))
		report.Failed += len(batch)
		return
	}

	for _, msg := range batch {
		p.metrics.ObserveSent(Name, cid, len(msg.Value), elapsed)
		report.Bytes += int64(len(msg.Value))
	}
	report.Sent += len(batch)
	slog.Debug("Messages sent to Kafka", "cid", cid, "count", len(batch), "elapsed", elapsed)
}

func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("kafka: close writer: %w", err)
	}
	return nil
}
