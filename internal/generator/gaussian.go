package generator

import (
	"context"
	"log/slog"

	"msg-generator/internal/domain/models"
)

// GaussianSize emits count envelopes whose payload lengths are normally
// distributed around a target size. A negative count never runs out.
type GaussianSize struct {
	cid    string
	count  int
	target float64
	aid    string
	aname  string
	topic  string

	num  int
	done bool
	opts options
}

// NewGaussianSize creates the base generator of a pipeline.
func NewGaussianSize(cid string, count int, target float64, aid, aname, topic string, opts ...Option) *GaussianSize {
	return &GaussianSize{
		cid:    cid,
		count:  count,
		target: target,
		aid:    aid,
		aname:  aname,
		topic:  topic,
		num:    1,
		opts:   newOptions(opts...),
	}
}

// CorrelationID identifies the pipeline the generator belongs to.
func (g *GaussianSize) CorrelationID() string {
	return g.cid
}

func (g *GaussianSize) Next(ctx context.Context) (models.Envelope, bool) {
	if g.done || ctx.Err() != nil {
		return models.Envelope{}, false
	}
	if g.count >= 0 && g.num > g.count {
		g.done = true
		return models.Envelope{}, false
	}

	size := SampleSize(g.opts.rng, g.target)
	payload, err := BuildPayload(g.opts.rng, g.opts.now(), g.cid, g.aid, g.aname, g.topic, size)
	if err != nil {
		slog.Error("Failed to build payload, stopping generator", "error", err, "cid", g.cid, "index", g.num)
		g.done = true
		return models.Envelope{}, false
	}

	env := models.Envelope{Index: g.num, Topic: g.topic, Payload: payload}
	g.num++
	return env, true
}
