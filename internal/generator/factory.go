package generator

import (
	"log/slog"
	"strconv"

	"msg-generator/internal/domain/models"
)

// CorrelationID joins label and index with an underscore. An index of zero
// means no index.
func CorrelationID(label string, index int) string {
	if index == 0 {
		return label
	}
	return label + "_" + strconv.Itoa(index)
}

// CreateGenerator composes a pipeline from cfg: a GaussianSize base, then
// TimeTracking if timing is enabled, then a rate limiter if a rate is set.
// cfg is expected to be validated already.
func CreateGenerator(label string, index int, cfg models.GenerationConfig, opts ...Option) Generator {
	o := newOptions(opts...)
	shared := o.list()
	cid := CorrelationID(label, index)

	var gen Generator = NewGaussianSize(cid, cfg.Count, cfg.Size, cfg.AppID, cfg.AppName, cfg.Topic, shared...)
	if cfg.Timing {
		gen = NewTimeTracking(gen, shared...)
	}

	if cfg.MessagesPerSecond > 0 {
		switch {
		case cfg.Jitter > 0:
			gen = NewJitteryRateLimited(gen, cfg.MessagesPerSecond, cfg.Jitter, shared...)
		case cfg.Pacing == models.PacingTokenBucket:
			gen = NewTokenBucketLimited(gen, cfg.MessagesPerSecond)
		default:
			gen = NewRateLimited(gen, cfg.MessagesPerSecond, shared...)
		}
	}

	slog.Debug("Generator created",
		"cid", cid,
		"count", cfg.Count,
		"size", cfg.Size,
		"topic", cfg.Topic,
		"timing", cfg.Timing,
		"msgs_per_second", cfg.MessagesPerSecond,
		"jitter", cfg.Jitter)

	return gen
}
