package generator

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"msg-generator/internal/domain/models"
)

// RateLimited passes envelopes through unchanged and pauses 1/rate seconds
// after each one before the next can be pulled. The first envelope is
// available immediately. Drift is not compensated.
type RateLimited struct {
	upstream Generator
	delay    time.Duration
	pulled   bool
	done     bool
	opts     options
}

// NewRateLimited wraps upstream. rate must be positive.
func NewRateLimited(upstream Generator, msgsPerSec float64, opts ...Option) *RateLimited {
	return &RateLimited{
		upstream: upstream,
		delay:    secondsToDuration(1 / msgsPerSec),
		opts:     newOptions(opts...),
	}
}

func (r *RateLimited) Next(ctx context.Context) (models.Envelope, bool) {
	if r.done {
		return models.Envelope{}, false
	}
	if r.pulled && !r.opts.sleep(ctx, r.delay) {
		r.done = true
		return models.Envelope{}, false
	}

	env, ok := r.upstream.Next(ctx)
	if !ok {
		r.done = true
		return env, false
	}
	r.pulled = true
	return env, true
}

// JitteryRateLimited behaves like RateLimited but perturbs every pause by a
// uniform value in [-jitter/rate, +jitter/rate]. Negative pauses are skipped.
type JitteryRateLimited struct {
	upstream Generator
	desired  float64
	jitter   float64
	pulled   bool
	done     bool
	opts     options
}

// NewJitteryRateLimited wraps upstream. rate must be positive, jitter is a
// fraction of the nominal delay, typically in [0, 1].
func NewJitteryRateLimited(upstream Generator, msgsPerSec, jitter float64, opts ...Option) *JitteryRateLimited {
	return &JitteryRateLimited{
		upstream: upstream,
		desired:  1 / msgsPerSec,
		jitter:   jitter,
		opts:     newOptions(opts...),
	}
}

func (j *JitteryRateLimited) Next(ctx context.Context) (models.Envelope, bool) {
	if j.done {
		return models.Envelope{}, false
	}
	if j.pulled && !j.opts.sleep(ctx, j.pause()) {
		j.done = true
		return models.Envelope{}, false
	}

	env, ok := j.upstream.Next(ctx)
	if !ok {
		j.done = true
		return env, false
	}
	j.pulled = true
	return env, true
}

func (j *JitteryRateLimited) pause() time.Duration {
	spread := j.jitter * j.desired
	extra := j.opts.rng.Float64()*2*spread - spread
	d := secondsToDuration(j.desired + extra)
	if d < 0 {
		return 0
	}
	return d
}

// TokenBucketLimited paces pulls with a token bucket holding a single token.
// Unlike RateLimited it measures the interval from the previous pull, so time
// spent by the consumer counts toward the pause.
type TokenBucketLimited struct {
	upstream Generator
	limiter  *rate.Limiter
	done     bool
}

func NewTokenBucketLimited(upstream Generator, msgsPerSec float64) *TokenBucketLimited {
	return &TokenBucketLimited{
		upstream: upstream,
		limiter:  rate.NewLimiter(rate.Limit(msgsPerSec), 1),
	}
}

func (t *TokenBucketLimited) Next(ctx context.Context) (models.Envelope, bool) {
	if t.done {
		return models.Envelope{}, false
	}
	// The bucket starts full, so the first pull does not wait.
	if err := t.limiter.Wait(ctx); err != nil {
		t.done = true
		return models.Envelope{}, false
	}

	env, ok := t.upstream.Next(ctx)
	if !ok {
		t.done = true
	}
	return env, ok
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
