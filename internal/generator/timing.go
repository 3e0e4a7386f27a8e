package generator

import (
	"context"
	"strconv"
	"time"

	"msg-generator/internal/domain/models"
)

// TimeTracking prefixes every payload with the wall-clock time at which the
// envelope was pulled, as "<unix seconds>,<payload>".
type TimeTracking struct {
	upstream Generator
	opts     options
}

func NewTimeTracking(upstream Generator, opts ...Option) *TimeTracking {
	return &TimeTracking{upstream: upstream, opts: newOptions(opts...)}
}

func (t *TimeTracking) Next(ctx context.Context) (models.Envelope, bool) {
	env, ok := t.upstream.Next(ctx)
	if !ok {
		return env, false
	}
	return env.WithPayload(FormatCaptureTime(t.opts.now()) + "," + env.Payload), true
}

// FormatCaptureTime renders t as seconds since the epoch with six decimals.
func FormatCaptureTime(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixNano())/float64(time.Second), 'f', 6, 64)
}
