package models

// UnboundedCount makes a generator emit messages until its consumer stops pulling.
const UnboundedCount = -1

// Pacing selects how a rate limited pipeline waits between messages.
type Pacing string

const (
	// PacingSleep sleeps 1/rate after every message.
	PacingSleep Pacing = "sleep"
	// PacingTokenBucket waits on a token bucket, compensating for drift.
	PacingTokenBucket Pacing = "bucket"
)

// GenerationConfig describes one message pipeline. It is treated as an
// immutable value and is validated by the config layer before use.
type GenerationConfig struct {
	Count             int
	Size              float64
	AppID             string
	AppName           string
	Topic             string
	Timing            bool
	MessagesPerSecond float64
	Jitter            float64
	Pacing            Pacing
}

// Unbounded reports whether the pipeline never runs out of messages.
func (c GenerationConfig) Unbounded() bool {
	return c.Count < 0
}
