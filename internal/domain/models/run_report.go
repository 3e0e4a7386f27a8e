package models

import "time"

// RunReport summarizes what one pipeline pushed to its publisher.
type RunReport struct {
	CorrelationID string
	Publisher     string
	Topic         string
	Sent          int
	Failed        int
	Bytes         int64
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Duration is the wall-clock time the run took.
func (r RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Rate is the achieved throughput in messages per second.
func (r RunReport) Rate() float64 {
	d := r.Duration().Seconds()
	if d <= 0 {
		return 0
	}
	return float64(r.Sent) / d
}
