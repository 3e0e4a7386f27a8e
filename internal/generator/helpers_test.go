package generator

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"msg-generator/internal/domain/models"
)

var fixedTime = time.Date(2024, 3, 9, 14, 30, 15, 123456000, time.Local)

func fixedClock() time.Time {
	return fixedTime
}

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// recordingSleeper records requested pauses instead of sleeping.
type recordingSleeper struct {
	pauses []time.Duration
	events *[]string
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) bool {
	s.pauses = append(s.pauses, d)
	if s.events != nil {
		*s.events = append(*s.events, "sleep")
	}
	return ctx.Err() == nil
}

// sliceGenerator replays fixed envelopes and logs every pull.
type sliceGenerator struct {
	items  []models.Envelope
	events *[]string
}

func (g *sliceGenerator) Next(ctx context.Context) (models.Envelope, bool) {
	if g.events != nil {
		*g.events = append(*g.events, "pull")
	}
	if len(g.items) == 0 || ctx.Err() != nil {
		return models.Envelope{}, false
	}
	env := g.items[0]
	g.items = g.items[1:]
	return env, true
}

func envelopes(n int) []models.Envelope {
	out := make([]models.Envelope, n)
	for i := range out {
		out[i] = models.Envelope{Index: i + 1, Topic: "bench", Payload: `{"n":` + strconv.Itoa(i) + `}`}
	}
	return out
}
