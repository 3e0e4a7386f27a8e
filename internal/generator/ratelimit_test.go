package generator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msg-generator/internal/domain/models"
)

func TestRateLimited_YieldThenSleep(t *testing.T) {
	var events []string
	sleeper := &recordingSleeper{events: &events}

	gen := NewRateLimited(&sliceGenerator{items: envelopes(3), events: &events}, 4, WithSleeper(sleeper.sleep))
	items := Collect(context.Background(), gen)

	require.Len(t, items, 3)
	assert.Equal(t, []string{"pull", "sleep", "pull", "sleep", "pull", "sleep", "pull"}, events)
	for _, d := range sleeper.pauses {
		assert.Equal(t, 250*time.Millisecond, d)
	}
}

func TestRateLimited_PassesEnvelopesUnchanged(t *testing.T) {
	sleeper := &recordingSleeper{}
	gen := NewRateLimited(&sliceGenerator{items: envelopes(4)}, 1000, WithSleeper(sleeper.sleep))

	assert.Equal(t, envelopes(4), Collect(context.Background(), gen))
}

func TestRateLimited_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := NewRateLimited(&sliceGenerator{items: envelopes(10)}, 0.5)

	_, ok := gen.Next(ctx)
	require.True(t, ok)

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, ok = gen.Next(ctx)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRateLimited_WallClock(t *testing.T) {
	if testing.Short() {
		t.Skip("real-time pacing test")
	}

	const rate = 50.0
	interval := time.Duration(float64(time.Second) / rate)
	gen := NewRateLimited(&sliceGenerator{items: envelopes(6)}, rate)

	ctx := context.Background()
	_, ok := gen.Next(ctx)
	require.True(t, ok)
	last := time.Now()

	for i := 0; i < 5; i++ {
		_, ok := gen.Next(ctx)
		require.True(t, ok)
		gap := time.Since(last)
		last = time.Now()

		assert.GreaterOrEqual(t, gap, interval)
		assert.Less(t, gap, interval+200*time.Millisecond)
	}
}

func TestJitteryRateLimited_PausesWithinBounds(t *testing.T) {
	const (
		rate   = 10.0
		jitter = 0.5
		n      = 1000
	)
	sleeper := &recordingSleeper{}
	upstream := NewGaussianSize("cid", models.UnboundedCount, 4, "a1", "app", "t1", WithRand(seeded(1)))
	gen := NewJitteryRateLimited(upstream, rate, jitter, WithRand(seeded(2)), WithSleeper(sleeper.sleep))

	ctx := context.Background()
	for i := 0; i <= n; i++ {
		_, ok := gen.Next(ctx)
		require.True(t, ok)
	}

	require.Len(t, sleeper.pauses, n)
	lower := time.Duration((1 - jitter) / rate * float64(time.Second))
	upper := time.Duration((1 + jitter) / rate * float64(time.Second))

	var total time.Duration
	distinct := make(map[time.Duration]bool)
	for _, d := range sleeper.pauses {
		assert.GreaterOrEqual(t, d, lower)
		assert.LessOrEqual(t, d, upper)
		total += d
		distinct[d] = true
	}
	assert.InDelta(t, float64(100*time.Millisecond), float64(total/n), float64(5*time.Millisecond))
	assert.Greater(t, len(distinct), n/2, "pauses should be drawn fresh per item")
}

func TestJitteryRateLimited_NegativePauseBecomesZero(t *testing.T) {
	sleeper := &recordingSleeper{}
	upstream := NewGaussianSize("cid", 500, 4, "a1", "app", "t1", WithRand(seeded(1)))
	gen := NewJitteryRateLimited(upstream, 100, 1.5, WithRand(seeded(3)), WithSleeper(sleeper.sleep))

	items := Collect(context.Background(), gen)
	require.Len(t, items, 500)

	zeros := 0
	for _, d := range sleeper.pauses {
		assert.GreaterOrEqual(t, d, time.Duration(0))
		if d == 0 {
			zeros++
		}
	}
	assert.Positive(t, zeros)
}

func TestTokenBucketLimited_Paces(t *testing.T) {
	if testing.Short() {
		t.Skip("real-time pacing test")
	}

	const rate = 50.0
	gen := NewTokenBucketLimited(&sliceGenerator{items: envelopes(6)}, rate)

	start := time.Now()
	items := Collect(context.Background(), gen)
	elapsed := time.Since(start)

	require.Len(t, items, 6)
	assert.Equal(t, envelopes(6), items)
	// six pulls plus the exhausting one need six refills
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	assert.True(t, SleepContext(ctx, 0))
	assert.True(t, SleepContext(ctx, -time.Second))
	assert.True(t, SleepContext(ctx, time.Millisecond))

	cancel()
	assert.False(t, SleepContext(ctx, 0))
	assert.False(t, SleepContext(ctx, time.Hour))
}
