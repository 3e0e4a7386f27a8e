package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msg-generator/internal/config"
	"msg-generator/internal/domain/models"
)

func TestParseFlags_OverridesEnvironment(t *testing.T) {
	t.Setenv("GEN_TOPIC", "from-env")
	t.Setenv("GEN_MSG_SIZE", "64")

	cfg, err := config.NewConfig()
	require.NoError(t, err)

	parseFlags(cfg, []string{
		"-label", "load",
		"-workers", "3",
		"-msg-count", "-1",
		"-topic", "t1",
		"-timing",
		"-msgs-per-second", "25",
		"-jitter", "0.2",
		"-pacing", "bucket",
		"-brokers", "k1:9092,k2:9092",
		"-print-only",
		"-log-level", "debug",
	})

	assert.Equal(t, "load", cfg.Label)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, models.UnboundedCount, cfg.Generation.Count)
	assert.Equal(t, 64.0, cfg.Generation.Size)
	assert.Equal(t, "t1", cfg.Generation.Topic)
	assert.True(t, cfg.Generation.Timing)
	assert.Equal(t, 25.0, cfg.Generation.MessagesPerSecond)
	assert.Equal(t, 0.2, cfg.Generation.Jitter)
	assert.Equal(t, models.PacingTokenBucket, cfg.Generation.Pacing)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, config.OutputStdout, cfg.Output)
	assert.NoError(t, cfg.Validate())
}

func TestParseFlags_KeepsEnvironmentDefaults(t *testing.T) {
	t.Setenv("GEN_TOPIC", "from-env")

	cfg, err := config.NewConfig()
	require.NoError(t, err)
	parseFlags(cfg, nil)

	assert.Equal(t, "from-env", cfg.Generation.Topic)
	assert.Equal(t, config.OutputKafka, cfg.Output)
	assert.Equal(t, models.PacingSleep, cfg.Generation.Pacing)
}
