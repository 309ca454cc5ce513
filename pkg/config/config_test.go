package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("INGEST_BATCH_SIZE", "")
	t.Setenv("PROCESS_INTERVAL_SECONDS", "")
	t.Setenv("JWT_REQUIRED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultIngestBatchSize, cfg.Ingest.BatchSize)
	assert.Equal(t, defaultProcessBatchSize, cfg.Processing.BatchSize)
	assert.Zero(t, cfg.Processing.Interval)
	assert.False(t, cfg.JWT.Required)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("INGEST_BATCH_SIZE", "50")
	t.Setenv("PROCESS_BATCH_SIZE", "-3")
	t.Setenv("PROCESS_INTERVAL_SECONDS", "60")
	t.Setenv("PROCESS_CLAIM_LEASE_SECONDS", "abc")
	t.Setenv("JWT_REQUIRED", "true")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Ingest.BatchSize)
	assert.Equal(t, defaultProcessBatchSize, cfg.Processing.BatchSize, "non-positive batch size is clamped")
	assert.Equal(t, time.Minute, cfg.Processing.Interval)
	assert.Equal(t, 300*time.Second, cfg.Processing.ClaimLease)
	assert.True(t, cfg.JWT.Required)
	assert.Equal(t, "console", cfg.Logger.Format)
}
