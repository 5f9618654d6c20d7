package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION_GO", "1m30s")
	t.Setenv("TEST_DURATION_SECONDS", "45")
	t.Setenv("TEST_DURATION_BAD", "soon")

	assert.Equal(t, 90*time.Second, getEnvAsDuration("TEST_DURATION_GO", time.Second))
	assert.Equal(t, 45*time.Second, getEnvAsDuration("TEST_DURATION_SECONDS", time.Second))
	assert.Equal(t, time.Second, getEnvAsDuration("TEST_DURATION_BAD", time.Second))
	assert.Equal(t, time.Second, getEnvAsDuration("TEST_DURATION_MISSING", time.Second))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("INDEXING_BATCH_SIZE", "7")
	t.Setenv("NATS_ENABLED", "false")

	cfg := Load()

	assert.Equal(t, 7, cfg.Worker.BatchSize)
	assert.False(t, cfg.Messaging.NatsEnabled)
	assert.Equal(t, 768, cfg.Ai.EmbeddingDimensions)
	assert.Equal(t, 10*time.Second, cfg.Worker.PollInterval)
	assert.NotEmpty(t, cfg.App.InstanceId)
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("TEST_LIST", " ops@example.com, ,oncall@example.com ")

	assert.Equal(t, []string{"ops@example.com", "oncall@example.com"}, getEnvAsList("TEST_LIST"))
	assert.Nil(t, getEnvAsList("TEST_LIST_MISSING"))
}
