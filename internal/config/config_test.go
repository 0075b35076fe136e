package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers())
	assert.Empty(t, cfg.S3.Bucket)
	assert.True(t, cfg.UsesDefaultJWTSecret())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("S3_BUCKET", "pets")
	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("JWT_SECRET", "a-real-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "pets", cfg.S3.Bucket)
	assert.Equal(t, 5, cfg.RateLimitRPS)
	assert.False(t, cfg.UsesDefaultJWTSecret())
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "0")

	_, err := Load()
	assert.Error(t, err)
}
