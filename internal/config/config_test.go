package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL)
	assert.Equal(t, "ip_user_route", cfg.KeyStrategy)
}

func TestLoadCacheConfigOnlyCachesReads(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, post ,head")
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
	assert.Equal(t, "cache:amenities", cfg.Prefix)
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_TLS", "1")
	cfg := LoadRedisConfig()
	assert.Equal(t, "cache:6380", cfg.Addr)
	assert.True(t, cfg.TLS)

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	assert.Equal(t, "redis:6379", LoadRedisConfig().Addr)
}

func TestLoadEventsConfig(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@mq:5672/")
	t.Setenv("EVENTS_CONSUMER_ENABLED", "yes")
	t.Setenv("EVENTS_DIAL_TIMEOUT", "")
	cfg := LoadEventsConfig()
	assert.Equal(t, "amqp://u:p@mq:5672/", cfg.URL)
	assert.Equal(t, "amenity.reservations", cfg.Queue)
	assert.True(t, cfg.ConsumerEnabled)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 2*time.Second, cfg.DialTimeout)
}
