package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("CACHE_EXPIRATION", "2m")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("MAX_UPLOAD_SIZE_BYTES", "not-a-number")

	LoadConfig()

	assert.Equal(t, "9090", Cfg.Port)
	assert.Equal(t, 5, Cfg.RateLimitBurst)
	assert.Equal(t, 2*time.Minute, Cfg.CacheExpiration)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, Cfg.AllowedOrigins)
	assert.Equal(t, int64(2*1024*1024), Cfg.MaxUploadSizeBytes)
}
