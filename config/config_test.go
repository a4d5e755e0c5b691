package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_TTL", "")
	t.Setenv("CODE_TTL", "")
	t.Setenv("LOGIN_RATE_LIMIT_MAX", "")

	cfg := Load()

	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10*time.Minute, cfg.CodeTTL)
	assert.Equal(t, 5, cfg.LoginRateLimitMax)
	assert.Equal(t, 15*time.Minute, cfg.LoginRateLimitWindow)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_TTL", "a week")
	t.Setenv("LOGIN_RATE_LIMIT_MAX", "five")
	t.Setenv("MAIL_SEND_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5, cfg.LoginRateLimitMax)
	assert.True(t, cfg.MailSendEnabled)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Env: "production", JWTSecret: devJWTSecret, DBDriver: "mongo"}
	require.Error(t, cfg.Validate())

	cfg.JWTSecret = "a-long-random-secret"
	require.NoError(t, cfg.Validate())

	cfg.DBDriver = "sqlite"
	require.Error(t, cfg.Validate())

	dev := &Config{Env: "development", JWTSecret: devJWTSecret, DBDriver: "memory"}
	require.NoError(t, dev.Validate())
}

func TestSplitLists(t *testing.T) {
	cfg := &Config{
		CORSAllowedOrigins: " http://a.test ,,http://b.test",
		ElasticsearchAddrs: "",
	}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Empty(t, cfg.ESAddrs())
}

func TestTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")
	assert.Empty(t, Load().TrustedProxies())

	cfg := &Config{Env: "development", DBDriver: "memory", TrustedProxyList: "10.0.0.0/8, 192.0.2.10"}
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.10"}, cfg.TrustedProxies())
	require.NoError(t, cfg.Validate())

	cfg.TrustedProxyList = "10.0.0.0/8,proxy.local"
	require.Error(t, cfg.Validate())
}
