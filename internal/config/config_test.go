package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/vidtube")
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8000", cfg.ServerPort)
	require.Equal(t, 24*time.Hour, cfg.AccessTokenExpiry)
	require.Equal(t, 240*time.Hour, cfg.RefreshTokenExpiry)
	require.True(t, cfg.CookieSecure)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
	require.Equal(t, "vidtube", cfg.MediaBucket)
	require.Empty(t, cfg.RedisURL)
	require.Empty(t, cfg.AMQPURL)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ACCESS_TOKEN_EXPIRY", "15m")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "7d")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("MEDIA_PUBLIC_URL", "https://cdn.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTokenExpiry)
	require.False(t, cfg.CookieSecure)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	require.Equal(t, "https://cdn.example.com", cfg.MediaPublicURL)
}

func TestValidateRejectsSharedSecrets(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REFRESH_TOKEN_SECRET", "access-secret")

	_, err := Load()
	require.ErrorContains(t, err, "must differ")
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	d, err := ParseDuration("1d")
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, d)

	d, err = ParseDuration("90s")
	require.NoError(t, err)
	require.Equal(t, 90*time.Second, d)

	_, err = ParseDuration("xd")
	require.Error(t, err)
}
