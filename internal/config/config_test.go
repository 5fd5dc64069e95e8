package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/newsroom-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, "./news", cfg.Legacy.Dir)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Seed.Enabled)
}

func TestLoad_MissingSecretFails(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("REFRESH_TOKEN_TTL", "24h")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LEGACY_NEWS_DIR", "/srv/news")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.RefreshTTL)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "/srv/news", cfg.Legacy.Dir)
	assert.True(t, cfg.Auth.CookieSecure)
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Database: config.DatabaseConfig{Host: "localhost", Name: "newsroom"},
			Auth: config.AuthConfig{
				JWTSecret:  testSecret,
				AccessTTL:  time.Hour,
				RefreshTTL: 24 * time.Hour,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"short secret", func(c *config.Config) { c.Auth.JWTSecret = "short" }, "at least"},
		{"no db host", func(c *config.Config) { c.Database.Host = "" }, "DB_HOST"},
		{"zero ttl", func(c *config.Config) { c.Auth.AccessTTL = 0 }, "TTL"},
		{"seed without password", func(c *config.Config) { c.Seed.Enabled = true }, "ADMIN_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}

func TestGetDSN(t *testing.T) {
	db := config.DatabaseConfig{Host: "h", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable", db.GetDSN())
}
