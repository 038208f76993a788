package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-at-least-16-chars!!")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "data/creatorverse.db", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Generation.Model)
	assert.Empty(t, cfg.Generation.APIKey)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-at-least-16-chars!!")
	t.Setenv("PORT", "9090")
	t.Setenv("GENERATION_TIMEOUT", "2s")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PUBLIC_BASE_URL", "https://example.com/")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 2*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, "sk-test", cfg.Generation.APIKey)
	assert.Equal(t, "https://example.com", cfg.PublicBaseURL, "trailing slash is trimmed")
	assert.True(t, cfg.Session.CookieSecure)
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Config{
		HTTP:       HTTP{Port: 0},
		Session:    Session{JWTSecret: "", TTL: 0},
		Generation: Generation{Timeout: 0},
		RateLimit:  RateLimit{RPS: 0, Burst: 0},
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"JWT_SECRET", "SESSION_TTL", "GENERATION_TIMEOUT", "PORT", "RATE_LIMIT"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestUsage_ListsVariables(t *testing.T) {
	usage := Usage()
	assert.Contains(t, usage, "OPENAI_API_KEY")
	assert.Contains(t, usage, "JWT_SECRET")
}
