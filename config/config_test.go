package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/test")
	t.Setenv("KEYCLOAK_URL", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("DEFAULT_SECTIONS", "")
	t.Setenv("DEFAULT_KEYWORDS", "")

	LoadConfig()

	assert.Equal(t, []string{"SaaS", "technology", "startups"}, Config.DefaultSections)
	assert.Equal(t, []string{"Cleverbridge", "Merchant of Record", "MoR", "scaling"}, Config.DefaultKeywords)
	assert.Equal(t, 25, Config.DefaultLimit)
	assert.Equal(t, SourceReddit, Config.ForumSource)
	assert.Equal(t, 3, Config.MaxRetries)
	assert.Equal(t, 10*time.Second, Config.RequestTimeout)
	assert.Equal(t, slog.LevelInfo, Config.LogLevel)
	assert.False(t, Config.AuthEnabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/test")
	t.Setenv("DEFAULT_SECTIONS", " golang, ,rust ")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("RETRY_INITIAL_BACKOFF", "250ms")
	t.Setenv("FORUM_SOURCE", "ArcticShift")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PAGE_SIZE", "not-a-number")

	LoadConfig()

	assert.Equal(t, []string{"golang", "rust"}, Config.DefaultSections)
	assert.Equal(t, 5, Config.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, Config.RetryInitialBackoff)
	assert.Equal(t, SourceArcticShift, Config.ForumSource)
	assert.Equal(t, slog.LevelDebug, Config.LogLevel)
	assert.Equal(t, 100, Config.PageSize, "invalid values fall back to the default")
}

func TestSplitList(t *testing.T) {
	require.Empty(t, SplitList(" , ,"))
	assert.Equal(t, []string{"a", "b c"}, SplitList("a, b c ,"))
}

func TestLoadConfig_ProductionWithKeycloak(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/test")
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("KEYCLOAK_URL", "https://auth.example.com")
	t.Setenv("KEYCLOAK_CLIENT_ID", "redditscope")
	t.Setenv("KEYCLOAK_CLIENT_SECRET", "secret")
	t.Setenv("KEYCLOAK_REALM", "redditscope")

	LoadConfig()

	assert.True(t, Config.IsProduction())
	assert.True(t, Config.AuthEnabled())
	assert.Equal(t, "redditscope", Config.KeycloakRealm)
}
