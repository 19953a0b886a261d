package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "DEV"
	EnvProduction  = "PROD"
)

const (
	SourceReddit      = "reddit"
	SourceArcticShift = "arcticshift"
)

type AppConfig struct {
	KeycloakClientID     string
	KeycloakClientSecret string
	KeycloakRealm        string
	KeycloakURL          string
	PostgresURL          string
	Port                 string
	AppEnv               string // EnvDevelopment or EnvProduction
	LogLevel             slog.Level

	ForumSource      string // SourceReddit or SourceArcticShift
	SourceBaseURL    string
	ProxyURLs        []string
	ProxyMinInterval time.Duration
	DefaultSections  []string
	DefaultKeywords  []string
	DefaultLimit     int
	MaxLimit         int
	MatchMode        string

	PageSize            int
	MaxPages            int
	FetchConcurrency    int
	MaxRetries          int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RequestTimeout      time.Duration
	SectionTimeout      time.Duration

	LanguageDetection    bool
	MinEnglishConfidence float64
}

var Config AppConfig

func LoadConfig() {
	cfg := AppConfig{}

	cfg.AppEnv = os.Getenv("APP_ENV")
	cfg.PostgresURL = loadRequired("POSTGRES_URL")
	cfg.Port = loadOptional("PORT", "8080")

	// Keycloak is optional outside production; without it private routes are
	// served unauthenticated.
	cfg.KeycloakURL = os.Getenv("KEYCLOAK_URL")
	if cfg.IsProduction() {
		cfg.KeycloakURL = loadRequired("KEYCLOAK_URL")
	}
	if cfg.KeycloakURL != "" {
		cfg.KeycloakClientID = loadRequired("KEYCLOAK_CLIENT_ID")
		cfg.KeycloakClientSecret = loadRequired("KEYCLOAK_CLIENT_SECRET")
		cfg.KeycloakRealm = loadRequired("KEYCLOAK_REALM")
	}

	cfg.ForumSource = strings.ToLower(loadOptional("FORUM_SOURCE", SourceReddit))
	if cfg.ForumSource != SourceReddit && cfg.ForumSource != SourceArcticShift {
		slog.Error("Invalid FORUM_SOURCE", "value", cfg.ForumSource)
		os.Exit(1)
	}
	cfg.SourceBaseURL = os.Getenv("SOURCE_BASE_URL")
	cfg.ProxyURLs = loadList("PROXY_URLS", nil)
	cfg.ProxyMinInterval = loadDuration("PROXY_MIN_INTERVAL", 2*time.Second)
	cfg.DefaultSections = loadList("DEFAULT_SECTIONS", []string{"SaaS", "technology", "startups"})
	cfg.DefaultKeywords = loadList("DEFAULT_KEYWORDS", []string{"Cleverbridge", "Merchant of Record", "MoR", "scaling"})
	cfg.DefaultLimit = loadInt("DEFAULT_LIMIT", 25)
	cfg.MaxLimit = loadInt("MAX_LIMIT", 100)
	cfg.MatchMode = strings.ToLower(loadOptional("MATCH_MODE", "broad"))

	cfg.PageSize = loadInt("PAGE_SIZE", 100)
	cfg.MaxPages = loadInt("MAX_PAGES", 1)
	cfg.FetchConcurrency = loadInt("FETCH_CONCURRENCY", 4)
	cfg.MaxRetries = loadInt("MAX_RETRIES", 3)
	cfg.RetryInitialBackoff = loadDuration("RETRY_INITIAL_BACKOFF", 500*time.Millisecond)
	cfg.RetryMaxBackoff = loadDuration("RETRY_MAX_BACKOFF", 5*time.Second)
	cfg.RequestTimeout = loadDuration("REQUEST_TIMEOUT", 10*time.Second)
	cfg.SectionTimeout = loadDuration("SECTION_TIMEOUT", 30*time.Second)

	cfg.LanguageDetection = loadBool("LANGUAGE_DETECTION", true)
	cfg.MinEnglishConfidence = loadFloat("MIN_ENGLISH_CONFIDENCE", 0.1)

	lvlString := loadOptional("LOG_LEVEL", "INFO")
	var err error
	cfg.LogLevel, err = parseLogLevel(lvlString)
	if err != nil {
		slog.Error("Invalid LOG_LEVEL", "error", err)
		cfg.LogLevel = slog.LevelInfo
	}

	Config = cfg
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	var err = level.UnmarshalText([]byte(s))
	return level, err
}

func loadRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		slog.Error("Required env var not set", "key", key)
		os.Exit(1)
	}
	return value
}

func loadOptional(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func loadInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Error("Invalid int env var, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}

func loadFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Error("Invalid float env var, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return f
}

func loadBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Error("Invalid bool env var, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return b
}

func loadDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Error("Invalid duration env var, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return d
}

// loadList reads a comma separated list, dropping blank entries.
func loadList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return SplitList(value)
}

func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c AppConfig) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

func (c AppConfig) AuthEnabled() bool {
	return c.KeycloakURL != ""
}
