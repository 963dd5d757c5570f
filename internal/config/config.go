package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// ProviderConfig configures the people/company data provider client.
type ProviderConfig struct {
	APIKey      string        `yaml:"api_key" masq:"secret"`
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// WorkspaceConfig configures the destination Notion database.
type WorkspaceConfig struct {
	Token      string `yaml:"token" masq:"secret"`
	DatabaseID string `yaml:"database_id"`
}

// AIConfig selects and authenticates the language-model backend.
type AIConfig struct {
	Provider  string `yaml:"provider"`
	OpenAIKey string `yaml:"openai_api_key" masq:"secret"`
	GeminiKey string `yaml:"gemini_api_key" masq:"secret"`
}

// BatchConfig controls row orchestration.
type BatchConfig struct {
	RowDelay         time.Duration `yaml:"row_delay"`
	RowsPerMinute    int           `yaml:"rows_per_minute"`
	Workers          int           `yaml:"workers"`
	FallbackPolicy   string        `yaml:"fallback_policy"`
	SkipExisting     bool          `yaml:"skip_existing"`
	PeoplePerCompany int           `yaml:"people_per_company"`
}

// ContactsConfig tunes how identifiers and contact channels are normalised.
type ContactsConfig struct {
	PhoneRegion    string   `yaml:"phone_region"`
	ProfileDomains []string `yaml:"profile_domains"`
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port          string        `yaml:"port"`
	DatabaseURL   string        `yaml:"database_url" masq:"secret"`
	JWTSecret     string        `yaml:"jwt_secret" masq:"secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	EncryptionKey string        `yaml:"encryption_key" masq:"secret"`
	BcryptCost    int           `yaml:"bcrypt_cost"`
	RedisURL      string        `yaml:"redis_url" masq:"secret"`
	LogLevel      string        `yaml:"log_level"`
	LogFormat     string        `yaml:"log_format"`

	Provider  ProviderConfig  `yaml:"provider"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	AI        AIConfig        `yaml:"ai"`
	Batch     BatchConfig     `yaml:"batch"`
	Contacts  ContactsConfig  `yaml:"contacts"`

	RateLimitEnrichRaw string          `yaml:"rate_limit_enrich"`
	RateLimitEnrich    RateLimitConfig `yaml:"-"`
}

func defaultConfig() Config {
	return Config{
		Port:        "8080",
		DatabaseURL: "sqlite://contact_enricher.db",
		JWTSecret:   "dev-secret",
		TokenTTL:    24 * time.Hour,
		BcryptCost:  12,
		LogLevel:    "info",
		LogFormat:   "text",
		Provider: ProviderConfig{
			BaseURL:     "https://api.apollo.io/v1",
			Timeout:     30 * time.Second,
			MaxAttempts: 3,
		},
		AI: AIConfig{Provider: "openai"},
		Contacts: ContactsConfig{
			PhoneRegion:    "US",
			ProfileDomains: []string{"linkedin.com"},
		},
		Batch: BatchConfig{
			RowDelay:         1500 * time.Millisecond,
			Workers:          1,
			FallbackPolicy:   "first-candidate",
			SkipExisting:     true,
			PeoplePerCompany: 5,
		},
		RateLimitEnrichRaw: "30/min",
	}
}

// Load reads an optional YAML file named by CONFIG_FILE, then applies environment overrides.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	rl, err := parseRateLimit(cfg.RateLimitEnrichRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_ENRICH value: %w", err)
	}
	cfg.RateLimitEnrich = rl

	if cfg.Batch.Workers < 1 {
		cfg.Batch.Workers = 1
	}
	if cfg.Batch.PeoplePerCompany < 1 {
		cfg.Batch.PeoplePerCompany = 5
	}
	if cfg.Batch.RowsPerMinute < 0 {
		return nil, fmt.Errorf("invalid ROWS_PER_MINUTE value %d: must not be negative", cfg.Batch.RowsPerMinute)
	}

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	c.Port = getEnv("PORT", c.Port)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.TokenTTL = parseDuration(getEnv("TOKEN_TTL", ""), c.TokenTTL)
	c.EncryptionKey = getEnv("ENCRYPTION_KEY", c.EncryptionKey)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	c.Provider.APIKey = getEnv("APOLLO_API_KEY", c.Provider.APIKey)
	c.Provider.BaseURL = getEnv("APOLLO_BASE_URL", c.Provider.BaseURL)
	c.Provider.Timeout = parseDuration(getEnv("PROVIDER_TIMEOUT", ""), c.Provider.Timeout)

	c.Workspace.Token = getEnv("NOTION_TOKEN", c.Workspace.Token)
	c.Workspace.DatabaseID = getEnv("NOTION_DATABASE_ID", c.Workspace.DatabaseID)

	c.AI.Provider = strings.ToLower(getEnv("AI_PROVIDER", c.AI.Provider))
	c.AI.OpenAIKey = getEnv("OPENAI_API_KEY", c.AI.OpenAIKey)
	c.AI.GeminiKey = getEnv("GEMINI_API_KEY", c.AI.GeminiKey)

	c.Batch.RowDelay = parseDuration(getEnv("ROW_DELAY", ""), c.Batch.RowDelay)
	c.Batch.FallbackPolicy = getEnv("FALLBACK_POLICY", c.Batch.FallbackPolicy)

	c.Contacts.PhoneRegion = getEnv("PHONE_REGION", c.Contacts.PhoneRegion)
	if raw := getEnv("PROFILE_DOMAINS", ""); raw != "" {
		c.Contacts.ProfileDomains = splitList(raw)
	}

	c.RateLimitEnrichRaw = getEnv("RATE_LIMIT_ENRICH", c.RateLimitEnrichRaw)

	var err error
	if c.BcryptCost, err = parseInt("BCRYPT_COST", c.BcryptCost); err != nil {
		return err
	}
	if c.Provider.MaxAttempts, err = parseInt("PROVIDER_MAX_ATTEMPTS", c.Provider.MaxAttempts); err != nil {
		return err
	}
	if c.Batch.Workers, err = parseInt("BATCH_WORKERS", c.Batch.Workers); err != nil {
		return err
	}
	if c.Batch.RowsPerMinute, err = parseInt("ROWS_PER_MINUTE", c.Batch.RowsPerMinute); err != nil {
		return err
	}
	if c.Batch.PeoplePerCompany, err = parseInt("PEOPLE_PER_COMPANY", c.Batch.PeoplePerCompany); err != nil {
		return err
	}
	if c.Batch.SkipExisting, err = parseBool("SKIP_EXISTING", c.Batch.SkipExisting); err != nil {
		return err
	}
	return nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	if input == "" {
		return fallback
	}
	d, err := time.ParseDuration(input)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return n, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return b, nil
}
