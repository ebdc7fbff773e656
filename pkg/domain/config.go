package domain

import (
	"fmt"
	"time"
)

// Config represents the configuration file structure.
// Fields tagged with env can be overridden from the environment or a .env file.
type Config struct {
	Username string `json:"username" yaml:"username" env:"LOOPIA_USERNAME"`
	Password string `json:"password" yaml:"password" env:"LOOPIA_PASSWORD"`

	// Backend selects the availability lookup: dns, whois or loopia
	Backend     string `json:"backend" yaml:"backend" env:"DOMAINGEN_BACKEND"`
	DoHEndpoint string `json:"doh_endpoint" yaml:"doh_endpoint" env:"DOMAINGEN_DOH_ENDPOINT"`
	WhoisAPIKey string `json:"whois_api_key" yaml:"whois_api_key" env:"WHOIS_API_KEY"`
	// LookupQPS smooths outgoing HTTP lookups, 0 disables smoothing
	LookupQPS float64 `json:"lookup_qps" yaml:"lookup_qps" env:"DOMAINGEN_LOOKUP_QPS"`

	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Suffixes   []string         `json:"suffixes" yaml:"suffixes" env:"DOMAINGEN_SUFFIXES" envSeparator:","`

	BatchSize       int `json:"batch_size" yaml:"batch_size" env:"DOMAINGEN_BATCH_SIZE"`
	BatchDelayMs    int `json:"batch_delay_ms" yaml:"batch_delay_ms" env:"DOMAINGEN_BATCH_DELAY_MS"`
	SuffixDelayMs   int `json:"tld_delay_ms" yaml:"tld_delay_ms" env:"DOMAINGEN_TLD_DELAY_MS"`
	MaxRequests     int `json:"max_requests" yaml:"max_requests" env:"DOMAINGEN_MAX_REQUESTS"`
	WindowMs        int `json:"window_ms" yaml:"window_ms" env:"DOMAINGEN_WINDOW_MS"`
	CooldownMs      int `json:"cooldown_ms" yaml:"cooldown_ms" env:"DOMAINGEN_COOLDOWN_MS"`
	SliceBudgetMs   int `json:"slice_budget_ms" yaml:"slice_budget_ms" env:"DOMAINGEN_SLICE_BUDGET_MS"`
	CacheTTLSeconds int `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds" env:"DOMAINGEN_CACHE_TTL_SECONDS"`

	// Store selects persistence: memory, redis or postgres
	Store       string `json:"store" yaml:"store" env:"DOMAINGEN_STORE"`
	Cache       string `json:"cache" yaml:"cache" env:"DOMAINGEN_CACHE"`
	RedisURL    string `json:"redis_url" yaml:"redis_url" env:"REDIS_URL"`
	RedisPrefix string `json:"redis_prefix" yaml:"redis_prefix" env:"DOMAINGEN_REDIS_PREFIX"`
	DatabaseURL string `json:"database_url" yaml:"database_url" env:"DATABASE_URL"`

	ListenAddr string `json:"listen_addr" yaml:"listen_addr" env:"DOMAINGEN_LISTEN_ADDR"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() Config {
	return Config{
		Backend:       "dns",
		DoHEndpoint:   "https://dns.google/resolve",
		Generation:    DefaultGenerationConfig(),
		Suffixes:      []string{".com"},
		BatchSize:     50,
		BatchDelayMs:  200,
		SuffixDelayMs: 50,
		MaxRequests:   60,
		WindowMs:      60000,
		CooldownMs:    5000,
		SliceBudgetMs: 100,
		Store:         "memory",
		Cache:         "memory",
		RedisURL:      "redis://localhost:6379/0",
		RedisPrefix:   "domaingen",
		ListenAddr:    ":8080",
	}
}

// Validate checks the check-pipeline settings. Generation settings are
// validated separately when a run starts.
func (c Config) Validate() error {
	switch c.Backend {
	case "dns", "whois", "loopia":
	default:
		return &ConfigError{Field: "backend", Reason: fmt.Sprintf("unknown backend %q", c.Backend)}
	}
	if c.BatchSize < 1 {
		return &ConfigError{Field: "batch_size", Reason: fmt.Sprintf("must be positive, got %d", c.BatchSize)}
	}
	if c.MaxRequests < 1 {
		return &ConfigError{Field: "max_requests", Reason: fmt.Sprintf("must be positive, got %d", c.MaxRequests)}
	}
	if c.WindowMs < 1 {
		return &ConfigError{Field: "window_ms", Reason: fmt.Sprintf("must be positive, got %d", c.WindowMs)}
	}
	if c.BatchDelayMs < 0 || c.SuffixDelayMs < 0 || c.CooldownMs < 0 {
		return &ConfigError{Field: "delays", Reason: "delays cannot be negative"}
	}
	if len(c.Suffixes) == 0 {
		return &ConfigError{Field: "suffixes", Reason: "at least one suffix is required"}
	}
	for _, s := range c.Suffixes {
		if len(s) < 2 || s[0] != '.' {
			return &ConfigError{Field: "suffixes", Reason: fmt.Sprintf("%q must start with a dot", s)}
		}
	}
	return nil
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// BatchDelay is the pause between two check batches
func (c Config) BatchDelay() time.Duration { return ms(c.BatchDelayMs) }

// SuffixDelay is the stagger between two suffixes of the same candidate
func (c Config) SuffixDelay() time.Duration { return ms(c.SuffixDelayMs) }

// Window is the rate-limit window
func (c Config) Window() time.Duration { return ms(c.WindowMs) }

// Cooldown is the wait after a rate-limited lookup
func (c Config) Cooldown() time.Duration { return ms(c.CooldownMs) }

// SliceBudget is the wall-clock budget of one generation slice
func (c Config) SliceBudget() time.Duration { return ms(c.SliceBudgetMs) }

// CacheTTL is how long Redis keeps cached results, 0 means forever
func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }
