package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pokedex/internal/catalog"
	"pokedex/internal/pokedex"

	"gopkg.in/yaml.v3"
)

// Config holds all pokedex configuration.
type Config struct {
	// Catalog API client
	Catalog CatalogConfig `yaml:"catalog"`

	// Listing/detail/evolution resolvers
	Resolver ResolverConfig `yaml:"resolver"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Interactive UI
	UI UIConfig `yaml:"ui"`
}

// CatalogConfig configures the catalog HTTP client.
type CatalogConfig struct {
	BaseURL      string `yaml:"base_url"`
	Timeout      string `yaml:"timeout"`
	UserAgent    string `yaml:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`

	// Animated sprite location; {id} is replaced with the pokemon id.
	AnimatedSpriteTemplate string `yaml:"animated_sprite_template"`
}

// ResolverConfig configures the resolvers.
type ResolverConfig struct {
	PageSize       int    `yaml:"page_size"`
	MaxConcurrency int    `yaml:"max_concurrency"`
	FailurePolicy  string `yaml:"failure_policy"` // all_or_nothing, partial
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:                catalog.DefaultBaseURL,
			Timeout:                "15s",
			UserAgent:              catalog.DefaultUserAgent,
			MaxBodyBytes:           catalog.DefaultMaxBodyBytes,
			AnimatedSpriteTemplate: pokedex.DefaultAnimatedSpriteTemplate,
		},

		Resolver: ResolverConfig{
			PageSize:       pokedex.DefaultPageSize,
			MaxConcurrency: pokedex.DefaultMaxConcurrency,
			FailurePolicy:  string(pokedex.PolicyAllOrNothing),
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
			Format:    "json",
			Output:    "",
		},

		UI: *DefaultUIConfig(),
	}
}

// DefaultConfigPath returns the per-user config location.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".pokedex", "config.yaml")
	}
	return filepath.Join(dir, "pokedex", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("POKEDEX_BASE_URL"); v != "" {
		c.Catalog.BaseURL = v
	}
	if v := os.Getenv("POKEDEX_TIMEOUT"); v != "" {
		c.Catalog.Timeout = v
	}
	if v := os.Getenv("POKEDEX_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Resolver.PageSize = n
		}
	}
	if v := os.Getenv("POKEDEX_FAILURE_POLICY"); v != "" {
		c.Resolver.FailurePolicy = v
	}
	if v := os.Getenv("POKEDEX_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
		c.Logging.DebugMode = true
	}
	if v := os.Getenv("POKEDEX_DARK_MODE"); v != "" {
		c.UI.DarkMode = v == "1" || strings.EqualFold(v, "true")
	}
}

// GetCatalogTimeout returns the catalog request timeout as a duration.
func (c *Config) GetCatalogTimeout() time.Duration {
	d, err := time.ParseDuration(c.Catalog.Timeout)
	if err != nil {
		return catalog.DefaultTimeout
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Catalog.BaseURL, "http://") && !strings.HasPrefix(c.Catalog.BaseURL, "https://") {
		return fmt.Errorf("catalog.base_url must be an http(s) URL, got %q", c.Catalog.BaseURL)
	}
	if _, err := time.ParseDuration(c.Catalog.Timeout); err != nil {
		return fmt.Errorf("invalid catalog.timeout %q: %w", c.Catalog.Timeout, err)
	}
	if !strings.Contains(c.Catalog.AnimatedSpriteTemplate, "{id}") {
		return fmt.Errorf("catalog.animated_sprite_template must contain {id}")
	}
	if c.Resolver.PageSize < 1 {
		return fmt.Errorf("resolver.page_size must be >= 1")
	}
	if c.Resolver.MaxConcurrency < 1 {
		return fmt.Errorf("resolver.max_concurrency must be >= 1")
	}
	if _, err := pokedex.ParsePolicy(c.Resolver.FailurePolicy); err != nil {
		return fmt.Errorf("resolver.failure_policy: %w", err)
	}
	if _, err := time.ParseDuration(c.UI.SearchDebounce); err != nil {
		return fmt.Errorf("invalid ui.search_debounce %q: %w", c.UI.SearchDebounce, err)
	}
	return nil
}

// CatalogOptions converts the catalog section into client options.
func (c *Config) CatalogOptions() catalog.Options {
	return catalog.Options{
		BaseURL:      c.Catalog.BaseURL,
		Timeout:      c.GetCatalogTimeout(),
		UserAgent:    c.Catalog.UserAgent,
		MaxBodyBytes: c.Catalog.MaxBodyBytes,
	}
}

// ResolverOptions converts the resolver section into resolver options.
// Call Validate first; an invalid policy falls back to all-or-nothing.
func (c *Config) ResolverOptions() pokedex.Options {
	policy, err := pokedex.ParsePolicy(c.Resolver.FailurePolicy)
	if err != nil {
		policy = pokedex.PolicyAllOrNothing
	}
	return pokedex.Options{
		PageSize:               c.Resolver.PageSize,
		MaxConcurrency:         c.Resolver.MaxConcurrency,
		Policy:                 policy,
		AnimatedSpriteTemplate: c.Catalog.AnimatedSpriteTemplate,
	}
}
