// Package config loads the searchbridge configuration from environment
// specific YAML files with ${VAR} substitution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the searchbridge API configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Shop        ShopConfig        `yaml:"shop"`
	Cloudsearch CloudsearchConfig `yaml:"cloudsearch"`
	Platform    PlatformConfig    `yaml:"platform"`
	Redis       RedisConfig       `yaml:"redis"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// ShopConfig identifies the shop this instance serves.
type ShopConfig struct {
	Number int64  `yaml:"number"`
	Locale string `yaml:"locale"` // e.g. de-de, en-us
}

// ID returns the shop identifier used in platform REST paths.
func (s ShopConfig) ID() string {
	return strconv.FormatInt(s.Number, 10)
}

// CloudsearchConfig holds search backend settings.
type CloudsearchConfig struct {
	// Endpoints maps a short language code to a search endpoint URL.
	Endpoints map[string]string `yaml:"endpoints"`
	// SearchTimeoutMs bounds product search requests (default 10000).
	SearchTimeoutMs int `yaml:"search_timeout_ms"`
	// SuggestTimeoutMs bounds suggestion requests (default 700). Kept far
	// below the search timeout; a slow suggestion is a useless suggestion.
	SuggestTimeoutMs int `yaml:"suggest_timeout_ms"`
	// CategoryListing serves price-sorted category pages from the index.
	CategoryListing bool `yaml:"category_listing"`
}

// PlatformConfig holds commerce platform REST settings.
type PlatformConfig struct {
	// API is the service URL template, e.g. "https://{serviceName}.shopgate.services/".
	API          string `yaml:"api"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	TimeoutSec   int    `yaml:"timeout_sec"`
}

// RedisConfig holds the shared token store settings. An empty address
// list disables token sharing.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 15
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Shop.Locale == "" {
		c.Shop.Locale = "en-us"
	}
	if c.Cloudsearch.SearchTimeoutMs <= 0 {
		c.Cloudsearch.SearchTimeoutMs = 10000
	}
	if c.Cloudsearch.SuggestTimeoutMs <= 0 {
		c.Cloudsearch.SuggestTimeoutMs = 700
	}
	if c.Platform.TimeoutSec <= 0 {
		c.Platform.TimeoutSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Shop.Number <= 0 {
		return fmt.Errorf("shop.number is required")
	}
	if len(c.Cloudsearch.Endpoints) == 0 {
		return fmt.Errorf("cloudsearch.endpoints is required")
	}
	for lang, endpoint := range c.Cloudsearch.Endpoints {
		if endpoint == "" {
			return fmt.Errorf("cloudsearch.endpoints.%s must not be empty", lang)
		}
	}
	if _, ok := c.Cloudsearch.Endpoints["en"]; !ok {
		return fmt.Errorf("cloudsearch.endpoints.en is required as the fallback endpoint")
	}
	if c.Cloudsearch.CategoryListing {
		if c.Platform.API == "" || c.Platform.ClientID == "" || c.Platform.ClientSecret == "" || c.Platform.RefreshToken == "" {
			return fmt.Errorf("cloudsearch.category_listing requires complete platform credentials")
		}
	}
	if c.Platform.API != "" && !strings.Contains(c.Platform.API, "{serviceName}") {
		return fmt.Errorf("platform.api must contain the {serviceName} placeholder")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
