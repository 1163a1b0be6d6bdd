package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envPrefix is prepended to every environment variable read by LoadFromEnv
const envPrefix = "MANGAPAGES_"

// DefaultTitles is the fixed list of MangaDex manga ids processed when no
// other list is configured
var DefaultTitles = []int{
	607, 429, 39, 5, 3056, 7139, 82, 12714, 35, 558,
	2334, 286, 6770, 8436, 13502, 19531, 939, 18198, 1073, 84,
}

// Config holds all configuration options for mangapages
type Config struct {
	// Upstream API settings
	MangaDex MangaDexConfig `yaml:"mangadex" json:"mangadex"`

	// Transport retry policy
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Request rate limiting
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Page count cache location
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Chart rendering
	Chart ChartConfig `yaml:"chart" json:"chart"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Manga ids to process, in order
	Titles []int `yaml:"titles" json:"titles"`
}

// MangaDexConfig holds upstream API configuration
type MangaDexConfig struct {
	BaseURL       string        `yaml:"base_url" json:"base_url"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	ExcludedGroup int           `yaml:"excluded_group" json:"excluded_group"`
}

// RetryConfig mirrors a urllib3 style retry policy: a total retry budget,
// a list of statuses worth retrying and an exponential backoff factor
type RetryConfig struct {
	MaxRetries       int           `yaml:"max_retries" json:"max_retries"`
	BackoffFactor    float64       `yaml:"backoff_factor" json:"backoff_factor"`
	MaxBackoff       time.Duration `yaml:"max_backoff" json:"max_backoff"`
	StatusForcelist  []int         `yaml:"status_forcelist" json:"status_forcelist"`
	RetryNetworkErrs bool          `yaml:"retry_network_errors" json:"retry_network_errors"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// CacheConfig holds page count cache configuration
type CacheConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// ChartConfig holds chart rendering configuration
type ChartConfig struct {
	OutputDir     string  `yaml:"output_dir" json:"output_dir"`
	Width         int     `yaml:"width" json:"width"`
	Height        int     `yaml:"height" json:"height"`
	TitleFontSize float64 `yaml:"title_font_size" json:"title_font_size"`
	OpenBrowser   bool    `yaml:"open_browser" json:"open_browser"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	titles := make([]int, len(DefaultTitles))
	copy(titles, DefaultTitles)

	return &Config{
		MangaDex: MangaDexConfig{
			BaseURL:       "https://mangadex.org",
			UserAgent:     "mangapages/1.0",
			Timeout:       30 * time.Second,
			ExcludedGroup: 9097, // MangaPlus, page lists are not served
		},
		Retry: RetryConfig{
			MaxRetries:       4,
			BackoffFactor:    0.3,
			MaxBackoff:       120 * time.Second,
			StatusForcelist:  []int{500},
			RetryNetworkErrs: true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Cache: CacheConfig{
			Directory: ".",
		},
		Chart: ChartConfig{
			OutputDir:     ".",
			Width:         2000,
			Height:        600,
			TitleFontSize: 30,
			OpenBrowser:   true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		Titles: titles,
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv(envPrefix + "BASE_URL"); baseURL != "" {
		c.MangaDex.BaseURL = baseURL
	}
	if userAgent := os.Getenv(envPrefix + "USER_AGENT"); userAgent != "" {
		c.MangaDex.UserAgent = userAgent
	}
	if timeout := os.Getenv(envPrefix + "TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid %sTIMEOUT: %w", envPrefix, err)
		}
		c.MangaDex.Timeout = d
	}

	if retries := os.Getenv(envPrefix + "MAX_RETRIES"); retries != "" {
		val, err := strconv.Atoi(retries)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_RETRIES: %w", envPrefix, err)
		}
		c.Retry.MaxRetries = val
	}

	if rps := os.Getenv(envPrefix + "REQUESTS_PER_SECOND"); rps != "" {
		val, err := strconv.ParseFloat(rps, 64)
		if err != nil {
			return fmt.Errorf("invalid %sREQUESTS_PER_SECOND: %w", envPrefix, err)
		}
		c.RateLimit.RequestsPerSecond = val
	}

	if cacheDir := os.Getenv(envPrefix + "CACHE_DIR"); cacheDir != "" {
		c.Cache.Directory = cacheDir
	}
	if outputDir := os.Getenv(envPrefix + "OUTPUT_DIR"); outputDir != "" {
		c.Chart.OutputDir = outputDir
	}
	if openBrowser := os.Getenv(envPrefix + "OPEN_BROWSER"); openBrowser != "" {
		c.Chart.OpenBrowser = strings.ToLower(openBrowser) == "true"
	}

	if logLevel := os.Getenv(envPrefix + "LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv(envPrefix + "LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	if titles := os.Getenv(envPrefix + "TITLES"); titles != "" {
		ids, err := ParseTitles(titles)
		if err != nil {
			return fmt.Errorf("invalid %sTITLES: %w", envPrefix, err)
		}
		c.Titles = ids
	}

	return nil
}

// ParseTitleID parses a single manga id, which must be a positive integer
func ParseTitleID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid manga id %q", s)
	}
	return id, nil
}

// ParseTitles parses a comma separated list of manga ids
func ParseTitles(s string) ([]int, error) {
	var ids []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := ParseTitleID(field)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".mangapages.yaml",
		".mangapages.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "mangapages", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "mangapages", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".mangapages.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.MangaDex.BaseURL == "" {
		errs = append(errs, errors.New("mangadex base URL is required"))
	} else if u, err := url.Parse(c.MangaDex.BaseURL); err != nil || u.Host == "" {
		errs = append(errs, fmt.Errorf("mangadex base URL %q is not an absolute URL", c.MangaDex.BaseURL))
	}
	if c.MangaDex.Timeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Retry.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.Retry.BackoffFactor < 0 {
		errs = append(errs, errors.New("backoff factor cannot be negative"))
	}

	if c.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("requests per second cannot be negative"))
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("burst must be positive when rate limiting is enabled"))
	}

	if c.Cache.Directory == "" {
		errs = append(errs, errors.New("cache directory is required"))
	}
	if c.Chart.OutputDir == "" {
		errs = append(errs, errors.New("chart output directory is required"))
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		errs = append(errs, errors.New("chart dimensions must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(c.Titles) == 0 {
		errs = append(errs, errors.New("at least one manga id is required"))
	}
	for _, id := range c.Titles {
		if id <= 0 {
			errs = append(errs, fmt.Errorf("manga id %d must be positive", id))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if cacheDir, ok := flags["cache-dir"].(string); ok && cacheDir != "" {
		c.Cache.Directory = cacheDir
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Chart.OutputDir = outputDir
	}
	if noBrowser, ok := flags["no-browser"].(bool); ok && noBrowser {
		c.Chart.OpenBrowser = false
	}
	if titles, ok := flags["titles"].([]int); ok && len(titles) > 0 {
		c.Titles = titles
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".mangapages.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
