package config

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"go-cvd-inspector/internal/analyzer"
	"go-cvd-inspector/internal/simulate"
)

// Config holds server, storage and analysis defaults. Values come from an
// optional config file, then environment variables override them.
type Config struct {
	Host               string        `yaml:"host" toml:"host" json:"host"`
	Port               string        `yaml:"port" toml:"port" json:"port"`
	RequestTimeout     time.Duration `yaml:"request_timeout" toml:"request_timeout" json:"request_timeout"`
	ImageFetchTimeout  time.Duration `yaml:"image_fetch_timeout" toml:"image_fetch_timeout" json:"image_fetch_timeout"`
	AnalysisTimeout    time.Duration `yaml:"analysis_timeout" toml:"analysis_timeout" json:"analysis_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size" toml:"max_request_body_size" json:"max_request_body_size"`
	Workers            int           `yaml:"workers" toml:"workers" json:"workers"`
	LogLevel           string        `yaml:"log_level" toml:"log_level" json:"log_level"`

	Azure    AzureConfig    `yaml:"azure" toml:"azure" json:"azure"`
	Analysis AnalysisConfig `yaml:"analysis" toml:"analysis" json:"analysis"`
}

// AzureConfig enables Azure Blob sources when Account is set
type AzureConfig struct {
	Account string `yaml:"account" toml:"account" json:"account"`
	Key     string `yaml:"key" toml:"key" json:"-"`
}

// AnalysisConfig sets defaults for requests that omit them
type AnalysisConfig struct {
	PaletteSize        int     `yaml:"palette_size" toml:"palette_size" json:"palette_size"`
	ContrastThreshold  float64 `yaml:"contrast_threshold" toml:"contrast_threshold" json:"contrast_threshold"`
	DeficiencySeverity float64 `yaml:"deficiency_severity" toml:"deficiency_severity" json:"deficiency_severity"`
	Model              string  `yaml:"model" toml:"model" json:"model"`
	MaxSamples         int     `yaml:"max_samples" toml:"max_samples" json:"max_samples"`
}

// fileConfig mirrors Config with durations as strings, since yaml.v3 and
// go-toml decode time.Duration only from integers.
type fileConfig struct {
	Host               string         `yaml:"host" toml:"host" json:"host"`
	Port               string         `yaml:"port" toml:"port" json:"port"`
	RequestTimeout     string         `yaml:"request_timeout" toml:"request_timeout" json:"request_timeout"`
	ImageFetchTimeout  string         `yaml:"image_fetch_timeout" toml:"image_fetch_timeout" json:"image_fetch_timeout"`
	AnalysisTimeout    string         `yaml:"analysis_timeout" toml:"analysis_timeout" json:"analysis_timeout"`
	MaxRequestBodySize int64          `yaml:"max_request_body_size" toml:"max_request_body_size" json:"max_request_body_size"`
	Workers            int            `yaml:"workers" toml:"workers" json:"workers"`
	LogLevel           string         `yaml:"log_level" toml:"log_level" json:"log_level"`
	Azure              AzureConfig    `yaml:"azure" toml:"azure" json:"azure"`
	Analysis           AnalysisConfig `yaml:"analysis" toml:"analysis" json:"analysis"`
}

// Options converts the configured defaults into analysis options
func (a AnalysisConfig) Options() analyzer.AnalysisOptions {
	opts := analyzer.DefaultOptions().
		WithPaletteSize(a.PaletteSize).
		WithContrastThreshold(a.ContrastThreshold).
		WithSeverity(a.DeficiencySeverity).
		WithModel(a.Model)
	opts.MaxSamples = a.MaxSamples
	return opts
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Host:               "0.0.0.0",
		Port:               "8080",
		RequestTimeout:     30 * time.Second,
		ImageFetchTimeout:  15 * time.Second,
		AnalysisTimeout:    20 * time.Second,
		MaxRequestBodySize: 10 * 1024 * 1024, // 10MB
		LogLevel:           "info",
		Analysis: AnalysisConfig{
			PaletteSize:        5,
			ContrastThreshold:  3.0,
			DeficiencySeverity: 1.0,
			Model:              simulate.ModelMachado2009,
			MaxSamples:         250000,
		},
	}
}

// LoadFromEnv applies environment variables over the defaults
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// Load reads path (YAML, TOML or JSON; empty skips the file), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	case ".toml":
		err = toml.Unmarshal(data, &fc)
	case ".json":
		err = json.Unmarshal(data, &fc)
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.Host != "" {
		c.Host = fc.Host
	}
	if fc.Port != "" {
		c.Port = fc.Port
	}
	for _, d := range []struct {
		raw string
		dst *time.Duration
		key string
	}{
		{fc.RequestTimeout, &c.RequestTimeout, "request_timeout"},
		{fc.ImageFetchTimeout, &c.ImageFetchTimeout, "image_fetch_timeout"},
		{fc.AnalysisTimeout, &c.AnalysisTimeout, "analysis_timeout"},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = v
	}
	if fc.MaxRequestBodySize != 0 {
		c.MaxRequestBodySize = fc.MaxRequestBodySize
	}
	if fc.Workers != 0 {
		c.Workers = fc.Workers
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.Azure.Account != "" {
		c.Azure = fc.Azure
	}

	a := fc.Analysis
	if a.PaletteSize != 0 {
		c.Analysis.PaletteSize = a.PaletteSize
	}
	if a.ContrastThreshold != 0 {
		c.Analysis.ContrastThreshold = a.ContrastThreshold
	}
	if a.DeficiencySeverity != 0 {
		c.Analysis.DeficiencySeverity = a.DeficiencySeverity
	}
	if a.Model != "" {
		c.Analysis.Model = a.Model
	}
	if a.MaxSamples != 0 {
		c.Analysis.MaxSamples = a.MaxSamples
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Host = getEnvOrDefault("HOST", c.Host)
	c.Port = getEnvOrDefault("PORT", c.Port)
	c.RequestTimeout = parseDurationOrDefault("REQUEST_TIMEOUT", c.RequestTimeout)
	c.ImageFetchTimeout = parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", c.ImageFetchTimeout)
	c.AnalysisTimeout = parseDurationOrDefault("ANALYSIS_TIMEOUT", c.AnalysisTimeout)
	c.MaxRequestBodySize = parseIntOrDefault("MAX_REQUEST_BODY_SIZE", c.MaxRequestBodySize)
	c.Workers = int(parseIntOrDefault("WORKERS", int64(c.Workers)))
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)

	c.Azure.Account = getEnvOrDefault("AZURE_STORAGE_ACCOUNT", c.Azure.Account)
	c.Azure.Key = getEnvOrDefault("AZURE_STORAGE_KEY", c.Azure.Key)

	c.Analysis.PaletteSize = int(parseIntOrDefault("CVD_PALETTE_SIZE", int64(c.Analysis.PaletteSize)))
	c.Analysis.ContrastThreshold = parseFloatOrDefault("CVD_CONTRAST_THRESHOLD", c.Analysis.ContrastThreshold)
	c.Analysis.DeficiencySeverity = parseFloatOrDefault("CVD_SEVERITY", c.Analysis.DeficiencySeverity)
	c.Analysis.Model = getEnvOrDefault("CVD_MODEL", c.Analysis.Model)
	c.Analysis.MaxSamples = int(parseIntOrDefault("CVD_MAX_SAMPLES", int64(c.Analysis.MaxSamples)))
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AnalysisTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AnalysisTimeout)
	}
	if c.Workers < 0 {
		return fmt.Errorf("WORKERS must be >= 0 (got %d)", c.Workers)
	}

	a := c.Analysis
	if a.PaletteSize < 1 {
		return fmt.Errorf("CVD_PALETTE_SIZE must be >= 1 (got %d)", a.PaletteSize)
	}
	if math.IsNaN(a.ContrastThreshold) || a.ContrastThreshold < 1 || a.ContrastThreshold > 21 {
		return fmt.Errorf("CVD_CONTRAST_THRESHOLD must be within [1, 21] (got %v)", a.ContrastThreshold)
	}
	if math.IsNaN(a.DeficiencySeverity) || a.DeficiencySeverity < 0 || a.DeficiencySeverity > 1 {
		return fmt.Errorf("CVD_SEVERITY must be within [0, 1] (got %v)", a.DeficiencySeverity)
	}
	if _, err := simulate.New(a.Model, nil); err != nil {
		return fmt.Errorf("CVD_MODEL: %w", err)
	}
	if a.MaxSamples < 0 {
		return fmt.Errorf("CVD_MAX_SAMPLES must be >= 0 (got %d)", a.MaxSamples)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}
