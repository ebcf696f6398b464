// internal/config/types.go
package config

import (
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" json:"server"`
	Scraper    ScraperConfig    `yaml:"scraper" json:"scraper"`
	Pacing     PacingConfig     `yaml:"pacing" json:"pacing"`
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction"`
	Browser    BrowserConfig    `yaml:"browser" json:"browser"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	Log        LogConfig        `yaml:"log" json:"log"`
	Metrics    MetricsConfig    `yaml:"metrics" json:"metrics"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address           string        `yaml:"address" json:"address"`
	AllowedOrigins    []string      `yaml:"allowed_origins,omitempty" json:"allowed_origins,omitempty"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int           `yaml:"burst" json:"burst"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	ReadTimeout       time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// ScraperConfig configures fetching and batch handling.
type ScraperConfig struct {
	Timeout       time.Duration     `yaml:"timeout" json:"timeout"`
	UserAgent     string            `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	Headers       map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	MaxBodyBytes  int64             `yaml:"max_body_bytes" json:"max_body_bytes"`
	MaxBatchSize  int               `yaml:"max_batch_size" json:"max_batch_size"`
	FallbackPrice string            `yaml:"fallback_price" json:"fallback_price"`
	MaxRetries    int               `yaml:"max_retries" json:"max_retries"`
	RetryDelay    time.Duration     `yaml:"retry_delay" json:"retry_delay"`
}

// PacingConfig throttles consecutive fetches within a batch.
type PacingConfig struct {
	Mode              string        `yaml:"mode" json:"mode"`
	Delay             time.Duration `yaml:"delay,omitempty" json:"delay,omitempty"`
	Every             int           `yaml:"every,omitempty" json:"every,omitempty"`
	Pause             time.Duration `yaml:"pause,omitempty" json:"pause,omitempty"`
	RequestsPerSecond float64       `yaml:"requests_per_second,omitempty" json:"requests_per_second,omitempty"`
	Burst             int           `yaml:"burst,omitempty" json:"burst,omitempty"`
}

// ExtractionConfig tunes the price heuristics.
type ExtractionConfig struct {
	MinPrice       float64  `yaml:"min_price" json:"min_price"`
	MaxPrice       float64  `yaml:"max_price" json:"max_price"`
	MaxLength      int      `yaml:"max_length" json:"max_length"`
	ExtraSelectors []string `yaml:"extra_selectors,omitempty" json:"extra_selectors,omitempty"`
}

// BrowserConfig configures the headless browser fallback.
type BrowserConfig struct {
	Enabled        bool          `yaml:"enabled" json:"enabled"`
	Headless       bool          `yaml:"headless" json:"headless"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	WaitDelay      time.Duration `yaml:"wait_delay,omitempty" json:"wait_delay,omitempty"`
	WaitForElement string        `yaml:"wait_for_element,omitempty" json:"wait_for_element,omitempty"`
	UserAgent      string        `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	ExecPath       string        `yaml:"exec_path,omitempty" json:"exec_path,omitempty"`
}

// OutputConfig selects the CLI export format.
type OutputConfig struct {
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// MetricsConfig configures Prometheus exposition.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Path      string `yaml:"path" json:"path"`
	Namespace string `yaml:"namespace" json:"namespace"`
}
