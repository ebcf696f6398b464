// internal/config/config.go
package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/valpere/PriceScrapexter/internal/errors"
	"github.com/valpere/PriceScrapexter/internal/scraper"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Address:           ":8080",
			AllowedOrigins:    []string{"http://localhost:3000"},
			RequestsPerSecond: 5,
			Burst:             10,
			MaxBodyBytes:      1 << 20,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      5 * time.Minute,
			ShutdownTimeout:   30 * time.Second,
		},
		Scraper: ScraperConfig{
			Timeout:       scraper.DefaultFetchTimeout,
			UserAgent:     scraper.DefaultUserAgent,
			MaxBodyBytes:  scraper.DefaultMaxBodyBytes,
			MaxBatchSize:  scraper.DefaultMaxBatchSize,
			FallbackPrice: scraper.DefaultFallbackPrice,
			MaxRetries:    0,
			RetryDelay:    2 * time.Second,
		},
		Pacing: PacingConfig{
			Mode:  scraper.PacingFixed,
			Delay: time.Second,
		},
		Extraction: ExtractionConfig{
			MinPrice:  scraper.DefaultMinPrice,
			MaxPrice:  scraper.DefaultMaxPrice,
			MaxLength: scraper.DefaultMaxPriceLength,
		},
		Browser: BrowserConfig{
			Enabled:  false,
			Headless: true,
			Timeout:  30 * time.Second,
		},
		Output: OutputConfig{
			Format: "csv",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "pricescrapexter",
		},
	}
	return cfg
}

// Load reads filename, or returns defaults when filename is empty.
// Environment overrides are applied in both cases.
func Load(filename string) (*Config, error) {
	if filename == "" {
		cfg := Default()
		applyEnvOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, &errors.ConfigError{Err: err}
		}
		return cfg, nil
	}
	return LoadFromFile(filename)
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) (*Config, error) {
	if filename == "" {
		return nil, eris.New("configuration filename cannot be empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			err = eris.New("configuration file not found")
		} else {
			err = eris.Wrap(err, "failed to read configuration file")
		}
		return nil, &errors.ConfigError{Path: filename, Err: err}
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, &errors.ConfigError{Path: filename, Err: err}
	}
	return cfg, nil
}

// LoadFromReader loads configuration from an io.Reader
func LoadFromReader(reader io.Reader) (*Config, error) {
	if reader == nil {
		return nil, eris.New("reader cannot be nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &errors.ConfigError{Err: eris.Wrap(err, "failed to read configuration")}
	}

	return LoadFromBytes(data)
}

// LoadFromBytes parses YAML over the defaults, so omitted keys keep their
// default values. ${VAR} references are expanded first. Failures are
// *errors.ConfigError.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg, err := parse(data)
	if err != nil {
		return nil, &errors.ConfigError{Err: err}
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, eris.New("configuration data cannot be empty")
	}

	expanded := expandEnvironmentVariables(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, eris.Wrap(err, "failed to parse YAML configuration")
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveToWriter writes cfg as YAML.
func SaveToWriter(cfg *Config, writer io.Writer) error {
	if cfg == nil {
		return eris.New("configuration cannot be nil")
	}
	if writer == nil {
		return eris.New("writer cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	enc := yaml.NewEncoder(writer)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return eris.Wrap(err, "failed to marshal configuration to YAML")
	}
	return eris.Wrap(enc.Close(), "failed to flush configuration")
}

// GenerateTemplate returns a starter configuration. "aggressive" shortens
// pacing and enables retries; "browser" turns on the headless fallback.
func GenerateTemplate(templateType string) *Config {
	cfg := Default()

	switch strings.ToLower(templateType) {
	case "aggressive":
		cfg.Pacing = PacingConfig{Mode: scraper.PacingRate, RequestsPerSecond: 2, Burst: 1}
		cfg.Scraper.MaxRetries = 2
		cfg.Scraper.MaxBatchSize = 25
	case "browser":
		cfg.Browser.Enabled = true
		cfg.Browser.WaitDelay = 2 * time.Second
		cfg.Pacing = PacingConfig{Mode: scraper.PacingPeriodic, Every: 3, Pause: 5 * time.Second}
	case "thai":
		cfg.Scraper.Headers = map[string]string{"Accept-Language": "th-TH,th;q=0.9,en;q=0.8"}
		cfg.Extraction.ExtraSelectors = []string{".price-th", `[class*="baht"]`}
	}

	return cfg
}

func expandEnvironmentVariables(content string) string {
	return os.ExpandEnv(content)
}

// applyDefaults fills zero values left by an explicit empty YAML key.
func applyDefaults(cfg *Config) {
	d := Default()

	if cfg.Server.Address == "" {
		cfg.Server.Address = d.Server.Address
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = d.Server.MaxBodyBytes
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}

	if cfg.Scraper.Timeout == 0 {
		cfg.Scraper.Timeout = d.Scraper.Timeout
	}
	if cfg.Scraper.UserAgent == "" {
		cfg.Scraper.UserAgent = d.Scraper.UserAgent
	}
	if cfg.Scraper.MaxBodyBytes == 0 {
		cfg.Scraper.MaxBodyBytes = d.Scraper.MaxBodyBytes
	}
	if cfg.Scraper.MaxBatchSize == 0 {
		cfg.Scraper.MaxBatchSize = d.Scraper.MaxBatchSize
	}
	if cfg.Scraper.FallbackPrice == "" {
		cfg.Scraper.FallbackPrice = d.Scraper.FallbackPrice
	}

	if cfg.Pacing.Mode == "" {
		cfg.Pacing.Mode = d.Pacing.Mode
	}

	if cfg.Extraction.MaxPrice == 0 {
		cfg.Extraction.MaxPrice = d.Extraction.MaxPrice
	}
	if cfg.Extraction.MaxLength == 0 {
		cfg.Extraction.MaxLength = d.Extraction.MaxLength
	}

	if cfg.Browser.Timeout == 0 {
		cfg.Browser.Timeout = d.Browser.Timeout
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = d.Output.Format
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = d.Log.Format
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = d.Metrics.Path
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = d.Metrics.Namespace
	}
}

// applyEnvOverrides honours the deployment variables HOST, PORT,
// ALLOWED_ORIGINS and LOG_LEVEL.
func applyEnvOverrides(cfg *Config) {
	host, port := os.Getenv("HOST"), os.Getenv("PORT")
	if port != "" {
		cfg.Server.Address = host + ":" + port
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, o)
			}
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}
