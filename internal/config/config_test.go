// internal/config/config_test.go
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valpere/PriceScrapexter/internal/errors"
	"github.com/valpere/PriceScrapexter/internal/output"
	"github.com/valpere/PriceScrapexter/internal/scraper"
)

func TestLoadFromBytes(t *testing.T) {
	configYAML := `
server:
  address: ":9090"
scraper:
  timeout: 20s
  max_batch_size: 25
  headers:
    Accept-Language: "de-DE"
pacing:
  mode: periodic
  every: 3
  pause: 5s
extraction:
  extra_selectors:
    - ".product-hero .amount"
log:
  level: debug
`

	config, err := LoadFromBytes([]byte(configYAML))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}

	if config.Server.Address != ":9090" {
		t.Errorf("expected address ':9090', got %q", config.Server.Address)
	}
	if config.Scraper.Timeout != 20*time.Second {
		t.Errorf("expected timeout 20s, got %v", config.Scraper.Timeout)
	}
	if config.Scraper.MaxBatchSize != 25 {
		t.Errorf("expected max batch size 25, got %d", config.Scraper.MaxBatchSize)
	}
	if config.Pacing.Every != 3 || config.Pacing.Pause != 5*time.Second {
		t.Errorf("unexpected pacing %+v", config.Pacing)
	}
	if config.Scraper.Headers["Accept-Language"] != "de-DE" {
		t.Errorf("headers not loaded: %v", config.Scraper.Headers)
	}

	// omitted keys keep their defaults
	if config.Scraper.FallbackPrice != scraper.DefaultFallbackPrice {
		t.Errorf("expected default fallback price, got %q", config.Scraper.FallbackPrice)
	}
	if config.Extraction.MaxPrice != scraper.DefaultMaxPrice {
		t.Errorf("expected default max price, got %v", config.Extraction.MaxPrice)
	}
	if !config.Metrics.Enabled || !config.Browser.Headless {
		t.Error("boolean defaults should survive partial YAML")
	}
}

func TestLoadFromBytesExpandsEnvironment(t *testing.T) {
	t.Setenv("PS_FALLBACK", "N/A")

	config, err := LoadFromBytes([]byte("scraper:\n  fallback_price: \"${PS_FALLBACK}\"\n"))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}
	if config.Scraper.FallbackPrice != "N/A" {
		t.Errorf("expected expanded value, got %q", config.Scraper.FallbackPrice)
	}
}

func TestLoadFromBytesEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "3001")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	config, err := LoadFromBytes([]byte("log:\n  level: info\n"))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}
	if config.Server.Address != ":3001" {
		t.Errorf("expected PORT override, got %q", config.Server.Address)
	}
	if len(config.Server.AllowedOrigins) != 2 || config.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", config.Server.AllowedOrigins)
	}
}

func TestLoadFromBytesErrors(t *testing.T) {
	tests := map[string]string{
		"empty":        "",
		"bad yaml":     "scraper: [unclosed",
		"bad duration": "scraper:\n  timeout: soon\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFromBytes([]byte(data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	config := Default()
	config.Pacing.Mode = "burst"
	config.Extraction.MaxPrice = 0.001
	config.Extraction.ExtraSelectors = []string{"div[["}
	config.Output.Format = "pdf"
	config.Scraper.MaxBatchSize = 0

	err := config.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	for _, f := range []string{"pacing.mode", "extraction.max_price", "extraction.extra_selectors[0]", "output.format", "scraper.max_batch_size"} {
		if !fields[f] {
			t.Errorf("expected error for %s in %v", f, err)
		}
	}
	if !strings.Contains(err.Error(), "configuration validation failed") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidateAcceptsEveryOutputFormat(t *testing.T) {
	for _, f := range output.ValidOutputFormats() {
		config := Default()
		config.Output.Format = string(f)
		if err := config.Validate(); err != nil {
			t.Errorf("format %s should be valid: %v", f, err)
		}
	}
}

func TestLoadErrorsAreConfigErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("pacing:\n  mode: burst\n"), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	_, err := LoadFromFile(path)
	if errors.KindOf(err) != errors.KindConfig {
		t.Fatalf("expected config error, got %v", err)
	}
	if errors.ExitCode(err) != 2 {
		t.Errorf("expected exit code 2, got %d", errors.ExitCode(err))
	}
	if !strings.Contains(err.Error(), path) || !strings.Contains(err.Error(), "pacing.mode") {
		t.Errorf("unexpected message %q", err.Error())
	}

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Errorf("expected wrapped ValidationErrors, got %T", err)
	}

	_, err = LoadFromBytes([]byte("scraper: [unclosed"))
	if errors.KindOf(err) != errors.KindConfig {
		t.Errorf("expected config error for bad YAML, got %v", err)
	}
	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if errors.KindOf(err) != errors.KindConfig {
		t.Errorf("expected config error for missing file, got %v", err)
	}
}

func TestValidatePacingModes(t *testing.T) {
	config := Default()
	config.Pacing = PacingConfig{Mode: "periodic"}
	if err := config.Validate(); err == nil {
		t.Error("periodic pacing without every should fail")
	}

	config.Pacing = PacingConfig{Mode: "rate", RequestsPerSecond: 2}
	if err := config.Validate(); err != nil {
		t.Errorf("rate pacing should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: xlsx\n"), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	config, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if config.Output.Format != "xlsx" {
		t.Errorf("expected xlsx, got %q", config.Output.Format)
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	config, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Scraper.MaxBatchSize != scraper.DefaultMaxBatchSize {
		t.Errorf("expected default batch size, got %d", config.Scraper.MaxBatchSize)
	}
}

func TestGenerateTemplateRoundTrip(t *testing.T) {
	for _, kind := range []string{"basic", "aggressive", "browser", "thai"} {
		t.Run(kind, func(t *testing.T) {
			config := GenerateTemplate(kind)
			if err := config.Validate(); err != nil {
				t.Fatalf("generated template should be valid: %v", err)
			}

			var buf bytes.Buffer
			if err := SaveToWriter(config, &buf); err != nil {
				t.Fatalf("SaveToWriter failed: %v", err)
			}

			loaded, err := LoadFromReader(&buf)
			if err != nil {
				t.Fatalf("reloading template failed: %v\n%s", err, buf.String())
			}
			if loaded.Pacing != config.Pacing {
				t.Errorf("pacing changed in round trip: %+v vs %+v", loaded.Pacing, config.Pacing)
			}
			if loaded.Browser.Enabled != config.Browser.Enabled {
				t.Error("browser flag changed in round trip")
			}
		})
	}
}

func TestConversions(t *testing.T) {
	config := Default()
	config.Scraper.MaxRetries = 2
	config.Extraction.MinPrice = 1

	engine := config.EngineConfig()
	if engine.Retry.MaxRetries != 2 || engine.MaxBatchSize != scraper.DefaultMaxBatchSize {
		t.Errorf("unexpected engine config %+v", engine)
	}

	v := config.PriceValidator()
	if v.IsValid("£0.50") {
		t.Error("validator should honour configured min price")
	}

	if len(config.Strategies()) != 4 {
		t.Error("expected four strategies")
	}

	if config.ClientConfig().Timeout != scraper.DefaultFetchTimeout {
		t.Error("unexpected client timeout")
	}
}
