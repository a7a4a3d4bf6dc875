package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetAppConfigDefaults(t *testing.T) {
	for _, key := range []string{"DB_PATH", "CONFIG_PATH", "HTTP_ADDR", "REDIS_ADDR", "GEMINI_MODEL", "LOG_LEVEL", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := GetAppConfig()
	if err != nil {
		t.Fatalf("GetAppConfig failed: %v", err)
	}
	if cfg.DBPath != "./local-data/smartshop.db" {
		t.Errorf("unexpected default DBPath: %s", cfg.DBPath)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("unexpected default HTTPAddr: %s", cfg.HTTPAddr)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr should default to empty, got %s", cfg.RedisAddr)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Errorf("unexpected default model: %s", cfg.GeminiModel)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("unexpected default log level: %s", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Errorf("unexpected default shutdown timeout: %s", cfg.ShutdownTimeout)
	}
}

func TestGetAppConfigOverrides(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SHUTDOWN_TIMEOUT", "30")

	cfg, err := GetAppConfig()
	if err != nil {
		t.Fatalf("GetAppConfig failed: %v", err)
	}
	if cfg.DBPath != "/tmp/test.db" || cfg.HTTPAddr != ":9999" || cfg.RedisAddr != "localhost:6379" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level override not applied: %s", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("shutdown timeout override not applied: %s", cfg.ShutdownTimeout)
	}

	// Garbage numeric values fall back to the default.
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	cfg, _ = GetAppConfig()
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Errorf("invalid timeout should fall back to default, got %s", cfg.ShutdownTimeout)
	}
}

func TestLoadSiteConfig(t *testing.T) {
	yamlContent := `
platform: "Flipkart"
category: "gaming laptops"
listing_url: "https://example.com/laptops"
selectors:
  product_card: "div.card"
  link: "a.link"
  price: "span.price"
  description: "div.desc"
  description_is_next_sibling: true
disallowed_keywords:
  - "refurbished"
  - "sticker"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	cfg, err := LoadSiteConfig(path)
	if err != nil {
		t.Fatalf("LoadSiteConfig failed: %v", err)
	}
	if cfg.Platform != "Flipkart" || cfg.Category != "gaming laptops" {
		t.Errorf("basic fields wrong: %+v", cfg)
	}
	if cfg.Selectors.ProductCard != "div.card" || !cfg.Selectors.DescriptionIsNextSibling {
		t.Errorf("selectors wrong: %+v", cfg.Selectors)
	}
	if len(cfg.DisallowedKeywords) != 2 {
		t.Errorf("keywords wrong: %v", cfg.DisallowedKeywords)
	}
}

func TestLoadSiteConfigDefaultsPlatform(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(`category: "laptops"`), 0o644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}
	cfg, err := LoadSiteConfig(path)
	if err != nil {
		t.Fatalf("LoadSiteConfig failed: %v", err)
	}
	if cfg.Platform != "Marketplace" {
		t.Errorf("expected default platform, got %q", cfg.Platform)
	}
}

func TestLoadSiteConfigMissingFile(t *testing.T) {
	if _, err := LoadSiteConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
