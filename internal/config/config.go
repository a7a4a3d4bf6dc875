package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds infrastructure config from standard env vars.
type AppConfig struct {
	DBPath          string
	ConfigPath      string // Path to the YAML site config (for import)
	HTTPAddr        string
	RedisAddr       string // optional; empty disables caching and rate limits
	GeminiModel     string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// SiteConfig holds all target-site specific settings for the marketplace
// importer (from YAML).
type SiteConfig struct {
	Platform           string    `yaml:"platform"`
	Category           string    `yaml:"category"`
	ListingURL         string    `yaml:"listing_url"`
	Selectors          Selectors `yaml:"selectors"`
	DisallowedKeywords []string  `yaml:"disallowed_keywords"`
}

type Selectors struct {
	CookieButton             string `yaml:"cookie_button"`
	NewsletterPopup          string `yaml:"newsletter_popup"`
	ProductListWait          string `yaml:"product_list_wait"`
	ProductCard              string `yaml:"product_card"`
	Link                     string `yaml:"link"`
	Price                    string `yaml:"price"`
	OriginalPrice            string `yaml:"original_price"`
	StockButton              string `yaml:"stock_button"`
	OutOfStockBadge          string `yaml:"out_of_stock_badge"`
	Description              string `yaml:"description"`
	DescriptionIsNextSibling bool   `yaml:"description_is_next_sibling"`
}

// GetAppConfig reads basic infrastructure settings from environment variables.
func GetAppConfig() (AppConfig, error) {
	return AppConfig{
		DBPath:          getenv("DB_PATH", "./local-data/smartshop.db"),
		ConfigPath:      getenv("CONFIG_PATH", "config.yaml"),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		GeminiModel:     getenv("GEMINI_MODEL", "gemini-1.5-flash"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
	}, nil
}

// LoadSiteConfig reads the YAML file that configures the importer.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at '%s': %w", path, err)
	}
	var cfg SiteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if cfg.Platform == "" {
		cfg.Platform = "Marketplace"
	}
	return &cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}
