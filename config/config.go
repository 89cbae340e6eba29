package config

import (
	"fmt"
	"os"

	"ofertas-bot/parser"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration loaded from YAML. Secrets (API
// keys, tokens, database URL) come from the environment instead.
type Config struct {
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	Shopping    ShoppingConfig    `yaml:"shopping"`
	Filters     FilterConfig      `yaml:"filters"`
	Output      OutputConfig      `yaml:"output"`
	Sheets      SheetsConfig      `yaml:"sheets"`
}

// MarketplaceConfig configures the scraped-marketplace adapter. Selector
// definitions live here, not in code: the target markup changes without
// notice and redeploying selectors must not require a rebuild.
type MarketplaceConfig struct {
	BaseURL        string           `yaml:"base_url"`
	Fetcher        string           `yaml:"fetcher"` // http, colly, or rod
	TimeoutSeconds int              `yaml:"timeout_seconds"`
	Selectors      parser.Selectors `yaml:"selectors"`
}

// ShoppingConfig configures the structured-search adapter.
type ShoppingConfig struct {
	Engine         string `yaml:"engine"`
	Country        string `yaml:"country"`
	Language       string `yaml:"language"`
	PageSize       int    `yaml:"page_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// FilterConfig holds optional post-merge thresholds. Zero values pass
// everything through.
type FilterConfig struct {
	MinRating   float64 `yaml:"min_rating"`
	MinPrice    float64 `yaml:"min_price"`
	MaxPrice    float64 `yaml:"max_price"`
	MinDiscount int     `yaml:"min_discount"`
}

// OutputConfig controls where JSON result artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// SheetsConfig enables the optional Google Sheets export when a spreadsheet
// URL is set and credentials are available.
type SheetsConfig struct {
	SpreadsheetURL string `yaml:"spreadsheet_url"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// GetDefaultConfig returns a default configuration.
func GetDefaultConfig() *Config {
	return &Config{
		Marketplace: MarketplaceConfig{
			Fetcher:        "http",
			TimeoutSeconds: 15,
			Selectors:      parser.DefaultSelectors(),
		},
		Shopping: ShoppingConfig{
			Engine:         "google_shopping",
			Country:        "br",
			Language:       "pt",
			PageSize:       20,
			TimeoutSeconds: 20,
		},
		Output: OutputConfig{Dir: "."},
	}
}
