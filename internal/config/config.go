/*
Package config loads pipeline configuration from an optional YAML file,
starting from defaults that work out of the box for a local run.
*/
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SMTPConfig configures the optional email digest.
type SMTPConfig struct {
	Server string `yaml:"server"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Pass   string `yaml:"pass"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
}

// Config is the full pipeline configuration.
type Config struct {
	DBPath      string `yaml:"db_path"`
	DownloadDir string `yaml:"download_dir"`
	TickerCSV   string `yaml:"ticker_csv"`
	FormType    string `yaml:"form_type"`
	Since       string `yaml:"since"`
	Limit       int    `yaml:"limit"`
	UserAgent   string `yaml:"user_agent"`
	GeminiModel string `yaml:"gemini_model"`

	// Funds is the curated set of ETF/CEF/UIT symbols excluded from
	// classification. A proper implementation would resolve entity types via
	// the SEC CIK mapping; this list covers the common offenders.
	Funds []string `yaml:"funds"`

	SMTP SMTPConfig `yaml:"smtp"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:      "filings.db",
		DownloadDir: "sec-edgar-filings",
		TickerCSV:   "target_stocks.csv",
		FormType:    "4",
		Since:       "2025-08-15",
		Limit:       10,
		UserAgent:   "form4sent admin@example.com",
		GeminiModel: "gemini-2.5-flash",
		Funds: []string{
			"SPY", "QQQ", "IWM", "VTI", "EFA", "EEM", "TLT", "GLD", "SLV", "VNQ", "AGG",
			"XLF", "XLK", "XLE", "GDX", "ARKK", "ARKQ", "ARKW", "TQQQ", "SQQQ", "UVXY",
		},
	}
}

// Load reads the config file at path over the defaults. A missing file is
// not an error; an unreadable or invalid one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SinceTime parses the configured since date.
func (c *Config) SinceTime() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.Since)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid since date %q: %w", c.Since, err)
	}
	return t, nil
}
