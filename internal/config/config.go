// Package config reads mentordesk settings from the environment. Both
// binaries load an optional .env file before calling Load.
package config

import (
	"os"
	"strings"
	"time"
)

// Config holds all application configuration values
type Config struct {
	DataDir     string
	SiteDataDir string
	HTTPPort    string
	StateAddr   string
	PublishURL  string
	PublishMode string
	FormsAPIURL string
	HTTPTimeout time.Duration
	SettingsKey string
	LogLevel    string
}

// LoadDefaults sets the values used when the environment says nothing.
func (c *Config) LoadDefaults() {
	c.DataDir = "./data"
	c.SiteDataDir = "./public/data"
	c.HTTPPort = "8888"
	c.PublishMode = "auto"
	c.FormsAPIURL = "https://api.netlify.com/api/v1"
	c.HTTPTimeout = 15 * time.Second
	c.LogLevel = "info"
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()

	setString(&cfg.DataDir, "MENTORDESK_DATA_DIR")
	setString(&cfg.SiteDataDir, "MENTORDESK_SITE_DATA_DIR")
	setString(&cfg.HTTPPort, "MENTORDESK_HTTP_PORT")
	setString(&cfg.StateAddr, "MENTORDESK_STATE_ADDR")
	setString(&cfg.PublishURL, "MENTORDESK_PUBLISH_URL")
	setString(&cfg.PublishMode, "MENTORDESK_PUBLISH_MODE")
	setString(&cfg.FormsAPIURL, "NETLIFY_API_URL")
	setString(&cfg.SettingsKey, "MENTORDESK_SETTINGS_KEY")
	setString(&cfg.LogLevel, "MENTORDESK_LOG_LEVEL")

	// a bare number is seconds
	if v := strings.TrimSpace(os.Getenv("MENTORDESK_HTTP_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.HTTPTimeout = d
		} else if d, err := time.ParseDuration(v + "s"); err == nil && d > 0 {
			cfg.HTTPTimeout = d
		}
	}
	return cfg
}

func setString(dst *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}
