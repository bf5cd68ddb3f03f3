// Package config loads querydeck configuration from defaults, an optional
// YAML file, QUERYDECK_ environment variables and command-line flags.
package config

import "time"

// Default configuration values.
const (
	DefaultHost         = "127.0.0.1"
	DefaultPort         = 8765
	DefaultIdleTimeout  = 30 * time.Minute
	DefaultMaxUploadMB  = 64
	DefaultDisplayLimit = 0
	DefaultProvider     = "anthropic"
)

// UIConfig holds configuration for the web server.
type UIConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	AutoOpen bool   `koanf:"auto_open"`
	// SessionSecret signs the session cookie. Empty generates one per run.
	SessionSecret string        `koanf:"session_secret"`
	IdleTimeout   time.Duration `koanf:"idle_timeout"`
	MaxUploadMB   int           `koanf:"max_upload_mb"`
	// DisplayLimit caps rendered rows; 0 renders all of them.
	DisplayLimit int `koanf:"display_limit"`
}

// AIConfig selects the text-generation provider. API keys are read from the
// provider's environment variable only.
type AIConfig struct {
	Provider string `koanf:"provider"`
	Model    string `koanf:"model"`
	BaseURL  string `koanf:"base_url"`
}

// Config holds all CLI configuration options.
type Config struct {
	Verbose bool     `koanf:"verbose"`
	UI      UIConfig `koanf:"ui"`
	AI      AIConfig `koanf:"ai"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		UI: UIConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			AutoOpen:     true,
			IdleTimeout:  DefaultIdleTimeout,
			MaxUploadMB:  DefaultMaxUploadMB,
			DisplayLimit: DefaultDisplayLimit,
		},
		AI: AIConfig{Provider: DefaultProvider},
	}
}
