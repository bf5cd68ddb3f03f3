package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/querydeck/internal/assist"
)

// EnvPrefix prefixes every configuration environment variable. A double
// underscore separates nesting levels: QUERYDECK_UI__PORT sets ui.port.
const EnvPrefix = "QUERYDECK_"

// loggerKey is used to store logger in context.
type loggerKey struct{}

// flagKeys maps flags to the config keys they override.
var flagKeys = map[string]string{
	"verbose":       "verbose",
	"host":          "ui.host",
	"port":          "ui.port",
	"display-limit": "ui.display_limit",
	"max-upload-mb": "ui.max_upload_mb",
	"provider":      "ai.provider",
	"model":         "ai.model",
	"base-url":      "ai.base_url",
}

// Package-level config file tracking
var configFileUsed string

// findConfigFile finds the config file to use.
// Priority: explicit path > querydeck.yaml > querydeck.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"querydeck.yaml", "querydeck.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// ResetConfig forgets the config file of the last load. Used for testing.
func ResetConfig() {
	configFileUsed = ""
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	def := Default()

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"verbose":          def.Verbose,
		"ui.host":          def.UI.Host,
		"ui.port":          def.UI.Port,
		"ui.auto_open":     def.UI.AutoOpen,
		"ui.idle_timeout":  def.UI.IdleTimeout.String(),
		"ui.max_upload_mb": def.UI.MaxUploadMB,
		"ui.display_limit": def.UI.DisplayLimit,
		"ai.provider":      def.AI.Provider,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables
	// Transform: QUERYDECK_UI__MAX_UPLOAD_MB -> ui.max_upload_mb
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.UI.Port < 0 || c.UI.Port > 65535 {
		return fmt.Errorf("ui.port must be between 0 and 65535, got %d", c.UI.Port)
	}
	if c.UI.IdleTimeout <= 0 {
		return fmt.Errorf("ui.idle_timeout must be positive, got %s", c.UI.IdleTimeout)
	}
	if c.UI.MaxUploadMB <= 0 {
		return fmt.Errorf("ui.max_upload_mb must be positive, got %d", c.UI.MaxUploadMB)
	}
	if c.UI.DisplayLimit < 0 {
		return fmt.Errorf("ui.display_limit cannot be negative, got %d", c.UI.DisplayLimit)
	}
	switch c.AI.Provider {
	case assist.ProviderAnthropic, assist.ProviderOpenAI:
	default:
		return fmt.Errorf("ai.provider must be %s or %s, got %q", assist.ProviderAnthropic, assist.ProviderOpenAI, c.AI.Provider)
	}
	return nil
}

// Assist converts the AI section for the assist package.
func (c *Config) Assist() assist.Config {
	return assist.Config{
		Provider: c.AI.Provider,
		Model:    c.AI.Model,
		BaseURL:  c.AI.BaseURL,
	}
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
