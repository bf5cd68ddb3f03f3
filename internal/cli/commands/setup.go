package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/querydeck/internal/assist"
	"github.com/leapstack-labs/querydeck/internal/cli/config"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Assistant *assist.Assistant
}

// NewCommandContext resolves config, logger and assistant for cmd.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	assistant, err := assist.FromEnv(cfg.Assist(), os.Getenv, logger)
	if err != nil {
		return nil, fmt.Errorf("configure assistant: %w", err)
	}
	if !assistant.Configured() {
		logger.Info("AI assistance disabled", slog.String("missing", assistant.KeyEnv()))
	}

	return &CommandContext{
		Cfg:       cfg,
		Logger:    logger,
		Assistant: assistant,
	}, nil
}

// currentConfig is set by the root command after loading.
var currentConfig *config.Config

// SetConfig records the configuration loaded by the root command.
func SetConfig(cfg *config.Config) {
	currentConfig = cfg
}

// getConfig returns the current configuration or the defaults.
func getConfig() *config.Config {
	if currentConfig != nil {
		return currentConfig
	}
	return config.Default()
}
