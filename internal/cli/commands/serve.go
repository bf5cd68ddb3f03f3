package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/querydeck/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	NoBrowser bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the querydeck web UI",
		Long: `Start a local web server for exploring data files.

Each browser gets its own workspace:
- Upload CSV, XLSX, JSON or Parquet files as tables
- Write and run SQL, download results as CSV
- Draft SQL from a description, explain queries and summarize results
  (needs ANTHROPIC_API_KEY or OPENAI_API_KEY)`,
		Example: `  # Start on the default port
  querydeck serve

  # Start on a custom port without opening a browser
  querydeck serve --port 3000 --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().String("host", "", "Interface to listen on (default: 127.0.0.1)")
	cmd.Flags().Int("port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().Int("display-limit", 0, "Rows shown per result, 0 for all")
	cmd.Flags().Int("max-upload-mb", 0, "Largest accepted upload in MB (default: 64)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	uiCfg := cmdCtx.Cfg.UI

	secret := uiCfg.SessionSecret
	if secret == "" {
		if secret, err = generateSessionSecret(); err != nil {
			return err
		}
	}

	server := ui.NewServer(ui.Config{
		Host:          uiCfg.Host,
		Port:          uiCfg.Port,
		SessionSecret: secret,
		IdleTimeout:   uiCfg.IdleTimeout,
		MaxUploadMB:   uiCfg.MaxUploadMB,
		DisplayLimit:  uiCfg.DisplayLimit,
		Assistant:     cmdCtx.Assistant,
		Logger:        cmdCtx.Logger,
	})

	// Open browser if configured
	if uiCfg.AutoOpen && !opts.NoBrowser {
		go openBrowser(server.URL())
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Starting UI server on %s\n", server.URL())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// generateSessionSecret returns a random cookie signing key for this run.
func generateSessionSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
