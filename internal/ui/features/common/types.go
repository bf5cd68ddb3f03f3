// Package common provides shared types and utilities for UI features.
package common

import (
	"log/slog"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/querydeck/internal/assist"
	"github.com/leapstack-labs/querydeck/internal/session"
	"github.com/leapstack-labs/querydeck/internal/ui/notifier"
)

// Options are the user-facing limits of the web UI.
type Options struct {
	// MaxUploadMB caps one upload request.
	MaxUploadMB int
	// DisplayLimit caps rendered result rows. Zero renders every row.
	DisplayLimit int
	// Dev enables the hot reload hook in the page.
	Dev bool
}

// Deps holds what every feature handler needs.
type Deps struct {
	Sessions     *session.Manager
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	Assistant    *assist.Assistant
	Options      Options
	Logger       *slog.Logger
}

// Log returns the configured logger or a discarding one.
func (d Deps) Log() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}
