// Package ui provides the web front-end: upload files, query them and ask the
// assistant, one isolated session per browser.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/querydeck/internal/assist"
	"github.com/leapstack-labs/querydeck/internal/session"
	"github.com/leapstack-labs/querydeck/internal/ui/features/common"
	"github.com/leapstack-labs/querydeck/internal/ui/notifier"
	"github.com/leapstack-labs/querydeck/internal/ui/resources"
	"github.com/leapstack-labs/querydeck/internal/ui/router"
)

// Server is the main UI server.
type Server struct {
	sessions     *session.Manager
	sessionStore *sessions.CookieStore
	assistant    *assist.Assistant
	notifier     *notifier.Notifier
	options      common.Options
	host         string
	port         int
	logger       *slog.Logger
}

// Config holds configuration for the UI server.
type Config struct {
	Host          string
	Port          int
	SessionSecret string
	IdleTimeout   time.Duration
	MaxUploadMB   int
	DisplayLimit  int
	Assistant     *assist.Assistant
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		sessions: session.NewManager(session.ManagerConfig{
			IdleTimeout: cfg.IdleTimeout,
			Logger:      logger,
		}),
		sessionStore: sessionStore,
		assistant:    cfg.Assistant,
		notifier:     notifier.New(),
		options: common.Options{
			MaxUploadMB:  cfg.MaxUploadMB,
			DisplayLimit: cfg.DisplayLimit,
			Dev:          resources.IsDev,
		},
		host:   cfg.Host,
		port:   cfg.Port,
		logger: logger,
	}
}

// Handler builds the routed handler with middleware.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	deps := common.Deps{
		Sessions:     s.sessions,
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		Assistant:    s.assistant,
		Options:      s.options,
		Logger:       s.logger,
	}
	if err := router.SetupRoutes(r, deps, s.IsDev()); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// URL is the address users open in a browser.
func (s *Server) URL() string {
	host := s.host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprint(s.port)))
}

// Serve starts the UI server and blocks until the context is cancelled.
// Every session is closed before it returns.
func (s *Server) Serve(ctx context.Context) error {
	addr := net.JoinHostPort(s.host, fmt.Sprint(s.port))
	s.logger.Info("starting UI server", "addr", s.URL())

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Evict idle sessions; closes the rest on shutdown.
	eg.Go(func() error {
		return s.sessions.Run(egctx)
	})

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev returns true when built with the dev tag.
func (s *Server) IsDev() bool {
	return s.options.Dev
}

// Sessions returns the server's session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}
