package assist

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no API key is available. No request is
// made in that case.
var ErrNotConfigured = errors.New("AI assistance is not configured")

// ErrEmptyRequest is returned when drafting without a description.
var ErrEmptyRequest = errors.New("describe the data you want first")

// ServiceError is a failed or unusable reply from the provider.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Assistant runs the draft, explain and insights workflows against a
// Provider. A nil provider means assistance is not configured.
type Assistant struct {
	provider Provider
	keyEnv   string
	logger   *slog.Logger
}

// New creates an Assistant.
func New(provider Provider, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Assistant{provider: provider, logger: logger}
}

// FromEnv builds an Assistant for cfg, reading the provider's API key with
// getenv.
func FromEnv(cfg Config, getenv func(string) string, logger *slog.Logger) (*Assistant, error) {
	env := KeyEnv(cfg.Provider)
	provider, err := NewProvider(cfg, getenv(env))
	if err != nil {
		return nil, err
	}
	a := New(provider, logger)
	a.keyEnv = env
	return a, nil
}

// Configured reports whether requests can be made.
func (a *Assistant) Configured() bool {
	return a != nil && a.provider != nil
}

// KeyEnv returns the environment variable the API key is read from, or ""
// when the Assistant was not built by FromEnv.
func (a *Assistant) KeyEnv() string {
	if a == nil {
		return ""
	}
	return a.keyEnv
}

// ProviderName returns the provider's name, or "" when not configured.
func (a *Assistant) ProviderName() string {
	if !a.Configured() {
		return ""
	}
	return a.provider.Name()
}

// Draft returns SQL answering request over the described schema.
func (a *Assistant) Draft(ctx context.Context, schema, request string) (string, error) {
	if !a.Configured() {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(request) == "" {
		return "", ErrEmptyRequest
	}
	reply, err := a.complete(ctx, "draft query", DraftPrompt(schema, request))
	if err != nil {
		return "", err
	}
	sql := ExtractSQL(reply)
	if sql == "" {
		return "", &ServiceError{Op: "draft query", Err: errors.New("reply contained no SQL")}
	}
	return sql, nil
}

// Explain returns a plain-language explanation of sql.
func (a *Assistant) Explain(ctx context.Context, schema, sql string) (string, error) {
	return a.complete(ctx, "explain query", ExplainPrompt(schema, sql))
}

// Insights returns observations about a result given a text sample of it.
func (a *Assistant) Insights(ctx context.Context, sql, sample string, totalRows int) (string, error) {
	return a.complete(ctx, "summarize results", InsightsPrompt(sql, sample, totalRows))
}

func (a *Assistant) complete(ctx context.Context, op, prompt string) (string, error) {
	if !a.Configured() {
		return "", ErrNotConfigured
	}

	start := time.Now()
	reply, err := a.provider.Complete(ctx, prompt)
	if err != nil {
		a.logger.Warn("assistant request failed",
			slog.String("op", op),
			slog.String("provider", a.provider.Name()),
			slog.String("model", a.provider.Model()),
			slog.String("error", err.Error()))
		return "", &ServiceError{Op: op, Err: err}
	}

	a.logger.Debug("assistant request completed",
		slog.String("op", op),
		slog.String("provider", a.provider.Name()),
		slog.String("model", a.provider.Model()),
		slog.Duration("elapsed", time.Since(start)))
	return strings.TrimSpace(reply), nil
}
