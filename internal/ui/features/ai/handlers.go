package ai

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/querydeck/internal/assist"
	"github.com/leapstack-labs/querydeck/internal/session"
	"github.com/leapstack-labs/querydeck/internal/ui/components"
	"github.com/leapstack-labs/querydeck/internal/ui/features/common"
)

// Signals are the datastar signals read by the assist handlers.
type Signals struct {
	SQL    string `json:"sql"`
	Prompt string `json:"prompt"`
}

// Handlers provides HTTP handlers for the assist feature.
type Handlers struct {
	deps   common.Deps
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{deps: deps, logger: deps.Log()}
}

// Draft turns the prompt signal into SQL and replaces the editor text.
func (h *Handlers) Draft(w http.ResponseWriter, r *http.Request) {
	s, signals, sse, ok := h.begin(w, r)
	if !ok {
		return
	}
	sql, err := s.Draft(r.Context(), h.deps.Assistant, signals.Prompt)
	if err != nil {
		h.fail(sse, err)
		return
	}

	if err := sse.MarshalAndPatchSignals(map[string]string{"sql": sql}); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	_ = sse.PatchElementTempl(components.Notice(components.NoticeInfo, "Drafted SQL. Review it, then run it."))
}

// Explain describes the SQL signal in plain language.
func (h *Handlers) Explain(w http.ResponseWriter, r *http.Request) {
	s, signals, sse, ok := h.begin(w, r)
	if !ok {
		return
	}
	text, err := s.Explain(r.Context(), h.deps.Assistant, signals.SQL)
	if err != nil {
		h.fail(sse, err)
		return
	}
	h.show(sse, "Explanation", text)
}

// Insights summarizes the last successful result.
func (h *Handlers) Insights(w http.ResponseWriter, r *http.Request) {
	s, _, sse, ok := h.begin(w, r)
	if !ok {
		return
	}
	text, err := s.Insights(r.Context(), h.deps.Assistant)
	if err != nil {
		h.fail(sse, err)
		return
	}
	h.show(sse, "Insights", text)
}

// begin reads the signals and opens the SSE stream. An unconfigured
// assistant is reported here so no handler reaches a provider.
func (h *Handlers) begin(w http.ResponseWriter, r *http.Request) (*session.Session, Signals, *datastar.ServerSentEventGenerator, bool) {
	var signals Signals
	s, ok := common.Session(w, r)
	if !ok {
		return nil, signals, nil, false
	}

	readErr := datastar.ReadSignals(r, &signals)
	sse := datastar.NewSSE(w, r)

	if readErr != nil {
		_ = sse.PatchElementTempl(components.Notice(components.NoticeError, "Failed to read signals: "+readErr.Error()))
		return nil, signals, nil, false
	}
	if !h.deps.Assistant.Configured() {
		h.fail(sse, assist.ErrNotConfigured)
		return nil, signals, nil, false
	}
	return s, signals, sse, true
}

func (h *Handlers) show(sse *datastar.ServerSentEventGenerator, title, text string) {
	if err := sse.PatchElementTempl(components.Assist(title, text)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	_ = sse.PatchElementTempl(components.Notice(components.NoticeInfo, title+" ready."))
}

func (h *Handlers) fail(sse *datastar.ServerSentEventGenerator, err error) {
	level := components.NoticeError
	msg := err.Error()

	var svcErr *assist.ServiceError
	switch {
	case errors.Is(err, assist.ErrNotConfigured):
		level = components.NoticeWarning
		msg = "AI assistance is not configured. Set " + assistKeyHint(h.deps.Assistant) + " and restart."
	case errors.Is(err, assist.ErrEmptyRequest), errors.Is(err, session.ErrEmptyQuery):
		level = components.NoticeWarning
	case errors.Is(err, session.ErrNoResult):
		level = components.NoticeWarning
		msg = "Run a query first."
	case errors.As(err, &svcErr):
		h.logger.Warn("assistant request failed", slog.String("op", svcErr.Op), slog.String("error", svcErr.Err.Error()))
	}
	_ = sse.PatchElementTempl(components.Notice(level, msg))
}

func assistKeyHint(a *assist.Assistant) string {
	if env := a.KeyEnv(); env != "" {
		return env
	}
	return "the provider's API key"
}
