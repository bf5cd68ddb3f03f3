package query

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/querydeck/internal/session"
	"github.com/leapstack-labs/querydeck/internal/ui/components"
	"github.com/leapstack-labs/querydeck/internal/ui/features/common"
)

// Signals are the datastar signals read by the query handlers.
type Signals struct {
	SQL string `json:"sql"`
}

// Handlers provides HTTP handlers for the query feature.
type Handlers struct {
	deps   common.Deps
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{deps: deps, logger: deps.Log()}
}

// Execute runs the editor's SQL and patches in the result, or the engine's
// error message verbatim.
func (h *Handlers) Execute(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(w, r)
	if !ok {
		return
	}

	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.PatchElementTempl(components.Result(components.ResultData{
			Error: "Failed to read signals: " + err.Error(),
		}))
		return
	}

	sse := datastar.NewSSE(w, r)

	res, err := s.Execute(r.Context(), signals.SQL)
	if err != nil {
		if !errors.Is(err, session.ErrEmptyQuery) {
			h.logger.Debug("query rejected", slog.String("error", err.Error()))
		}
		_ = sse.PatchElementTempl(components.Result(common.ErrorView(signals.SQL, err)))
		return
	}

	if err := sse.PatchElementTempl(components.Result(common.ResultView(res, h.deps.Options.DisplayLimit))); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Download streams every row of the last successful result as CSV.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(w, r)
	if !ok {
		return
	}

	res := s.LastResult()
	if res == nil {
		http.Error(w, session.ErrNoResult.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", session.ResultFileName))
	if err := res.WriteCSV(w); err != nil {
		h.logger.Warn("failed to write result download", slog.String("error", err.Error()))
	}
}
