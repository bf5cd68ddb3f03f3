// Package ai serves the AI drafting, explanation and insights actions.
package ai

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/querydeck/internal/ui/features/common"
)

// SetupRoutes registers the assist feature routes.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	handlers := NewHandlers(deps)

	router.Route("/api/assist", func(r chi.Router) {
		r.Post("/draft", handlers.Draft)
		r.Post("/explain", handlers.Explain)
		r.Post("/insights", handlers.Insights)
	})

	return nil
}
