// Package query runs SQL for a session and serves the result download.
package query

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/querydeck/internal/ui/features/common"
)

// SetupRoutes registers the query feature routes.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	handlers := NewHandlers(deps)

	router.Route("/api/query", func(r chi.Router) {
		r.Post("/execute", handlers.Execute)
		r.Get("/download", handlers.Download)
	})

	return nil
}
