// Package workspace serves the page, the table list and file uploads.
package workspace

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/querydeck/internal/ui/features/common"
)

// SetupRoutes configures routes for the workspace feature.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	handlers := NewHandlers(deps)

	router.Get("/", handlers.Page)
	router.Get("/updates", handlers.Updates)

	router.Route("/api/tables", func(r chi.Router) {
		r.Get("/", handlers.Tables)
		r.Post("/upload", handlers.Upload)
		r.Get("/schema", handlers.Schema)
	})

	return nil
}
