// Package router sets up HTTP routes for the UI server.
package router

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	aiFeature "github.com/leapstack-labs/querydeck/internal/ui/features/ai"
	"github.com/leapstack-labs/querydeck/internal/ui/features/common"
	queryFeature "github.com/leapstack-labs/querydeck/internal/ui/features/query"
	workspaceFeature "github.com/leapstack-labs/querydeck/internal/ui/features/workspace"
	"github.com/leapstack-labs/querydeck/internal/ui/resources"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps common.Deps, isDev bool) error {
	// Hot reload endpoint for dev mode
	if isDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	var err error
	router.Group(func(r chi.Router) {
		r.Use(common.BindSession(deps.SessionStore, deps.Sessions, deps.Logger))

		if err = workspaceFeature.SetupRoutes(r, deps); err != nil {
			return
		}
		if err = queryFeature.SetupRoutes(r, deps); err != nil {
			return
		}
		err = aiFeature.SetupRoutes(r, deps)
	})
	return err
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
