package common

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/querydeck/internal/session"
)

const (
	// CookieName is the browser cookie holding the session id.
	CookieName = "querydeck"
	sessionKey = "sid"
)

type contextKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session bound by BindSession.
func FromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*session.Session)
	return s, ok && s != nil
}

// BindSession resolves the cookie's session id to a live session, creating
// one when the cookie is missing or its session was evicted.
func BindSession(store sessions.Store, mgr *session.Manager, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// A cookie that fails to decode yields a fresh, empty session.
			cookie, _ := store.Get(r, CookieName)
			id, _ := cookie.Values[sessionKey].(string)

			s, ok := mgr.Get(id)
			if !ok {
				var err error
				s, err = mgr.Create(r.Context())
				if err != nil {
					logger.Error("failed to create session", slog.String("error", err.Error()))
					http.Error(w, "could not start a session", http.StatusInternalServerError)
					return
				}
				cookie.Values[sessionKey] = s.ID
				if err := cookie.Save(r, w); err != nil {
					logger.Warn("failed to save session cookie", slog.String("error", err.Error()))
				}
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// Session returns the request's session or writes a 500 and returns false.
func Session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := FromContext(r.Context())
	if !ok {
		http.Error(w, "no session", http.StatusInternalServerError)
	}
	return s, ok
}
