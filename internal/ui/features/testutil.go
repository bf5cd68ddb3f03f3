// Package features provides shared test utilities for UI feature tests.
package features

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/querydeck/internal/assist"
	"github.com/leapstack-labs/querydeck/internal/session"
	"github.com/leapstack-labs/querydeck/internal/testutil"
	"github.com/leapstack-labs/querydeck/internal/ui/features/common"
	"github.com/leapstack-labs/querydeck/internal/ui/notifier"
)

// TestFile is an upload used by fixtures.
type TestFile struct {
	Name    string
	Content string
}

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Deps    common.Deps
	Session *session.Session

	Manager      *session.Manager
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
}

// SetupTestFixture creates a manager with one live in-memory session and
// loads files into it.
func SetupTestFixture(t *testing.T, files ...TestFile) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	mgr := session.NewManager(session.ManagerConfig{Logger: logger})
	t.Cleanup(func() { _ = mgr.Close() })

	s, err := mgr.Create(context.Background())
	require.NoError(t, err)

	if len(files) > 0 {
		uploads := make([]session.Upload, len(files))
		for i, f := range files {
			uploads[i] = session.Upload{Name: f.Name, Data: []byte(f.Content)}
		}
		report := s.LoadFiles(context.Background(), uploads)
		require.Equal(t, len(files), report.Count(session.LoadLoaded), "fixture files should load")
	}

	f := &TestFixture{
		Session:      s,
		Manager:      mgr,
		Notifier:     NewTestNotifier(),
		SessionStore: NewTestSessionStore(),
	}
	f.Deps = common.Deps{
		Sessions:     mgr,
		SessionStore: f.SessionStore,
		Notifier:     f.Notifier,
		Assistant:    assist.New(nil, logger),
		Options:      common.Options{MaxUploadMB: 8},
		Logger:       logger,
	}
	return f
}

// WithAssistant swaps in an assistant backed by provider.
func (f *TestFixture) WithAssistant(provider assist.Provider) *TestFixture {
	f.Deps.Assistant = assist.New(provider, f.Deps.Logger)
	return f
}

// Bind attaches the fixture session to r, as BindSession would.
func (f *TestFixture) Bind(r *http.Request) *http.Request {
	return r.WithContext(common.WithSession(r.Context(), f.Session))
}

// SignalsRequest builds a datastar POST carrying signals as a JSON body.
func SignalsRequest(t *testing.T, target string, signals map[string]any) *http.Request {
	t.Helper()
	body, err := json.Marshal(signals)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("datastar-request", "true")
	return req
}

// UploadRequest builds a multipart POST with files under the "files" field.
func UploadRequest(t *testing.T, target string, files ...TestFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		require.NoError(t, err)
		_, err = io.WriteString(part, f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// RequestWithTimeout wraps a request with a context timeout.
func RequestWithTimeout(r *http.Request, timeout time.Duration) (*http.Request, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	return r.WithContext(ctx), cancel
}

// NewTestNotifier creates a notifier for testing.
func NewTestNotifier() *notifier.Notifier {
	return notifier.New()
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
