package workspace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/querydeck/internal/frame"
	"github.com/leapstack-labs/querydeck/internal/session"
	"github.com/leapstack-labs/querydeck/internal/ui/components"
	"github.com/leapstack-labs/querydeck/internal/ui/features/common"
)

const (
	pageTitle = "Workspace"
	// formMemory is how much of a multipart body is kept in memory before
	// spilling to temp files.
	formMemory = 32 << 20
)

// Handlers provides HTTP handlers for the workspace feature.
type Handlers struct {
	deps   common.Deps
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{deps: deps, logger: deps.Log()}
}

// Page renders the full page from the session's current state.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(w, r)
	if !ok {
		return
	}

	data := components.PageData{
		Title:        pageTitle,
		Tables:       common.TableItems(s.Tables()),
		SQL:          s.Editor().SQL,
		Accept:       strings.Join(frame.Extensions(), ","),
		MaxUploadMB:  h.deps.Options.MaxUploadMB,
		AIConfigured: h.deps.Assistant.Configured(),
		AIProvider:   h.deps.Assistant.ProviderName(),
		IsDev:        h.deps.Options.Dev,
	}
	if res := s.LastResult(); res != nil {
		view := common.ResultView(res, h.deps.Options.DisplayLimit)
		data.Result = &view
	}

	if err := components.Page(data).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Updates is the long-lived SSE stream for one tab. It re-sends the table
// list whenever another request changes the session's tables, and keeps
// the session from idle eviction while it is open.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)

	if release, held := h.deps.Sessions.Hold(s.ID); held {
		defer release()
	}

	updates := h.deps.Notifier.Subscribe(s.ID)
	defer h.deps.Notifier.Unsubscribe(s.ID, updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := sse.PatchElementTempl(components.TableList(common.TableItems(s.Tables()))); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// Tables sends the table list.
func (h *Handlers) Tables(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(components.TableList(common.TableItems(s.Tables()))); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Schema sends the schema summary used for prompts.
func (h *Handlers) Schema(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)

	summary, err := s.SchemaSummary(r.Context())
	if err != nil {
		_ = sse.PatchElementTempl(components.Notice(components.NoticeError, err.Error()))
		return
	}
	if err := sse.PatchElementTempl(components.SchemaPanel(summary)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Upload loads every file of the multipart field "files" into the session
// and reports the outcome per file.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(w, r)
	if !ok {
		return
	}

	// The body must be consumed before the SSE stream starts.
	uploads, err := h.readUploads(w, r)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = sse.PatchElementTempl(components.Notice(components.NoticeError, err.Error()))
		return
	}
	if len(uploads) == 0 {
		_ = sse.PatchElementTempl(components.Notice(components.NoticeWarning, "Choose at least one file to load."))
		return
	}

	report := s.LoadFiles(r.Context(), uploads)

	if err := sse.PatchElementTempl(components.LoadReport(common.ReportEntries(report))); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(components.TableList(common.TableItems(s.Tables()))); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	_ = sse.PatchElementTempl(components.Notice(uploadNotice(report)))

	if report.Count(session.LoadLoaded) > 0 {
		h.deps.Notifier.Broadcast(s.ID)
	}
}

func (h *Handlers) readUploads(w http.ResponseWriter, r *http.Request) ([]session.Upload, error) {
	if limit := h.deps.Options.MaxUploadMB; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(limit)<<20)
	}
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, fmt.Errorf("upload exceeds %d MB", h.deps.Options.MaxUploadMB)
		}
		return nil, fmt.Errorf("read upload: %w", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	uploads := make([]session.Upload, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		uploads = append(uploads, session.Upload{Name: fh.Filename, Data: data})
	}
	return uploads, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

func uploadNotice(report session.LoadReport) (string, string) {
	loaded := report.Count(session.LoadLoaded)
	problems := report.Count(session.LoadFailed) + report.Count(session.LoadUnsupported)
	switch {
	case problems > 0 && loaded == 0:
		return components.NoticeError, "No files were loaded."
	case problems > 0:
		return components.NoticeWarning, fmt.Sprintf("Loaded %d of %d files.", loaded, len(report.Entries))
	case loaded == 0:
		return components.NoticeInfo, "Nothing new to load."
	default:
		return components.NoticeInfo, fmt.Sprintf("Loaded %d file(s).", loaded)
	}
}
