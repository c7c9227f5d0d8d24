package paste

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sundayezeilo/pastebin/internal/errx"
	"github.com/sundayezeilo/pastebin/internal/httpx"
)

const (
	// MaxIDLength bounds ids accepted from the path; longer ids cannot exist.
	MaxIDLength = 64

	// TestNowHeader overrides the request clock (epoch milliseconds) when
	// the handler runs in test mode.
	TestNowHeader = "X-Test-Now-Ms"

	unavailableMessage = "Paste unavailable"
)

// HTTPCreatePasteRequest represents the JSON request body for creating a paste.
type HTTPCreatePasteRequest struct {
	Content    *string     `json:"content"`
	TTLSeconds OptionalInt `json:"ttl_seconds"`
	MaxViews   OptionalInt `json:"max_views"`
}

// OptionalInt is a JSON integer field that remembers whether its key was
// sent. A key holding anything but an integer is Present but not Valid.
type OptionalInt struct {
	Present bool
	Valid   bool
	Value   int
}

func (o *OptionalInt) UnmarshalJSON(b []byte) error {
	o.Present = true
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		o.Value = 0
		return nil
	}
	o.Valid = true
	return nil
}

// Ptr returns the value, or nil when the key was absent.
func (o OptionalInt) Ptr() *int {
	if !o.Present {
		return nil
	}
	v := o.Value
	return &v
}

// CreatePasteResponse represents the JSON response for a created paste.
type CreatePasteResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PasteResponse represents the JSON response for a paste read.
// Null fields are serialized, not omitted.
type PasteResponse struct {
	Content        string     `json:"content"`
	RemainingViews *int       `json:"remaining_views"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

var pageTemplate = template.Must(template.New("paste").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main style="padding: 20px; font-family: monospace">
{{if .Found}}<pre>{{.Content}}</pre>{{else}}<h1>{{.Title}}</h1>{{end}}
</main>
</body>
</html>
`))

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main style="padding: 20px; font-family: sans-serif; max-width: 720px">
<h1>{{.Title}}</h1>
<form id="paste-form">
<textarea name="content" rows="10" style="width: 100%" placeholder="Paste your content here..." required></textarea>
<p>
<input name="ttl_seconds" type="number" min="1" placeholder="Expiry (seconds)">
<input name="max_views" type="number" min="1" placeholder="Max views">
<button type="submit">Create Paste</button>
</p>
</form>
<p id="error" style="color: #d32f2f"></p>
<p id="result" hidden>Your shareable link: <a id="link"></a></p>
</main>
<script>
document.getElementById("paste-form").addEventListener("submit", async (e) => {
  e.preventDefault();
  const f = e.target;
  const body = { content: f.content.value };
  if (f.ttl_seconds.value) body.ttl_seconds = Number(f.ttl_seconds.value);
  if (f.max_views.value) body.max_views = Number(f.max_views.value);
  const err = document.getElementById("error");
  const result = document.getElementById("result");
  err.textContent = "";
  result.hidden = true;
  const res = await fetch("/api/pastes", {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify(body),
  });
  const data = await res.json();
  if (!res.ok) {
    err.textContent = data.message || "Failed to create paste";
    return;
  }
  const link = document.getElementById("link");
  link.href = data.url;
  link.textContent = data.url;
  result.hidden = false;
  f.reset();
});
</script>
</body>
</html>
`))

type formData struct {
	Title string
}

type pageData struct {
	Title   string
	Content string
	Found   bool
}

// Handler provides HTTP handlers for the paste service.
type Handler struct {
	service  Service
	logger   *slog.Logger
	baseURL  string
	testMode bool
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
	// BaseURL prefixes share links (e.g., "https://paste.example.com").
	// When empty, links are built from the request Host header.
	BaseURL string
	// TestMode honours TestNowHeader for deterministic expiry checks.
	TestMode bool
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service:  cfg.Service,
		logger:   logger,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		testMode: cfg.TestMode,
	}
}

// CreatePaste handles POST /api/pastes.
func (h *Handler) CreatePaste(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeJSON[HTTPCreatePasteRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request",
			"error", err.Error(),
		)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	if err := validateCreateRequest(req); err != nil {
		logger.WarnContext(ctx, "request validation failed",
			"error", err.Error(),
		)
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", err.Error(), nil)
		return
	}

	p, err := h.service.Create(ctx, CreatePasteRequest{
		Content:    *req.Content,
		TTLSeconds: req.TTLSeconds.Ptr(),
		MaxViews:   req.MaxViews.Ptr(),
		Now:        h.requestNow(r),
	})
	if err != nil {
		h.handleCreateError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "paste created",
		"paste_id", p.ID,
		"expires", p.ExpiresAt != nil,
		"max_views", p.MaxViews != nil,
		"size", len(p.Content),
	)

	httpx.WriteJSON(w, http.StatusCreated, CreatePasteResponse{
		ID:  p.ID,
		URL: h.shareURL(r, p.ID),
	})
}

// GetPaste handles GET /api/pastes/{id}. The read consumes a view unless
// the request carries html=1, which marks a display-only fetch.
func (h *Handler) GetPaste(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id := r.PathValue("id")
	countView := r.URL.Query().Get("html") != "1"

	if !validIDFormat(id) {
		logger.WarnContext(ctx, "invalid paste id", "paste_id", id)
		httpx.WriteError(w, http.StatusNotFound, "not_found", unavailableMessage, nil)
		return
	}

	view, err := h.service.Read(ctx, ReadPasteRequest{
		ID:        id,
		CountView: countView,
		Now:       h.requestNow(r),
	})
	if err != nil {
		h.handleReadError(ctx, logger, w, err, id)
		return
	}

	logger.InfoContext(ctx, "paste served",
		"paste_id", id,
		"counted", countView,
		"view_count", view.ViewCount,
	)

	httpx.WriteJSON(w, http.StatusOK, PasteResponse{
		Content:        view.Content,
		RemainingViews: view.RemainingViews,
		ExpiresAt:      utcPtr(view.ExpiresAt),
	})
}

// ViewPaste handles GET /p/{id}: an HTML page showing the content without
// consuming a view.
func (h *Handler) ViewPaste(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id := r.PathValue("id")
	if !validIDFormat(id) {
		h.writePage(w, http.StatusNotFound, pageData{Title: unavailableMessage})
		return
	}

	view, err := h.service.Read(ctx, ReadPasteRequest{
		ID:        id,
		CountView: false,
		Now:       h.requestNow(r),
	})
	if err != nil {
		kind := errx.KindOf(err)
		if kind == errx.NotFound {
			h.writePage(w, http.StatusNotFound, pageData{Title: unavailableMessage})
			return
		}
		logger.ErrorContext(ctx, "failed to render paste",
			"error", err.Error(),
			"error_kind", kind,
			"operation", errx.OpOf(err),
			"paste_id", id,
		)
		h.writePage(w, httpx.ErrorKindToStatus(kind), pageData{Title: "Something went wrong"})
		return
	}

	h.writePage(w, http.StatusOK, pageData{
		Title:   "Paste " + id,
		Content: view.Content,
		Found:   true,
	})
}

// NewPasteForm handles GET /: a form that creates pastes through the JSON API.
func (h *Handler) NewPasteForm(w http.ResponseWriter, r *http.Request) {
	httpx.WriteHTML(w, http.StatusOK, formTemplate, formData{Title: "New paste"})
}

func (h *Handler) writePage(w http.ResponseWriter, status int, data pageData) {
	httpx.WriteHTML(w, status, pageTemplate, data)
}

// handleCreateError handles errors from the Create service method.
func (h *Handler) handleCreateError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	}

	switch kind {
	case errx.Invalid:
		logger.WarnContext(ctx, "invalid paste request", logAttrs...)
		msg := "Paste could not be stored with these settings"
		var verr *ValidationError
		if errors.As(err, &verr) {
			msg = verr.Message
		}
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", msg, nil)

	case errx.Unavailable:
		logger.ErrorContext(ctx, "store unavailable", logAttrs...)
		httpx.WriteError(w, http.StatusServiceUnavailable, "unavailable",
			"Unable to create paste at this time. Please try again.", nil)

	default:
		logger.ErrorContext(ctx, "unexpected error creating paste", logAttrs...)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to create paste at this time. Please try again.", nil)
	}
}

// handleReadError handles errors from the Read service method. Missing,
// expired and exhausted pastes share one response.
func (h *Handler) handleReadError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error, id string) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
		"paste_id", id,
	}

	switch kind {
	case errx.NotFound:
		logger.InfoContext(ctx, "paste unavailable", logAttrs...)
		httpx.WriteError(w, http.StatusNotFound, "not_found", unavailableMessage, nil)

	case errx.Internal:
		logger.ErrorContext(ctx, "paste invariant violated", logAttrs...)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to load this paste at this time", nil)

	default:
		logger.ErrorContext(ctx, "unexpected error reading paste", logAttrs...)
		httpx.WriteError(w, httpx.ErrorKindToStatus(kind), httpx.ErrorKindToCode(kind),
			"Unable to load this paste at this time", nil)
	}
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

// requestNow returns the instant to evaluate the request at. The zero
// value defers to the service clock.
func (h *Handler) requestNow(r *http.Request) time.Time {
	if !h.testMode {
		return time.Time{}
	}
	raw := r.Header.Get(TestNowHeader)
	if raw == "" {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.logger.WarnContext(r.Context(), "ignoring malformed test clock header",
			"header", TestNowHeader,
			"value", raw,
		)
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func (h *Handler) shareURL(r *http.Request, id string) string {
	base := h.baseURL
	if base == "" {
		base = "http://" + r.Host
	}
	return base + "/p/" + id
}

// validateCreateRequest rejects keys that were sent without a usable
// number. Range checks on the numbers belong to the service.
func validateCreateRequest(req HTTPCreatePasteRequest) error {
	if req.Content == nil {
		return errors.New("content is required")
	}
	if req.TTLSeconds.Present && !req.TTLSeconds.Valid {
		return errors.New("ttl_seconds must be >= 1")
	}
	if req.MaxViews.Present && !req.MaxViews.Valid {
		return errors.New("max_views must be >= 1")
	}
	return nil
}

// validIDFormat is a lightweight check before calling the service layer.
func validIDFormat(id string) bool {
	return id != "" && len(id) <= MaxIDLength
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
