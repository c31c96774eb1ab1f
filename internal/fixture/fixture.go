// Package fixture serves an HTML page emulating vaadin date and time pickers.
//
// The emulated widgets behave like the real ones where page objects care:
// typing opens an overlay, Enter parses the text (ISO-8601 first, then the
// display pattern), stores the ISO value in the host element's value
// property, re-renders the input in the display pattern and hides the
// overlay after a configurable delay.
package fixture

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kuitang/pickerpw/internal/obs"
)

//go:embed static/pickers.html
var staticFS embed.FS

const (
	// GridRows is the number of date pickers in the page's grid.
	GridRows = 3

	maxOverlayDelay = 10 * time.Second
)

// PageData is rendered into the pickers page.
type PageData struct {
	DelayMS    int64
	DateFormat string
	TimeFormat string
	Rows       []int
}

// Handler serves the pickers page.
type Handler struct {
	tmpl         *template.Template
	overlayDelay time.Duration
	logger       *slog.Logger
}

// NewHandler parses the embedded page. overlayDelay applies when a request
// does not pass ?delay=.
func NewHandler(overlayDelay time.Duration) (*Handler, error) {
	tmpl, err := template.ParseFS(staticFS, "static/pickers.html")
	if err != nil {
		return nil, fmt.Errorf("parse fixture page: %w", err)
	}
	if overlayDelay < 0 {
		overlayDelay = 0
	}
	return &Handler{
		tmpl:         tmpl,
		overlayDelay: overlayDelay,
		logger:       obs.Pkg("fixture"),
	}, nil
}

// RegisterRoutes registers fixture routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /pickers", h.HandlePickers)
	mux.HandleFunc("GET /healthz", h.HandleHealth)
}

// Routes returns a mux with the fixture routes behind request id and access
// log middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return obs.RequestContextMiddleware(obs.AccessLogMiddleware("fixture", mux))
}

// HandlePickers renders the page. Query parameters: delay (overlay close
// delay in ms), dateFormat and timeFormat (display patterns).
func (h *Handler) HandlePickers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	delay := h.overlayDelay
	if raw := q.Get("delay"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms < 0 || time.Duration(ms)*time.Millisecond > maxOverlayDelay {
			http.Error(w, fmt.Sprintf("delay must be an integer between 0 and %d", maxOverlayDelay.Milliseconds()), http.StatusBadRequest)
			return
		}
		delay = time.Duration(ms) * time.Millisecond
	}

	data := PageData{
		DelayMS:    delay.Milliseconds(),
		DateFormat: q.Get("dateFormat"),
		TimeFormat: q.Get("timeFormat"),
		Rows:       make([]int, GridRows),
	}
	for i := range data.Rows {
		data.Rows[i] = i
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		obs.Enrich(r.Context(), h.logger).Error("fixture_render_failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// HandleHealth reports readiness.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// GridCellID returns the id of the date picker in grid row i.
func GridCellID(i int) string {
	return "grid-" + strconv.Itoa(i)
}
