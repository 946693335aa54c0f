package handler

import (
	"bytes"
	"net/http"

	"github.com/iconidentify/vidtoot/pkg/ui"
)

// UIHandler serves the web dashboard.
type UIHandler struct {
	page []byte
}

// NewUIHandler creates a new UI handler with the version baked into the page.
func NewUIHandler(version string) *UIHandler {
	return &UIHandler{
		page: bytes.Replace(ui.IndexHTML, []byte("{version}"), []byte(version), 1),
	}
}

// Index serves the dashboard page.
func (h *UIHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(h.page)
}
