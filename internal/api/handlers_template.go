package api

import (
	"errors"
	"net/http"

	"github.com/bde-platform/mailer/internal/pkg/httputil"
	"github.com/bde-platform/mailer/internal/templates"
)

type renderRequest struct {
	Source   string         `json:"source"`
	Bindings map[string]any `json:"bindings"`
}

// RenderTemplate renders a Liquid template with the supplied bindings, for
// the template editor's live preview.
func (h *Handlers) RenderTemplate(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	out, err := h.templates.Render(req.Source, req.Bindings)
	if err != nil {
		writeTemplateError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"html": out})
}

type validateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateTemplate parses a Liquid template and reports the first syntax
// error without rendering anything.
func (h *Handlers) ValidateTemplate(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := h.templates.Validate(req.Source); err != nil {
		httputil.OK(w, validateResponse{Valid: false, Error: err.Error()})
		return
	}
	httputil.OK(w, validateResponse{Valid: true})
}

func writeTemplateError(w http.ResponseWriter, err error) {
	if errors.Is(err, templates.ErrEmptyTemplate) {
		httputil.BadRequest(w, "template source is empty")
		return
	}
	// Liquid syntax errors are user errors, not server faults.
	httputil.BadRequest(w, err.Error())
}
