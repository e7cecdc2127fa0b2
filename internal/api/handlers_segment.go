package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bde-platform/mailer/internal/audience"
	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/pkg/httputil"
)

func (h *Handlers) ListSegments(w http.ResponseWriter, r *http.Request) {
	out, err := h.segments.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if out == nil {
		out = []domain.Segment{}
	}
	httputil.OK(w, out)
}

func (h *Handlers) GetSegment(w http.ResponseWriter, r *http.Request) {
	s, err := h.segments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeSegmentError(w, err)
		return
	}
	httputil.OK(w, s)
}

func (h *Handlers) CreateSegment(w http.ResponseWriter, r *http.Request) {
	var s domain.Segment
	if !httputil.Decode(w, r, &s) {
		return
	}
	if s.Name == "" {
		httputil.BadRequest(w, "name is required")
		return
	}
	if err := h.segments.Create(r.Context(), &s); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Created(w, s)
}

func (h *Handlers) UpdateSegment(w http.ResponseWriter, r *http.Request) {
	var s domain.Segment
	if !httputil.Decode(w, r, &s) {
		return
	}
	s.ID = chi.URLParam(r, "id")
	if err := h.segments.Update(r.Context(), &s); err != nil {
		writeSegmentError(w, err)
		return
	}
	httputil.OK(w, s)
}

func (h *Handlers) DeleteSegment(w http.ResponseWriter, r *http.Request) {
	if err := h.segments.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeSegmentError(w, err)
		return
	}
	httputil.NoContent(w)
}

type segmentPreviewResponse struct {
	Count  int      `json:"count"`
	Sample []string `json:"sample"`
}

// PreviewSegment runs a segment query without saving it and returns the
// match count plus a sample of addresses.
func (h *Handlers) PreviewSegment(w http.ResponseWriter, r *http.Request) {
	var q domain.SegmentQuery
	if !httputil.Decode(w, r, &q) {
		return
	}
	contacts, err := h.contacts.Match(r.Context(), q)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	resp := segmentPreviewResponse{Count: len(contacts), Sample: []string{}}
	for i := 0; i < len(contacts) && i < 10; i++ {
		resp.Sample = append(resp.Sample, contacts[i].Email)
	}
	httputil.OK(w, resp)
}

func writeSegmentError(w http.ResponseWriter, err error) {
	if errors.Is(err, audience.ErrSegmentNotFound) {
		httputil.NotFound(w, "segment not found")
		return
	}
	httputil.InternalError(w, err)
}
