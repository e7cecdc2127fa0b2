package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/pkg/httputil"
	"github.com/bde-platform/mailer/internal/repository/postgres"
)

type contactListResponse struct {
	Contacts []domain.Contact `json:"contacts"`
	Total    int              `json:"total"`
}

func (h *Handlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	contacts, total, err := h.contacts.List(r.Context(), limit, offset)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	httputil.OK(w, contactListResponse{Contacts: contacts, Total: total})
}

func (h *Handlers) UpsertContact(w http.ResponseWriter, r *http.Request) {
	var c domain.Contact
	if !httputil.Decode(w, r, &c) {
		return
	}
	if c.Email == "" {
		httputil.BadRequest(w, "email is required")
		return
	}
	if err := h.contacts.Upsert(r.Context(), &c); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, c)
}

func (h *Handlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	err := h.contacts.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, postgres.ErrContactNotFound) {
		httputil.NotFound(w, "contact not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}
