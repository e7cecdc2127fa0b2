package api

import (
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/pkg/httputil"
	"github.com/bde-platform/mailer/internal/service/unsubscribe"
)

// UnsubscribePage handles the footer link from sent emails. It records the
// unsubscribe and shows a small confirmation page.
func (h *Handlers) UnsubscribePage(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	err := h.unsubs.Unsubscribe(r.Context(), email, domain.UnsubscribeSourceLink)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if errors.Is(err, unsubscribe.ErrInvalidEmail) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, unsubscribeHTML("Adresse invalide", "Le lien de désinscription est incomplet ou invalide."))
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, unsubscribeHTML("Erreur", "Une erreur est survenue, merci de réessayer plus tard."))
		return
	}
	fmt.Fprint(w, unsubscribeHTML("Désinscription confirmée",
		"L'adresse "+html.EscapeString(email)+" ne recevra plus nos emails."))
}

// UnsubscribeJSON is the machine-facing endpoint. POST is the RFC 8058
// one-click target named in the List-Unsubscribe header; GET serves
// clients that follow the link directly.
func (h *Handlers) UnsubscribeJSON(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	source := domain.UnsubscribeSourceLink
	if r.Method == http.MethodPost {
		source = domain.UnsubscribeSourceOneClick
	}

	err := h.unsubs.Unsubscribe(r.Context(), email, source)
	if errors.Is(err, unsubscribe.ErrInvalidEmail) {
		httputil.BadRequest(w, "invalid email address")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"status": "unsubscribed"})
}

// ListUnsubscribes returns the global suppression list.
func (h *Handlers) ListUnsubscribes(w http.ResponseWriter, r *http.Request) {
	out, err := h.unsubs.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if out == nil {
		out = []domain.UnsubscribedRecipient{}
	}
	httputil.OK(w, out)
}

// Resubscribe removes an address from the suppression list.
func (h *Handlers) Resubscribe(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	err := h.unsubs.Resubscribe(r.Context(), email)
	if errors.Is(err, unsubscribe.ErrInvalidEmail) {
		httputil.BadRequest(w, "invalid email address")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}

func unsubscribeHTML(title, body string) string {
	return `<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"><title>` + html.EscapeString(title) + `</title></head>
<body style="font-family: sans-serif; max-width: 32rem; margin: 4rem auto;">
<h1>` + html.EscapeString(title) + `</h1>
<p>` + body + `</p>
</body>
</html>`
}
