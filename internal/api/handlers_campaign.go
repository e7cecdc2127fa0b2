package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bde-platform/mailer/internal/audience"
	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/pkg/httputil"
	"github.com/bde-platform/mailer/internal/service/campaign"
	"github.com/bde-platform/mailer/internal/service/sending"
)

type campaignRequest struct {
	Name        string              `json:"name"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"html_content"`
	TextContent string              `json:"text_content"`
	Recipients  []string            `json:"recipients"`
	SegmentID   *string             `json:"segment_id"`
	Attachments []domain.Attachment `json:"attachments"`
	ScheduledAt *time.Time          `json:"scheduled_at"`
}

func (req campaignRequest) toInput() campaign.CreateInput {
	return campaign.CreateInput{
		Name:        req.Name,
		Subject:     req.Subject,
		HTMLContent: req.HTMLContent,
		TextContent: req.TextContent,
		Recipients:  req.Recipients,
		SegmentID:   req.SegmentID,
		Attachments: req.Attachments,
		ScheduledAt: req.ScheduledAt,
	}
}

func (h *Handlers) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	c, err := h.campaigns.Create(r.Context(), UserID(r), req.toInput())
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	httputil.Created(w, c)
}

func (h *Handlers) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	out, err := h.campaigns.List(r.Context(), UserID(r))
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if out == nil {
		out = []domain.Campaign{}
	}
	httputil.OK(w, out)
}

func (h *Handlers) GetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Get(r.Context(), UserID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	httputil.OK(w, c)
}

func (h *Handlers) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	c, err := h.campaigns.Update(r.Context(), UserID(r), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	httputil.OK(w, c)
}

func (h *Handlers) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.campaigns.Delete(r.Context(), UserID(r), chi.URLParam(r, "id")); err != nil {
		writeCampaignError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) ArchiveCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.campaigns.Archive(r.Context(), UserID(r), chi.URLParam(r, "id")); err != nil {
		writeCampaignError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) SendCampaign(w http.ResponseWriter, r *http.Request) {
	summary, err := h.sender.Send(r.Context(), UserID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	httputil.OK(w, summary)
}

func (h *Handlers) PreviewCampaign(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		httputil.BadRequest(w, "email query parameter is required")
		return
	}
	msg, err := h.sender.Preview(r.Context(), UserID(r), chi.URLParam(r, "id"), email)
	if err != nil {
		writeCampaignError(w, err)
		return
	}
	httputil.OK(w, msg)
}

// writeCampaignError maps campaign and sending errors to HTTP statuses.
func writeCampaignError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, campaign.ErrNotFound):
		httputil.NotFound(w, "campaign not found")
	case errors.Is(err, campaign.ErrNotOwner):
		httputil.Forbidden(w, "campaign belongs to another user")
	case errors.Is(err, campaign.ErrNotEditable):
		httputil.Conflict(w, "campaign is no longer editable")
	case errors.Is(err, campaign.ErrInvalidTransition):
		httputil.Conflict(w, "campaign status does not allow this operation")
	case errors.Is(err, campaign.ErrMissingSubject),
		errors.Is(err, campaign.ErrMissingContent),
		errors.Is(err, campaign.ErrNoAudience):
		httputil.BadRequest(w, err.Error())
	case errors.Is(err, sending.ErrAlreadySent):
		httputil.Conflict(w, "campaign already sent")
	case errors.Is(err, sending.ErrAlreadySending):
		httputil.Conflict(w, "campaign send already in progress")
	case errors.Is(err, sending.ErrNotSendable):
		httputil.Conflict(w, "campaign cannot be sent in its current status")
	case errors.Is(err, sending.ErrScheduledAttachments):
		httputil.BadRequest(w, "scheduled campaigns cannot have attachments")
	case errors.Is(err, sending.ErrEmptyAudience):
		httputil.BadRequest(w, "no deliverable recipients after filtering")
	case errors.Is(err, audience.ErrSegmentNotFound):
		httputil.BadRequest(w, "campaign references a segment that no longer exists")
	default:
		httputil.InternalError(w, err)
	}
}
