package sending

import (
	"context"
	"errors"
	"time"

	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/personalize"
	"github.com/bde-platform/mailer/internal/pkg/logger"
	"github.com/bde-platform/mailer/internal/service/campaign"
	"github.com/bde-platform/mailer/internal/suppression"
)

// Summary reports the outcome of one campaign send.
type Summary struct {
	CampaignID     string                      `json:"campaign_id"`
	Status         domain.CampaignStatus       `json:"status"`
	Candidates     int                         `json:"candidates"`
	Duplicates     int                         `json:"duplicates"`
	Suppressed     int                         `json:"suppressed"`
	Deliverable    int                         `json:"deliverable"`
	RenderFailures []personalize.RenderFailure `json:"-"`
	RenderFailed   int                         `json:"render_failures"`
	SentCount      int                         `json:"sent_count"`
	Chunks         int                         `json:"chunks,omitempty"`
}

// Service orchestrates the send pipeline.
type Service struct {
	campaigns CampaignStore
	contacts  ContactLookup
	resolver  Resolver
	renderer  Renderer
	provider  Provider
	locks     LockFactory
	batchSize int
	log       *logger.Logger
}

// ContactLookup fetches contacts by email for message previews.
type ContactLookup interface {
	GetByEmails(ctx context.Context, emails []string) (map[string]*domain.Contact, error)
}

// NewService wires the pipeline. batchSize caps how many messages go into
// one provider batch call; values below 1 fall back to 100.
func NewService(campaigns CampaignStore, contacts ContactLookup, resolver Resolver, renderer Renderer, provider Provider, locks LockFactory, batchSize int) *Service {
	if batchSize < 1 {
		batchSize = 100
	}
	return &Service{
		campaigns: campaigns,
		contacts:  contacts,
		resolver:  resolver,
		renderer:  renderer,
		provider:  provider,
		locks:     locks,
		batchSize: batchSize,
		log:       logger.With("sending"),
	}
}

// SendLockTTL bounds how long a crashed sender can block a campaign.
// Wiring passes it to the lock factory.
const SendLockTTL = 10 * time.Minute

// Send runs the full pipeline for one campaign on behalf of callerID.
// All precondition failures surface before any provider call.
func (s *Service) Send(ctx context.Context, callerID, campaignID string) (*Summary, error) {
	c, err := s.campaigns.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != callerID {
		return nil, campaign.ErrNotOwner
	}
	if err := checkSendable(c); err != nil {
		return nil, err
	}

	lock := s.locks("campaign-send:" + campaignID)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrAlreadySending
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("releasing send lock", "campaign_id", campaignID, "error", err)
		}
	}()

	if err := s.campaigns.TransitionStatus(ctx, campaignID, domain.CampaignDraft, domain.CampaignSending); err != nil {
		if errors.Is(err, campaign.ErrStatusConflict) {
			return nil, ErrAlreadySending
		}
		return nil, err
	}

	summary, dispatched, err := s.deliver(ctx, c)
	if err != nil {
		// Roll back to draft only when no provider call was made, so the
		// send can be retried safely.
		if !dispatched {
			if rbErr := s.campaigns.TransitionStatus(context.WithoutCancel(ctx), campaignID, domain.CampaignSending, domain.CampaignDraft); rbErr != nil {
				s.log.Error("rolling back campaign status", "campaign_id", campaignID, "error", rbErr)
			}
		}
		return nil, err
	}
	return summary, nil
}

func checkSendable(c *domain.Campaign) error {
	switch c.Status {
	case domain.CampaignDraft:
	case domain.CampaignSent:
		return ErrAlreadySent
	case domain.CampaignSending:
		return ErrAlreadySending
	default:
		return ErrNotSendable
	}
	if c.IsScheduled() && len(c.Attachments) > 0 {
		return ErrScheduledAttachments
	}
	return nil
}

func (s *Service) deliver(ctx context.Context, c *domain.Campaign) (*Summary, bool, error) {
	aud, err := s.resolver.Resolve(ctx, c)
	if err != nil {
		return nil, false, err
	}
	if len(aud.Emails) == 0 {
		return nil, false, ErrEmptyAudience
	}

	messages, failures := s.renderer.RenderAll(c, aud.Emails, aud.Contacts)
	for _, f := range failures {
		s.log.Warn("recipient excluded from send",
			"campaign_id", c.ID,
			"email", logger.RedactEmail(f.Email),
			"error", f.Err)
	}
	if len(messages) == 0 {
		return nil, false, ErrEmptyAudience
	}

	summary := &Summary{
		CampaignID:     c.ID,
		Candidates:     aud.Candidates,
		Duplicates:     aud.Duplicates,
		Suppressed:     aud.Suppressed,
		Deliverable:    len(aud.Emails),
		RenderFailures: failures,
		RenderFailed:   len(failures),
	}

	// The strategy is fixed once per campaign: the batch endpoint accepts
	// neither scheduled_at nor attachments.
	useBatch := !c.IsScheduled() && len(c.Attachments) == 0
	if useBatch {
		summary.SentCount, summary.Chunks = s.dispatchBatch(ctx, c.ID, messages)
	} else {
		summary.SentCount = s.dispatchUnitary(ctx, c.ID, messages)
	}

	finalStatus := domain.CampaignSent
	var sentAt *time.Time
	if c.IsScheduled() {
		finalStatus = domain.CampaignScheduled
	} else {
		now := time.Now().UTC()
		sentAt = &now
	}
	if err := s.campaigns.CompleteSend(ctx, c.ID, finalStatus, sentAt, summary.SentCount); err != nil {
		return nil, true, err
	}
	summary.Status = finalStatus

	s.log.Info("campaign dispatched",
		"campaign_id", c.ID,
		"status", string(finalStatus),
		"deliverable", summary.Deliverable,
		"sent", summary.SentCount,
		"suppressed", summary.Suppressed,
		"duplicates", summary.Duplicates,
		"render_failures", len(failures))
	return summary, true, nil
}

// Preview renders the campaign for one recipient without sending anything
// or touching campaign status.
func (s *Service) Preview(ctx context.Context, callerID, campaignID, email string) (domain.EmailMessage, error) {
	c, err := s.campaigns.Get(ctx, campaignID)
	if err != nil {
		return domain.EmailMessage{}, err
	}
	if c.OwnerID != callerID {
		return domain.EmailMessage{}, campaign.ErrNotOwner
	}
	contacts, err := s.contacts.GetByEmails(ctx, []string{email})
	if err != nil {
		return domain.EmailMessage{}, err
	}
	return s.renderer.Render(c, email, contacts[suppression.Normalize(email)])
}
