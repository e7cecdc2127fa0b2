package sending

import (
	"context"
	"time"

	"github.com/bde-platform/mailer/internal/audience"
	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/personalize"
	"github.com/bde-platform/mailer/internal/pkg/distlock"
)

// CampaignStore is the slice of campaign persistence the pipeline needs.
// Implementations return campaign.ErrStatusConflict when TransitionStatus
// loses a compare-and-swap race.
type CampaignStore interface {
	Get(ctx context.Context, id string) (*domain.Campaign, error)
	TransitionStatus(ctx context.Context, id string, from, to domain.CampaignStatus) error
	CompleteSend(ctx context.Context, id string, status domain.CampaignStatus, sentAt *time.Time, sentCount int) error
}

// Resolver turns a campaign into its deliverable audience.
type Resolver interface {
	Resolve(ctx context.Context, c *domain.Campaign) (*audience.Audience, error)
}

// Renderer builds per-recipient payloads for a campaign.
type Renderer interface {
	RenderAll(c *domain.Campaign, recipients []string, contacts map[string]*domain.Contact) ([]domain.EmailMessage, []personalize.RenderFailure)
	Render(c *domain.Campaign, email string, contact *domain.Contact) (domain.EmailMessage, error)
}

// Provider is the email delivery backend. SendMessages fails or succeeds
// as a whole chunk; SendMessage reports a single delivery.
type Provider interface {
	SendMessage(ctx context.Context, msg domain.EmailMessage) (*domain.SendResult, error)
	SendMessages(ctx context.Context, msgs []domain.EmailMessage) ([]domain.SendResult, error)
}

// LockFactory builds a distributed lock for a key. The campaign send
// pipeline locks on the campaign id.
type LockFactory func(key string) distlock.Lock
