package campaign

import (
	"context"
	"time"

	"github.com/bde-platform/mailer/internal/domain"
)

// Repository persists campaigns. Implementations return ErrNotFound when
// the campaign id does not exist and ErrStatusConflict when a
// compare-and-swap update loses a race.
type Repository interface {
	Create(ctx context.Context, c *domain.Campaign) error
	Get(ctx context.Context, id string) (*domain.Campaign, error)
	List(ctx context.Context, ownerID string) ([]domain.Campaign, error)
	Update(ctx context.Context, c *domain.Campaign) error
	Delete(ctx context.Context, id string) error

	// TransitionStatus atomically moves a campaign from one status to
	// another. The update only applies when the stored status equals from.
	TransitionStatus(ctx context.Context, id string, from, to domain.CampaignStatus) error

	// CompleteSend records the outcome of a send in a single update:
	// final status, optional sent timestamp and the provider-acknowledged
	// recipient count.
	CompleteSend(ctx context.Context, id string, status domain.CampaignStatus, sentAt *time.Time, sentCount int) error
}
