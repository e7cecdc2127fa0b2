package api

import (
	"context"
	"net/http"

	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/pkg/httputil"
	"github.com/bde-platform/mailer/internal/service/campaign"
	"github.com/bde-platform/mailer/internal/service/sending"
	"github.com/bde-platform/mailer/internal/service/unsubscribe"
	"github.com/bde-platform/mailer/internal/templates"
)

// ContactStore is the contact persistence the API needs.
type ContactStore interface {
	Upsert(ctx context.Context, c *domain.Contact) error
	List(ctx context.Context, limit, offset int) ([]domain.Contact, int, error)
	Delete(ctx context.Context, id string) error
	Match(ctx context.Context, q domain.SegmentQuery) ([]domain.Contact, error)
}

// SegmentStore is the segment persistence the API needs.
type SegmentStore interface {
	Get(ctx context.Context, id string) (*domain.Segment, error)
	List(ctx context.Context) ([]domain.Segment, error)
	Create(ctx context.Context, s *domain.Segment) error
	Update(ctx context.Context, s *domain.Segment) error
	Delete(ctx context.Context, id string) error
}

// Handlers bundles the services behind the HTTP layer.
type Handlers struct {
	campaigns *campaign.Service
	sender    *sending.Service
	contacts  ContactStore
	segments  SegmentStore
	unsubs    *unsubscribe.Service
	templates *templates.Engine
}

// NewHandlers wires the handler set.
func NewHandlers(
	campaigns *campaign.Service,
	sender *sending.Service,
	contacts ContactStore,
	segments SegmentStore,
	unsubs *unsubscribe.Service,
	tpl *templates.Engine,
) *Handlers {
	return &Handlers{
		campaigns: campaigns,
		sender:    sender,
		contacts:  contacts,
		segments:  segments,
		unsubs:    unsubs,
		templates: tpl,
	}
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}
