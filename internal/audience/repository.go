package audience

import (
	"context"
	"errors"

	"github.com/bde-platform/mailer/internal/domain"
)

// ErrSegmentNotFound is returned when a campaign references a segment that
// no longer exists. The send aborts instead of silently mailing nobody.
var ErrSegmentNotFound = errors.New("segment not found")

// SegmentRepository loads stored segment definitions.
type SegmentRepository interface {
	// Get returns a segment. Returns ErrSegmentNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Segment, error)
}

// ContactRepository provides contact lookups for audience resolution and
// personalization.
type ContactRepository interface {
	// Match returns all contacts satisfying the segment query.
	Match(ctx context.Context, q domain.SegmentQuery) ([]domain.Contact, error)

	// GetByEmails returns the contacts among the given addresses, keyed by
	// normalized email. Unknown addresses are simply absent from the map.
	GetByEmails(ctx context.Context, emails []string) (map[string]*domain.Contact, error)
}

// SuppressionRepository answers which of a set of candidate addresses are on
// the global unsubscribe list.
type SuppressionRepository interface {
	// UnsubscribedAmong returns the subset of emails present in the global
	// unsubscribe list. The query is scoped to exactly the candidates.
	UnsubscribedAmong(ctx context.Context, emails []string) ([]string, error)
}
