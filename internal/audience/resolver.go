package audience

import (
	"context"
	"fmt"

	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/pkg/logger"
	"github.com/bde-platform/mailer/internal/suppression"
)

// Audience is a resolved, deduplicated, suppression-filtered recipient list
// plus the contact records needed for personalization.
type Audience struct {
	// Emails is the deliverable list, in resolution order.
	Emails []string
	// Contacts maps normalized email to contact. Manual recipients without
	// a contact record are absent.
	Contacts map[string]*domain.Contact

	// Counters for logging and the send summary.
	Candidates int
	Duplicates int
	Suppressed int
}

// Resolver determines the final recipient list for a campaign.
type Resolver struct {
	segments SegmentRepository
	contacts ContactRepository
	unsubs   SuppressionRepository
	log      *logger.Logger
}

// NewResolver creates a Resolver over the given repositories.
func NewResolver(segments SegmentRepository, contacts ContactRepository, unsubs SuppressionRepository) *Resolver {
	return &Resolver{
		segments: segments,
		contacts: contacts,
		unsubs:   unsubs,
		log:      logger.With("audience"),
	}
}

// Resolve produces the audience for a campaign. Dynamic and manual sources
// go through the same pipeline: dedupe by normalized email, then subtract
// the global unsubscribe list.
func (r *Resolver) Resolve(ctx context.Context, c *domain.Campaign) (*Audience, error) {
	var (
		candidates []string
		contacts   map[string]*domain.Contact
		err        error
	)

	if c.SegmentID != nil {
		candidates, contacts, err = r.resolveSegment(ctx, *c.SegmentID)
	} else {
		candidates = c.Recipients
		contacts, err = r.contacts.GetByEmails(ctx, c.Recipients)
	}
	if err != nil {
		return nil, err
	}

	a := &Audience{Contacts: contacts, Candidates: len(candidates)}

	deduped := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, email := range candidates {
		key := suppression.Normalize(email)
		if _, dup := seen[key]; dup {
			a.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, email)
	}

	unsubscribed, err := r.unsubs.UnsubscribedAmong(ctx, deduped)
	if err != nil {
		return nil, fmt.Errorf("load unsubscribe list: %w", err)
	}
	a.Emails, a.Suppressed = suppression.NewSet(unsubscribed).Filter(deduped)

	r.log.Info("audience resolved",
		"campaign_id", c.ID,
		"candidates", a.Candidates,
		"duplicates", a.Duplicates,
		"suppressed", a.Suppressed,
		"deliverable", len(a.Emails))
	return a, nil
}

func (r *Resolver) resolveSegment(ctx context.Context, segmentID string) ([]string, map[string]*domain.Contact, error) {
	seg, err := r.segments.Get(ctx, segmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("segment %s: %w", segmentID, err)
	}

	matched, err := r.contacts.Match(ctx, seg.Query)
	if err != nil {
		return nil, nil, fmt.Errorf("match segment %s: %w", segmentID, err)
	}

	emails := make([]string, 0, len(matched))
	contacts := make(map[string]*domain.Contact, len(matched))
	for i := range matched {
		c := matched[i]
		emails = append(emails, c.Email)
		contacts[suppression.Normalize(c.Email)] = &c
	}
	return emails, contacts, nil
}
