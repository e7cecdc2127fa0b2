package campaign

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/pkg/logger"
)

// Service implements campaign lifecycle operations on top of a Repository.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates a campaign service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.With("campaign"),
	}
}

// CreateInput carries the editable fields of a new campaign.
type CreateInput struct {
	Name        string
	Subject     string
	HTMLContent string
	TextContent string
	Recipients  []string
	SegmentID   *string
	Attachments []domain.Attachment
	ScheduledAt *time.Time
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Subject) == "" {
		return ErrMissingSubject
	}
	if strings.TrimSpace(in.HTMLContent) == "" && strings.TrimSpace(in.TextContent) == "" {
		return ErrMissingContent
	}
	if len(in.Recipients) == 0 && (in.SegmentID == nil || *in.SegmentID == "") {
		return ErrNoAudience
	}
	return nil
}

// Create stores a new draft campaign owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*domain.Campaign, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &domain.Campaign{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        in.Name,
		Subject:     in.Subject,
		HTMLContent: in.HTMLContent,
		TextContent: in.TextContent,
		Recipients:  in.Recipients,
		SegmentID:   in.SegmentID,
		Attachments: in.Attachments,
		Status:      domain.CampaignDraft,
		ScheduledAt: in.ScheduledAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Name == "" {
		c.Name = c.Subject
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("campaign created", "campaign_id", c.ID, "owner_id", ownerID)
	return c, nil
}

// Get returns a campaign after checking ownership.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*domain.Campaign, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return c, nil
}

// List returns all campaigns owned by ownerID, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.Campaign, error) {
	return s.repo.List(ctx, ownerID)
}

// Update replaces the editable fields of a draft campaign. Campaigns
// that have left draft status are frozen.
func (s *Service) Update(ctx context.Context, ownerID, id string, in CreateInput) (*domain.Campaign, error) {
	c, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.CampaignDraft {
		return nil, ErrNotEditable
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	c.Name = in.Name
	c.Subject = in.Subject
	c.HTMLContent = in.HTMLContent
	c.TextContent = in.TextContent
	c.Recipients = in.Recipients
	c.SegmentID = in.SegmentID
	c.Attachments = in.Attachments
	c.ScheduledAt = in.ScheduledAt
	c.UpdatedAt = time.Now().UTC()
	if c.Name == "" {
		c.Name = c.Subject
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Archive moves a campaign to archived status. Only draft and sent
// campaigns can be archived.
func (s *Service) Archive(ctx context.Context, ownerID, id string) error {
	c, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !domain.CanTransition(c.Status, domain.CampaignArchived) {
		return ErrInvalidTransition
	}
	return s.repo.TransitionStatus(ctx, id, c.Status, domain.CampaignArchived)
}

// Delete removes a draft campaign permanently. Non-draft campaigns are
// archived instead of deleted to preserve send history.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	c, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if c.Status != domain.CampaignDraft {
		return s.Archive(ctx, ownerID, id)
	}
	return s.repo.Delete(ctx, id)
}
