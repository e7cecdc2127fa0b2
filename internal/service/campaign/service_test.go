package campaign_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/service/campaign"
)

type memRepo struct {
	mu        sync.Mutex
	campaigns map[string]*domain.Campaign
}

func newMemRepo() *memRepo {
	return &memRepo{campaigns: make(map[string]*domain.Campaign)}
}

func (r *memRepo) Create(_ context.Context, c *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

func (r *memRepo) Get(_ context.Context, id string) (*domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, campaign.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memRepo) List(_ context.Context, ownerID string) ([]domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Campaign
	for _, c := range r.campaigns {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memRepo) Update(_ context.Context, c *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[c.ID]; !ok {
		return campaign.ErrNotFound
	}
	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[id]; !ok {
		return campaign.ErrNotFound
	}
	delete(r.campaigns, id)
	return nil
}

func (r *memRepo) TransitionStatus(_ context.Context, id string, from, to domain.CampaignStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return campaign.ErrNotFound
	}
	if c.Status != from {
		return campaign.ErrStatusConflict
	}
	c.Status = to
	return nil
}

func (r *memRepo) CompleteSend(_ context.Context, id string, status domain.CampaignStatus, sentAt *time.Time, sentCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return campaign.ErrNotFound
	}
	c.Status = status
	c.SentAt = sentAt
	c.SentCount = sentCount
	return nil
}

func validInput() campaign.CreateInput {
	return campaign.CreateInput{
		Name:        "Soirée d'intégration",
		Subject:     "Soirée d'intégration vendredi",
		HTMLContent: "<p>Bonjour {{firstName}}</p>",
		Recipients:  []string{"jean@example.com"},
	}
}

func TestCreateCampaign(t *testing.T) {
	svc := campaign.NewService(newMemRepo())

	c, err := svc.Create(context.Background(), "owner-1", validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, domain.CampaignDraft, c.Status)
	assert.Equal(t, "owner-1", c.OwnerID)
}

func TestCreateCampaignValidation(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	ctx := context.Background()

	in := validInput()
	in.Subject = "  "
	_, err := svc.Create(ctx, "owner-1", in)
	assert.ErrorIs(t, err, campaign.ErrMissingSubject)

	in = validInput()
	in.HTMLContent = ""
	in.TextContent = ""
	_, err = svc.Create(ctx, "owner-1", in)
	assert.ErrorIs(t, err, campaign.ErrMissingContent)

	in = validInput()
	in.Recipients = nil
	in.SegmentID = nil
	_, err = svc.Create(ctx, "owner-1", in)
	assert.ErrorIs(t, err, campaign.ErrNoAudience)
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, "owner-1", validInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, "owner-2", c.ID)
	assert.ErrorIs(t, err, campaign.ErrNotOwner)

	got, err := svc.Get(ctx, "owner-1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestUpdateFrozenAfterDraft(t *testing.T) {
	repo := newMemRepo()
	svc := campaign.NewService(repo)
	ctx := context.Background()

	c, err := svc.Create(ctx, "owner-1", validInput())
	require.NoError(t, err)

	require.NoError(t, repo.TransitionStatus(ctx, c.ID, domain.CampaignDraft, domain.CampaignSent))

	_, err = svc.Update(ctx, "owner-1", c.ID, validInput())
	assert.ErrorIs(t, err, campaign.ErrNotEditable)
}

func TestArchiveTransitions(t *testing.T) {
	repo := newMemRepo()
	svc := campaign.NewService(repo)
	ctx := context.Background()

	c, err := svc.Create(ctx, "owner-1", validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Archive(ctx, "owner-1", c.ID))
	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignArchived, got.Status)

	// Archived is terminal.
	err = svc.Archive(ctx, "owner-1", c.ID)
	assert.ErrorIs(t, err, campaign.ErrInvalidTransition)
}

func TestDeleteKeepsSendHistory(t *testing.T) {
	repo := newMemRepo()
	svc := campaign.NewService(repo)
	ctx := context.Background()

	draft, err := svc.Create(ctx, "owner-1", validInput())
	require.NoError(t, err)
	sent, err := svc.Create(ctx, "owner-1", validInput())
	require.NoError(t, err)
	require.NoError(t, repo.TransitionStatus(ctx, sent.ID, domain.CampaignDraft, domain.CampaignSent))

	require.NoError(t, svc.Delete(ctx, "owner-1", draft.ID))
	_, err = repo.Get(ctx, draft.ID)
	assert.ErrorIs(t, err, campaign.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "owner-1", sent.ID))
	got, err := repo.Get(ctx, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignArchived, got.Status)
}
