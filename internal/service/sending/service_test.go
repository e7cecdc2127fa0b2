package sending_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bde-platform/mailer/internal/audience"
	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/personalize"
	"github.com/bde-platform/mailer/internal/pkg/distlock"
	"github.com/bde-platform/mailer/internal/service/campaign"
	"github.com/bde-platform/mailer/internal/service/sending"
)

type fakeStore struct {
	mu            sync.Mutex
	campaign      *domain.Campaign
	completeCalls int
}

func (s *fakeStore) Get(_ context.Context, id string) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.campaign == nil || s.campaign.ID != id {
		return nil, campaign.ErrNotFound
	}
	cp := *s.campaign
	return &cp, nil
}

func (s *fakeStore) TransitionStatus(_ context.Context, id string, from, to domain.CampaignStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.campaign == nil || s.campaign.ID != id {
		return campaign.ErrNotFound
	}
	if s.campaign.Status != from {
		return campaign.ErrStatusConflict
	}
	s.campaign.Status = to
	return nil
}

func (s *fakeStore) CompleteSend(_ context.Context, id string, status domain.CampaignStatus, sentAt *time.Time, sentCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completeCalls++
	s.campaign.Status = status
	s.campaign.SentAt = sentAt
	s.campaign.SentCount = sentCount
	return nil
}

func (s *fakeStore) status() domain.CampaignStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.campaign.Status
}

type fakeResolver struct {
	aud *audience.Audience
	err error
}

func (r *fakeResolver) Resolve(_ context.Context, _ *domain.Campaign) (*audience.Audience, error) {
	return r.aud, r.err
}

type fakeProvider struct {
	mu           sync.Mutex
	batchChunks  [][]domain.EmailMessage
	unitarySends []domain.EmailMessage
	failChunks   map[int]bool
	failEmails   map[string]bool
}

func (p *fakeProvider) SendMessage(_ context.Context, msg domain.EmailMessage) (*domain.SendResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unitarySends = append(p.unitarySends, msg)
	if p.failEmails[msg.To] {
		return nil, errors.New("provider rejected message")
	}
	return &domain.SendResult{Success: true, MessageID: "msg-" + msg.To}, nil
}

func (p *fakeProvider) SendMessages(_ context.Context, msgs []domain.EmailMessage) ([]domain.SendResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := len(p.batchChunks)
	p.batchChunks = append(p.batchChunks, msgs)
	if p.failChunks[idx] {
		return nil, errors.New("provider rejected chunk")
	}
	results := make([]domain.SendResult, len(msgs))
	for i := range results {
		results[i] = domain.SendResult{Success: true, MessageID: fmt.Sprintf("msg-%d-%d", idx, i)}
	}
	return results, nil
}

func (p *fakeProvider) calls() (batches, unitary int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.batchChunks), len(p.unitarySends)
}

type fakeLock struct {
	mu       sync.Mutex
	held     bool
	acquires int
	releases int
}

func (l *fakeLock) Acquire(_ context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquires++
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Release(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releases++
	l.held = false
	return nil
}

type fakeContacts map[string]*domain.Contact

func (f fakeContacts) GetByEmails(_ context.Context, emails []string) (map[string]*domain.Contact, error) {
	return f, nil
}

func emailsOf(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("etudiant%d@example.com", i)
	}
	return out
}

func audienceOf(emails []string) *audience.Audience {
	return &audience.Audience{
		Emails:     emails,
		Contacts:   map[string]*domain.Contact{},
		Candidates: len(emails),
	}
}

func draftCampaign(recipients []string) *domain.Campaign {
	return &domain.Campaign{
		ID:          "camp-1",
		OwnerID:     "owner-1",
		Subject:     "Soirée BDE",
		HTMLContent: "<p>Bonjour {{firstName}}</p>",
		Recipients:  recipients,
		Status:      domain.CampaignDraft,
	}
}

type fixture struct {
	store    *fakeStore
	provider *fakeProvider
	lock     *fakeLock
	svc      *sending.Service
}

func newFixture(c *domain.Campaign, aud *audience.Audience) *fixture {
	f := &fixture{
		store:    &fakeStore{campaign: c},
		provider: &fakeProvider{},
		lock:     &fakeLock{},
	}
	renderer := personalize.New("https://bde.example.com", "BDE <contact@bde.example.com>")
	f.svc = sending.NewService(
		f.store,
		fakeContacts{},
		&fakeResolver{aud: aud},
		renderer,
		f.provider,
		func(string) distlock.Lock { return f.lock },
		100,
	)
	return f
}

func TestSendImmediateBatchesInChunksOf100(t *testing.T) {
	emails := emailsOf(150)
	f := newFixture(draftCampaign(emails), audienceOf(emails))

	summary, err := f.svc.Send(context.Background(), "owner-1", "camp-1")
	require.NoError(t, err)

	assert.Equal(t, 150, summary.SentCount)
	assert.Equal(t, 2, summary.Chunks)
	assert.Equal(t, domain.CampaignSent, summary.Status)

	require.Len(t, f.provider.batchChunks, 2)
	assert.Len(t, f.provider.batchChunks[0], 100)
	assert.Len(t, f.provider.batchChunks[1], 50)
	assert.Empty(t, f.provider.unitarySends)

	// Submission order is the audience order.
	assert.Equal(t, "etudiant0@example.com", f.provider.batchChunks[0][0].To)
	assert.Equal(t, "etudiant100@example.com", f.provider.batchChunks[1][0].To)

	assert.Equal(t, domain.CampaignSent, f.store.status())
	assert.NotNil(t, f.store.campaign.SentAt)
	assert.Equal(t, 150, f.store.campaign.SentCount)
	assert.Equal(t, 1, f.store.completeCalls)
	assert.Equal(t, 1, f.lock.releases)
}

func TestSendScheduledUsesUnitaryPath(t *testing.T) {
	emails := emailsOf(3)
	c := draftCampaign(emails)
	at := time.Now().Add(24 * time.Hour).UTC()
	c.ScheduledAt = &at
	f := newFixture(c, audienceOf(emails))

	summary, err := f.svc.Send(context.Background(), "owner-1", "camp-1")
	require.NoError(t, err)

	assert.Equal(t, domain.CampaignScheduled, summary.Status)
	assert.Equal(t, 3, summary.SentCount)

	batches, unitary := f.provider.calls()
	assert.Zero(t, batches)
	assert.Equal(t, 3, unitary)
	for _, msg := range f.provider.unitarySends {
		require.NotNil(t, msg.ScheduledAt)
		assert.Equal(t, at, *msg.ScheduledAt)
	}
	assert.Equal(t, domain.CampaignScheduled, f.store.status())
	assert.Nil(t, f.store.campaign.SentAt)
}

func TestSendAttachmentsUseUnitaryPath(t *testing.T) {
	emails := emailsOf(2)
	c := draftCampaign(emails)
	c.Attachments = []domain.Attachment{{URL: "https://files.example.com/affiche.pdf", Name: "affiche.pdf"}}
	f := newFixture(c, audienceOf(emails))

	summary, err := f.svc.Send(context.Background(), "owner-1", "camp-1")
	require.NoError(t, err)

	batches, unitary := f.provider.calls()
	assert.Zero(t, batches)
	assert.Equal(t, 2, unitary)
	assert.Equal(t, domain.CampaignSent, summary.Status)
}

func TestSendScheduledWithAttachmentsRejectedBeforeProvider(t *testing.T) {
	emails := emailsOf(2)
	c := draftCampaign(emails)
	at := time.Now().Add(time.Hour).UTC()
	c.ScheduledAt = &at
	c.Attachments = []domain.Attachment{{URL: "https://files.example.com/affiche.pdf", Name: "affiche.pdf"}}
	f := newFixture(c, audienceOf(emails))

	_, err := f.svc.Send(context.Background(), "owner-1", "camp-1")
	assert.ErrorIs(t, err, sending.ErrScheduledAttachments)

	batches, unitary := f.provider.calls()
	assert.Zero(t, batches)
	assert.Zero(t, unitary)
	assert.Equal(t, domain.CampaignDraft, f.store.status())
	assert.Zero(t, f.lock.acquires)
}

func TestSendAlreadySentRejected(t *testing.T) {
	emails := emailsOf(1)
	c := draftCampaign(emails)
	c.Status = domain.CampaignSent
	f := newFixture(c, audienceOf(emails))

	_, err := f.svc.Send(context.Background(), "owner-1", "camp-1")
	assert.ErrorIs(t, err, sending.ErrAlreadySent)

	batches, unitary := f.provider.calls()
	assert.Zero(t, batches)
	assert.Zero(t, unitary)
}

func TestSendNotOwnerRejected(t *testing.T) {
	emails := emailsOf(1)
	f := newFixture(draftCampaign(emails), audienceOf(emails))

	_, err := f.svc.Send(context.Background(), "owner-2", "camp-1")
	assert.ErrorIs(t, err, campaign.ErrNotOwner)
}

func TestSendLockContention(t *testing.T) {
	emails := emailsOf(1)
	f := newFixture(draftCampaign(emails), audienceOf(emails))
	f.lock.held = true

	_, err := f.svc.Send(context.Background(), "owner-1", "camp-1")
	assert.ErrorIs(t, err, sending.ErrAlreadySending)

	batches, unitary := f.provider.calls()
	assert.Zero(t, batches)
	assert.Zero(t, unitary)
	assert.Equal(t, domain.CampaignDraft, f.store.status())
}

// staleReadStore simulates another process claiming the campaign between
// the precondition read and the compare-and-swap.
type staleReadStore struct {
	*fakeStore
}

func (s *staleReadStore) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	c, err := s.fakeStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Status = domain.CampaignDraft
	return c, nil
}

func TestSendClaimRaceMapsToAlreadySending(t *testing.T) {
	emails := emailsOf(1)
	c := draftCampaign(emails)
	c.Status = domain.CampaignSending
	f := newFixture(c, audienceOf(emails))
	svc := sending.NewService(
		&staleReadStore{f.store},
		fakeContacts{},
		&fakeResolver{aud: audienceOf(emails)},
		personalize.New("https://bde.example.com", "BDE <contact@bde.example.com>"),
		f.provider,
		func(string) distlock.Lock { return f.lock },
		100,
	)

	_, err := svc.Send(context.Background(), "owner-1", "camp-1")
	assert.ErrorIs(t, err, sending.ErrAlreadySending)

	batches, unitary := f.provider.calls()
	assert.Zero(t, batches)
	assert.Zero(t, unitary)
}

func TestSendPartialChunkFailureKeepsGoing(t *testing.T) {
	emails := emailsOf(250)
	f := newFixture(draftCampaign(emails), audienceOf(emails))
	f.provider.failChunks = map[int]bool{1: true}

	summary, err := f.svc.Send(context.Background(), "owner-1", "camp-1")
	require.NoError(t, err)

	// Chunk 2 of 3 failed: 100 + 0 + 50 acknowledged.
	assert.Equal(t, 150, summary.SentCount)
	assert.Equal(t, 3, summary.Chunks)
	assert.Equal(t, domain.CampaignSent, f.store.status())
	assert.Equal(t, 150, f.store.campaign.SentCount)
	require.Len(t, f.provider.batchChunks, 3)
}

func TestSendUnitaryCountsOnlyAcknowledged(t *testing.T) {
	emails := emailsOf(5)
	c := draftCampaign(emails)
	at := time.Now().Add(time.Hour).UTC()
	c.ScheduledAt = &at
	f := newFixture(c, audienceOf(emails))
	f.provider.failEmails = map[string]bool{
		"etudiant1@example.com": true,
		"etudiant3@example.com": true,
	}

	summary, err := f.svc.Send(context.Background(), "owner-1", "camp-1")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.SentCount)
	_, unitary := f.provider.calls()
	assert.Equal(t, 5, unitary)
	assert.Equal(t, 3, f.store.campaign.SentCount)
}

func TestSendResolveFailureRollsBackToDraft(t *testing.T) {
	emails := emailsOf(1)
	f := newFixture(draftCampaign(emails), audienceOf(emails))
	svc := sending.NewService(
		f.store,
		fakeContacts{},
		&fakeResolver{err: audience.ErrSegmentNotFound},
		personalize.New("https://bde.example.com", "BDE <contact@bde.example.com>"),
		f.provider,
		func(string) distlock.Lock { return f.lock },
		100,
	)

	_, err := svc.Send(context.Background(), "owner-1", "camp-1")
	assert.ErrorIs(t, err, audience.ErrSegmentNotFound)

	assert.Equal(t, domain.CampaignDraft, f.store.status())
	assert.Zero(t, f.store.completeCalls)
	assert.Equal(t, 1, f.lock.releases)
}

func TestSendEmptyAudienceRollsBack(t *testing.T) {
	f := newFixture(draftCampaign([]string{"a@example.com"}), audienceOf(nil))

	_, err := f.svc.Send(context.Background(), "owner-1", "camp-1")
	assert.ErrorIs(t, err, sending.ErrEmptyAudience)
	assert.Equal(t, domain.CampaignDraft, f.store.status())
}

func TestSendExcludesRenderFailures(t *testing.T) {
	emails := []string{"ok@example.com", "pas-une-adresse"}
	f := newFixture(draftCampaign(emails), audienceOf(emails))

	summary, err := f.svc.Send(context.Background(), "owner-1", "camp-1")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SentCount)
	require.Len(t, summary.RenderFailures, 1)
	assert.Equal(t, "pas-une-adresse", summary.RenderFailures[0].Email)
	require.Len(t, f.provider.batchChunks, 1)
	assert.Equal(t, "ok@example.com", f.provider.batchChunks[0][0].To)
}

func TestPreviewDoesNotTouchStatusOrProvider(t *testing.T) {
	emails := emailsOf(1)
	f := newFixture(draftCampaign(emails), audienceOf(emails))

	msg, err := f.svc.Preview(context.Background(), "owner-1", "camp-1", "jean@example.com")
	require.NoError(t, err)

	assert.Equal(t, "jean@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Soirée BDE")
	batches, unitary := f.provider.calls()
	assert.Zero(t, batches)
	assert.Zero(t, unitary)
	assert.Equal(t, domain.CampaignDraft, f.store.status())
}
