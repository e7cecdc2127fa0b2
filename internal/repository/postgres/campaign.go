package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/service/campaign"
)

// CampaignRepo implements campaign.Repository and the campaign store used
// by the send pipeline.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

const campaignColumns = `id, owner_id, name, subject, html_content, text_content,
       recipients, segment_id, attachments, status, scheduled_at, sent_at,
       sent_count, open_count, click_count, created_at, updated_at`

func (r *CampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	attachments, err := json.Marshal(c.Attachments)
	if err != nil {
		return fmt.Errorf("encode attachments: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO campaigns
			(id, owner_id, name, subject, html_content, text_content,
			 recipients, segment_id, attachments, status, scheduled_at,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, c.ID, c.OwnerID, c.Name, c.Subject, c.HTMLContent, c.TextContent,
		pq.Array(c.Recipients), c.SegmentID, attachments, c.Status, c.ScheduledAt,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepo) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE id = $1
	`, id)
	c, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (r *CampaignRepo) List(ctx context.Context, ownerID string) ([]domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CampaignRepo) Update(ctx context.Context, c *domain.Campaign) error {
	attachments, err := json.Marshal(c.Attachments)
	if err != nil {
		return fmt.Errorf("encode attachments: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET name = $1, subject = $2, html_content = $3, text_content = $4,
		    recipients = $5, segment_id = $6, attachments = $7,
		    scheduled_at = $8, updated_at = $9
		WHERE id = $10
	`, c.Name, c.Subject, c.HTMLContent, c.TextContent,
		pq.Array(c.Recipients), c.SegmentID, attachments,
		c.ScheduledAt, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

func (r *CampaignRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

// TransitionStatus applies a compare-and-swap status update. The WHERE
// clause carries the expected status, so two concurrent claims cannot
// both succeed.
func (r *CampaignRepo) TransitionStatus(ctx context.Context, id string, from, to domain.CampaignStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return fmt.Errorf("transition status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM campaigns WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("transition status: %w", err)
	}
	if !exists {
		return campaign.ErrNotFound
	}
	return campaign.ErrStatusConflict
}

// CompleteSend records the final outcome of a send in one update.
func (r *CampaignRepo) CompleteSend(ctx context.Context, id string, status domain.CampaignStatus, sentAt *time.Time, sentCount int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET status = $1, sent_at = $2, sent_count = $3, updated_at = NOW()
		WHERE id = $4
	`, status, sentAt, sentCount, id)
	if err != nil {
		return fmt.Errorf("complete send: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	var (
		recipients  pq.StringArray
		attachments []byte
	)
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Subject, &c.HTMLContent, &c.TextContent,
		&recipients, &c.SegmentID, &attachments, &c.Status, &c.ScheduledAt, &c.SentAt,
		&c.SentCount, &c.OpenCount, &c.ClickCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Recipients = recipients
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &c.Attachments); err != nil {
			return nil, fmt.Errorf("decode attachments: %w", err)
		}
	}
	return c, nil
}
