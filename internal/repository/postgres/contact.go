package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bde-platform/mailer/internal/audience"
	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/suppression"
)

// ErrContactNotFound is returned when a contact id does not exist.
var ErrContactNotFound = errors.New("contact not found")

// ContactRepo implements audience.ContactRepository plus the CRUD surface
// used by the contacts API.
type ContactRepo struct{ db *sql.DB }

// NewContactRepo creates a Postgres-backed contact repository.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

// Match runs the compiled segment query.
func (r *ContactRepo) Match(ctx context.Context, q domain.SegmentQuery) ([]domain.Contact, error) {
	query, args := audience.BuildContactQuery(q)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("match contacts: %w", err)
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		var (
			c     domain.Contact
			props []byte
		)
		if err := rows.Scan(&c.ID, &c.Email, &c.FirstName, &c.LastName, &props, &c.Unsubscribed); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		if err := decodeProperties(props, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByEmails returns the known contacts among emails, keyed by normalized
// address. Unknown addresses are absent from the map.
func (r *ContactRepo) GetByEmails(ctx context.Context, emails []string) (map[string]*domain.Contact, error) {
	if len(emails) == 0 {
		return map[string]*domain.Contact{}, nil
	}
	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		normalized = append(normalized, suppression.Normalize(e))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, first_name, last_name, properties, unsubscribed
		FROM contacts
		WHERE LOWER(email) = ANY($1)
	`, pq.Array(normalized))
	if err != nil {
		return nil, fmt.Errorf("get contacts by email: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*domain.Contact)
	for rows.Next() {
		var (
			c     domain.Contact
			props []byte
		)
		if err := rows.Scan(&c.ID, &c.Email, &c.FirstName, &c.LastName, &props, &c.Unsubscribed); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		if err := decodeProperties(props, &c); err != nil {
			return nil, err
		}
		out[suppression.Normalize(c.Email)] = &c
	}
	return out, rows.Err()
}

// Upsert inserts a contact or updates the existing row for the same
// address. Topic memberships are replaced wholesale.
func (r *ContactRepo) Upsert(ctx context.Context, c *domain.Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.Email = suppression.Normalize(c.Email)
	props, err := json.Marshal(c.Properties)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO contacts (id, email, first_name, last_name, properties, unsubscribed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    properties = EXCLUDED.properties,
		    updated_at = NOW()
		RETURNING id
	`, c.ID, c.Email, c.FirstName, c.LastName, props, c.Unsubscribed).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM contact_topics WHERE contact_id = $1`, c.ID); err != nil {
		return fmt.Errorf("clear topics: %w", err)
	}
	for _, topicID := range c.TopicIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO contact_topics (contact_id, topic_id) VALUES ($1, $2)
		`, c.ID, topicID); err != nil {
			return fmt.Errorf("add topic: %w", err)
		}
	}
	return tx.Commit()
}

// List returns a page of contacts ordered by email, with the total count.
func (r *ContactRepo) List(ctx context.Context, limit, offset int) ([]domain.Contact, int, error) {
	if limit <= 0 {
		limit = 50
	}
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, first_name, last_name, properties, unsubscribed, created_at, updated_at
		FROM contacts
		ORDER BY email
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		var (
			c     domain.Contact
			props []byte
		)
		if err := rows.Scan(&c.ID, &c.Email, &c.FirstName, &c.LastName, &props, &c.Unsubscribed, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan contact: %w", err)
		}
		if err := decodeProperties(props, &c); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Delete removes a contact and its topic memberships.
func (r *ContactRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrContactNotFound
	}
	return nil
}

// SetUnsubscribed flips the per-contact unsubscribe flag.
func (r *ContactRepo) SetUnsubscribed(ctx context.Context, email string, unsubscribed bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE contacts SET unsubscribed = $1, updated_at = NOW()
		WHERE LOWER(email) = $2
	`, unsubscribed, suppression.Normalize(email))
	if err != nil {
		return fmt.Errorf("set unsubscribed: %w", err)
	}
	return nil
}

func decodeProperties(raw []byte, c *domain.Contact) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &c.Properties); err != nil {
		return fmt.Errorf("decode properties: %w", err)
	}
	return nil
}
