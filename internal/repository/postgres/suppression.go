package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/suppression"
)

// SuppressionRepo implements audience.SuppressionRepository and the
// unsubscribe service repository. Addresses are stored normalized.
type SuppressionRepo struct{ db *sql.DB }

// NewSuppressionRepo creates a Postgres-backed suppression repository.
func NewSuppressionRepo(db *sql.DB) *SuppressionRepo { return &SuppressionRepo{db: db} }

// UnsubscribedAmong returns the subset of emails on the suppression list.
func (r *SuppressionRepo) UnsubscribedAmong(ctx context.Context, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		normalized = append(normalized, suppression.Normalize(e))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT email FROM unsubscribed_recipients WHERE email = ANY($1)
	`, pq.Array(normalized))
	if err != nil {
		return nil, fmt.Errorf("query suppressions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan suppression: %w", err)
		}
		out = append(out, email)
	}
	return out, rows.Err()
}

// Add puts an address on the suppression list and flags the matching
// contact, if any, in the same transaction. Adding an address twice is a
// no-op that keeps the original source.
func (r *SuppressionRepo) Add(ctx context.Context, email string, source domain.UnsubscribeSource) error {
	email = suppression.Normalize(email)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO unsubscribed_recipients (email, source, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (email) DO NOTHING
	`, email, source); err != nil {
		return fmt.Errorf("add suppression: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE contacts SET unsubscribed = TRUE, updated_at = NOW()
		WHERE LOWER(email) = $1
	`, email); err != nil {
		return fmt.Errorf("flag contact: %w", err)
	}
	return tx.Commit()
}

// Remove takes an address off the suppression list and clears the contact
// flag.
func (r *SuppressionRepo) Remove(ctx context.Context, email string) error {
	email = suppression.Normalize(email)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM unsubscribed_recipients WHERE email = $1
	`, email); err != nil {
		return fmt.Errorf("remove suppression: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE contacts SET unsubscribed = FALSE, updated_at = NOW()
		WHERE LOWER(email) = $1
	`, email); err != nil {
		return fmt.Errorf("unflag contact: %w", err)
	}
	return tx.Commit()
}

// List returns every suppressed address, newest first.
func (r *SuppressionRepo) List(ctx context.Context) ([]domain.UnsubscribedRecipient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT email, source, created_at
		FROM unsubscribed_recipients
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list suppressions: %w", err)
	}
	defer rows.Close()

	var out []domain.UnsubscribedRecipient
	for rows.Next() {
		var u domain.UnsubscribedRecipient
		if err := rows.Scan(&u.Email, &u.Source, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan suppression: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
