package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/bde-platform/mailer/internal/audience"
	"github.com/bde-platform/mailer/internal/domain"
)

// SegmentRepo implements audience.SegmentRepository plus the CRUD surface
// used by the segments API.
type SegmentRepo struct{ db *sql.DB }

// NewSegmentRepo creates a Postgres-backed segment repository.
func NewSegmentRepo(db *sql.DB) *SegmentRepo { return &SegmentRepo{db: db} }

func (r *SegmentRepo) Get(ctx context.Context, id string) (*domain.Segment, error) {
	s := &domain.Segment{}
	var query []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, query, created_at, updated_at
		FROM segments
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &query, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, audience.ErrSegmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get segment: %w", err)
	}
	if err := json.Unmarshal(query, &s.Query); err != nil {
		return nil, fmt.Errorf("decode segment query: %w", err)
	}
	return s, nil
}

func (r *SegmentRepo) List(ctx context.Context) ([]domain.Segment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, query, created_at, updated_at
		FROM segments
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var out []domain.Segment
	for rows.Next() {
		var (
			s     domain.Segment
			query []byte
		)
		if err := rows.Scan(&s.ID, &s.Name, &query, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		if err := json.Unmarshal(query, &s.Query); err != nil {
			return nil, fmt.Errorf("decode segment query: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SegmentRepo) Create(ctx context.Context, s *domain.Segment) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	query, err := json.Marshal(s.Query)
	if err != nil {
		return fmt.Errorf("encode segment query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO segments (id, name, query, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`, s.ID, s.Name, query)
	if err != nil {
		return fmt.Errorf("create segment: %w", err)
	}
	return nil
}

func (r *SegmentRepo) Update(ctx context.Context, s *domain.Segment) error {
	query, err := json.Marshal(s.Query)
	if err != nil {
		return fmt.Errorf("encode segment query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE segments SET name = $1, query = $2, updated_at = NOW()
		WHERE id = $3
	`, s.Name, query, s.ID)
	if err != nil {
		return fmt.Errorf("update segment: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return audience.ErrSegmentNotFound
	}
	return nil
}

func (r *SegmentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM segments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete segment: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return audience.ErrSegmentNotFound
	}
	return nil
}
