package resend

import (
	"context"
	"time"

	"github.com/bde-platform/mailer/internal/domain"
)

// SendMessage delivers a single fully-resolved message and reports the
// provider outcome.
func (c *Client) SendMessage(ctx context.Context, msg domain.EmailMessage) (*domain.SendResult, error) {
	id, err := c.Send(ctx, FromMessage(msg))
	if err != nil {
		return nil, err
	}
	return &domain.SendResult{
		Success:   true,
		MessageID: id,
		SentAt:    time.Now().UTC(),
	}, nil
}

// SendMessages delivers a chunk of resolved messages through the batch
// endpoint. Results are returned in submission order; a provider error
// fails the whole chunk.
func (c *Client) SendMessages(ctx context.Context, msgs []domain.EmailMessage) ([]domain.SendResult, error) {
	reqs := make([]SendRequest, 0, len(msgs))
	for _, m := range msgs {
		reqs = append(reqs, FromMessage(m))
	}
	ids, err := c.SendBatch(ctx, reqs)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	results := make([]domain.SendResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, domain.SendResult{
			Success:   true,
			MessageID: id,
			SentAt:    now,
		})
	}
	return results, nil
}
