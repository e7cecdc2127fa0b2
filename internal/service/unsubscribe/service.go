// Package unsubscribe maintains the global suppression list. An address on
// the list is excluded from every campaign regardless of how the audience
// was selected.
package unsubscribe

import (
	"context"
	"errors"
	"strings"

	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/pkg/logger"
	"github.com/bde-platform/mailer/internal/suppression"
)

// ErrInvalidEmail is returned when the address is not plausibly an email.
var ErrInvalidEmail = errors.New("invalid email address")

// Repository persists the suppression list. Add is idempotent: adding an
// address already on the list succeeds without change. Implementations
// also flip the unsubscribed flag on a matching contact.
type Repository interface {
	Add(ctx context.Context, email string, source domain.UnsubscribeSource) error
	Remove(ctx context.Context, email string) error
	List(ctx context.Context) ([]domain.UnsubscribedRecipient, error)
}

// Service validates and records unsubscribe requests.
type Service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, log: logger.With("unsubscribe")}
}

// Unsubscribe adds an address to the global suppression list. The address
// is normalized before storage so later lookups match regardless of case.
func (s *Service) Unsubscribe(ctx context.Context, email string, source domain.UnsubscribeSource) error {
	email = suppression.Normalize(email)
	if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return ErrInvalidEmail
	}
	if err := s.repo.Add(ctx, email, source); err != nil {
		return err
	}
	s.log.Info("address unsubscribed", "email", logger.RedactEmail(email), "source", string(source))
	return nil
}

// Resubscribe removes an address from the suppression list.
func (s *Service) Resubscribe(ctx context.Context, email string) error {
	email = suppression.Normalize(email)
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return s.repo.Remove(ctx, email)
}

// List returns every suppressed address with its source and timestamp.
func (s *Service) List(ctx context.Context) ([]domain.UnsubscribedRecipient, error) {
	return s.repo.List(ctx)
}
