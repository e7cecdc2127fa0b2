package campaign

import "errors"

var (
	// ErrNotFound is returned when the requested campaign does not exist.
	ErrNotFound = errors.New("campaign not found")

	// ErrNotOwner is returned when the caller does not own the campaign.
	ErrNotOwner = errors.New("campaign does not belong to caller")

	// ErrNotEditable is returned when content changes are attempted on a
	// campaign that has left draft status.
	ErrNotEditable = errors.New("campaign is no longer editable")

	// ErrInvalidTransition is returned when a status change is not allowed
	// by the campaign transition table.
	ErrInvalidTransition = errors.New("invalid campaign status transition")

	// ErrStatusConflict is returned when a compare-and-swap status update
	// finds the stored status differs from the expected one.
	ErrStatusConflict = errors.New("campaign status changed concurrently")

	// ErrMissingSubject is returned when a campaign is created or updated
	// without a subject line.
	ErrMissingSubject = errors.New("campaign subject is required")

	// ErrMissingContent is returned when a campaign has neither HTML nor
	// text content.
	ErrMissingContent = errors.New("campaign content is required")

	// ErrNoAudience is returned when a campaign names neither recipients
	// nor a segment.
	ErrNoAudience = errors.New("campaign needs recipients or a segment")
)
