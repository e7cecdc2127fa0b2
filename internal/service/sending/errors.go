package sending

import "errors"

var (
	// ErrAlreadySent is returned when the campaign has already been sent.
	ErrAlreadySent = errors.New("campaign already sent")

	// ErrAlreadySending is returned when another process holds the send
	// lock or has already claimed the campaign for sending.
	ErrAlreadySending = errors.New("campaign send already in progress")

	// ErrNotSendable is returned when the campaign status does not allow
	// sending, for example an archived campaign.
	ErrNotSendable = errors.New("campaign cannot be sent in its current status")

	// ErrScheduledAttachments is returned when a campaign is both
	// scheduled and carries attachments. The provider cannot schedule
	// messages with attachments, so the combination is rejected before
	// any provider call.
	ErrScheduledAttachments = errors.New("scheduled campaigns cannot have attachments")

	// ErrEmptyAudience is returned when audience resolution leaves no
	// deliverable recipient.
	ErrEmptyAudience = errors.New("no deliverable recipients after filtering")
)
