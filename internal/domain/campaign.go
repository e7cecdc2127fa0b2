package domain

import (
	"time"
)

// CampaignStatus enumerates the lifecycle states of a campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignSending   CampaignStatus = "sending"
	CampaignSent      CampaignStatus = "sent"
	CampaignArchived  CampaignStatus = "archived"
)

// campaignTransitions is the explicit status transition table. A send claims
// the campaign with draft→sending; on completion it lands on sent (immediate)
// or scheduled (provider-side schedule). sending→draft is the rollback path
// when dispatch fails before any provider call. Archiving is allowed from any
// non-sending state.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignDraft:     {CampaignSending, CampaignArchived},
	CampaignScheduled: {CampaignDraft, CampaignArchived},
	CampaignSending:   {CampaignSent, CampaignScheduled, CampaignDraft},
	CampaignSent:      {CampaignArchived},
	CampaignArchived:  {},
}

// CanTransition reports whether a campaign may move from one status to another.
func CanTransition(from, to CampaignStatus) bool {
	for _, allowed := range campaignTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Attachment is a file attached to a campaign, stored externally by URL.
type Attachment struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Campaign represents an email campaign with its content and audience config.
// The audience is either an explicit recipient list or a segment reference,
// never both.
type Campaign struct {
	ID          string         `json:"id" db:"id"`
	OwnerID     string         `json:"owner_id" db:"owner_id"`
	Name        string         `json:"name" db:"name"`
	Subject     string         `json:"subject" db:"subject"`
	HTMLContent string         `json:"html_content" db:"html_content"`
	TextContent string         `json:"text_content" db:"text_content"`
	Recipients  []string       `json:"recipients" db:"recipients"`
	SegmentID   *string        `json:"segment_id" db:"segment_id"`
	Attachments []Attachment   `json:"attachments" db:"attachments"`
	Status      CampaignStatus `json:"status" db:"status"`
	ScheduledAt *time.Time     `json:"scheduled_at" db:"scheduled_at"`
	SentAt      *time.Time     `json:"sent_at" db:"sent_at"`

	// Stats (read-only, populated by queries)
	SentCount  int `json:"sent_count" db:"sent_count"`
	OpenCount  int `json:"open_count" db:"open_count"`
	ClickCount int `json:"click_count" db:"click_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsScheduled reports whether the campaign carries a provider-side schedule.
func (c *Campaign) IsScheduled() bool {
	return c.ScheduledAt != nil
}

// IsTerminal returns true if the campaign is in a final state.
func (c *Campaign) IsTerminal() bool {
	return c.Status == CampaignSent || c.Status == CampaignArchived
}
