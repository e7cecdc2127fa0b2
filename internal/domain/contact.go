package domain

import "time"

// Contact represents a single email recipient known to the platform.
// Properties is a free-form key/value map used both for segment matching
// and for template personalization.
type Contact struct {
	ID           string            `json:"id" db:"id"`
	Email        string            `json:"email" db:"email"`
	FirstName    string            `json:"first_name" db:"first_name"`
	LastName     string            `json:"last_name" db:"last_name"`
	Properties   map[string]string `json:"properties" db:"properties"`
	Unsubscribed bool              `json:"unsubscribed" db:"unsubscribed"`
	TopicIDs     []string          `json:"topic_ids" db:"topic_ids"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`
}

// Topic is a subscription theme contacts can opt into (events, partners, ...).
type Topic struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SegmentQuery is the structured filter stored on a segment.
// Topic membership uses OR semantics (a contact matching any listed topic
// qualifies); property equalities use AND semantics (every listed pair must
// match).
type SegmentQuery struct {
	OnlySubscribed bool              `json:"only_subscribed"`
	TopicIDs       []string          `json:"topic_ids,omitempty"`
	Properties     map[string]string `json:"properties,omitempty"`
}

// Segment is a stored dynamic audience definition, resolved into a concrete
// address list at send time. Read-only during a send.
type Segment struct {
	ID        string       `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Query     SegmentQuery `json:"query" db:"query"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}
