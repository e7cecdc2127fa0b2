package domain

import "time"

// UnsubscribeSource indicates where an unsubscribe signal originated.
type UnsubscribeSource string

const (
	UnsubscribeSourceLink     UnsubscribeSource = "link"
	UnsubscribeSourceOneClick UnsubscribeSource = "one_click"
	UnsubscribeSourceManual   UnsubscribeSource = "manual"
)

// UnsubscribedRecipient is a single entry in the global suppression list.
// Every campaign send is filtered against this list regardless of whether
// the audience came from a manual recipient list or a segment.
type UnsubscribedRecipient struct {
	Email     string            `json:"email" db:"email"`
	Source    UnsubscribeSource `json:"source" db:"source"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}
