package resend

import (
	"time"

	"github.com/bde-platform/mailer/internal/domain"
)

// Tag is a name/value pair attached to a message for provider-side analytics.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Attachment references a remotely-hosted file to attach to a message.
// Only the unitary endpoint accepts attachments.
type Attachment struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// SendRequest is the wire shape for both the unitary and batch endpoints.
// ScheduledAt and Attachments are only honored by the unitary endpoint.
type SendRequest struct {
	From        string            `json:"from"`
	To          []string          `json:"to"`
	Subject     string            `json:"subject"`
	HTML        string            `json:"html,omitempty"`
	Text        string            `json:"text,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Tags        []Tag             `json:"tags,omitempty"`
	Attachments []Attachment      `json:"attachments,omitempty"`
	ScheduledAt string            `json:"scheduled_at,omitempty"`
}

// SendResponse is the acknowledgment for a single accepted message.
type SendResponse struct {
	ID string `json:"id"`
}

// BatchSendResponse wraps the per-message acknowledgments of a batch call,
// in submission order.
type BatchSendResponse struct {
	Data []SendResponse `json:"data"`
}

// FromMessage converts a fully-personalized domain message into the wire
// request.
func FromMessage(msg domain.EmailMessage) SendRequest {
	req := SendRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTMLContent,
		Text:    msg.TextContent,
		Headers: msg.Headers,
	}
	for name, value := range msg.Tags {
		req.Tags = append(req.Tags, Tag{Name: name, Value: value})
	}
	for _, a := range msg.Attachments {
		req.Attachments = append(req.Attachments, Attachment{Path: a.URL, Filename: a.Name})
	}
	if msg.ScheduledAt != nil {
		req.ScheduledAt = msg.ScheduledAt.UTC().Format(time.RFC3339)
	}
	return req
}
