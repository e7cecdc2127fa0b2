// Package personalize renders per-recipient email payloads for a campaign:
// variable substitution over subject and body, plaintext derivation, and the
// per-recipient unsubscribe link and headers.
package personalize

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/suppression"
)

// Placeholders accept internal whitespace: {{ firstName }} and {{firstName}}
// are equivalent.
var (
	emailPattern     = placeholderPattern("email")
	firstNamePattern = placeholderPattern("firstName")
	lastNamePattern  = placeholderPattern("lastName")
	unsubPattern     = placeholderPattern("unsubscribeUrl")
)

func placeholderPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\{\{\s*` + regexp.QuoteMeta(name) + `\s*\}\}`)
}

// RenderFailure records a recipient whose payload could not be built. The
// recipient is excluded from dispatch; the rest of the audience is unaffected.
type RenderFailure struct {
	Email string
	Err   error
}

// Personalizer builds ready-to-send messages from campaign content and
// contact data.
type Personalizer struct {
	appBaseURL string
	from       string
}

// New creates a Personalizer. appBaseURL is the public site base URL used
// for unsubscribe links; from is the sender in RFC 5322 form.
func New(appBaseURL, from string) *Personalizer {
	return &Personalizer{
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		from:       from,
	}
}

// RenderAll builds one message per recipient. Each recipient renders inside
// its own error boundary: a failure excludes only that recipient and is
// reported in the second return value.
func (p *Personalizer) RenderAll(c *domain.Campaign, recipients []string, contacts map[string]*domain.Contact) ([]domain.EmailMessage, []RenderFailure) {
	messages := make([]domain.EmailMessage, 0, len(recipients))
	var failures []RenderFailure

	for _, email := range recipients {
		msg, err := p.Render(c, email, contacts[suppression.Normalize(email)])
		if err != nil {
			failures = append(failures, RenderFailure{Email: email, Err: err})
			continue
		}
		messages = append(messages, msg)
	}
	return messages, failures
}

// Render builds the payload for a single recipient. contact may be nil, in
// which case name and property substitutions degrade to the empty string.
func (p *Personalizer) Render(c *domain.Campaign, email string, contact *domain.Contact) (domain.EmailMessage, error) {
	if !strings.Contains(email, "@") {
		return domain.EmailMessage{}, fmt.Errorf("invalid recipient address %q", email)
	}

	subject := p.substitute(c.Subject, email, contact)
	htmlBody := p.substitute(c.HTMLContent, email, contact)
	textBody := c.TextContent
	if textBody == "" {
		textBody = htmlToText(c.HTMLContent)
	}
	textBody = p.substitute(textBody, email, contact)

	linkURL := p.unsubscribeURL("/unsubscribe", email)
	oneClickURL := p.unsubscribeURL("/api/unsubscribe", email)

	if unsubPattern.MatchString(htmlBody) {
		htmlBody = unsubPattern.ReplaceAllLiteralString(htmlBody, linkURL)
	} else {
		htmlBody += fmt.Sprintf("<p><a href=%q>Se désabonner</a></p>", linkURL)
	}
	if unsubPattern.MatchString(textBody) {
		textBody = unsubPattern.ReplaceAllLiteralString(textBody, linkURL)
	} else {
		textBody += "\n\nSe désabonner : " + linkURL
	}

	return domain.EmailMessage{
		To:          email,
		From:        p.from,
		Subject:     subject,
		HTMLContent: htmlBody,
		TextContent: textBody,
		Headers: map[string]string{
			"List-Unsubscribe":      "<" + oneClickURL + ">",
			"List-Unsubscribe-Post": "List-Unsubscribe=One-Click",
		},
		Tags:        map[string]string{"campaign_id": c.ID},
		Attachments: c.Attachments,
		ScheduledAt: c.ScheduledAt,
	}, nil
}

// substitute applies the variable passes in fixed order: email, firstName,
// lastName, then every contact property as {{properties.<key>}} in sorted
// key order. Every pass replaces all occurrences.
func (p *Personalizer) substitute(tpl, email string, contact *domain.Contact) string {
	out := emailPattern.ReplaceAllLiteralString(tpl, email)

	var first, last string
	if contact != nil {
		first, last = contact.FirstName, contact.LastName
	}
	out = firstNamePattern.ReplaceAllLiteralString(out, first)
	out = lastNamePattern.ReplaceAllLiteralString(out, last)

	if contact == nil || len(contact.Properties) == 0 {
		return out
	}
	keys := make([]string, 0, len(contact.Properties))
	for k := range contact.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = placeholderPattern("properties."+k).ReplaceAllLiteralString(out, contact.Properties[k])
	}
	return out
}

func (p *Personalizer) unsubscribeURL(path, email string) string {
	return p.appBaseURL + path + "?email=" + url.QueryEscape(email)
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	lineBreakPattern  = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</h[1-6]>`)
	whitespacePattern = regexp.MustCompile(`[ \t]+`)
)

// htmlToText derives a plaintext rendition from HTML content when the
// campaign has no explicit text body.
func htmlToText(html string) string {
	s := lineBreakPattern.ReplaceAllString(html, "\n")
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = whitespacePattern.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
