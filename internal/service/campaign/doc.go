// Package campaign manages the lifecycle of email campaigns: creation,
// editing, listing, and archival. Draft content may be edited freely;
// once a campaign leaves draft its content is frozen and only status
// transitions allowed by the domain transition table are accepted.
//
// The send pipeline itself lives in the sending package; this package
// owns everything that happens before the send button is pressed.
package campaign
