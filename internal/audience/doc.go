// Package audience resolves the final recipient list for a campaign.
//
// A campaign's audience comes from exactly one of two sources: the manual
// recipient list stored on the campaign, or a stored segment whose query is
// compiled to SQL against the contacts table. Both sources funnel through
// the same global suppression gate, and the result is deduplicated by
// normalized email before suppression filtering.
package audience
