// Package suppression provides the membership set used to filter a resolved
// campaign audience against the global unsubscribe list.
//
// Emails are normalized (lowercased, trimmed) and stored as raw 16-byte MD5
// hashes in a sorted array. Membership is a binary search over fixed-size
// values, so a set built for a large audience costs 16 bytes per entry and
// checks allocate nothing.
package suppression

import (
	"bytes"
	"crypto/md5"
	"sort"
	"strings"
)

// Hash is a 16-byte MD5 hash of a normalized email address.
type Hash [16]byte

// HashEmail computes the hash of an email after normalization.
func HashEmail(email string) Hash {
	return md5.Sum([]byte(Normalize(email)))
}

// Normalize lowercases and trims an address. All audience and suppression
// comparisons go through this single definition.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Set is an immutable suppression set. Safe for concurrent use after
// construction.
type Set struct {
	hashes []Hash
}

// NewSet builds a set from unsubscribed email addresses. Duplicates are
// collapsed.
func NewSet(emails []string) *Set {
	hashes := make([]Hash, 0, len(emails))
	for _, e := range emails {
		hashes = append(hashes, HashEmail(e))
	}
	sort.Slice(hashes, func(i, j int) bool {
		return bytes.Compare(hashes[i][:], hashes[j][:]) < 0
	})

	// Collapse duplicates in place.
	out := hashes[:0]
	for i, h := range hashes {
		if i == 0 || !bytes.Equal(h[:], out[len(out)-1][:]) {
			out = append(out, h)
		}
	}
	return &Set{hashes: out}
}

// Len returns the number of distinct suppressed addresses.
func (s *Set) Len() int { return len(s.hashes) }

// Contains reports whether the email is suppressed.
func (s *Set) Contains(email string) bool {
	h := HashEmail(email)
	i := sort.Search(len(s.hashes), func(i int) bool {
		return bytes.Compare(s.hashes[i][:], h[:]) >= 0
	})
	return i < len(s.hashes) && bytes.Equal(s.hashes[i][:], h[:])
}

// Filter removes suppressed addresses from the candidate list, preserving
// order, and returns the deliverable remainder plus the suppressed count.
func (s *Set) Filter(emails []string) (deliverable []string, suppressed int) {
	deliverable = make([]string, 0, len(emails))
	for _, e := range emails {
		if s.Contains(e) {
			suppressed++
			continue
		}
		deliverable = append(deliverable, e)
	}
	return deliverable, suppressed
}
