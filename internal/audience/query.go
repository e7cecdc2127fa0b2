package audience

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bde-platform/mailer/internal/domain"
)

// BuildContactQuery compiles a segment query into SQL over the contacts
// table with $n placeholders.
//
// Semantics: topic membership is an OR across the listed topics (EXISTS on
// the join table for any of them); property equalities are AND'ed, one
// clause per key. Property keys are iterated in sorted order so the
// generated SQL is deterministic.
func BuildContactQuery(q domain.SegmentQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.OnlySubscribed {
		conds = append(conds, "c.unsubscribed = FALSE")
	}

	if len(q.TopicIDs) > 0 {
		placeholders := make([]string, 0, len(q.TopicIDs))
		for _, id := range q.TopicIDs {
			placeholders = append(placeholders, arg(id))
		}
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM contact_topics ct WHERE ct.contact_id = c.id AND ct.topic_id IN (%s))",
			strings.Join(placeholders, ", ")))
	}

	keys := make([]string, 0, len(q.Properties))
	for k := range q.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		conds = append(conds, fmt.Sprintf("c.properties->>%s = %s", arg(k), arg(q.Properties[k])))
	}

	query := `SELECT c.id, c.email, c.first_name, c.last_name, c.properties, c.unsubscribed
FROM contacts c`
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, "\n  AND ")
	}
	query += "\nORDER BY c.email"

	return query, args
}
