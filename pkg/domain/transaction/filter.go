package transaction

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/google/uuid"
)

// Filter selects transactions. Zero-valued fields are ignored; the rest are
// combined with AND. DateFrom and DateTo are inclusive bounds on SubmittedAt.
type Filter struct {
	Status      Status
	DateFrom    *time.Time
	DateTo      *time.Time
	SubmittedBy uuid.UUID
}

// Validate rejects unknown statuses and inverted date ranges.
func (f Filter) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return domain.Validation("status", "must be one of Pending, Approved, Rejected")
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return domain.Validation("dateFrom", "must not be after dateTo")
	}
	return nil
}

// Matches reports whether t passes every supplied condition.
func (f Filter) Matches(t *Transaction) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.SubmittedBy != uuid.Nil && t.SubmittedBy != f.SubmittedBy {
		return false
	}
	if f.DateFrom != nil && t.SubmittedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && t.SubmittedAt.After(*f.DateTo) {
		return false
	}
	return true
}

// Sequenced pairs a transaction with its store insertion sequence.
type Sequenced struct {
	Seq uint64
	Tx  *Transaction
}

// SortNewestFirst orders by SubmittedAt descending; equal timestamps keep
// insertion order.
func SortNewestFirst(items []Sequenced) {
	slices.SortStableFunc(items, func(a, b Sequenced) int {
		if c := b.Tx.SubmittedAt.Compare(a.Tx.SubmittedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}

const dateLayout = "2006-01-02"

// ParseDate accepts an RFC 3339 timestamp or a YYYY-MM-DD date and returns
// nil for blank input. With endOfDay a bare date is moved to the last
// nanosecond of that UTC day so it works as an inclusive upper bound.
func ParseDate(field, raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, domain.Validation(field, "must be an RFC 3339 timestamp or YYYY-MM-DD date")
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
