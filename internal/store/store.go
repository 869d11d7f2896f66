// Package store implements durable storage for measurements and their photos
// on top of database/sql. Schema-level CHECK and UNIQUE constraints re-enforce
// the domain invariants at the storage boundary; constraint failures surface
// as domain.ErrConstraint rather than driver strings.
package store

import (
	"fmt"
	"strings"
	"time"

	"windowlog/internal/domain"
)

// timeLayout is RFC3339 with fixed-width nanoseconds. Timestamps are stored
// as TEXT; the fixed width keeps lexicographic ordering equal to chronological
// ordering, which the created_at indexes rely on.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// wrapConstraint maps SQLite constraint failures onto domain.ErrConstraint.
// The driver exposes constraint violations only through the error text.
func wrapConstraint(err error, op string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "constraint failed") {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
