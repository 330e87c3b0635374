package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/hubstream/internal/ir"
)

// Stored time layouts. Both are fixed width so text order is time order.
const (
	timeLayout = "2006-01-02T15:04:05Z"
	dateLayout = "2006-01-02"
)

// formatTime converts t to stored TEXT in UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// nullTime converts an optional time to a nullable column value.
func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

// nullDate converts an optional due date to a nullable YYYY-MM-DD value.
func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(dateLayout), Valid: true}
}

// nullString stores "" as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// multiValue encodes a list for a multi-value column, NULL when empty.
func multiValue(values []string) sql.NullString {
	joined, ok := ir.JoinValues(values)
	return sql.NullString{String: joined, Valid: ok}
}

// boolInt stores a bool as 0/1 for the draft = 1 style comparisons.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseTime parses stored TEXT back to a UTC time.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// parseNullTime parses a nullable time column.
func parseNullTime(ns sql.NullString, layout string) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(layout, ns.String)
	if err != nil {
		return nil, fmt.Errorf("parse time %q: %w", ns.String, err)
	}
	return &t, nil
}

// splitMultiValue decodes a nullable multi-value column. NULL decodes to
// nil so a round trip of an issue without labels stays equal.
func splitMultiValue(ns sql.NullString) []string {
	if !ns.Valid {
		return nil
	}
	return ir.SplitValues(ns.String)
}
