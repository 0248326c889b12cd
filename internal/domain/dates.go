package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical storage format for order, delivery and bill dates.
const DateLayout = "2006-01-02"

// ErrUnparseableDate is returned when none of the tolerated layouts match.
var ErrUnparseableDate = errors.New("domain: unparseable date")

// dateLayouts lists the legacy formats still found in stored documents.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	time.RFC1123,
	"Mon, 02 Jan 2006 15:04:05 MST",
	"02 Jan 2006",
}

// ParseFlexibleDate accepts the canonical YYYY-MM-DD format plus the legacy
// timestamp formats found in older documents, returning the calendar day.
func ParseFlexibleDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrUnparseableDate)
	}
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, trimmed)
		if err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, trimmed)
}

// NormalizeDate converts any tolerated date representation to YYYY-MM-DD.
func NormalizeDate(value string) (string, error) {
	parsed, err := ParseFlexibleDate(value)
	if err != nil {
		return "", err
	}
	return parsed.Format(DateLayout), nil
}

// SameDate reports whether a stored date string names the given calendar day.
// Unparseable values never match.
func SameDate(value string, day time.Time) bool {
	parsed, err := ParseFlexibleDate(value)
	if err != nil {
		return false
	}
	return parsed.Format(DateLayout) == day.Format(DateLayout)
}
