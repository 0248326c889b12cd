package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseFlexibleDateLayouts(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"canonical", "2025-06-15", "2025-06-15"},
		{"iso with zone", "2025-06-15T14:30:00Z", "2025-06-15"},
		{"iso no zone", "2025-06-15T14:30:00", "2025-06-15"},
		{"iso microseconds", "2025-06-15T14:30:00.123456", "2025-06-15"},
		{"rfc1123", "Sun, 15 Jun 2025 14:30:00 GMT", "2025-06-15"},
		{"day month year", "15 Jun 2025", "2025-06-15"},
		{"surrounding whitespace", "  2025-06-15  ", "2025-06-15"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseFlexibleDate(tc.input)
			if err != nil {
				t.Fatalf("ParseFlexibleDate(%q) returned error: %v", tc.input, err)
			}
			if got := parsed.Format(DateLayout); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestParseFlexibleDateRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not-a-date", "2025/06/15", "15-06-2025"} {
		if _, err := ParseFlexibleDate(input); !errors.Is(err, ErrUnparseableDate) {
			t.Errorf("ParseFlexibleDate(%q): expected ErrUnparseableDate, got %v", input, err)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	got, err := NormalizeDate("2025-06-15T01:00:00Z")
	if err != nil {
		t.Fatalf("NormalizeDate returned error: %v", err)
	}
	if got != "2025-06-15" {
		t.Errorf("expected 2025-06-15, got %s", got)
	}
}

func TestSameDate(t *testing.T) {
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if !SameDate("2025-06-15T23:59:59Z", day) {
		t.Error("expected timestamp on the same day to match")
	}
	if SameDate("2025-06-16", day) {
		t.Error("expected different day not to match")
	}
	if SameDate("garbage", day) {
		t.Error("expected unparseable value not to match")
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, status := range OrderStatuses {
		if !ValidOrderStatus(status) {
			t.Errorf("expected %s to be valid", status)
		}
	}
	if ValidOrderStatus("shipped") {
		t.Error("expected unknown status to be invalid")
	}
}
