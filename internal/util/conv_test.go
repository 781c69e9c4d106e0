package util

import (
	"testing"
	"time"
)

func TestWeekLabel(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2026-03-02", "2026-10"},
		{"2026-01-01", "2026-01"},
		// ISO 周归属：2027-01-01 是周五，属于 2026 年第 53 周
		{"2027-01-01", "2026-53"},
	}
	for _, tt := range tests {
		parsed, err := time.Parse(DateFormat, tt.date)
		if err != nil {
			t.Fatalf("parse %s: %v", tt.date, err)
		}
		if got := WeekLabel(parsed); got != tt.want {
			t.Errorf("WeekLabel(%s) = %s, want %s", tt.date, got, tt.want)
		}
	}
}

func TestDateUTC(t *testing.T) {
	// 东八区的凌晨仍属于 UTC 前一天
	loc := time.FixedZone("UTC+8", 8*3600)
	local := time.Date(2026, 3, 2, 5, 0, 0, 0, loc)
	if got := DateUTC(local); got != "2026-03-01" {
		t.Errorf("DateUTC = %s, want 2026-03-01", got)
	}
}

func TestMustParseUint(t *testing.T) {
	if got := MustParseUint("42"); got != 42 {
		t.Errorf("MustParseUint(42) = %d", got)
	}
	if got := MustParseUint("not-a-number"); got != 0 {
		t.Errorf("MustParseUint(garbage) = %d, want 0", got)
	}
}
