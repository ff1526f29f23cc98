package usage

import (
	"testing"
	"time"
)

func TestTierLimit(t *testing.T) {
	cases := map[string]int64{
		"free":    FreeDailyLimit,
		"pro":     ProDailyLimit,
		"elite":   EliteDailyLimit,
		"premium": 0,
		"PREMIUM": 0,
		" Pro ":   ProDailyLimit,
		"":        FreeDailyLimit,
		"trial":   FreeDailyLimit,
	}
	for tier, want := range cases {
		if got := TierLimit(tier); got != want {
			t.Errorf("TierLimit(%q) = %d, want %d", tier, got, want)
		}
	}
}

func TestDayKeyUsesUTCDay(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	at := time.Date(2025, 3, 9, 23, 30, 0, 0, loc)

	if got, want := DayKey("u1", at), "usage:u1:2025-03-10"; got != want {
		t.Errorf("DayKey = %q, want %q", got, want)
	}
}

func TestNextMidnightUTC(t *testing.T) {
	at := time.Date(2025, 12, 31, 18, 4, 5, 0, time.UTC)
	got := nextMidnightUTC(at)
	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("nextMidnightUTC = %v, want %v", got, want)
	}
	if !got.After(at) {
		t.Errorf("reset instant must be in the future")
	}
}
