package services

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestActivityDayShiftsAtOffsetBoundary(t *testing.T) {
	offset := 9 * time.Hour

	// 14:59 UTC is still the same day in UTC+9 (23:59 local).
	before := time.Date(2024, time.June, 1, 14, 59, 0, 0, time.UTC)
	if got := activityDay(before, offset); !got.Equal(date(2024, time.June, 1)) {
		t.Errorf("expected 2024-06-01, got %v", got)
	}

	// 15:00 UTC crosses midnight in UTC+9.
	after := time.Date(2024, time.June, 1, 15, 0, 0, 0, time.UTC)
	if got := activityDay(after, offset); !got.Equal(date(2024, time.June, 2)) {
		t.Errorf("expected 2024-06-02, got %v", got)
	}
}

func TestActivityDayZeroOffset(t *testing.T) {
	at := time.Date(2024, time.June, 1, 23, 30, 0, 0, time.UTC)
	if got := activityDay(at, 0); !got.Equal(date(2024, time.June, 1)) {
		t.Errorf("expected 2024-06-01, got %v", got)
	}
}

func TestNextStreakContinuity(t *testing.T) {
	last := date(2024, time.June, 1)
	today := date(2024, time.June, 2)

	current, longest := nextStreak(5, 10, &last, today)
	if current != 6 {
		t.Errorf("expected current streak 6, got %d", current)
	}
	if longest != 10 {
		t.Errorf("expected longest streak 10, got %d", longest)
	}
}

func TestNextStreakResetAfterGap(t *testing.T) {
	last := date(2024, time.June, 1)
	today := date(2024, time.June, 3)

	current, longest := nextStreak(5, 10, &last, today)
	if current != 1 {
		t.Errorf("expected streak reset to 1, got %d", current)
	}
	if longest != 10 {
		t.Errorf("expected longest streak unchanged at 10, got %d", longest)
	}
}

func TestNextStreakFirstActivity(t *testing.T) {
	today := date(2024, time.June, 2)

	current, longest := nextStreak(0, 0, nil, today)
	if current != 1 || longest != 1 {
		t.Errorf("expected {1, 1}, got {%d, %d}", current, longest)
	}
}

func TestNextStreakExtendsLongest(t *testing.T) {
	last := date(2024, time.June, 1)
	today := date(2024, time.June, 2)

	current, longest := nextStreak(10, 10, &last, today)
	if current != 11 {
		t.Errorf("expected current streak 11, got %d", current)
	}
	if longest != 11 {
		t.Errorf("expected longest streak raised to 11, got %d", longest)
	}
}

func TestNextStreakLongestNeverDecreases(t *testing.T) {
	today := date(2024, time.June, 10)
	var last *time.Time

	current, longest := 0, 25
	for i := 0; i < 40; i++ {
		prevLongest := longest
		current, longest = nextStreak(current, longest, last, today)
		if longest < prevLongest {
			t.Fatalf("longest streak decreased from %d to %d", prevLongest, longest)
		}
		if longest < current {
			t.Fatalf("longest %d fell below current %d", longest, current)
		}
		d := today
		last = &d
		today = today.AddDate(0, 0, 1)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.June, 1, 23, 59, 59, 0, time.UTC)
	if !sameDay(a, b) {
		t.Error("expected same calendar day")
	}
	if sameDay(a, b.Add(time.Second)) {
		t.Error("expected different calendar days")
	}
}
