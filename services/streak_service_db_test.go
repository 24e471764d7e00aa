package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dojocodeAPI/internal/types/streak"
)

func streakServiceAt(t *testing.T, now time.Time) (*StreakService, func(time.Time)) {
	t.Helper()

	pool := setupTestDB(t)
	svc := NewStreakService(pool)

	current := now
	svc.now = func() time.Time { return current }

	return svc, func(at time.Time) { current = at }
}

func TestRecordActivitySameDayIsIdempotent(t *testing.T) {
	at := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	svc, _ := streakServiceAt(t, at)
	clerkID := createTestUser(t, svc.db)

	ctx := context.Background()

	first, err := svc.RecordActivity(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.CurrentStreak)
	assert.Equal(t, 1, first.LongestStreak)
	assert.True(t, first.IsNewDay, "first activity of the day should credit a new day")

	second, err := svc.RecordActivity(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 1, second.CurrentStreak)
	assert.Equal(t, 1, second.LongestStreak)
	assert.False(t, second.IsNewDay, "repeat activity on the same day must not credit again")
}

func TestRecordActivityContinuesAndResets(t *testing.T) {
	day1 := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	svc, setNow := streakServiceAt(t, day1)
	clerkID := createTestUser(t, svc.db)

	ctx := context.Background()

	_, err := svc.RecordActivity(ctx, clerkID)
	require.NoError(t, err)

	setNow(day1.AddDate(0, 0, 1))
	next, err := svc.RecordActivity(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 2, next.CurrentStreak)
	assert.Equal(t, 2, next.LongestStreak)
	assert.True(t, next.IsNewDay)

	// Skipping a day resets the streak but keeps the longest.
	setNow(day1.AddDate(0, 0, 3))
	after, err := svc.RecordActivity(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.CurrentStreak)
	assert.Equal(t, 2, after.LongestStreak)
	assert.True(t, after.IsNewDay)
}

func TestRecordActivityConcurrentCallsCreditOneDay(t *testing.T) {
	at := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	svc, _ := streakServiceAt(t, at)
	clerkID := createTestUser(t, svc.db)

	const callers = 8

	results := make([]*streak.StreakResult, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.RecordActivity(context.Background(), clerkID)
		}(i)
	}
	wg.Wait()

	credited := 0
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 1, results[i].CurrentStreak, "every caller sees the post-rollover value")
		assert.Equal(t, 1, results[i].LongestStreak)
		if results[i].IsNewDay {
			credited++
		}
	}
	assert.Equal(t, 1, credited, "exactly one concurrent caller may credit the day")
}

func TestGetStreakReportsPendingDay(t *testing.T) {
	day1 := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	svc, setNow := streakServiceAt(t, day1)
	clerkID := createTestUser(t, svc.db)

	ctx := context.Background()

	before, err := svc.GetStreak(ctx, clerkID)
	require.NoError(t, err)
	assert.True(t, before.IsNewDay, "nothing recorded yet today")

	_, err = svc.RecordActivity(ctx, clerkID)
	require.NoError(t, err)

	recorded, err := svc.GetStreak(ctx, clerkID)
	require.NoError(t, err)
	assert.False(t, recorded.IsNewDay)
	assert.Equal(t, 1, recorded.CurrentStreak)

	setNow(day1.AddDate(0, 0, 1))
	tomorrow, err := svc.GetStreak(ctx, clerkID)
	require.NoError(t, err)
	assert.True(t, tomorrow.IsNewDay, "a read never mutates; the next day is still pending")
	assert.Equal(t, 1, tomorrow.CurrentStreak)
}

func TestRecordActivityUnknownUserIsSoftNoOp(t *testing.T) {
	at := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	svc, _ := streakServiceAt(t, at)

	res, err := svc.RecordActivity(context.Background(), "user_itest_missing")
	require.NoError(t, err)
	assert.Equal(t, 0, res.CurrentStreak)
	assert.Equal(t, 0, res.LongestStreak)
	assert.False(t, res.IsNewDay)
}
