package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dojocodeAPI/internal/types/streak"
)

// DefaultStreakOffsetHours shifts the wall clock to compute the reference
// "dojo day". The curriculum launched for a JST audience, so the default day
// boundary is UTC+9. Override with STREAK_TIMEZONE_OFFSET_HOURS.
const DefaultStreakOffsetHours = 9

type StreakService struct {
	db     *pgxpool.Pool
	offset time.Duration
	now    func() time.Time
}

func NewStreakService(db *pgxpool.Pool) *StreakService {
	offsetHours := DefaultStreakOffsetHours
	if v := os.Getenv("STREAK_TIMEZONE_OFFSET_HOURS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("Invalid STREAK_TIMEZONE_OFFSET_HOURS %q, using default %d", v, DefaultStreakOffsetHours)
		} else {
			offsetHours = parsed
		}
	}

	return &StreakService{
		db:     db,
		offset: time.Duration(offsetHours) * time.Hour,
		now:    time.Now,
	}
}

// activityDay maps an instant to its calendar day in the reference timezone,
// normalized to UTC midnight so it compares cleanly against Postgres DATE
// values.
func activityDay(t time.Time, offset time.Duration) time.Time {
	shifted := t.UTC().Add(offset)
	return time.Date(shifted.Year(), shifted.Month(), shifted.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// nextStreak computes the streak values a fresh activity on day `today`
// should produce, given the previously stored state. It does not decide
// whether a write is needed; callers handle the already-recorded-today case.
func nextStreak(current, longest int, last *time.Time, today time.Time) (int, int) {
	yesterday := today.AddDate(0, 0, -1)

	newCurrent := 1
	if last != nil && sameDay(*last, yesterday) {
		newCurrent = current + 1
	}

	newLongest := longest
	if newCurrent > newLongest {
		newLongest = newCurrent
	}

	return newCurrent, newLongest
}

// RecordActivity advances the user's streak at most once per dojo day.
//
// The update is guarded by a conditional WHERE on last_activity_date, which
// the database re-checks at write time. Two concurrent callers that both read
// the stale row compute identical new values, so the loser of the write race
// still returns numbers that match what the winner persisted; only IsNewDay
// differs, and exactly one caller per day observes it true.
func (s *StreakService) RecordActivity(ctx context.Context, clerkID string) (*streak.StreakResult, error) {
	today := activityDay(s.now(), s.offset)

	var userID uuid.UUID
	var current, longest int
	var last *time.Time

	query := `
	SELECT id, current_streak, longest_streak, last_activity_date
	FROM users
	WHERE clerk_id = $1
	`
	err := s.db.QueryRow(ctx, query, clerkID).Scan(&userID, &current, &longest, &last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Missing profile is a soft no-op, not an error.
			return &streak.StreakResult{}, nil
		}
		return nil, fmt.Errorf("failed to read streak: %w", err)
	}

	if last != nil && sameDay(*last, today) {
		return &streak.StreakResult{
			CurrentStreak: current,
			LongestStreak: longest,
			IsNewDay:      false,
		}, nil
	}

	newCurrent, newLongest := nextStreak(current, longest, last, today)

	updateQuery := `
	UPDATE users
	SET current_streak = $2,
		longest_streak = $3,
		last_activity_date = $4,
		updated_at = NOW()
	WHERE id = $1 AND last_activity_date IS DISTINCT FROM $4
	`
	tag, err := s.db.Exec(ctx, updateQuery, userID, newCurrent, newLongest, today)
	if err != nil {
		return nil, fmt.Errorf("failed to update streak: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// A concurrent request won the race for today. Our values were
		// derived from the same pre-update row, so they already match what
		// was written; we just don't take credit for the rollover.
		return &streak.StreakResult{
			CurrentStreak: newCurrent,
			LongestStreak: newLongest,
			IsNewDay:      false,
		}, nil
	}

	return &streak.StreakResult{
		CurrentStreak: newCurrent,
		LongestStreak: newLongest,
		IsNewDay:      true,
	}, nil
}

// GetStreak reads the stored streak without mutating it. Here IsNewDay means
// "nothing recorded yet today", i.e. RecordActivity would still produce a
// fresh rollover. See the note on streak.StreakResult.
func (s *StreakService) GetStreak(ctx context.Context, clerkID string) (*streak.StreakResult, error) {
	today := activityDay(s.now(), s.offset)

	var current, longest int
	var last *time.Time

	query := `
	SELECT current_streak, longest_streak, last_activity_date
	FROM users
	WHERE clerk_id = $1
	`
	err := s.db.QueryRow(ctx, query, clerkID).Scan(&current, &longest, &last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &streak.StreakResult{}, nil
		}
		return nil, fmt.Errorf("failed to read streak: %w", err)
	}

	return &streak.StreakResult{
		CurrentStreak: current,
		LongestStreak: longest,
		IsNewDay:      last == nil || !sameDay(*last, today),
	}, nil
}
