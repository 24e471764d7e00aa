package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"dojocodeAPI/internal/types/xp"
	"dojocodeAPI/utils"
)

type XPService struct {
	db       *pgxpool.Pool
	notifier *NotificationService
}

func NewXPService(db *pgxpool.Pool, notifier *NotificationService) *XPService {
	return &XPService{db: db, notifier: notifier}
}

// AwardXP grants XP exactly once per (user, action, reference). A duplicate
// award is a soft no-op: the unique index on xp_logs absorbs the insert and
// the caller gets Awarded=false with the user's current totals. Login and
// chapter-completion flows must never fail on a repeated award.
func (s *XPService) AwardXP(ctx context.Context, clerkID string, action xp.XPAction, referenceID string, amount int) (*xp.AwardResult, error) {
	var userID uuid.UUID
	var currentXP int
	var currentBelt string
	err := s.db.QueryRow(ctx, `SELECT id, xp, belt FROM users WHERE clerk_id = $1`, clerkID).
		Scan(&userID, &currentXP, &currentBelt)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO xp_logs (id, user_id, action, reference_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, action, reference_id) DO NOTHING
	`, uuid.New(), userID, action, referenceID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to log xp award: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return &xp.AwardResult{
			Awarded: false,
			XP:      currentXP,
			Belt:    currentBelt,
		}, nil
	}

	var newXP int
	err = s.db.QueryRow(ctx, `
		UPDATE users SET xp = xp + $2, updated_at = NOW() WHERE id = $1 RETURNING xp
	`, userID, amount).Scan(&newXP)
	if err != nil {
		return nil, fmt.Errorf("failed to apply xp: %w", err)
	}

	result := &xp.AwardResult{
		Awarded: true,
		XP:      newXP,
		Belt:    currentBelt,
	}

	newBelt := utils.BeltForXP(newXP)
	if newBelt != currentBelt {
		_, err = s.db.Exec(ctx, `UPDATE users SET belt = $2, updated_at = NOW() WHERE id = $1`, userID, newBelt)
		if err != nil {
			return nil, fmt.Errorf("failed to update belt: %w", err)
		}
		result.Belt = newBelt
		result.BeltUp = true
		result.Previous = currentBelt

		if s.notifier != nil {
			utils.BeltPromoted(s.notifier, userID, newBelt)
		}
	}

	return result, nil
}

// CompleteChapter awards the chapter's XP. The reference id pins idempotency
// to the chapter number, so re-submitting a finished chapter changes nothing.
func (s *XPService) CompleteChapter(ctx context.Context, clerkID string, req *xp.CompleteChapterRequest) (*xp.AwardResult, error) {
	if req.ChapterNum < 1 || req.ChapterTitle == "" {
		return nil, fmt.Errorf("chapterNum and chapterTitle are required")
	}

	amount := req.XPReward
	if amount <= 0 {
		amount = 100
	}

	referenceID := fmt.Sprintf("chapter-%d", req.ChapterNum)
	result, err := s.AwardXP(ctx, clerkID, xp.ActionChapterComplete, referenceID, amount)
	if err != nil {
		return nil, err
	}

	if !result.Awarded {
		log.Printf("Duplicate chapter completion for %s, chapter %d", clerkID, req.ChapterNum)
	}

	return result, nil
}

// CountLogs backs the debug endpoint: how many xp_logs rows exist for this
// user and (action, reference) pair.
func (s *XPService) CountLogs(ctx context.Context, clerkID string, action string, referenceID string) (*xp.DebugLogCountResponse, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	var count int
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM xp_logs WHERE user_id = $1 AND action = $2 AND reference_id = $3
	`, userID, action, referenceID).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to count xp logs: %w", err)
	}

	return &xp.DebugLogCountResponse{
		Count:       count,
		Action:      action,
		ReferenceID: referenceID,
		UserID:      userID.String(),
	}, nil
}
