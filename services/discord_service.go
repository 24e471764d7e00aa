package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dojocodeAPI/internal/types/discord"
	"dojocodeAPI/internal/types/notification"
)

// Link codes are typed into a Discord chat by hand, so the alphabet drops
// the glyphs people misread: I, O, 0 and 1.
const (
	linkCodeAlphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	linkCodeLength    = 6
	linkCodeTTL       = 10 * time.Minute
	linkCodeAttempts  = 5
	uniqueViolationPg = "23505"
)

var (
	ErrInvalidCode       = errors.New("invalid code")
	ErrCodeExpired       = errors.New("code expired")
	ErrCodeUsed          = errors.New("code already used")
	ErrAlreadyLinked     = errors.New("discord account already linked to another user")
	ErrCodeGeneration    = errors.New("could not generate a unique link code")
	ErrDiscordNotLinked  = errors.New("no discord account linked")
	ErrMissingLinkFields = errors.New("code, discordId and discordUsername are required")
)

type DiscordService struct {
	db       *pgxpool.Pool
	notifier *NotificationService
	now      func() time.Time
}

func NewDiscordService(db *pgxpool.Pool, notifier *NotificationService) *DiscordService {
	return &DiscordService{
		db:       db,
		notifier: notifier,
		now:      time.Now,
	}
}

// generateLinkCode draws linkCodeLength symbols uniformly from the 32-symbol
// alphabet. 256 is a multiple of 32, so masking the low five bits keeps the
// distribution unbiased.
func generateLinkCode() (string, error) {
	buf := make([]byte, linkCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	code := make([]byte, linkCodeLength)
	for i, b := range buf {
		code[i] = linkCodeAlphabet[b&31]
	}
	return string(code), nil
}

// IssueLinkCode mints a fresh single-use code for the user, superseding any
// code they already had. Old codes become unusable the moment this returns.
func (s *DiscordService) IssueLinkCode(ctx context.Context, clerkID string) (*discord.LinkCodeResponse, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM link_codes WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to clear old link codes: %w", err)
	}

	expiresAt := s.now().Add(linkCodeTTL)

	for attempt := 0; attempt < linkCodeAttempts; attempt++ {
		code, err := generateLinkCode()
		if err != nil {
			return nil, err
		}

		_, err = s.db.Exec(ctx, `
			INSERT INTO link_codes (code, user_id, expires_at, used, created_at)
			VALUES ($1, $2, $3, false, NOW())
		`, code, userID, expiresAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationPg {
				// Another user's active code collided. At 32^6 combinations
				// this is effectively never; retry with a new draw.
				log.Printf("Link code collision on attempt %d for user %s", attempt+1, userID)
				continue
			}
			return nil, fmt.Errorf("failed to insert link code: %w", err)
		}

		return &discord.LinkCodeResponse{Code: code, ExpiresAt: expiresAt}, nil
	}

	return nil, ErrCodeGeneration
}

// VerifyAndLink consumes a code on behalf of the Discord bot and binds the
// reported Discord identity to the code's owner.
//
// The account update and the used-flag update are two separate writes. A
// crash between them leaves the account linked with the code still live for
// the rest of its TTL; with a 10-minute single-recipient code that window is
// tolerated rather than paying for a transaction on every verification.
func (s *DiscordService) VerifyAndLink(ctx context.Context, code, discordID, discordUsername string) (*discord.VerifyLinkResponse, error) {
	if code == "" || discordID == "" || discordUsername == "" {
		return nil, ErrMissingLinkFields
	}

	var ownerID uuid.UUID
	var ownerUsername string
	var expiresAt time.Time
	var used bool

	query := `
	SELECT lc.user_id, lc.expires_at, lc.used, u.username
	FROM link_codes lc
	JOIN users u ON u.id = lc.user_id
	WHERE lc.code = $1
	`
	err := s.db.QueryRow(ctx, query, code).Scan(&ownerID, &expiresAt, &used, &ownerUsername)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to look up link code: %w", err)
	}

	if used {
		return nil, ErrCodeUsed
	}
	if expiresAt.Before(s.now()) {
		return nil, ErrCodeExpired
	}

	// Refuse to silently re-bind a Discord identity that already belongs to
	// a different account.
	var conflictID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT id FROM users WHERE discord_id = $1 AND id <> $2`, discordID, ownerID).Scan(&conflictID)
	if err == nil {
		return nil, ErrAlreadyLinked
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check discord link conflict: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		UPDATE users
		SET discord_id = $2, discord_username = $3, updated_at = NOW()
		WHERE id = $1
	`, ownerID, discordID, discordUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to link discord account: %w", err)
	}

	if _, err := s.db.Exec(ctx, `UPDATE link_codes SET used = true WHERE code = $1`, code); err != nil {
		// The account is linked; the code dies at its TTL regardless.
		log.Printf("Failed to mark link code used for user %s: %v", ownerID, err)
	}

	if s.notifier != nil {
		_, err := s.notifier.CreateNotification(ctx, &notification.CreateNotificationRequest{
			UserID:      ownerID,
			Type:        notification.NotificationDiscordLinked,
			Title:       "Discord linked",
			Body:        fmt.Sprintf("Your account is now linked to %s on Discord.", discordUsername),
			Data:        map[string]any{"discord_username": discordUsername},
			ReferenceID: discordID,
		})
		if err != nil {
			log.Printf("Failed to create discord_linked notification: %v", err)
		}
	}

	return &discord.VerifyLinkResponse{
		Success:  true,
		UserID:   ownerID.String(),
		Username: ownerUsername,
	}, nil
}

// Unlink removes the Discord binding from the caller's account.
func (s *DiscordService) Unlink(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET discord_id = NULL, discord_username = NULL, updated_at = NOW()
		WHERE clerk_id = $1 AND discord_id IS NOT NULL
	`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to unlink discord account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDiscordNotLinked
	}
	return nil
}

func (s *DiscordService) GetLinkStatus(ctx context.Context, clerkID string) (*discord.LinkStatusResponse, error) {
	var discordUsername *string
	err := s.db.QueryRow(ctx, `SELECT discord_username FROM users WHERE clerk_id = $1`, clerkID).Scan(&discordUsername)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read link status: %w", err)
	}

	resp := &discord.LinkStatusResponse{Linked: discordUsername != nil}
	if discordUsername != nil {
		resp.DiscordUsername = *discordUsername
	}
	return resp, nil
}

// GetLinkedIdentity resolves the caller's Discord identity for outbound
// notifications. Returns ErrDiscordNotLinked when nothing is bound, including
// when the user row itself is gone; a deleted account has nothing to notify.
func (s *DiscordService) GetLinkedIdentity(ctx context.Context, clerkID string) (discordID, discordUsername string, err error) {
	var id, username *string
	err = s.db.QueryRow(ctx, `SELECT discord_id, discord_username FROM users WHERE clerk_id = $1`, clerkID).Scan(&id, &username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", ErrDiscordNotLinked
		}
		return "", "", fmt.Errorf("failed to resolve discord identity: %w", err)
	}
	if id == nil || username == nil {
		return "", "", ErrDiscordNotLinked
	}
	return *id, *username, nil
}
