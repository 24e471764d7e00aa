package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dojocodeAPI/internal/types/calendar"
	"dojocodeAPI/internal/types/leaderboard"
	"dojocodeAPI/internal/types/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New().String(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		Belt:      "white",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, first_name, last_name, image_url, belt, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, email_verified, belt, created_at, updated_at
	`

	err := s.db.QueryRow(
		ctx,
		query,
		u.ID,
		u.ClerkID,
		u.Email,
		u.Username,
		u.FirstName,
		u.LastName,
		u.ImageURL,
		u.Belt,
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.EmailVerified,
		&u.Belt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, username, first_name, last_name, image_url, email_verified,
		xp, belt, current_streak, longest_streak, last_activity_date, discord_id, discord_username,
		created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.EmailVerified,
		&u.XP,
		&u.Belt,
		&u.CurrentStreak,
		&u.LongestStreak,
		&u.LastActivityDay,
		&u.DiscordID,
		&u.DiscordUsername,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users
	SET username = $2, first_name = $3, last_name = $4, image_url = $5, updated_at = NOW()
	WHERE clerk_id = $1
	`

	tag, err := s.db.Exec(ctx, query, clerkID, req.Username, req.FirstName, req.LastName, req.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("user not found")
	}

	return s.GetUserByClerkID(ctx, clerkID)
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (s *UserService) UpdateEmailVerification(ctx context.Context, clerkID string, verified bool) error {
	_, err := s.db.Exec(ctx, `
		UPDATE users SET email_verified = $2, updated_at = NOW() WHERE clerk_id = $1
	`, clerkID, verified)
	if err != nil {
		return fmt.Errorf("failed to update email verification: %w", err)
	}
	return nil
}

// GetLeaderboard ranks the community by XP. Scope "global" uses lifetime XP;
// "weekly" ranks by XP earned during the current ISO week from the xp_logs
// window.
func (s *UserService) GetLeaderboard(ctx context.Context, clerkID string, scope string) (*leaderboard.Leaderboard, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	var query string
	switch scope {
	case "weekly":
		query = `
	SELECT
		u.id as user_id,
		u.username,
		u.image_url,
		COALESCE(wx.xp_this_week, 0) as xp,
		u.belt,
		RANK() OVER (ORDER BY COALESCE(wx.xp_this_week, 0) DESC) as rank,
		u.current_streak
	FROM users u
	LEFT JOIN (
		SELECT user_id, SUM(amount) as xp_this_week
		FROM xp_logs
		WHERE created_at >= DATE_TRUNC('week', CURRENT_DATE)
		GROUP BY user_id
	) wx ON u.id = wx.user_id
	ORDER BY xp DESC, u.current_streak DESC
	LIMIT 100
`
	default:
		scope = "global"
		query = `
	SELECT
		u.id as user_id,
		u.username,
		u.image_url,
		u.xp,
		u.belt,
		RANK() OVER (ORDER BY u.xp DESC) as rank,
		u.current_streak
	FROM users u
	ORDER BY u.xp DESC, u.current_streak DESC
	LIMIT 100
`
	}

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*leaderboard.LeaderboardEntry
	var userPosition *leaderboard.LeaderboardEntry

	for rows.Next() {
		entry := &leaderboard.LeaderboardEntry{}
		err := rows.Scan(
			&entry.UserID,
			&entry.Username,
			&entry.ImageURL,
			&entry.XP,
			&entry.Belt,
			&entry.Rank,
			&entry.CurrentStreak,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		entries = append(entries, entry)

		if entry.UserID == userID {
			userPosition = entry
		}
	}

	return &leaderboard.Leaderboard{
		Scope:        scope,
		Entries:      entries,
		UserPosition: userPosition,
		TotalUsers:   len(entries),
	}, nil
}

// GetCalendar returns per-day activity for one month, driving the profile
// heatmap. A day is active when any XP was logged on it.
func (s *UserService) GetCalendar(ctx context.Context, clerkID string, year int, month int) (*calendar.CalendarResponse, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)

	query := `
	SELECT created_at::date AS day, SUM(amount) AS xp_earned
	FROM xp_logs
	WHERE user_id = $1
		AND created_at >= $2
		AND created_at < $3 + INTERVAL '1 day'
	GROUP BY day
	ORDER BY day
	`

	rows, err := s.db.Query(ctx, query, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer rows.Close()

	xpByDay := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var earned int
		if err := rows.Scan(&day, &earned); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		xpByDay[day.Format("2006-01-02")] = earned
	}

	var days []*calendar.CalendarDay
	today := time.Now().Format("2006-01-02")

	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		earned := xpByDay[dateStr]
		days = append(days, &calendar.CalendarDay{
			Date:     d,
			Active:   earned > 0,
			XPEarned: earned,
			IsToday:  dateStr == today,
		})
	}

	return &calendar.CalendarResponse{
		Year:  year,
		Month: month,
		Days:  days,
	}, nil
}
