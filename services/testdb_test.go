package services

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"dojocodeAPI/internal/types/user"
)

var testUserSeq int64

// setupTestDB connects to the database named by TEST_DATABASE_URL (falling
// back to DATABASE_URL) and skips the test when neither is set, so the
// database-backed tests only run where a Postgres instance is available.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	t.Cleanup(func() {
		_, err := pool.Exec(ctx, "DELETE FROM users WHERE clerk_id LIKE 'user_itest_%'")
		if err != nil {
			t.Logf("Warning: failed to clean up test users: %v", err)
		}
		pool.Close()
	})

	return pool
}

// createTestUser provisions a user row through the real service and returns
// its clerk id. Dependent rows are removed by cascade during cleanup.
func createTestUser(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	seq := atomic.AddInt64(&testUserSeq, 1)
	clerkID := fmt.Sprintf("user_itest_%d_%d", time.Now().UnixNano(), seq)

	_, err := NewUserService(pool).CreateUser(context.Background(), &user.CreateUserRequest{
		ClerkID:  clerkID,
		Email:    fmt.Sprintf("itest%d@example.com", seq),
		Username: fmt.Sprintf("itest%d", seq),
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return clerkID
}
