package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkCodeFlowIsSingleUse(t *testing.T) {
	pool := setupTestDB(t)
	svc := NewDiscordService(pool, nil)
	clerkID := createTestUser(t, pool)

	ctx := context.Background()

	issued, err := svc.IssueLinkCode(ctx, clerkID)
	require.NoError(t, err)
	require.Len(t, issued.Code, linkCodeLength)
	assert.WithinDuration(t, time.Now().Add(linkCodeTTL), issued.ExpiresAt, time.Minute)

	linked, err := svc.VerifyAndLink(ctx, issued.Code, "100200300", "kata_kid")
	require.NoError(t, err)
	assert.True(t, linked.Success)
	assert.NotEmpty(t, linked.UserID)

	status, err := svc.GetLinkStatus(ctx, clerkID)
	require.NoError(t, err)
	assert.True(t, status.Linked)
	assert.Equal(t, "kata_kid", status.DiscordUsername)

	// The code is consumed by the first verification.
	_, err = svc.VerifyAndLink(ctx, issued.Code, "100200300", "kata_kid")
	assert.ErrorIs(t, err, ErrCodeUsed)
}

func TestVerifyAndLinkUnknownCode(t *testing.T) {
	pool := setupTestDB(t)
	svc := NewDiscordService(pool, nil)

	_, err := svc.VerifyAndLink(context.Background(), "ZZZZZZ", "100200300", "kata_kid")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerifyAndLinkExpiredCode(t *testing.T) {
	pool := setupTestDB(t)
	svc := NewDiscordService(pool, nil)
	clerkID := createTestUser(t, pool)

	ctx := context.Background()

	issued, err := svc.IssueLinkCode(ctx, clerkID)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(linkCodeTTL + time.Minute) }

	_, err = svc.VerifyAndLink(ctx, issued.Code, "100200300", "kata_kid")
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestIssueLinkCodeSupersedesPrevious(t *testing.T) {
	pool := setupTestDB(t)
	svc := NewDiscordService(pool, nil)
	clerkID := createTestUser(t, pool)

	ctx := context.Background()

	first, err := svc.IssueLinkCode(ctx, clerkID)
	require.NoError(t, err)

	second, err := svc.IssueLinkCode(ctx, clerkID)
	require.NoError(t, err)
	require.NotEqual(t, first.Code, second.Code)

	// The superseded code is gone, not merely expired.
	_, err = svc.VerifyAndLink(ctx, first.Code, "100200300", "kata_kid")
	assert.ErrorIs(t, err, ErrInvalidCode)

	linked, err := svc.VerifyAndLink(ctx, second.Code, "100200300", "kata_kid")
	require.NoError(t, err)
	assert.True(t, linked.Success)
}

func TestVerifyAndLinkRejectsForeignDiscordID(t *testing.T) {
	pool := setupTestDB(t)
	svc := NewDiscordService(pool, nil)

	ctx := context.Background()

	ownerClerkID := createTestUser(t, pool)
	owned, err := svc.IssueLinkCode(ctx, ownerClerkID)
	require.NoError(t, err)
	_, err = svc.VerifyAndLink(ctx, owned.Code, "555666777", "first_owner")
	require.NoError(t, err)

	otherClerkID := createTestUser(t, pool)
	other, err := svc.IssueLinkCode(ctx, otherClerkID)
	require.NoError(t, err)

	_, err = svc.VerifyAndLink(ctx, other.Code, "555666777", "second_owner")
	assert.ErrorIs(t, err, ErrAlreadyLinked)

	// Losing the conflict must not consume the code; the user can retry with
	// the right Discord account.
	linked, err := svc.VerifyAndLink(ctx, other.Code, "888999000", "second_owner")
	require.NoError(t, err)
	assert.True(t, linked.Success)
}

func TestGetLinkedIdentityMissingUserIsNotLinked(t *testing.T) {
	pool := setupTestDB(t)
	svc := NewDiscordService(pool, nil)

	_, _, err := svc.GetLinkedIdentity(context.Background(), "user_itest_gone")
	assert.ErrorIs(t, err, ErrDiscordNotLinked)
}

func TestUnlinkRequiresExistingLink(t *testing.T) {
	pool := setupTestDB(t)
	svc := NewDiscordService(pool, nil)
	clerkID := createTestUser(t, pool)

	ctx := context.Background()

	err := svc.Unlink(ctx, clerkID)
	assert.ErrorIs(t, err, ErrDiscordNotLinked)

	issued, err := svc.IssueLinkCode(ctx, clerkID)
	require.NoError(t, err)
	_, err = svc.VerifyAndLink(ctx, issued.Code, "424242424", "unlink_me")
	require.NoError(t, err)

	require.NoError(t, svc.Unlink(ctx, clerkID))

	status, err := svc.GetLinkStatus(ctx, clerkID)
	require.NoError(t, err)
	assert.False(t, status.Linked)
}
