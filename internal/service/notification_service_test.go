package service

import (
	"context"
	"testing"
	"time"

	"badgereg/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipientListsAreSeparatedByKind(t *testing.T) {
	env := setupEnv(t)
	svc := env.notificationService()
	ctx := context.Background()

	require.NoError(t, svc.AddRecipient(ctx, AddRecipientRequest{Email: "a@example.com", Kind: model.RecipientWeekly}))
	require.NoError(t, svc.AddRecipient(ctx, AddRecipientRequest{Email: "b@example.com", Kind: model.RecipientWeekly}))
	require.NoError(t, svc.AddRecipient(ctx, AddRecipientRequest{Email: "c@example.com", Kind: model.RecipientExpiry}))

	weekly, err := svc.ListRecipients(ctx, model.RecipientWeekly)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, weekly)

	expiry, err := svc.ListRecipients(ctx, model.RecipientExpiry)
	require.NoError(t, err)
	assert.Equal(t, []string{"c@example.com"}, expiry)
}

func TestListRecipientsRejectsUnknownKind(t *testing.T) {
	env := setupEnv(t)

	_, err := env.notificationService().ListRecipients(context.Background(), "daily")
	assert.Error(t, err)
}

func TestStoreTokenUpsertsByEmail(t *testing.T) {
	env := setupEnv(t)
	svc := env.notificationService()
	ctx := context.Background()

	first := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, svc.StoreToken(ctx, StoreTokenRequest{
		Email:       "sender@example.com",
		AccessToken: "tok-1",
		Expiry:      first,
	}))

	// Re-authentication replaces the row instead of adding a second one.
	second := first.Add(24 * time.Hour)
	require.NoError(t, svc.StoreToken(ctx, StoreTokenRequest{
		Email:       "sender@example.com",
		AccessToken: "tok-2",
		Expiry:      second,
	}))

	var count int64
	require.NoError(t, env.db.Model(&model.OAuthToken{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	expiry, err := svc.TokenExpiry(ctx, "sender@example.com")
	require.NoError(t, err)
	assert.True(t, second.Equal(*expiry))
}

func TestTokenExpiryUnknownSender(t *testing.T) {
	env := setupEnv(t)

	_, err := env.notificationService().TokenExpiry(context.Background(), "nobody@example.com")
	assert.ErrorContains(t, err, "no credentials stored")
}
