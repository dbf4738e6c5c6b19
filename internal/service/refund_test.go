package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func TestRefund_UnknownRefCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := checkedOutCart(t, env)
	res, err := env.Payment.Pay(ctx, userID, models.PaymentStripe, "tok_visa")
	require.NoError(t, err)

	_, err = env.Refund.RequestRefund(ctx, "AAAAAAAAAAAAAAAAAAAA", "broken", "buyer@example.com")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	order, err := env.Repo.GetOrder(ctx, res.Order.ID)
	require.NoError(t, err)
	assert.False(t, order.RefundRequested)

	refunds, err := env.Repo.RefundsForOrder(ctx, res.Order.ID)
	require.NoError(t, err)
	assert.Empty(t, refunds)
}

func TestRefund_FlagsOrderAndRecordsRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := checkedOutCart(t, env)
	res, err := env.Payment.Pay(ctx, userID, models.PaymentStripe, "tok_visa")
	require.NoError(t, err)
	code := *res.Order.RefCode

	refund, err := env.Refund.RequestRefund(ctx, code, "wrong size", "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, res.Order.ID, refund.OrderID)
	assert.False(t, refund.Accepted)

	_, err = env.Refund.RequestRefund(ctx, code, "still wrong", "buyer@example.com")
	require.NoError(t, err)

	order, err := env.Repo.GetOrder(ctx, res.Order.ID)
	require.NoError(t, err)
	assert.True(t, order.RefundRequested)

	refunds, err := env.Repo.RefundsForOrder(ctx, res.Order.ID)
	require.NoError(t, err)
	assert.Len(t, refunds, 2)
}

func TestRefund_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Refund.RequestRefund(ctx, "", "reason", "buyer@example.com")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.Refund.RequestRefund(ctx, "code", "reason", "not-an-email")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRefund_StoresBareEmailAddress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := checkedOutCart(t, env)
	res, err := env.Payment.Pay(ctx, userID, models.PaymentStripe, "tok_visa")
	require.NoError(t, err)

	refund, err := env.Refund.RequestRefund(ctx, *res.Order.RefCode, "wrong size", "Buyer <buyer@example.com>")
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", refund.Email)

	refunds, err := env.Repo.RefundsForOrder(ctx, res.Order.ID)
	require.NoError(t, err)
	require.Len(t, refunds, 1)
	assert.Equal(t, "buyer@example.com", refunds[0].Email)
}
