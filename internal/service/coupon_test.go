package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/repo/repotest"
)

func TestCouponService_ApplyCoupon(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	repotest.SeedItem(t, env.Repo, "blue-shirt", "20.00")
	repotest.SeedCoupon(t, env.Repo, "SAVE10", "10.00")
	repotest.SeedCoupon(t, env.Repo, "SAVE5", "5.00")

	_, err := env.Coupon.ApplyCoupon(ctx, userID, "SAVE10")
	assert.ErrorIs(t, err, ErrNoActiveOrder)

	env.addItem(t, userID, "blue-shirt")

	_, err = env.Coupon.ApplyCoupon(ctx, userID, "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.Coupon.ApplyCoupon(ctx, userID, "  ")
	assert.ErrorIs(t, err, ErrValidation)

	order, err := env.Coupon.ApplyCoupon(ctx, userID, "SAVE10")
	require.NoError(t, err)
	require.NotNil(t, order.Coupon)
	assert.Equal(t, "10.00", Total(order).StringFixed(2))

	// a second coupon replaces the first one
	order, err = env.Coupon.ApplyCoupon(ctx, userID, "SAVE5")
	require.NoError(t, err)
	assert.Equal(t, "SAVE5", order.Coupon.Code)
	assert.Equal(t, "15.00", Total(order).StringFixed(2))
}
