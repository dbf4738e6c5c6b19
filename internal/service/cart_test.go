package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/repo/repotest"
)

func TestCartService_AddItemTwiceAccumulates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	repotest.SeedItem(t, env.Repo, "blue-shirt", "20.00")

	first := env.addItem(t, userID, "blue-shirt")
	assert.False(t, first.Updated)

	second := env.addItem(t, userID, "blue-shirt")
	assert.True(t, second.Updated)
	assert.Equal(t, first.Order.ID, second.Order.ID)

	order, err := env.Cart.ActiveOrder(ctx, userID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.EqualValues(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "40.00", Total(order).StringFixed(2))

	n, err := env.Repo.CountActiveOrders(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.Equal(t, []string{events.ItemAdded, events.ItemAdded}, env.Events.types())
}

func TestCartService_AddItemErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repotest.SeedItem(t, env.Repo, "blue-shirt", "20.00")

	_, err := env.Cart.AddItem(ctx, uuid.New(), "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.Cart.AddItem(ctx, uuid.New(), "blue-shirt", 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCartService_RemoveSingleUnit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	repotest.SeedItem(t, env.Repo, "blue-shirt", "20.00")

	env.addItem(t, userID, "blue-shirt")
	env.addItem(t, userID, "blue-shirt")

	res, err := env.Cart.RemoveItem(ctx, userID, "blue-shirt", false)
	require.NoError(t, err)
	assert.False(t, res.Removed)
	assert.EqualValues(t, 1, res.Quantity)
	require.Len(t, res.Order.Items, 1)
	assert.EqualValues(t, 1, res.Order.Items[0].Quantity)

	res, err = env.Cart.RemoveItem(ctx, userID, "blue-shirt", false)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Empty(t, res.Order.Items)

	// the emptied cart is still the active order
	order, err := env.Cart.ActiveOrder(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, order.Items)
}

func TestCartService_RemoveWholeLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	repotest.SeedItem(t, env.Repo, "blue-shirt", "20.00")
	repotest.SeedItem(t, env.Repo, "red-hat", "5.00")

	env.addItem(t, userID, "blue-shirt")
	env.addItem(t, userID, "blue-shirt")
	env.addItem(t, userID, "red-hat")

	res, err := env.Cart.RemoveItem(ctx, userID, "blue-shirt", true)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	require.Len(t, res.Order.Items, 1)
	assert.Equal(t, "red-hat", res.Order.Items[0].Item.Slug)
}

func TestCartService_RemoveItemConditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	repotest.SeedItem(t, env.Repo, "blue-shirt", "20.00")
	repotest.SeedItem(t, env.Repo, "red-hat", "5.00")

	_, err := env.Cart.RemoveItem(ctx, userID, "blue-shirt", true)
	assert.ErrorIs(t, err, ErrNoActiveOrder)

	env.addItem(t, userID, "red-hat")

	_, err = env.Cart.RemoveItem(ctx, userID, "blue-shirt", false)
	assert.ErrorIs(t, err, ErrItemNotInCart)

	_, err = env.Cart.RemoveItem(ctx, userID, "missing", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_ActiveOrderMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Cart.ActiveOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNoActiveOrder)
}

func TestCartService_CartsAreIsolatedPerUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	repotest.SeedItem(t, env.Repo, "blue-shirt", "20.00")

	a := env.addItem(t, alice, "blue-shirt")
	b := env.addItem(t, bob, "blue-shirt")
	assert.NotEqual(t, a.Order.ID, b.Order.ID)

	_, err := env.Cart.RemoveItem(ctx, alice, "blue-shirt", true)
	require.NoError(t, err)

	order, err := env.Cart.ActiveOrder(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, order.Items, 1)
}
