package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo/repotest"
)

func cartWithItem(t *testing.T, env *testEnv) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	repotest.SeedItem(t, env.Repo, "blue-shirt", "20.00")
	env.addItem(t, userID, "blue-shirt")
	return userID
}

func TestCheckout_UseDefaultShippingWithoutDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := cartWithItem(t, env)

	_, err := env.Checkout.Checkout(ctx, userID, CheckoutForm{
		UseDefaultShipping: true,
		SameBillingAddress: true,
		PaymentOption:      "S",
	})
	require.ErrorIs(t, err, ErrNoDefaultAddress)

	var ae *AddressError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, models.AddressShipping, ae.Type)

	order, err := env.Cart.ActiveOrder(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, order.ShippingAddressID)
	assert.Nil(t, order.BillingAddressID)
}

func TestCheckout_InvalidFormsRollBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := cartWithItem(t, env)

	bad := validAddress()
	bad.Zip = "   "

	_, err := env.Checkout.Checkout(ctx, userID, CheckoutForm{Shipping: bad, SameBillingAddress: true, PaymentOption: "S"})
	var ae *AddressError
	require.ErrorAs(t, err, &ae)
	assert.ErrorIs(t, err, ErrInvalidAddressForm)
	assert.Equal(t, models.AddressShipping, ae.Type)

	// shipping is valid and stored inside the transaction, billing is not:
	// nothing may survive
	_, err = env.Checkout.Checkout(ctx, userID, CheckoutForm{
		Shipping:           validAddress(),
		SetDefaultShipping: true,
		Billing:            AddressInput{Street: "x"},
		PaymentOption:      "S",
	})
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, models.AddressBilling, ae.Type)

	order, err := env.Cart.ActiveOrder(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, order.ShippingAddressID)

	page, err := env.Checkout.CheckoutView(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, page.DefaultShipping, "default from the rolled back attempt must not exist")
}

func TestCheckout_SameAsShipping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := cartWithItem(t, env)

	res, err := env.Checkout.Checkout(ctx, userID, CheckoutForm{
		Shipping:           validAddress(),
		SameBillingAddress: true,
		PaymentOption:      "stripe",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStripe, res.Method)

	require.NotNil(t, res.Order.ShippingAddress)
	require.NotNil(t, res.Order.BillingAddress)
	assert.NotEqual(t, res.Order.ShippingAddress.ID, res.Order.BillingAddress.ID)
	assert.Equal(t, models.AddressShipping, res.Order.ShippingAddress.AddressType)
	assert.Equal(t, models.AddressBilling, res.Order.BillingAddress.AddressType)
	assert.Equal(t, res.Order.ShippingAddress.StreetAddress, res.Order.BillingAddress.StreetAddress)
	assert.Equal(t, "US", res.Order.BillingAddress.Country)
	assert.False(t, res.Order.BillingAddress.Default)
}

func TestCheckout_InvalidPaymentMethodKeepsAddresses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := cartWithItem(t, env)

	res, err := env.Checkout.Checkout(ctx, userID, CheckoutForm{
		Shipping:           validAddress(),
		SameBillingAddress: true,
		PaymentOption:      "bitcoin",
	})
	require.ErrorIs(t, err, ErrInvalidPaymentMethod)
	require.NotNil(t, res)

	order, err := env.Cart.ActiveOrder(ctx, userID)
	require.NoError(t, err)
	assert.NotNil(t, order.ShippingAddressID)
	assert.NotNil(t, order.BillingAddressID)
}

func TestCheckout_DefaultsAreReusedAndSwitched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := cartWithItem(t, env)

	first, err := env.Checkout.Checkout(ctx, userID, CheckoutForm{
		Shipping:           validAddress(),
		SetDefaultShipping: true,
		Billing:            validAddress(),
		SetDefaultBilling:  true,
		PaymentOption:      "P",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPayPal, first.Method)

	reused, err := env.Checkout.Checkout(ctx, userID, CheckoutForm{
		UseDefaultShipping: true,
		UseDefaultBilling:  true,
		PaymentOption:      "S",
	})
	require.NoError(t, err)
	assert.Equal(t, *first.Order.ShippingAddressID, *reused.Order.ShippingAddressID)
	assert.Equal(t, *first.Order.BillingAddressID, *reused.Order.BillingAddressID)

	other := validAddress()
	other.Street = "2 Side St"
	switched, err := env.Checkout.Checkout(ctx, userID, CheckoutForm{
		Shipping:           other,
		SetDefaultShipping: true,
		UseDefaultBilling:  true,
		PaymentOption:      "S",
	})
	require.NoError(t, err)

	page, err := env.Checkout.CheckoutView(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, page.DefaultShipping)
	assert.Equal(t, *switched.Order.ShippingAddressID, page.DefaultShipping.ID)
	assert.Equal(t, "2 Side St", page.DefaultShipping.StreetAddress)
	require.NotNil(t, page.DefaultBilling)

	old, err := env.Repo.GetAddress(ctx, *first.Order.ShippingAddressID)
	require.NoError(t, err)
	assert.False(t, old.Default)
}

func TestCheckout_NoActiveOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Checkout.Checkout(ctx, uuid.New(), CheckoutForm{Shipping: validAddress(), SameBillingAddress: true, PaymentOption: "S"})
	assert.ErrorIs(t, err, ErrNoActiveOrder)

	_, err = env.Checkout.CheckoutView(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNoActiveOrder)
}

func TestAddressInput_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, AddressInput{Street: "a", Country: "US", Zip: "1"}.Valid())
	assert.False(t, AddressInput{Street: "a", Country: "", Zip: "1"}.Valid())
	assert.False(t, AddressInput{Street: " ", Country: "US", Zip: "1"}.Valid())
	assert.False(t, AddressInput{Street: "a", Country: "US"}.Valid())
}
