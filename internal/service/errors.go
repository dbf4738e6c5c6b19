package service

import (
	"errors"

	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrValidation            = errors.New("validation")
	ErrNotFound              = errors.New("not found")
	ErrNoActiveOrder         = errors.New("no active order")
	ErrItemNotInCart         = errors.New("item not in cart")
	ErrNoDefaultAddress      = errors.New("no default address")
	ErrInvalidAddressForm    = errors.New("invalid address form")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrMissingBillingAddress = errors.New("missing billing address")
	ErrEmptyOrder            = errors.New("order has no items")
	ErrCartChanged           = errors.New("cart changed during payment")
	ErrOrderNotFound         = errors.New("order not found")
)

// AddressError tells which address (shipping or billing) failed to resolve.
// It wraps ErrNoDefaultAddress or ErrInvalidAddressForm.
type AddressError struct {
	Type models.AddressType
	Err  error
}

func (e *AddressError) Error() string {
	return e.Type.String() + " address: " + e.Err.Error()
}

func (e *AddressError) Unwrap() error { return e.Err }
