package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type AddressInput struct {
	Street    string
	Apartment string
	Country   string
	Zip       string
}

// Valid requires street, country and zip; the apartment line is optional.
func (a AddressInput) Valid() bool {
	for _, v := range []string{a.Street, a.Country, a.Zip} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

type CheckoutForm struct {
	UseDefaultShipping bool
	Shipping           AddressInput
	SetDefaultShipping bool

	SameBillingAddress bool
	UseDefaultBilling  bool
	Billing            AddressInput
	SetDefaultBilling  bool

	PaymentOption string
}

type CheckoutResult struct {
	Order  *models.Order
	Method models.PaymentMethod
}

// CheckoutPage is what the checkout form is rendered from.
type CheckoutPage struct {
	Order           *models.Order
	DefaultShipping *models.Address
	DefaultBilling  *models.Address
}

type CheckoutService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *CheckoutService) CheckoutView(ctx context.Context, userID uuid.UUID) (*CheckoutPage, error) {
	order, err := s.Repo.GetActiveOrder(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveOrder
	}
	if err != nil {
		return nil, err
	}

	page := &CheckoutPage{Order: order}
	if page.DefaultShipping, err = s.optionalDefault(ctx, userID, models.AddressShipping); err != nil {
		return nil, err
	}
	if page.DefaultBilling, err = s.optionalDefault(ctx, userID, models.AddressBilling); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *CheckoutService) optionalDefault(ctx context.Context, userID uuid.UUID, t models.AddressType) (*models.Address, error) {
	addr, err := s.Repo.DefaultAddress(ctx, userID, t)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return addr, err
}

// Checkout resolves and attaches the shipping and billing addresses in one
// transaction, then picks the payment method. A bad payment option is
// reported after the addresses are stored.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, form CheckoutForm) (*CheckoutResult, error) {
	var orderID uuid.UUID
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		order, err := tx.LockActiveOrder(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveOrder
		}
		if err != nil {
			return err
		}
		orderID = order.ID

		shipping, err := resolveAddress(ctx, tx, userID, models.AddressShipping,
			form.UseDefaultShipping, form.Shipping, form.SetDefaultShipping)
		if err != nil {
			return err
		}

		var billing *models.Address
		if form.SameBillingAddress {
			billing = &models.Address{
				UserID:           userID,
				StreetAddress:    shipping.StreetAddress,
				ApartmentAddress: shipping.ApartmentAddress,
				Country:          shipping.Country,
				Zip:              shipping.Zip,
				AddressType:      models.AddressBilling,
			}
			if err := tx.CreateAddress(ctx, billing, false); err != nil {
				return err
			}
		} else {
			billing, err = resolveAddress(ctx, tx, userID, models.AddressBilling,
				form.UseDefaultBilling, form.Billing, form.SetDefaultBilling)
			if err != nil {
				return err
			}
		}

		return tx.AttachAddresses(ctx, order.ID, shipping.ID, billing.ID)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	method, ok := models.ParsePaymentMethod(form.PaymentOption)
	if !ok {
		return &CheckoutResult{Order: order}, fmt.Errorf("payment option %q: %w", form.PaymentOption, ErrInvalidPaymentMethod)
	}

	events.Publish(ctx, s.Events, events.TopicCart, userID.String(), events.CartEvent{
		Type:    events.CheckoutCompleted,
		UserID:  userID,
		OrderID: order.ID,
		At:      time.Now().UTC(),
	})
	return &CheckoutResult{Order: order, Method: method}, nil
}

func resolveAddress(ctx context.Context, tx *repo.GormRepo, userID uuid.UUID, t models.AddressType,
	useDefault bool, in AddressInput, makeDefault bool) (*models.Address, error) {
	if useDefault {
		addr, err := tx.DefaultAddress(ctx, userID, t)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &AddressError{Type: t, Err: ErrNoDefaultAddress}
		}
		return addr, err
	}

	if !in.Valid() {
		return nil, &AddressError{Type: t, Err: ErrInvalidAddressForm}
	}

	addr := &models.Address{
		UserID:           userID,
		StreetAddress:    strings.TrimSpace(in.Street),
		ApartmentAddress: strings.TrimSpace(in.Apartment),
		Country:          strings.ToUpper(strings.TrimSpace(in.Country)),
		Zip:              strings.TrimSpace(in.Zip),
		AddressType:      t,
	}
	if err := tx.CreateAddress(ctx, addr, makeDefault); err != nil {
		return nil, err
	}
	return addr, nil
}
