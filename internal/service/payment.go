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
	"github.com/Skotchmaster/storefront/internal/gateway"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type PaymentService struct {
	Repo     *repo.GormRepo
	Gateways *gateway.Router
	Events   events.Publisher
	Currency string
	// Timeout bounds a single gateway call.
	Timeout time.Duration
	Now     func() time.Time
}

type PaymentResult struct {
	Order   *models.Order
	Payment *models.Payment
}

func (s *PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// PaymentView checks that the cart can be paid for and returns it.
func (s *PaymentService) PaymentView(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetActiveOrder(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveOrder
	}
	if err != nil {
		return nil, err
	}
	if order.BillingAddressID == nil {
		return nil, ErrMissingBillingAddress
	}
	return order, nil
}

// Pay charges the cart total through the gateway of method and, once the
// charge succeeds, finalises the order in one transaction. If finalising
// fails the charge is refunded when the gateway supports it.
func (s *PaymentService) Pay(ctx context.Context, userID uuid.UUID, method models.PaymentMethod, token string) (*PaymentResult, error) {
	l := logging.FromContext(ctx).With("user_id", userID, "method", method)

	gw, ok := s.Gateways.For(method)
	if !ok {
		return nil, fmt.Errorf("payment method %q: %w", method, ErrInvalidPaymentMethod)
	}

	order, err := s.PaymentView(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(order.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("payment token is required: %w", ErrValidation)
	}

	total := Total(order)
	amountMinor := MinorUnits(total)

	chargeID, err := s.charge(ctx, gw, gateway.ChargeRequest{
		AmountMinor: amountMinor,
		Currency:    s.Currency,
		Token:       token,
		Description: "order " + order.ID.String(),
	})
	if err != nil {
		l.Warn("gateway_charge_failed", "order_id", order.ID, "kind", gateway.KindOf(err), "error", err)
		events.Publish(ctx, s.Events, events.TopicOrder, order.ID.String(), events.OrderEvent{
			Type:        events.PaymentFailed,
			UserID:      userID,
			OrderID:     order.ID,
			Method:      string(method),
			AmountMinor: amountMinor,
			Kind:        string(gateway.KindOf(err)),
			At:          s.now(),
		})
		return nil, err
	}

	payment := &models.Payment{
		ChargeID: chargeID,
		Method:   method,
		UserID:   userID,
		Amount:   total,
	}
	var refCode string
	err = s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		locked, err := tx.LockActiveOrder(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartChanged
		}
		if err != nil {
			return err
		}
		if locked.ID != order.ID {
			return ErrCartChanged
		}

		current, err := tx.GetOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if !Total(current).Equal(total) {
			return ErrCartChanged
		}

		if refCode, err = NewRefCode(); err != nil {
			return err
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}
		return tx.MarkOrdered(ctx, order.ID, payment.ID, refCode, s.now())
	})
	if err != nil {
		l.Error("order_finalise_failed", "order_id", order.ID, "charge_id", chargeID, "error", err)
		s.compensate(ctx, gw, chargeID)
		return nil, err
	}

	paid, err := s.Repo.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.Events, events.TopicOrder, order.ID.String(), events.OrderEvent{
		Type:        events.OrderPaid,
		UserID:      userID,
		OrderID:     order.ID,
		RefCode:     refCode,
		Method:      string(method),
		AmountMinor: amountMinor,
		At:          s.now(),
	})
	return &PaymentResult{Order: paid, Payment: payment}, nil
}

func (s *PaymentService) charge(ctx context.Context, gw gateway.Gateway, req gateway.ChargeRequest) (string, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	id, err := gw.Charge(ctx, req)
	if err != nil {
		var ge *gateway.Error
		if !errors.As(err, &ge) {
			err = &gateway.Error{Kind: gateway.KindUnknown, Err: err}
		}
		return "", err
	}
	return id, nil
}

func (s *PaymentService) compensate(ctx context.Context, gw gateway.Gateway, chargeID string) {
	l := logging.FromContext(ctx).With("charge_id", chargeID)

	refunder, ok := gw.(gateway.Refunder)
	if !ok {
		l.Error("charge_not_refunded", "reason", "gateway cannot refund")
		return
	}

	ctx = context.WithoutCancel(ctx)
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	if err := refunder.Refund(ctx, chargeID); err != nil {
		l.Error("charge_not_refunded", "error", err)
		return
	}
	l.Info("charge_refunded")
}
