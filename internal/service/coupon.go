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

type CouponService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// ApplyCoupon attaches the coupon to the user's cart, replacing any coupon
// applied earlier.
func (s *CouponService) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*models.Order, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("coupon code is required: %w", ErrValidation)
	}

	var orderID uuid.UUID
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		order, err := tx.LockActiveOrder(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveOrder
		}
		if err != nil {
			return err
		}

		coupon, err := tx.GetCouponByCode(ctx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("coupon %q: %w", code, ErrNotFound)
		}
		if err != nil {
			return err
		}

		orderID = order.ID
		return tx.SetCoupon(ctx, order.ID, coupon.ID)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.Events, events.TopicCart, userID.String(), events.CartEvent{
		Type:    events.CouponApplied,
		UserID:  userID,
		OrderID: order.ID,
		Code:    code,
		At:      time.Now().UTC(),
	})
	return order, nil
}
