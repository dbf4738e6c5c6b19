package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type RefundService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// RequestRefund flags the paid order with refCode and records the request.
// The code alone identifies the order; the requester need not be logged in.
func (s *RefundService) RequestRefund(ctx context.Context, refCode, reason, email string) (*models.Refund, error) {
	refCode = strings.TrimSpace(refCode)
	if refCode == "" || strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("ref code and reason are required: %w", ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return nil, fmt.Errorf("email %q: %w", email, ErrValidation)
	}

	refund := &models.Refund{Reason: reason, Email: addr.Address}
	var order *models.Order
	err = s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = tx.LockOrderedByRefCode(ctx, refCode)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.SetRefundRequested(ctx, order.ID); err != nil {
			return err
		}
		refund.OrderID = order.ID
		return tx.CreateRefund(ctx, refund)
	})
	if err != nil {
		return nil, err
	}

	events.Publish(ctx, s.Events, events.TopicOrder, order.ID.String(), events.OrderEvent{
		Type:    events.RefundRequested,
		UserID:  order.UserID,
		OrderID: order.ID,
		RefCode: refCode,
		At:      time.Now().UTC(),
	})
	return refund, nil
}
