package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type AddResult struct {
	Order *models.Order
	Line  *models.OrderItem
	// Updated is true when the item was already in the cart.
	Updated bool
}

type RemoveResult struct {
	Order *models.Order
	// Removed is true when the line left the cart entirely.
	Removed  bool
	Quantity uint
}

func (s *CartService) itemBySlug(ctx context.Context, slug string) (*models.Item, error) {
	item, err := s.Repo.GetItemBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("item %q: %w", slug, ErrNotFound)
	}
	return item, err
}

// AddItem puts delta units of the item into the user's cart, creating the
// cart when the user has none.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, slug string, delta uint) (*AddResult, error) {
	if delta == 0 {
		return nil, fmt.Errorf("quantity must be more than zero: %w", ErrValidation)
	}

	item, err := s.itemBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	var res AddResult
	err = s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		order, _, err := tx.EnsureActiveOrder(ctx, userID)
		if err != nil {
			return err
		}
		line, updated, err := tx.AddToLine(ctx, order, item.ID, delta)
		if err != nil {
			return err
		}
		res.Line, res.Updated = line, updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Order, err = s.Repo.GetActiveOrder(ctx, userID); err != nil {
		return nil, err
	}

	events.Publish(ctx, s.Events, events.TopicCart, userID.String(), events.CartEvent{
		Type:     events.ItemAdded,
		UserID:   userID,
		OrderID:  res.Order.ID,
		Slug:     slug,
		Quantity: res.Line.Quantity,
		At:       time.Now().UTC(),
	})
	return &res, nil
}

// RemoveItem drops the whole line when whole is set, otherwise one unit;
// a line that would reach zero is removed.
func (s *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, slug string, whole bool) (*RemoveResult, error) {
	item, err := s.itemBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	var res RemoveResult
	err = s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		order, err := tx.LockActiveOrder(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveOrder
		}
		if err != nil {
			return err
		}

		line, err := tx.LockLine(ctx, order.ID, item.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("item %q: %w", slug, ErrItemNotInCart)
		}
		if err != nil {
			return err
		}

		if whole || line.Quantity <= 1 {
			res.Removed = true
			return tx.DeleteLine(ctx, line.ID)
		}
		res.Quantity = line.Quantity - 1
		return tx.SetLineQuantity(ctx, line.ID, res.Quantity)
	})
	if err != nil {
		return nil, err
	}

	if res.Order, err = s.Repo.GetActiveOrder(ctx, userID); err != nil {
		return nil, err
	}

	events.Publish(ctx, s.Events, events.TopicCart, userID.String(), events.CartEvent{
		Type:     events.ItemRemoved,
		UserID:   userID,
		OrderID:  res.Order.ID,
		Slug:     slug,
		Quantity: res.Quantity,
		At:       time.Now().UTC(),
	})
	return &res, nil
}

// ActiveOrder returns the user's cart. An existing empty cart is not an error.
func (s *CartService) ActiveOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetActiveOrder(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveOrder
	}
	return order, err
}
