package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

func activeKey(userID uuid.UUID) string {
	return userID.String()
}

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Item").
		Preload("ShippingAddress").
		Preload("BillingAddress").
		Preload("Coupon")
}

// EnsureActiveOrder returns the locked active order of the user, creating it
// when missing. Concurrent creators collide on the active key and the loser
// reads the winner's row.
func (r *GormRepo) EnsureActiveOrder(ctx context.Context, userID uuid.UUID) (*models.Order, bool, error) {
	key := activeKey(userID)
	order := models.Order{UserID: userID, ActiveKey: &key}

	res := r.DB.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "active_key"}}, DoNothing: true}).
		Create(&order)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected == 1

	locked, err := r.LockActiveOrder(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return locked, created, nil
}

// LockActiveOrder selects the user's active order FOR UPDATE without
// associations.
func (r *GormRepo) LockActiveOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Clauses(forUpdate()).
		Where("active_key = ?", activeKey(userID)).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetActiveOrder loads the user's active order with lines, addresses and coupon.
func (r *GormRepo) GetActiveOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := preloadOrder(r.DB.WithContext(ctx)).
		Where("active_key = ?", activeKey(userID)).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := preloadOrder(r.DB.WithContext(ctx)).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) CountActiveOrders(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? AND ordered = ?", userID, false).
		Count(&n).Error
	return n, err
}

func (r *GormRepo) LockLine(ctx context.Context, orderID, itemID uuid.UUID) (*models.OrderItem, error) {
	var line models.OrderItem
	if err := r.DB.WithContext(ctx).
		Clauses(forUpdate()).
		Where("order_id = ? AND item_id = ? AND ordered = ?", orderID, itemID, false).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// AddToLine increments the (order, item) line by delta or creates it.
// It reports whether an existing line was updated.
func (r *GormRepo) AddToLine(ctx context.Context, order *models.Order, itemID uuid.UUID, delta uint) (*models.OrderItem, bool, error) {
	db := r.DB.WithContext(ctx)

	res := db.Model(&models.OrderItem{}).
		Where("order_id = ? AND item_id = ?", order.ID, itemID).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		line, err := r.LockLine(ctx, order.ID, itemID)
		return line, true, err
	}

	line := models.OrderItem{
		UserID:   order.UserID,
		OrderID:  order.ID,
		ItemID:   itemID,
		Quantity: delta,
	}
	if err := db.Omit(clause.Associations).Create(&line).Error; err != nil {
		return nil, false, err
	}
	return &line, false, nil
}

func (r *GormRepo) SetLineQuantity(ctx context.Context, lineID uuid.UUID, quantity uint) error {
	return r.DB.WithContext(ctx).Model(&models.OrderItem{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

func (r *GormRepo) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", lineID).Delete(&models.OrderItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) AttachAddresses(ctx context.Context, orderID, shippingID, billingID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"shipping_address_id": shippingID,
			"billing_address_id":  billingID,
		}).Error
}

func (r *GormRepo) SetCoupon(ctx context.Context, orderID, couponID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("coupon_id", couponID).Error
}

// MarkOrdered finalises a paid order: every line and the order become
// ordered and the order stops being the user's cart.
func (r *GormRepo) MarkOrdered(ctx context.Context, orderID, paymentID uuid.UUID, refCode string, at time.Time) error {
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Update("ordered", true).Error; err != nil {
		return err
	}

	res := db.Model(&models.Order{}).
		Where("id = ? AND ordered = ?", orderID, false).
		Updates(map[string]any{
			"ordered":      true,
			"payment_id":   paymentID,
			"ref_code":     refCode,
			"ordered_date": at,
			"active_key":   gorm.Expr("NULL"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) LockOrderedByRefCode(ctx context.Context, refCode string) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Clauses(forUpdate()).
		Where("ref_code = ? AND ordered = ?", refCode, true).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) SetRefundRequested(ctx context.Context, orderID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("refund_requested", true).Error
}
