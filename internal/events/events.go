package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	TopicCart  = "cart_events"
	TopicOrder = "order_events"
)

const (
	ItemAdded         = "item_added"
	ItemRemoved       = "item_removed"
	CouponApplied     = "coupon_applied"
	CheckoutCompleted = "checkout_completed"

	OrderPaid       = "order_paid"
	PaymentFailed   = "payment_failed"
	RefundRequested = "refund_requested"
)

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) PublishEvent(context.Context, string, string, any) error { return nil }

type CartEvent struct {
	Type     string    `json:"type"`
	UserID   uuid.UUID `json:"userID"`
	OrderID  uuid.UUID `json:"orderID"`
	Slug     string    `json:"slug,omitempty"`
	Quantity uint      `json:"quantity,omitempty"`
	Code     string    `json:"code,omitempty"`
	At       time.Time `json:"at"`
}

type OrderEvent struct {
	Type        string    `json:"type"`
	UserID      uuid.UUID `json:"userID,omitempty"`
	OrderID     uuid.UUID `json:"orderID,omitempty"`
	RefCode     string    `json:"refCode,omitempty"`
	Method      string    `json:"method,omitempty"`
	AmountMinor int64     `json:"amountMinor,omitempty"`
	Kind        string    `json:"kind,omitempty"`
	At          time.Time `json:"at"`
}

const publishTimeout = 5 * time.Second

// Publish sends event and only logs failures; a broker outage never fails
// the request that produced the event.
func Publish(ctx context.Context, p Publisher, topic, key string, event any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", topic, "key", key, "error", err)
	}
}
