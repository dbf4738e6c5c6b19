package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AddressType string

const (
	AddressShipping AddressType = "S"
	AddressBilling  AddressType = "B"
)

func (t AddressType) String() string {
	switch t {
	case AddressShipping:
		return "shipping"
	case AddressBilling:
		return "billing"
	}
	return string(t)
}

// PaymentMethod is the closed set of gateways an order can be paid with.
type PaymentMethod string

const (
	PaymentStripe PaymentMethod = "stripe"
	PaymentPayPal PaymentMethod = "paypal"
)

// ParsePaymentMethod accepts both the short form codes ("S", "P") and
// the route names ("stripe", "paypal").
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "stripe":
		return PaymentStripe, true
	case "p", "paypal":
		return PaymentPayPal, true
	}
	return "", false
}

type Item struct {
	ID          uuid.UUID       `gorm:"primaryKey"                  json:"id"`
	Slug        string          `gorm:"uniqueIndex;size:100;not null" json:"slug"`
	Title       string          `gorm:"size:100;not null"           json:"title"`
	Category    string          `gorm:"size:2"                      json:"category"`
	Label       string          `gorm:"size:1"                      json:"label"`
	Description string          `gorm:"type:text"                   json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}

type OrderItem struct {
	ID       uuid.UUID `gorm:"primaryKey"                          json:"id"`
	UserID   uuid.UUID `gorm:"index;not null"                      json:"user_id"`
	OrderID  uuid.UUID `gorm:"uniqueIndex:idx_order_item;not null" json:"order_id"`
	ItemID   uuid.UUID `gorm:"uniqueIndex:idx_order_item;not null" json:"item_id"`
	Item     Item      `gorm:"foreignKey:ItemID"                   json:"item"`
	Ordered  bool      `gorm:"not null;default:false"              json:"ordered"`
	Quantity uint      `gorm:"not null;default:1;check:quantity>0" json:"quantity"`
}

// LineTotal is price × quantity; Item must be loaded.
func (oi *OrderItem) LineTotal() decimal.Decimal {
	return oi.Item.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}

type Order struct {
	ID     uuid.UUID `gorm:"primaryKey"     json:"id"`
	UserID uuid.UUID `gorm:"index;not null" json:"user_id"`
	// ActiveKey holds the user id while the order is the user's cart and is
	// NULL once paid, so the unique index allows one active order per user.
	ActiveKey *string `gorm:"uniqueIndex;size:36" json:"-"`
	Ordered   bool    `gorm:"not null;default:false" json:"ordered"`
	RefCode   *string `gorm:"uniqueIndex;size:20"    json:"ref_code,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	ShippingAddressID *uuid.UUID `json:"shipping_address_id,omitempty"`
	ShippingAddress   *Address   `gorm:"foreignKey:ShippingAddressID" json:"shipping_address,omitempty"`
	BillingAddressID  *uuid.UUID `json:"billing_address_id,omitempty"`
	BillingAddress    *Address   `gorm:"foreignKey:BillingAddressID" json:"billing_address,omitempty"`
	PaymentID         *uuid.UUID `json:"payment_id,omitempty"`
	Payment           *Payment   `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	CouponID          *uuid.UUID `json:"coupon_id,omitempty"`
	Coupon            *Coupon    `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`

	RefundRequested bool       `gorm:"not null;default:false" json:"refund_requested"`
	StartDate       time.Time  `gorm:"autoCreateTime"         json:"start_date"`
	OrderedDate     *time.Time `json:"ordered_date,omitempty"`
}

type Address struct {
	ID               uuid.UUID   `gorm:"primaryKey"                                json:"id"`
	UserID           uuid.UUID   `gorm:"index:idx_address_user_type;not null"      json:"user_id"`
	StreetAddress    string      `gorm:"size:100;not null"                         json:"street_address"`
	ApartmentAddress string      `gorm:"size:100"                                  json:"apartment_address"`
	Country          string      `gorm:"size:64;not null"                          json:"country"`
	Zip              string      `gorm:"size:100;not null"                         json:"zip"`
	AddressType      AddressType `gorm:"index:idx_address_user_type;size:1;not null" json:"address_type"`
	Default          bool        `gorm:"column:is_default;not null;default:false"  json:"default"`
	// DefaultKey is "<user>:<type>" while Default is set, NULL otherwise.
	DefaultKey *string   `gorm:"uniqueIndex;size:40" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

func DefaultKeyFor(userID uuid.UUID, t AddressType) string {
	return userID.String() + ":" + string(t)
}

type Payment struct {
	ID        uuid.UUID       `gorm:"primaryKey"                  json:"id"`
	ChargeID  string          `gorm:"size:100;not null"           json:"charge_id"`
	Method    PaymentMethod   `gorm:"size:16;not null"            json:"method"`
	UserID    uuid.UUID       `gorm:"index;not null"              json:"user_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

type Coupon struct {
	ID     uuid.UUID       `gorm:"primaryKey"                  json:"id"`
	Code   string          `gorm:"uniqueIndex;size:15;not null" json:"code"`
	Amount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
}

type Refund struct {
	ID        uuid.UUID `gorm:"primaryKey"             json:"id"`
	OrderID   uuid.UUID `gorm:"index;not null"         json:"order_id"`
	Reason    string    `gorm:"type:text;not null"     json:"reason"`
	Accepted  bool      `gorm:"not null;default:false" json:"accepted"`
	Email     string    `gorm:"size:254;not null"      json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (oi *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (r *Refund) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (OrderItem) TableName() string {
	return "order_items"
}

// All lists every table in migration order.
func All() []any {
	return []any{&Item{}, &Coupon{}, &Address{}, &Payment{}, &Order{}, &OrderItem{}, &Refund{}}
}
