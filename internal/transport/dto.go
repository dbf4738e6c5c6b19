package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/util"
)

type CreateItemRequest struct {
	Slug        string          `json:"slug"        validate:"required,max=100"`
	Title       string          `json:"title"       validate:"required,max=100"`
	Category    string          `json:"category"    validate:"omitempty,max=2"`
	Label       string          `json:"label"       validate:"omitempty,max=1"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

func (r CreateItemRequest) Input() service.CreateItemInput {
	return service.CreateItemInput{
		Slug:        r.Slug,
		Title:       r.Title,
		Category:    r.Category,
		Label:       r.Label,
		Description: r.Description,
		Price:       r.Price,
	}
}

type ItemsResponse struct {
	Data any       `json:"data"`
	Meta util.Meta `json:"meta"`
}

type CouponRequest struct {
	Code string `json:"code" form:"code" validate:"required,max=15"`
}

type AddressRequest struct {
	Street    string `json:"street_address"    validate:"max=100"`
	Apartment string `json:"apartment_address" validate:"max=100"`
	Country   string `json:"country"           validate:"max=64"`
	Zip       string `json:"zip"               validate:"max=100"`
}

func (a AddressRequest) Input() service.AddressInput {
	return service.AddressInput{
		Street:    a.Street,
		Apartment: a.Apartment,
		Country:   a.Country,
		Zip:       a.Zip,
	}
}

// CheckoutRequest mirrors the checkout form. Address fields are checked by
// the service so that a bad address yields the per-type outcome rather
// than a generic 400.
type CheckoutRequest struct {
	UseDefaultShipping bool           `json:"use_default_shipping"`
	Shipping           AddressRequest `json:"shipping"`
	SetDefaultShipping bool           `json:"set_default_shipping"`

	SameBillingAddress bool           `json:"same_billing_address"`
	UseDefaultBilling  bool           `json:"use_default_billing"`
	Billing            AddressRequest `json:"billing"`
	SetDefaultBilling  bool           `json:"set_default_billing"`

	PaymentOption string `json:"payment_option"`
}

func (r CheckoutRequest) Form() service.CheckoutForm {
	return service.CheckoutForm{
		UseDefaultShipping: r.UseDefaultShipping,
		Shipping:           r.Shipping.Input(),
		SetDefaultShipping: r.SetDefaultShipping,
		SameBillingAddress: r.SameBillingAddress,
		UseDefaultBilling:  r.UseDefaultBilling,
		Billing:            r.Billing.Input(),
		SetDefaultBilling:  r.SetDefaultBilling,
		PaymentOption:      r.PaymentOption,
	}
}

// PaymentRequest carries the gateway token: a Stripe card token or an
// approved PayPal order id.
type PaymentRequest struct {
	Token string `json:"token" form:"stripeToken" validate:"required,max=255"`
}

type RefundRequest struct {
	RefCode string `json:"ref_code" form:"ref_code" validate:"required,max=20"`
	Message string `json:"message"  form:"message"  validate:"required"`
	Email   string `json:"email"    form:"email"    validate:"required,email"`
}

// OrderView is an order together with its computed total.
type OrderView struct {
	*models.Order
	Total decimal.Decimal `json:"total"`
}

func NewOrderView(o *models.Order) OrderView {
	return OrderView{Order: o, Total: service.Total(o)}
}

type CheckoutPageResponse struct {
	Order           OrderView       `json:"order"`
	DefaultShipping *models.Address `json:"default_shipping,omitempty"`
	DefaultBilling  *models.Address `json:"default_billing,omitempty"`
}

type PaymentPageResponse struct {
	Order  OrderView            `json:"order"`
	Method models.PaymentMethod `json:"method"`
}

type PaymentResponse struct {
	RefCode string    `json:"ref_code"`
	Order   OrderView `json:"order"`
}
