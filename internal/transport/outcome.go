package transport

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/storefront/internal/gateway"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Outcome is the body of every storefront response: a short message for
// the customer and the page the client should show next.
type Outcome struct {
	Level    Level  `json:"level"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
	Data     any    `json:"data,omitempty"`
}

const (
	MsgItemAdded        = "This item was added to your Cart"
	MsgItemQtyUpdated   = "This item quantity was updated in your Cart"
	MsgItemRemoved      = "This item was removed from your Cart"
	MsgItemUpdated      = "This item was updated"
	MsgItemNotInCart    = "This item was not in your Cart"
	MsgNoActiveOrder    = "You do not have an active order"
	MsgNoActiveCart     = "You do not have an active Cart"
	MsgCouponMissing    = "Coupon does not exist"
	MsgCouponAdded      = "Coupon Successfully added"
	MsgInvalidMethod    = "Invalid payment method selected"
	MsgNoBilling        = "You do not have a billing address"
	MsgOrderSuccessful  = "Your order was successful"
	MsgRefundReceived   = "Your request was received"
	MsgOrderMissing     = "This order does not exist"
	MsgEmptyCart        = "Your Cart is empty"
	MsgCartChanged      = "Your Cart changed during payment, you were not charged"
	MsgItemNotFound     = "Item not found"
	MsgInvalidRequest   = "Invalid request"
	MsgInternal         = "Internal server error"
	MsgTooManyRequests  = "Too many requests, slow down"
	MsgRateLimitError   = "Rate Limit Error, try again later"
	MsgInvalidGateway   = "Invalid Request Error"
	MsgAuthError        = "Authentication Error"
	MsgNetworkError     = "Network Connection Error"
	MsgGatewayError     = "Something went wrong, you were not charged, please try again"
	MsgUnexpectedError  = "Error Occured, we have been notified"
	MsgCheckoutComplete = "Checkout complete"
)

func Success(msg, redirect string) Outcome {
	return Outcome{Level: LevelSuccess, Message: msg, Redirect: redirect}
}

func Info(msg, redirect string) Outcome {
	return Outcome{Level: LevelInfo, Message: msg, Redirect: redirect}
}

func Warning(msg, redirect string) Outcome {
	return Outcome{Level: LevelWarning, Message: msg, Redirect: redirect}
}

func Error(msg, redirect string) Outcome {
	return Outcome{Level: LevelError, Message: msg, Redirect: redirect}
}

func (o Outcome) With(data any) Outcome {
	o.Data = data
	return o
}

// AddressMessage is the outcome text for a failed address resolution,
// e.g. "You do not have a default billing address".
func AddressMessage(ae *service.AddressError) string {
	if errors.Is(ae.Err, service.ErrNoDefaultAddress) {
		return "You do not have a default " + ae.Type.String() + " address"
	}
	if ae.Type == models.AddressShipping {
		return "Shipping Address form is not valid"
	}
	return "Billing Address form is not valid"
}

// GatewayOutcome maps a failed charge to its status and outcome. Every
// payment outcome sends the customer back to the home page.
func GatewayOutcome(err error) (int, Outcome) {
	var ge *gateway.Error
	if !errors.As(err, &ge) {
		return http.StatusInternalServerError, Error(MsgUnexpectedError, "/")
	}

	switch ge.Kind {
	case gateway.KindCardDeclined:
		msg := ge.Message
		if msg == "" {
			msg = "Your card was declined"
		}
		return http.StatusPaymentRequired, Error(msg, "/")
	case gateway.KindRateLimited:
		return http.StatusTooManyRequests, Error(MsgRateLimitError, "/")
	case gateway.KindInvalidRequest:
		return http.StatusBadRequest, Error(MsgInvalidGateway, "/")
	case gateway.KindAuthentication:
		return http.StatusBadGateway, Error(MsgAuthError, "/")
	case gateway.KindNetwork:
		return http.StatusBadGateway, Error(MsgNetworkError, "/")
	case gateway.KindOther:
		return http.StatusBadGateway, Error(MsgGatewayError, "/")
	default:
		return http.StatusInternalServerError, Error(MsgUnexpectedError, "/")
	}
}
