package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/models"
)

type Kind string

const (
	KindCardDeclined   Kind = "card_declined"
	KindRateLimited    Kind = "rate_limited"
	KindInvalidRequest Kind = "invalid_request"
	KindAuthentication Kind = "authentication_failed"
	KindNetwork        Kind = "network_error"
	KindOther          Kind = "other_gateway_error"
	KindUnknown        Kind = "unknown_error"
)

// Error is a classified gateway failure. Message carries the text the
// gateway returned when it is meant for the customer (declines).
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway %s: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("gateway %s: %v", e.Kind, e.Err)
	}
	return "gateway " + string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the classification of err; anything that is not a
// *Error counts as unknown.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}

type ChargeRequest struct {
	AmountMinor int64
	Currency    string
	Token       string
	Description string
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (string, error)
}

// Refunder is implemented by gateways that can reverse a charge.
type Refunder interface {
	Refund(ctx context.Context, chargeID string) error
}

// Router maps every supported payment method to its gateway.
type Router struct {
	gateways map[models.PaymentMethod]Gateway
}

func NewRouter() *Router {
	return &Router{gateways: make(map[models.PaymentMethod]Gateway)}
}

func (r *Router) Register(method models.PaymentMethod, g Gateway) *Router {
	r.gateways[method] = g
	return r
}

func (r *Router) For(method models.PaymentMethod) (Gateway, bool) {
	g, ok := r.gateways[method]
	return g, ok
}
