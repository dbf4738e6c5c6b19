package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type StripeConfig struct {
	SecretKey string
	Timeout   time.Duration
	// BaseURL overrides the API endpoint; empty means api.stripe.com.
	BaseURL string
}

// StripeGateway charges card tokens through the Charges API. The secret key
// lives in its own client so several gateways can coexist in one process.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(0),
		EnableTelemetry:   stripe.Bool(false),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
	})
	return &StripeGateway{api: api}
}

func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (string, error) {
	params := &stripe.ChargeParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(req.Currency),
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.SetSource(req.Token)
	params.Context = ctx

	ch, err := g.api.Charges.New(params)
	if err != nil {
		return "", classifyStripe(err)
	}
	return ch.ID, nil
}

func (g *StripeGateway) Refund(ctx context.Context, chargeID string) error {
	params := &stripe.RefundParams{Charge: stripe.String(chargeID)}
	params.Context = ctx

	if _, err := g.api.Refunds.New(params); err != nil {
		return classifyStripe(err)
	}
	return nil
}

func classifyStripe(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		switch {
		case se.Type == stripe.ErrorTypeCard:
			return &Error{Kind: KindCardDeclined, Message: se.Msg, Err: err}
		case se.HTTPStatusCode == http.StatusTooManyRequests || string(se.Code) == "rate_limit":
			return &Error{Kind: KindRateLimited, Err: err}
		case se.HTTPStatusCode == http.StatusUnauthorized:
			return &Error{Kind: KindAuthentication, Err: err}
		case se.Type == stripe.ErrorTypeInvalidRequest:
			return &Error{Kind: KindInvalidRequest, Err: err}
		default:
			return &Error{Kind: KindOther, Err: err}
		}
	}

	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindNetwork, Err: err}
	}
	return &Error{Kind: KindUnknown, Err: err}
}
