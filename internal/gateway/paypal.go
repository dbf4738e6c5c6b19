package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
)

type PayPalConfig struct {
	ClientID string
	Secret   string
	// BaseURL is the REST endpoint, paypal.APIBaseSandBox or paypal.APIBaseLive.
	BaseURL string
	Timeout time.Duration
}

// PayPalGateway captures orders the buyer already approved on PayPal.
// The charge token is the PayPal order id.
type PayPalGateway struct {
	client *paypal.Client

	mu         sync.Mutex
	authorized bool
}

func NewPayPalGateway(cfg PayPalConfig) (*PayPalGateway, error) {
	client, err := paypal.NewClient(cfg.ClientID, cfg.Secret, strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("paypal: %w", err)
	}
	client.SetHTTPClient(&http.Client{Timeout: cfg.Timeout})
	return &PayPalGateway{client: client}, nil
}

var paypalDeclineIssues = map[string]struct{}{
	"INSTRUMENT_DECLINED":      {},
	"TRANSACTION_REFUSED":      {},
	"PAYER_CANNOT_PAY":         {},
	"PAYER_ACCOUNT_RESTRICTED": {},
}

// authorize fetches the first access token. The client renews it on its
// own once it is about to expire.
func (g *PayPalGateway) authorize(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.authorized {
		return nil
	}
	if _, err := g.client.GetAccessToken(ctx); err != nil {
		return classifyPayPal(err)
	}
	g.authorized = true
	return nil
}

func (g *PayPalGateway) Charge(ctx context.Context, req ChargeRequest) (string, error) {
	if req.Token == "" {
		return "", &Error{Kind: KindInvalidRequest, Err: errors.New("paypal: empty order id")}
	}
	if err := g.authorize(ctx); err != nil {
		return "", err
	}

	order, err := g.client.GetOrder(ctx, req.Token)
	if err != nil {
		return "", classifyPayPal(err)
	}
	if order.Status != "APPROVED" {
		return "", &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("paypal: order %s is %s", order.ID, order.Status)}
	}
	if err := checkAmount(order, req); err != nil {
		return "", err
	}

	captured, err := g.client.CaptureOrder(ctx, req.Token, paypal.CaptureOrderRequest{})
	if err != nil {
		return "", classifyPayPal(err)
	}
	for _, pu := range captured.PurchaseUnits {
		if pu.Payments == nil {
			continue
		}
		for _, c := range pu.Payments.Captures {
			if c.Status == "COMPLETED" || c.Status == "PENDING" {
				return c.ID, nil
			}
		}
	}
	return "", &Error{Kind: KindCardDeclined, Message: "Your PayPal payment was not completed"}
}

func (g *PayPalGateway) Refund(ctx context.Context, captureID string) error {
	if err := g.authorize(ctx); err != nil {
		return err
	}
	if _, err := g.client.RefundCapture(ctx, captureID, paypal.RefundCaptureRequest{}); err != nil {
		return classifyPayPal(err)
	}
	return nil
}

func checkAmount(order *paypal.Order, req ChargeRequest) error {
	if len(order.PurchaseUnits) == 0 || order.PurchaseUnits[0].Amount == nil {
		return &Error{Kind: KindInvalidRequest, Err: errors.New("paypal: order has no amount")}
	}
	amt := order.PurchaseUnits[0].Amount
	value, err := decimal.NewFromString(amt.Value)
	if err != nil {
		return &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("paypal: amount %q: %w", amt.Value, err)}
	}
	minor := value.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if minor != req.AmountMinor || !strings.EqualFold(amt.Currency, req.Currency) {
		return &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("paypal: order amount %s %s does not match %d %s",
			amt.Value, amt.Currency, req.AmountMinor, req.Currency)}
	}
	return nil
}

func classifyPayPal(err error) error {
	var resp *paypal.ErrorResponse
	if !errors.As(err, &resp) {
		var ne net.Error
		if errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded) {
			return &Error{Kind: KindNetwork, Err: err}
		}
		return &Error{Kind: KindUnknown, Err: err}
	}

	status := 0
	if resp.Response != nil {
		status = resp.Response.StatusCode
	}
	cause := fmt.Errorf("paypal: status %d: %s %s", status, resp.Name, resp.Message)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Kind: KindAuthentication, Err: cause}
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Err: cause}
	case status == http.StatusUnprocessableEntity:
		for _, d := range resp.Details {
			if _, ok := paypalDeclineIssues[d.Issue]; ok {
				msg := d.Description
				if msg == "" {
					msg = "Your PayPal payment was declined"
				}
				return &Error{Kind: KindCardDeclined, Message: msg, Err: cause}
			}
		}
		return &Error{Kind: KindInvalidRequest, Err: cause}
	case status >= 400 && status < 500:
		return &Error{Kind: KindInvalidRequest, Err: cause}
	default:
		return &Error{Kind: KindOther, Err: cause}
	}
}
