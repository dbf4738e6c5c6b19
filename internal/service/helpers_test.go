package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/gateway"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/repo/repotest"
)

type recordedEvent struct {
	Topic string
	Key   string
	Event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []string
	for _, e := range p.events {
		switch ev := e.Event.(type) {
		case events.CartEvent:
			out = append(out, ev.Type)
		case events.OrderEvent:
			out = append(out, ev.Type)
		}
	}
	return out
}

type fakeGateway struct {
	mu       sync.Mutex
	chargeID string
	err      error
	requests []gateway.ChargeRequest
	refunds  []string
	onCharge func()
}

func (g *fakeGateway) Charge(_ context.Context, req gateway.ChargeRequest) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	hook := g.onCharge
	g.mu.Unlock()

	if hook != nil {
		hook()
	}
	if g.err != nil {
		return "", g.err
	}
	return g.chargeID, nil
}

func (g *fakeGateway) Refund(_ context.Context, chargeID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunds = append(g.refunds, chargeID)
	return nil
}

type testEnv struct {
	Repo     *repo.GormRepo
	Events   *recordingPublisher
	Gateway  *fakeGateway
	Cart     *CartService
	Coupon   *CouponService
	Checkout *CheckoutService
	Payment  *PaymentService
	Refund   *RefundService
	Catalog  *CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repotest.NewRepo(t)
	pub := &recordingPublisher{}
	gw := &fakeGateway{chargeID: "ch_test_1"}

	return &testEnv{
		Repo:     r,
		Events:   pub,
		Gateway:  gw,
		Cart:     &CartService{Repo: r, Events: pub},
		Coupon:   &CouponService{Repo: r, Events: pub},
		Checkout: &CheckoutService{Repo: r, Events: pub},
		Payment: &PaymentService{
			Repo:     r,
			Gateways: gateway.NewRouter().Register(models.PaymentStripe, gw),
			Events:   pub,
			Currency: "usd",
		},
		Refund:  &RefundService{Repo: r, Events: pub},
		Catalog: &CatalogService{Repo: r},
	}
}

func (env *testEnv) addItem(t *testing.T, userID uuid.UUID, slug string) *AddResult {
	t.Helper()
	res, err := env.Cart.AddItem(context.Background(), userID, slug, 1)
	require.NoError(t, err)
	return res
}

func validAddress() AddressInput {
	return AddressInput{Street: "1 Main St", Apartment: "Apt 2", Country: "us", Zip: "10001"}
}
