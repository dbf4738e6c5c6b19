package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CheckoutHTTP struct {
	Svc *service.CheckoutService
}

func (h *CheckoutHTTP) GetCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.get")

	userID, err := currentUser(c)
	if err != nil {
		l.Warn("checkout_error", "status", 401, "error", err)
		return respond(c, http.StatusUnauthorized, transport.Error(err.Error(), redirectHome))
	}

	page, err := h.Svc.CheckoutView(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveOrder) {
			return respond(c, http.StatusNotFound, transport.Info(transport.MsgNoActiveOrder, redirectHome))
		}
		l.Error("checkout_error", "status", 500, "error", err)
		return respond(c, http.StatusInternalServerError, transport.Error(transport.MsgInternal, redirectHome))
	}

	return respond(c, http.StatusOK, transport.Outcome{
		Level: transport.LevelInfo,
		Data: transport.CheckoutPageResponse{
			Order:           transport.NewOrderView(page.Order),
			DefaultShipping: page.DefaultShipping,
			DefaultBilling:  page.DefaultBilling,
		},
	})
}

func (h *CheckoutHTTP) PostCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.post")

	userID, err := currentUser(c)
	if err != nil {
		l.Warn("checkout_error", "status", 401, "error", err)
		return respond(c, http.StatusUnauthorized, transport.Error(err.Error(), redirectHome))
	}

	var req transport.CheckoutRequest
	if err := bind(c, &req); err != nil {
		l.Warn("checkout_error", "status", 400, "reason", "invalid body", "error", err)
		return respond(c, http.StatusBadRequest, transport.Warning(transport.MsgInvalidRequest, redirectCheckout))
	}

	res, err := h.Svc.Checkout(ctx, userID, req.Form())
	var addrErr *service.AddressError
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNoActiveOrder):
		return respond(c, http.StatusNotFound, transport.Error(transport.MsgNoActiveCart, redirectOrderSummary))
	case errors.As(err, &addrErr):
		l.Warn("checkout_error", "status", 400, "address", addrErr.Type.String(), "error", err)
		return respond(c, http.StatusBadRequest, transport.Info(transport.AddressMessage(addrErr), redirectCheckout))
	case errors.Is(err, service.ErrInvalidPaymentMethod):
		l.Warn("checkout_error", "status", 400, "option", req.PaymentOption)
		return respond(c, http.StatusBadRequest,
			transport.Warning(transport.MsgInvalidMethod, redirectCheckout).With(transport.NewOrderView(res.Order)))
	default:
		l.Error("checkout_error", "status", 500, "error", err)
		return respond(c, http.StatusInternalServerError, transport.Error(transport.MsgInternal, redirectCheckout))
	}

	l.Info("checkout_success", "order_id", res.Order.ID, "method", res.Method)
	return respond(c, http.StatusOK,
		transport.Success(transport.MsgCheckoutComplete, "/payment/"+string(res.Method)).With(transport.NewOrderView(res.Order)))
}
