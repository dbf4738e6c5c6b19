package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type PaymentHTTP struct {
	Svc *service.PaymentService
}

// precheck maps the errors both payment endpoints share. ok is false when
// err is not one of them.
func precheck(err error) (status int, out transport.Outcome, ok bool) {
	switch {
	case errors.Is(err, service.ErrInvalidPaymentMethod):
		return http.StatusBadRequest, transport.Warning(transport.MsgInvalidMethod, redirectCheckout), true
	case errors.Is(err, service.ErrNoActiveOrder):
		return http.StatusNotFound, transport.Error(transport.MsgNoActiveCart, redirectHome), true
	case errors.Is(err, service.ErrMissingBillingAddress):
		return http.StatusBadRequest, transport.Warning(transport.MsgNoBilling, redirectCheckout), true
	case errors.Is(err, service.ErrEmptyOrder):
		return http.StatusBadRequest, transport.Warning(transport.MsgEmptyCart, redirectOrderSummary), true
	}
	return 0, transport.Outcome{}, false
}

func (h *PaymentHTTP) GetPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.get")

	userID, err := currentUser(c)
	if err != nil {
		l.Warn("payment_view_error", "status", 401, "error", err)
		return respond(c, http.StatusUnauthorized, transport.Error(err.Error(), redirectHome))
	}

	method, ok := models.ParsePaymentMethod(c.Param("method"))
	if !ok {
		return respond(c, http.StatusBadRequest, transport.Warning(transport.MsgInvalidMethod, redirectCheckout))
	}

	order, err := h.Svc.PaymentView(ctx, userID)
	if err != nil {
		if status, out, ok := precheck(err); ok {
			return respond(c, status, out)
		}
		l.Error("payment_view_error", "status", 500, "error", err)
		return respond(c, http.StatusInternalServerError, transport.Error(transport.MsgInternal, redirectHome))
	}

	return respond(c, http.StatusOK, transport.Outcome{
		Level: transport.LevelInfo,
		Data:  transport.PaymentPageResponse{Order: transport.NewOrderView(order), Method: method},
	})
}

func (h *PaymentHTTP) PostPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.post")

	userID, err := currentUser(c)
	if err != nil {
		l.Warn("payment_error", "status", 401, "error", err)
		return respond(c, http.StatusUnauthorized, transport.Error(err.Error(), redirectHome))
	}

	method, ok := models.ParsePaymentMethod(c.Param("method"))
	if !ok {
		return respond(c, http.StatusBadRequest, transport.Warning(transport.MsgInvalidMethod, redirectCheckout))
	}

	var req transport.PaymentRequest
	if err := bind(c, &req); err != nil {
		l.Warn("payment_error", "status", 400, "reason", "invalid body", "error", err)
		return respond(c, http.StatusBadRequest, transport.Error(transport.MsgInvalidGateway, redirectHome))
	}

	res, err := h.Svc.Pay(ctx, userID, method, req.Token)
	if err != nil {
		if status, out, ok := precheck(err); ok {
			return respond(c, status, out)
		}
		if errors.Is(err, service.ErrValidation) {
			return respond(c, http.StatusBadRequest, transport.Error(transport.MsgInvalidGateway, redirectHome))
		}
		if errors.Is(err, service.ErrCartChanged) {
			l.Warn("payment_error", "status", 409, "error", err)
			return respond(c, http.StatusConflict, transport.Error(transport.MsgCartChanged, redirectOrderSummary))
		}
		status, out := transport.GatewayOutcome(err)
		l.Error("payment_error", "status", status, "error", err)
		return respond(c, status, out)
	}

	l.Info("payment_success", "order_id", res.Order.ID, "payment_id", res.Payment.ID)
	return respond(c, http.StatusOK, transport.Success(transport.MsgOrderSuccessful, redirectHome).With(transport.PaymentResponse{
		RefCode: *res.Order.RefCode,
		Order:   transport.NewOrderView(res.Order),
	}))
}
