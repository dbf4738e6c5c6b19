package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CouponHTTP struct {
	Svc *service.CouponService
}

func (h *CouponHTTP) AddCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.add_coupon")

	userID, err := currentUser(c)
	if err != nil {
		l.Warn("add_coupon_error", "status", 401, "error", err)
		return respond(c, http.StatusUnauthorized, transport.Error(err.Error(), redirectHome))
	}

	var req transport.CouponRequest
	if err := bind(c, &req); err != nil {
		l.Warn("add_coupon_error", "status", 400, "error", err)
		return respond(c, http.StatusBadRequest, transport.Info(transport.MsgCouponMissing, redirectCheckout))
	}

	order, err := h.Svc.ApplyCoupon(ctx, userID, req.Code)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNoActiveOrder):
		return respond(c, http.StatusNotFound, transport.Info(transport.MsgNoActiveOrder, redirectCheckout))
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrValidation):
		l.Warn("add_coupon_error", "status", 404, "code", req.Code)
		return respond(c, http.StatusNotFound, transport.Info(transport.MsgCouponMissing, redirectCheckout))
	default:
		l.Error("add_coupon_error", "status", 500, "error", err)
		return respond(c, http.StatusInternalServerError, transport.Error(transport.MsgInternal, redirectCheckout))
	}

	l.Info("add_coupon_success", "code", req.Code)
	return respond(c, http.StatusOK, transport.Success(transport.MsgCouponAdded, redirectCheckout).With(transport.NewOrderView(order)))
}
