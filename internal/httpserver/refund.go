package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type RefundHTTP struct {
	Svc *service.RefundService
}

// RefundForm lets a guest fetch a CSRF token before submitting a request.
func (h *RefundHTTP) RefundForm(c echo.Context) error {
	return respond(c, http.StatusOK, transport.Outcome{Level: transport.LevelInfo, Redirect: redirectRefund})
}

func (h *RefundHTTP) RequestRefund(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "refund.request")

	var req transport.RefundRequest
	if err := bind(c, &req); err != nil {
		l.Warn("request_refund_error", "status", 400, "error", err)
		return respond(c, http.StatusBadRequest, transport.Warning(transport.MsgInvalidRequest, redirectRefund))
	}

	refund, err := h.Svc.RequestRefund(ctx, req.RefCode, req.Message, req.Email)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrOrderNotFound):
		l.Warn("request_refund_error", "status", 404, "ref_code", req.RefCode)
		return respond(c, http.StatusNotFound, transport.Info(transport.MsgOrderMissing, redirectRefund))
	case errors.Is(err, service.ErrValidation):
		return respond(c, http.StatusBadRequest, transport.Warning(transport.MsgInvalidRequest, redirectRefund))
	default:
		l.Error("request_refund_error", "status", 500, "error", err)
		return respond(c, http.StatusInternalServerError, transport.Error(transport.MsgInternal, redirectRefund))
	}

	l.Info("request_refund_success", "order_id", refund.OrderID)
	return respond(c, http.StatusOK, transport.Info(transport.MsgRefundReceived, redirectRefund))
}
