package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) OrderSummary(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.order_summary")

	userID, err := currentUser(c)
	if err != nil {
		l.Warn("order_summary_error", "status", 401, "error", err)
		return respond(c, http.StatusUnauthorized, transport.Error(err.Error(), redirectHome))
	}

	order, err := h.Svc.ActiveOrder(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveOrder) {
			return respond(c, http.StatusNotFound, transport.Error(transport.MsgNoActiveCart, redirectHome))
		}
		l.Error("order_summary_error", "status", 500, "error", err)
		return respond(c, http.StatusInternalServerError, transport.Error(transport.MsgInternal, redirectHome))
	}

	return respond(c, http.StatusOK, transport.Outcome{
		Level: transport.LevelInfo,
		Data:  transport.NewOrderView(order),
	})
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	slug := c.Param("slug")
	return h.add(c, "cart.add_to_cart", slug, productPage(slug))
}

func (h *CartHTTP) AddSingleItemToCart(c echo.Context) error {
	return h.add(c, "cart.add_single_item", c.Param("slug"), redirectOrderSummary)
}

func (h *CartHTTP) add(c echo.Context, handler, slug, redirect string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	userID, err := currentUser(c)
	if err != nil {
		l.Warn("add_to_cart_error", "status", 401, "error", err)
		return respond(c, http.StatusUnauthorized, transport.Error(err.Error(), redirectHome))
	}

	res, err := h.Svc.AddItem(ctx, userID, slug, 1)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("add_to_cart_error", "status", 404, "slug", slug)
			return respond(c, http.StatusNotFound, transport.Warning(transport.MsgItemNotFound, redirectHome))
		}
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return respond(c, http.StatusInternalServerError, transport.Error(transport.MsgInternal, redirect))
	}

	msg := transport.MsgItemAdded
	if res.Updated {
		msg = transport.MsgItemQtyUpdated
	}
	l.Info("add_to_cart_success", "slug", slug, "quantity", res.Line.Quantity)
	return respond(c, http.StatusOK, transport.Info(msg, redirect).With(transport.NewOrderView(res.Order)))
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	return h.remove(c, "cart.remove_from_cart", true)
}

func (h *CartHTTP) RemoveSingleItemFromCart(c echo.Context) error {
	return h.remove(c, "cart.remove_single_item", false)
}

func (h *CartHTTP) remove(c echo.Context, handler string, whole bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)
	slug := c.Param("slug")

	userID, err := currentUser(c)
	if err != nil {
		l.Warn("remove_from_cart_error", "status", 401, "error", err)
		return respond(c, http.StatusUnauthorized, transport.Error(err.Error(), redirectHome))
	}

	res, err := h.Svc.RemoveItem(ctx, userID, slug, whole)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNotFound):
		l.Warn("remove_from_cart_error", "status", 404, "slug", slug)
		return respond(c, http.StatusNotFound, transport.Warning(transport.MsgItemNotFound, redirectHome))
	case errors.Is(err, service.ErrNoActiveOrder):
		return respond(c, http.StatusNotFound, transport.Info(transport.MsgNoActiveOrder, productPage(slug)))
	case errors.Is(err, service.ErrItemNotInCart):
		return respond(c, http.StatusNotFound, transport.Info(transport.MsgItemNotInCart, productPage(slug)))
	default:
		l.Error("remove_from_cart_error", "status", 500, "error", err)
		return respond(c, http.StatusInternalServerError, transport.Error(transport.MsgInternal, redirectOrderSummary))
	}

	msg := transport.MsgItemUpdated
	if whole {
		msg = transport.MsgItemRemoved
	}
	return respond(c, http.StatusOK, transport.Info(msg, redirectOrderSummary).With(transport.NewOrderView(res.Order)))
}
