package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_items")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListItems(ctx, offset, limit)
	if err != nil {
		l.Error("list_items_error", "status", 500, "error", err)
		return respond(c, http.StatusInternalServerError, transport.Error(transport.MsgInternal, redirectHome))
	}

	return c.JSON(http.StatusOK, transport.ItemsResponse{
		Data: items,
		Meta: util.NewMeta(page, offset, limit, total),
	})
}

func (h *CatalogHTTP) SearchItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_items")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.SearchItems(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_items_error", "status", 400, "error", err)
			return respond(c, http.StatusBadRequest, transport.Warning(transport.MsgInvalidRequest, redirectHome))
		}
		l.Error("search_items_error", "status", 500, "error", err)
		return respond(c, http.StatusInternalServerError, transport.Error(transport.MsgInternal, redirectHome))
	}

	return c.JSON(http.StatusOK, transport.ItemsResponse{
		Data: items,
		Meta: util.NewMeta(page, offset, limit, total),
	})
}

func (h *CatalogHTTP) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_item")

	item, err := h.Svc.GetItem(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_item_failed", "status", 404, "slug", c.Param("slug"))
			return respond(c, http.StatusNotFound, transport.Warning(transport.MsgItemNotFound, redirectHome))
		}
		l.Error("get_item_failed", "status", 500, "error", err)
		return respond(c, http.StatusInternalServerError, transport.Error(transport.MsgInternal, redirectHome))
	}

	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHTTP) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_item")

	var req transport.CreateItemRequest
	if err := bind(c, &req); err != nil {
		l.Warn("create_item_error", "status", 400, "reason", "invalid body", "error", err)
		return respond(c, http.StatusBadRequest, transport.Warning(transport.MsgInvalidRequest, redirectHome))
	}

	item, err := h.Svc.CreateItem(ctx, req.Input())
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("create_item_error", "status", 400, "error", err)
			return respond(c, http.StatusBadRequest, transport.Warning(err.Error(), redirectHome))
		}
		l.Error("create_item_error", "status", 500, "error", err)
		return respond(c, http.StatusInternalServerError, transport.Error(transport.MsgInternal, redirectHome))
	}

	l.Info("create_item_success", "slug", item.Slug)
	return c.JSON(http.StatusCreated, item)
}
