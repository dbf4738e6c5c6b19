package httpserver

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/transport"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

var errUnauthorized = errors.New("unauthorized")

func currentUser(c echo.Context) (uuid.UUID, error) {
	s, ok := c.Get(middleware.UserIDKey).(string)
	if !ok || s == "" {
		return uuid.Nil, errUnauthorized
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errUnauthorized
	}
	return id, nil
}

func respond(c echo.Context, status int, o transport.Outcome) error {
	return c.JSON(status, o)
}

// bind decodes the body and runs the validator tags.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func productPage(slug string) string {
	return "/product/" + slug
}

const (
	redirectHome         = "/"
	redirectOrderSummary = "/order-summary"
	redirectCheckout     = "/checkout"
	redirectRefund       = "/request-refund"
)
