package ratelimit

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

// Middleware limits requests per key. keyFn picks the bucket (user id,
// client ip), denied renders the rejection. Limiter errors let the request
// through.
func Middleware(l Limiter, keyFn func(c echo.Context) string, denied echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := keyFn(c)

			ok, err := l.Allow(ctx, key)
			if err != nil {
				logging.FromContext(ctx).Warn("rate_limit_unavailable", "key", key, "error", err)
				return next(c)
			}
			if !ok {
				logging.FromContext(ctx).Warn("rate_limited", "status", 429, "key", key)
				return denied(c)
			}
			return next(c)
		}
	}
}
