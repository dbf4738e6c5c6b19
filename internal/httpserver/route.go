package httpserver

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/ratelimit"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

type Deps struct {
	CatalogHandler  *CatalogHTTP
	CartHandler     *CartHTTP
	CouponHandler   *CouponHTTP
	CheckoutHandler *CheckoutHTTP
	PaymentHandler  *PaymentHTTP
	RefundHandler   *RefundHTTP

	DB         *gorm.DB
	JWTSecret  []byte
	AuthClient middleware.Refresher

	// CartLimiter throttles add-to-cart per user; nil disables it.
	CartLimiter ratelimit.Limiter
	// CSRF guards the state-changing routes; nil disables it.
	CSRF *csrf.Config
}

func Register(e *echo.Echo, d *Deps) {
	if e.Validator == nil {
		e.Validator = NewRequestValidator()
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Error("readiness_failed", "status", 503, "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)

	var guard []echo.MiddlewareFunc
	if d.CSRF != nil {
		guard = append(guard, csrf.Middleware(*d.CSRF))
	}

	e.GET("/items", d.CatalogHandler.ListItems)
	e.GET("/items/search", d.CatalogHandler.SearchItems)
	e.GET("/product/:slug", d.CatalogHandler.GetItem)

	admin := e.Group("/admin", slices.Concat(guard, []echo.MiddlewareFunc{authMW.RequireAdmin})...)
	admin.POST("/items", d.CatalogHandler.CreateItem)

	user := e.Group("", slices.Concat(guard, []echo.MiddlewareFunc{authMW.RequireAuth})...)

	var limited []echo.MiddlewareFunc
	if d.CartLimiter != nil {
		limited = append(limited, ratelimit.Middleware(d.CartLimiter, userKey, tooManyRequests))
	}

	user.GET("/order-summary", d.CartHandler.OrderSummary)
	user.POST("/add-to-cart/:slug", d.CartHandler.AddToCart, limited...)
	user.POST("/add-single-item-to-cart/:slug", d.CartHandler.AddSingleItemToCart, limited...)
	user.POST("/remove-from-cart/:slug", d.CartHandler.RemoveFromCart)
	user.POST("/remove-single-item-from-cart/:slug", d.CartHandler.RemoveSingleItemFromCart)

	user.POST("/add-coupon", d.CouponHandler.AddCoupon)

	user.GET("/checkout", d.CheckoutHandler.GetCheckout)
	user.POST("/checkout", d.CheckoutHandler.PostCheckout)

	user.GET("/payment/:method", d.PaymentHandler.GetPayment)
	user.POST("/payment/:method", d.PaymentHandler.PostPayment)

	e.GET("/request-refund", d.RefundHandler.RefundForm, guard...)
	e.POST("/request-refund", d.RefundHandler.RequestRefund, guard...)
}

func userKey(c echo.Context) string {
	if id, ok := c.Get(middleware.UserIDKey).(string); ok && id != "" {
		return "user:" + id
	}
	return "ip:" + c.RealIP()
}

func tooManyRequests(c echo.Context) error {
	return respond(c, http.StatusTooManyRequests, transport.Warning(transport.MsgTooManyRequests, redirectHome))
}
