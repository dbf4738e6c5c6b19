package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/gateway"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/ratelimit"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/authclient"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Error("db_init_error", "error", err)
		os.Exit(1)
	}
	defer db.Close(gdb)

	store := &repo.GormRepo{DB: gdb}
	if err := store.Migrate(ctx); err != nil {
		logger.Error("db_migrate_error", "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Error("kafka_init_error", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		publisher = producer
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	catalog := &service.CatalogService{Repo: store}
	if cfg.Search.URL != "" {
		idx, err := search.NewClient(search.Config{
			URL:      cfg.Search.URL,
			User:     cfg.Search.User,
			Password: cfg.Search.Password,
			Index:    cfg.Search.Index,
		})
		if err == nil {
			err = idx.EnsureIndex(ctx)
		}
		if err == nil {
			err = reindexCatalog(ctx, store, idx)
		}
		if err != nil {
			logger.Warn("search_unavailable", "error", err)
		}
		if idx != nil {
			catalog.Index = idx
		}
	}

	var limiter ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, "storefront:cart", cfg.Redis.CartLimit, cfg.Redis.Window)
	}

	gateways := gateway.NewRouter()
	if cfg.Stripe.SecretKey != "" {
		gateways.Register(models.PaymentStripe, gateway.NewStripeGateway(gateway.StripeConfig{
			SecretKey: cfg.Stripe.SecretKey,
			Timeout:   cfg.GatewayTimeout,
		}))
	}
	if cfg.PayPal.ClientID != "" && cfg.PayPal.Secret != "" {
		pp, err := gateway.NewPayPalGateway(gateway.PayPalConfig{
			ClientID: cfg.PayPal.ClientID,
			Secret:   cfg.PayPal.Secret,
			BaseURL:  cfg.PayPal.BaseURL,
			Timeout:  cfg.GatewayTimeout,
		})
		if err != nil {
			logger.Error("paypal_init_error", "error", err)
			os.Exit(1)
		}
		gateways.Register(models.PaymentPayPal, pp)
	}

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = cfg.CSRFSecureCookie

	e := echo.New()
	e.HideBanner = true

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = cfg.GatewayTimeout + 15*time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler:  &httpserver.CatalogHTTP{Svc: catalog},
		CartHandler:     &httpserver.CartHTTP{Svc: &service.CartService{Repo: store, Events: publisher}},
		CouponHandler:   &httpserver.CouponHTTP{Svc: &service.CouponService{Repo: store, Events: publisher}},
		CheckoutHandler: &httpserver.CheckoutHTTP{Svc: &service.CheckoutService{Repo: store, Events: publisher}},
		PaymentHandler: &httpserver.PaymentHTTP{Svc: &service.PaymentService{
			Repo:     store,
			Gateways: gateways,
			Events:   publisher,
			Currency: cfg.Currency,
			Timeout:  cfg.GatewayTimeout,
		}},
		RefundHandler: &httpserver.RefundHTTP{Svc: &service.RefundService{Repo: store, Events: publisher}},

		DB:          gdb,
		JWTSecret:   cfg.JWTAccessSecret,
		AuthClient:  authclient.NewClient(cfg.AuthHTTPURL),
		CartLimiter: limiter,
		CSRF:        &csrfCfg,
	})

	go func() {
		addr := ":" + strconv.Itoa(cfg.ServerPort)
		logger.Info("server_starting", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("server_stopping")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	logger.Info("server_stopped")
}

// reindexCatalog pushes every catalog item to the search index in pages.
func reindexCatalog(ctx context.Context, store *repo.GormRepo, idx *search.Client) error {
	const page = 500
	for offset := 0; ; offset += page {
		total, items, err := store.ListItems(ctx, offset, page)
		if err != nil {
			return err
		}
		if len(items) > 0 {
			if err := idx.Reindex(ctx, items); err != nil {
				return err
			}
		}
		if int64(offset+page) >= total {
			return nil
		}
	}
}
