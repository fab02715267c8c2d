package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/swiftpay/swiftpay/internal/auth"
	"github.com/swiftpay/swiftpay/internal/catalog"
	"github.com/swiftpay/swiftpay/internal/config"
	"github.com/swiftpay/swiftpay/internal/directory"
	"github.com/swiftpay/swiftpay/internal/funding"
	"github.com/swiftpay/swiftpay/internal/identity"
	"github.com/swiftpay/swiftpay/internal/infra"
	"github.com/swiftpay/swiftpay/internal/ledger"
	"github.com/swiftpay/swiftpay/internal/middleware"
	"github.com/swiftpay/swiftpay/internal/notification"
	"github.com/swiftpay/swiftpay/internal/payments"
	"github.com/swiftpay/swiftpay/internal/store"
	"github.com/swiftpay/swiftpay/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	Store    store.Store
	Clients  infra.Clients
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Acquirer funding.Acquirer
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Store == nil {
		return fmt.Errorf("record store is required")
	}
	if !d.Cfg.IsDev() && d.Clients.Cache == nil {
		d.Logger.Warn("redis is not configured: idempotency and login rate limiting are disabled", "env", d.Cfg.Env)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  d.Cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Idempotency-Key, X-Request-ID",
		ExposeHeaders: "X-Request-ID, Idempotent-Replayed",
	}))
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)
	if d.Cfg.MetricsEnabled && d.Registry != nil {
		RegisterMetricsRoute(app, d.Registry)
	}

	if d.Acquirer == nil {
		d.Acquirer = funding.StaticAcquirer{}
	}

	var engineOpts []ledger.Option
	if d.Registry != nil {
		engineOpts = append(engineOpts, ledger.WithMetrics(ledger.NewMetrics(d.Registry)))
	}
	engine := ledger.New(d.Store, d.Logger, engineOpts...)

	identitySvc := identity.NewService(identity.NewStoreRepository(d.Store), d.Cfg.StartingBalance, d.Logger)
	authSvc := auth.NewService(d.Cfg, identitySvc)
	walletSvc := wallet.NewService(engine)
	fundingSvc := funding.NewService(engine, d.Acquirer, d.Logger)
	paymentSvc := payments.NewService(engine, notification.NewLoggerNotifier(d.Logger), d.Logger)
	catalogSvc := catalog.NewService(d.Store, d.Logger)
	directorySvc := directory.NewService(d.Store, d.Logger)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterIdentityRoutes(api, identity.NewHandler(identitySvc))
	authHandler := auth.NewHandler(authSvc)
	RegisterAuthRoutes(api, authHandler, middleware.LoginRateLimit(d.Clients.Cache, d.Cfg.LoginRateLimit, d.Logger))

	// Protected routes
	guards := []fiber.Handler{middleware.Session(authSvc)}
	if d.Clients.Cache != nil {
		guards = append(guards, middleware.Idempotency(d.Clients.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	secure := newSecureGroup(api, guards...)
	RegisterSessionRoutes(secure, authHandler, identity.NewHandler(identitySvc))
	RegisterWalletRoutes(secure, wallet.NewHandler(walletSvc))
	RegisterFundingRoutes(secure, funding.NewHandler(fundingSvc))

	paymentHandler := payments.NewHandler(paymentSvc)
	RegisterUtilityRoutes(secure, paymentHandler)
	RegisterPaymentRoutes(secure, paymentHandler)

	catalogHandler := catalog.NewHandler(catalogSvc)
	RegisterMarketplaceRoutes(secure, catalogHandler, paymentHandler)
	RegisterVendorRoutes(secure, catalogHandler)
	RegisterAdminRoutes(secure, directory.NewHandler(directorySvc))

	return nil
}

// SecureGroup returns the authenticated router mounted at prefix. Guards are
// attached to explicit prefixes only, so unknown paths still answer 404.
type SecureGroup func(prefix string) fiber.Router

// newSecureGroup creates each prefix group once; asking for the same prefix
// again returns the existing router so guards never run twice.
func newSecureGroup(api fiber.Router, guards ...fiber.Handler) SecureGroup {
	groups := map[string]fiber.Router{}
	return func(prefix string) fiber.Router {
		if g, ok := groups[prefix]; ok {
			return g
		}
		g := api.Group(prefix, guards...)
		groups[prefix] = g
		return g
	}
}
