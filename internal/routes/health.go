package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/swiftpay/swiftpay/internal/store"
)

const statusOK = "ok"

// RegisterHealthRoutes adds a readiness endpoint covering the record store
// and every configured backend.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		checks := fiber.Map{"store": statusOK}
		healthy := true
		fail := func(name string, err error) {
			checks[name] = err.Error()
			healthy = false
		}

		if _, err := d.Store.List(ctx, store.Accounts); err != nil {
			fail("store", err)
		}
		if d.Clients.DB != nil {
			checks["postgres"] = statusOK
			if err := d.Clients.DB.Ping(ctx); err != nil {
				fail("postgres", err)
			}
		}
		if d.Clients.Cache != nil {
			checks["redis"] = statusOK
			if err := d.Clients.Cache.Ping(ctx).Err(); err != nil {
				fail("redis", err)
			}
		}
		if d.Clients.SQLite != nil {
			checks["sqlite"] = statusOK
			if err := d.Clients.SQLite.PingContext(ctx); err != nil {
				fail("sqlite", err)
			}
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    checks,
			"driver":    d.Cfg.StoreDriver,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
