package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/config"
	"github.com/swiftpay/swiftpay/internal/httperr"
	"github.com/swiftpay/swiftpay/internal/infra"
	"github.com/swiftpay/swiftpay/internal/logging"
	"github.com/swiftpay/swiftpay/internal/store"
)

type testAPI struct {
	t   *testing.T
	app *fiber.App
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return newTestAPIWithClients(t, infra.Clients{})
}

func newTestAPIWithClients(t *testing.T, clients infra.Clients) *testAPI {
	t.Helper()
	logger := logging.Discard()
	cfg := config.Config{
		AppName:         "swiftpay-test",
		Env:             "test",
		StoreDriver:     config.DriverMemory,
		JWTSecret:       "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		StartingBalance: decimal.NewFromInt(1000),
		LoginRateLimit:  5,
		IdempotencyTTL:  time.Minute,
		MetricsEnabled:  true,
	}
	app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler(logger)})
	err := Setup(app, Deps{
		Cfg:      cfg,
		Store:    store.NewMemory(),
		Clients:  clients,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	return &testAPI{t: t, app: app}
}

func (a *testAPI) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	status, _, out := a.send(method, path, token, body, nil)
	return status, out
}

func (a *testAPI) send(method, path, token string, body any, headers map[string]string) (int, http.Header, map[string]any) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := a.app.Test(req, -1)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			a.t.Fatalf("decode %s %s: %v (%s)", method, path, err, raw)
		}
	}
	return resp.StatusCode, resp.Header, out
}

func (a *testAPI) register(email, name, role string, extra map[string]any) string {
	a.t.Helper()
	body := map[string]any{"email": email, "password": "secret1", "name": name, "role": role}
	for k, v := range extra {
		body[k] = v
	}
	status, out := a.do(http.MethodPost, "/api/v1/identity/register", "", body)
	if status != http.StatusCreated {
		a.t.Fatalf("register %s: status %d body %v", email, status, out)
	}
	return out["id"].(string)
}

func (a *testAPI) login(email string) string {
	a.t.Helper()
	status, out := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": email, "password": "secret1"})
	if status != http.StatusOK {
		a.t.Fatalf("login %s: status %d body %v", email, status, out)
	}
	return out["access_token"].(string)
}

func balanceOf(t *testing.T, out map[string]any) decimal.Decimal {
	t.Helper()
	raw, ok := out["balance"].(string)
	if !ok {
		t.Fatalf("balance missing from %v", out)
	}
	return decimal.RequireFromString(raw)
}

func TestPublicEndpoints(t *testing.T) {
	api := newTestAPI(t)

	status, out := api.do(http.MethodGet, "/api/v1/ping", "", nil)
	if status != http.StatusOK || out["status"] != "ok" {
		t.Fatalf("ping: %d %v", status, out)
	}
	if status, _ := api.do(http.MethodGet, "/healthz", "", nil); status != http.StatusOK {
		t.Fatalf("healthz: %d", status)
	}
	if status, _ := api.do(http.MethodGet, "/metrics", "", nil); status != http.StatusOK {
		t.Fatalf("metrics: %d", status)
	}
	if status, _ := api.do(http.MethodGet, "/api/v1/wallet", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
	for _, path := range []string{"/api/v1/nope", "/api/v1/identity/unknown"} {
		if status, _ := api.do(http.MethodGet, path, "", nil); status != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, status)
		}
	}
}

func TestIdempotentFundingReplays(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	api := newTestAPIWithClients(t, infra.Clients{Cache: cache})
	api.register("alice@example.com", "Alice", "client", nil)
	alice := api.login("alice@example.com")

	fund := map[string]any{"amount": "100", "method": "bank-transfer"}
	key := map[string]string{"Idempotency-Key": "fund-1"}

	status, _, first := api.send(http.MethodPost, "/api/v1/wallet/fund", alice, fund, key)
	if status != http.StatusCreated {
		t.Fatalf("fund: %d %v", status, first)
	}
	status, headers, second := api.send(http.MethodPost, "/api/v1/wallet/fund", alice, fund, key)
	if status != http.StatusCreated {
		t.Fatalf("replayed fund: %d %v", status, second)
	}
	if headers.Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay header, got %v", headers)
	}
	if first["transaction_id"] != second["transaction_id"] {
		t.Fatalf("replay returned a different transaction: %v vs %v", first, second)
	}

	_, out := api.do(http.MethodGet, "/api/v1/wallet", alice, nil)
	if got := balanceOf(t, out); !got.Equal(decimal.NewFromInt(1100)) {
		t.Fatalf("balance = %s, funding applied more than once", got)
	}
}

func TestClientFlow(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice@example.com", "Alice", "client", nil)
	api.register("bob@example.com", "Bob", "client", nil)
	alice := api.login("alice@example.com")

	status, out := api.do(http.MethodPost, "/api/v1/payments/send", alice, map[string]any{
		"recipient": "Bob", "amount": "250", "description": "Rent",
	})
	if status != http.StatusCreated {
		t.Fatalf("send: %d %v", status, out)
	}
	if got := balanceOf(t, out); !got.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("balance after send = %s", got)
	}

	status, out = api.do(http.MethodPost, "/api/v1/payments/send", alice, map[string]any{
		"recipient": "Bob", "amount": 10000,
	})
	if status != http.StatusPaymentRequired {
		t.Fatalf("overdraft: %d %v", status, out)
	}
	if out["error"] == nil {
		t.Fatalf("expected error body, got %v", out)
	}

	status, _ = api.do(http.MethodPost, "/api/v1/payments/send", alice, map[string]any{
		"recipient": "Bob", "amount": "-5",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("negative amount: %d", status)
	}

	status, out = api.do(http.MethodPost, "/api/v1/utilities/airtime", alice, map[string]any{
		"provider": "verizon", "phone": "5551234", "amount": 20,
	})
	if status != http.StatusCreated {
		t.Fatalf("airtime: %d %v", status, out)
	}

	status, out = api.do(http.MethodPost, "/api/v1/wallet/fund", alice, map[string]any{
		"amount": "100", "method": "bank-transfer",
	})
	if status != http.StatusCreated {
		t.Fatalf("fund: %d %v", status, out)
	}
	if got := balanceOf(t, out); !got.Equal(decimal.NewFromInt(830)) {
		t.Fatalf("balance after fund = %s", got)
	}

	status, out = api.do(http.MethodGet, "/api/v1/wallet", alice, nil)
	if status != http.StatusOK {
		t.Fatalf("wallet: %d %v", status, out)
	}
	if got := balanceOf(t, out); !got.Equal(decimal.NewFromInt(830)) {
		t.Fatalf("wallet balance = %s", got)
	}
	if n, _ := out["transactionCount"].(float64); n != 3 {
		t.Fatalf("transactionCount = %v", out["transactionCount"])
	}

	// Clients cannot reach vendor or admin surfaces.
	if status, _ := api.do(http.MethodGet, "/api/v1/vendor/products", alice, nil); status != http.StatusForbidden {
		t.Fatalf("vendor route as client: %d", status)
	}
	if status, _ := api.do(http.MethodGet, "/api/v1/admin/stats", alice, nil); status != http.StatusForbidden {
		t.Fatalf("admin route as client: %d", status)
	}
}

func TestMarketplaceAndAdminFlow(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice@example.com", "Alice", "client", nil)
	vendorID := api.register("shop@example.com", "Shop Owner", "vendor", map[string]any{
		"vendorInfo": map[string]any{"businessName": "Mugs Inc", "category": "retail"},
	})
	api.register("root@example.com", "Root", "admin", nil)

	alice := api.login("alice@example.com")
	vendor := api.login("shop@example.com")
	admin := api.login("root@example.com")

	status, product := api.do(http.MethodPost, "/api/v1/vendor/products", vendor, map[string]any{
		"name": "Mug", "description": "Ceramic", "price": "75", "category": "retail",
	})
	if status != http.StatusCreated {
		t.Fatalf("create product: %d %v", status, product)
	}
	productID := product["id"].(string)

	status, out := api.do(http.MethodPost, "/api/v1/admin/accounts/"+vendorID+"/verify", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("verify vendor: %d %v", status, out)
	}

	status, out = api.do(http.MethodPost, "/api/v1/marketplace/products/"+productID+"/purchase", alice, nil)
	if status != http.StatusCreated {
		t.Fatalf("purchase: %d %v", status, out)
	}
	if got := balanceOf(t, out); !got.Equal(decimal.NewFromInt(925)) {
		t.Fatalf("buyer balance = %s", got)
	}

	status, out = api.do(http.MethodGet, "/api/v1/wallet", vendor, nil)
	if status != http.StatusOK {
		t.Fatalf("vendor wallet: %d %v", status, out)
	}
	if got := balanceOf(t, out); !got.Equal(decimal.NewFromInt(1075)) {
		t.Fatalf("vendor balance = %s", got)
	}

	status, out = api.do(http.MethodPut, "/api/v1/vendor/products/"+productID+"/active", vendor, map[string]any{"active": false})
	if status != http.StatusOK {
		t.Fatalf("deactivate: %d %v", status, out)
	}
	status, _ = api.do(http.MethodPost, "/api/v1/marketplace/products/"+productID+"/purchase", alice, nil)
	if status != http.StatusConflict {
		t.Fatalf("purchase inactive product: %d", status)
	}

	status, out = api.do(http.MethodGet, "/api/v1/admin/stats", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("admin stats: %d %v", status, out)
	}
	if n, _ := out["totalUsers"].(float64); n != 3 {
		t.Fatalf("totalUsers = %v", out["totalUsers"])
	}

	aliceID := func() string {
		_, me := api.do(http.MethodGet, "/api/v1/me", alice, nil)
		return me["id"].(string)
	}()
	status, _ = api.do(http.MethodPost, "/api/v1/admin/accounts/"+aliceID+"/suspend", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("suspend: %d", status)
	}
	if status, _ := api.do(http.MethodGet, "/api/v1/wallet", alice, nil); status != http.StatusForbidden {
		t.Fatalf("suspended account should be rejected, got %d", status)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice@example.com", "Alice", "client", nil)
	token := api.login("alice@example.com")

	if status, _ := api.do(http.MethodPost, "/api/v1/auth/logout", token, nil); status != http.StatusOK {
		t.Fatalf("logout: %d", status)
	}
	status, out := api.do(http.MethodGet, "/api/v1/me", token, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected revoked token, got %d %v", status, out)
	}
	if msg, _ := out["error"].(string); strings.TrimSpace(msg) == "" {
		t.Fatalf("expected error message, got %v", out)
	}
}
