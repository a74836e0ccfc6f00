package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/handler"
	"storefront/internal/infra/api"
	"storefront/internal/infra/payment"
	"storefront/internal/server"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =====================
// 疑似バックエンド
// =====================

type fakeBackend struct {
	expired  atomic.Bool
	mu       sync.Mutex
	canceled []string
	checkout int
}

func (b *fakeBackend) checkoutCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.checkout
}

func (b *fakeBackend) canceledIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.canceled...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) loggedIn(r *http.Request) (string, bool) {
	c, err := r.Cookie("token")
	if err != nil || b.expired.Load() {
		return "", false
	}
	return c.Value, true
}

func roleFor(name string) string {
	switch name {
	case "owner", "admin":
		return name
	}
	return "user"
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		name, ok := b.loggedIn(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"user": map[string]string{"_id": "u-" + name, "username": name, "role": roleFor(name)},
		})
	})

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UsernameOrEmail string `json:"usernameOrEmail"`
			Password        string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		b.expired.Store(false)
		http.SetCookie(w, &http.Cookie{Name: "token", Value: req.UsernameOrEmail, Path: "/"})
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"user": map[string]string{"_id": "u-" + req.UsernameOrEmail, "username": req.UsernameOrEmail, "role": roleFor(req.UsernameOrEmail)},
		})
	})

	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"products": []map[string]interface{}{
				{"_id": "p1", "title": "Cannolo", "description": "ricotta", "price": 3.5, "createdAt": "2024-01-01T10:00:00Z"},
				{"_id": "p2", "title": "Babà", "description": "rum", "price": 4, "createdAt": "2024-02-01T10:00:00Z"},
			},
		})
	})

	mux.HandleFunc("/orders/my-orders", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := b.loggedIn(r); !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "jwt expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"orders": []map[string]interface{}{
				{"_id": "o1", "status": "In attesa", "totalAmount": 7, "createdAt": "2024-01-01T10:00:00Z"},
				{"_id": "o2", "status": "Completato", "totalAmount": 4, "createdAt": "2024-03-01T10:00:00Z"},
			},
		})
	})

	mux.HandleFunc("/orders/checkout-session", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.checkout++
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"checkoutUrl": "https://pay.example/s/1", "orderId": "o-new"})
	})

	mux.HandleFunc("/orders/cancel-pending/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.canceled = append(b.canceled, strings.TrimPrefix(r.URL.Path, "/orders/cancel-pending/"))
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
	})

	return mux
}

// =====================
// helper
// =====================

type testApp struct {
	e        *echo.Echo
	session  *usecase.SessionUsecase
	checkout *usecase.CheckoutUsecase
	backend  *fakeBackend
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type seqIDs struct{ n int64 }

func (s *seqIDs) NewID() string {
	return fmt.Sprintf("idem-%d", atomic.AddInt64(&s.n, 1))
}

func newTestApp(t *testing.T, publicKey string) *testApp {
	t.Helper()

	b := &fakeBackend{}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := api.NewClient(srv.URL, 2*time.Second, logger)
	require.NoError(t, err)

	v := validator.NewInputValidator()
	orders := api.NewOrderRepository(client)

	sessionUC := usecase.NewSessionUsecase(api.NewAuthRepository(client), client, v, realClock{}, logger)
	cartUC := usecase.NewCartUsecase(nil, logger)
	catalogUC := usecase.NewCatalogUsecase(sessionUC, api.NewProductRepository(client), api.NewCategoryRepository(client), nil, 0, v, logger)
	checkoutUC := usecase.NewCheckoutUsecase(sessionUC, cartUC, orders, payment.NewStripeProvider("", nil), &seqIDs{}, logger, publicKey, time.Second)

	ew := handler.NewErrorWriter(sessionUC, logger)
	e := server.NewEcho(server.Handlers{
		Session:      handler.NewSessionHandler(sessionUC, ew),
		Catalog:      handler.NewCatalogHandler(catalogUC, ew),
		Cart:         handler.NewCartHandler(cartUC, catalogUC, ew),
		Checkout:     handler.NewCheckoutHandler(checkoutUC, ew),
		Orders:       handler.NewOrderHandler(usecase.NewOrderUsecase(sessionUC, orders), ew),
		AdminOrders:  handler.NewAdminOrderHandler(usecase.NewAdminOrderUsecase(sessionUC, orders, logger), ew),
		AdminAccount: handler.NewAdminAccountHandler(usecase.NewAdminAccountUsecase(sessionUC, api.NewAccountRepository(client), orders, v, logger), ew),
	}, sessionUC, logger, "")

	return &testApp{e: e, session: sessionUC, checkout: checkoutUC, backend: b}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) login(t *testing.T, name string) {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/login", map[string]string{
		"usernameOrEmail": name,
		"password":        "secret",
		"accountType":     "user",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// =====================
// tests
// =====================

func TestApp_PendingSessionShowsLoading(t *testing.T) {
	app := newTestApp(t, "pk_test")

	rec := app.do(t, http.MethodGet, "/purchases", nil)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderLocation))
}

func TestApp_AnonymousIsRedirectedToLogin(t *testing.T) {
	app := newTestApp(t, "pk_test")
	app.session.Refresh(context.Background())

	for _, path := range []string{"/purchases", "/admin", "/admin/orders", "/admin/logs"} {
		rec := app.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation), path)
	}
}

func TestApp_CustomerIsRedirectedHomeFromAdmin(t *testing.T) {
	app := newTestApp(t, "pk_test")
	app.session.Refresh(context.Background())
	app.login(t, "mario")

	rec := app.do(t, http.MethodGet, "/admin", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestApp_PurchasesNewestFirst(t *testing.T) {
	app := newTestApp(t, "pk_test")
	app.session.Refresh(context.Background())
	app.login(t, "mario")

	rec := app.do(t, http.MethodGet, "/purchases", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	orders := decodeMap(t, rec)["orders"].([]interface{})
	require.Len(t, orders, 2)
	assert.Equal(t, "o2", orders[0].(map[string]interface{})["_id"])
}

func TestApp_ExpiredSessionForcesLogin(t *testing.T) {
	app := newTestApp(t, "pk_test")
	app.session.Refresh(context.Background())
	app.login(t, "mario")

	app.backend.expired.Store(true)

	rec := app.do(t, http.MethodGet, "/purchases", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	rec = app.do(t, http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", decodeMap(t, rec)["state"])
}

func TestApp_ProfileShowsGuardedUser(t *testing.T) {
	app := newTestApp(t, "pk_test")
	app.session.Refresh(context.Background())

	rec := app.do(t, http.MethodGet, "/profile", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	app.login(t, "mario")
	rec = app.do(t, http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decodeMap(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "mario", user["username"])
	assert.Equal(t, "user", user["role"])
}

func TestApp_LoginFailureIsNotForcedLogin(t *testing.T) {
	app := newTestApp(t, "pk_test")
	app.session.Refresh(context.Background())

	rec := app.do(t, http.MethodPost, "/login", map[string]string{
		"usernameOrEmail": "mario",
		"password":        "wrong",
		"accountType":     "user",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "Invalid credentials", decodeMap(t, rec)["error"])
}

func TestApp_LoginValidationNeverCallsBackend(t *testing.T) {
	app := newTestApp(t, "pk_test")
	app.session.Refresh(context.Background())

	rec := app.do(t, http.MethodPost, "/login", map[string]string{"usernameOrEmail": "  ", "password": "secret", "accountType": "user"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeMap(t, rec)["error"])
}

func TestApp_ProductsFilter(t *testing.T) {
	app := newTestApp(t, "pk_test")

	rec := app.do(t, http.MethodGet, "/products?q=RICOTTA", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decodeMap(t, rec)["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].(map[string]interface{})["_id"])

	rec = app.do(t, http.MethodGet, "/products?minPrice=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApp_CartThenCheckout(t *testing.T) {
	app := newTestApp(t, "pk_test")
	app.session.Refresh(context.Background())

	for i := 0; i < 2; i++ {
		rec := app.do(t, http.MethodPost, "/cart/items", map[string]string{"productId": "p1"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec := app.do(t, http.MethodPost, "/cart/items", map[string]string{"productId": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodGet, "/cart", nil)
	cart := decodeMap(t, rec)
	assert.EqualValues(t, 2, cart["totalQuantity"])
	assert.Equal(t, "7", cart["totalPrice"])
	assert.Equal(t, true, cart["drawerOpen"])

	//未ログインは前提条件エラー（通信しない）
	rec = app.do(t, http.MethodPost, "/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, usecase.MessageCheckoutLoginRequired, decodeMap(t, rec)["error"])
	assert.Equal(t, 0, app.backend.checkoutCalls())

	app.login(t, "mario")

	rec = app.do(t, http.MethodPost, "/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeMap(t, rec)
	assert.Equal(t, "https://pay.example/s/1", out["redirectUrl"])
	assert.Equal(t, "o-new", out["orderId"])

	rec = app.do(t, http.MethodGet, "/cart", nil)
	cart = decodeMap(t, rec)
	assert.EqualValues(t, 0, cart["totalQuantity"])
	assert.Equal(t, false, cart["drawerOpen"])
}

func TestApp_CheckoutWithoutProviderKey(t *testing.T) {
	app := newTestApp(t, "")
	app.session.Refresh(context.Background())
	app.login(t, "mario")

	rec := app.do(t, http.MethodPost, "/cart/items", map[string]string{"productId": "p2"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPost, "/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, usecase.MessageCheckoutNoProviderKey, decodeMap(t, rec)["error"])
	assert.Equal(t, 0, app.backend.checkoutCalls())
}

func TestApp_CheckoutReturnCanceled(t *testing.T) {
	app := newTestApp(t, "pk_test")

	rec := app.do(t, http.MethodGet, "/checkout?canceled=true&orderId=o9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "canceled", decodeMap(t, rec)["outcome"])

	app.checkout.Wait()
	assert.Equal(t, []string{"o9"}, app.backend.canceledIDs())

	rec = app.do(t, http.MethodGet, "/checkout?success=true", nil)
	assert.Equal(t, "success", decodeMap(t, rec)["outcome"])
}

func TestApp_LogoutAlwaysClears(t *testing.T) {
	app := newTestApp(t, "pk_test")
	app.session.Refresh(context.Background())
	app.login(t, "mario")

	//バックエンドに/auth/logoutは無い（404）がローカルは消える
	rec := app.do(t, http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, app.session.Current().IsAuthenticated())
}
