package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Repository mocks
// =====================

type AuthRepoMock struct{ mock.Mock }

func (m *AuthRepoMock) Me(ctx context.Context) (model.Identity, error) {
	args := m.Called(ctx)
	id, _ := args.Get(0).(model.Identity)
	return id, args.Error(1)
}

func (m *AuthRepoMock) Login(ctx context.Context, req repo.LoginRequest) (repo.AuthResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(repo.AuthResult)
	return res, args.Error(1)
}

func (m *AuthRepoMock) Register(ctx context.Context, req repo.RegisterRequest) (repo.AuthResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(repo.AuthResult)
	return res, args.Error(1)
}

func (m *AuthRepoMock) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *AuthRepoMock) UpdateProfile(ctx context.Context, req repo.ProfileUpdate) (repo.AuthResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(repo.AuthResult)
	return res, args.Error(1)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) CreateCheckoutSession(ctx context.Context, req repo.CheckoutSessionRequest) (repo.CheckoutSession, error) {
	args := m.Called(ctx, req)
	cs, _ := args.Get(0).(repo.CheckoutSession)
	return cs, args.Error(1)
}

func (m *OrderRepoMock) CancelPending(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *OrderRepoMock) ListMine(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) ListStaff(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) UpdateStaff(ctx context.Context, orderID string, in model.StaffOrderUpdate) (model.Order, error) {
	args := m.Called(ctx, orderID, in)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) RedirectURL(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

type AccountRepoMock struct{ mock.Mock }

func (m *AccountRepoMock) ListStaff(ctx context.Context) ([]model.StaffAccount, error) {
	args := m.Called(ctx)
	accounts, _ := args.Get(0).([]model.StaffAccount)
	return accounts, args.Error(1)
}

func (m *AccountRepoMock) CreateAdmin(ctx context.Context, in repo.AccountInput) (model.StaffAccount, error) {
	args := m.Called(ctx, in)
	a, _ := args.Get(0).(model.StaffAccount)
	return a, args.Error(1)
}

func (m *AccountRepoMock) UpdateAdmin(ctx context.Context, id string, in repo.AccountInput) (model.StaffAccount, error) {
	args := m.Called(ctx, id, in)
	a, _ := args.Get(0).(model.StaffAccount)
	return a, args.Error(1)
}

func (m *AccountRepoMock) DeleteAdmin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *AccountRepoMock) Stats(ctx context.Context) (model.DashboardStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(model.DashboardStats)
	return s, args.Error(1)
}

func (m *AccountRepoMock) AuditLogs(ctx context.Context) ([]model.AuditLogEntry, error) {
	args := m.Called(ctx)
	logs, _ := args.Get(0).([]model.AuditLogEntry)
	return logs, args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, in repo.ProductInput) (model.Product, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, id string, in repo.ProductInput) (model.Product, error) {
	args := m.Called(ctx, id, in)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProductRepoMock) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	args := m.Called(ctx, filename)
	return args.String(0), args.Error(1)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) ListAdmin(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) Create(ctx context.Context, name string) (model.Category, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) Update(ctx context.Context, id string, name string) (model.Category, error) {
	args := m.Called(ctx, id, name)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type CatalogCacheMock struct{ mock.Mock }

func (m *CatalogCacheMock) GetProducts(ctx context.Context) ([]model.Product, bool, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]model.Product)
	return p, args.Bool(1), args.Error(2)
}

func (m *CatalogCacheMock) SetProducts(ctx context.Context, products []model.Product, ttl time.Duration) error {
	args := m.Called(ctx, products, ttl)
	return args.Error(0)
}

func (m *CatalogCacheMock) GetCategories(ctx context.Context) ([]model.Category, bool, error) {
	panic("not used in CatalogUsecase tests")
}

func (m *CatalogCacheMock) SetCategories(ctx context.Context, categories []model.Category, ttl time.Duration) error {
	panic("not used in CatalogUsecase tests")
}

func (m *CatalogCacheMock) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type CartStoreMock struct{ mock.Mock }

func (m *CartStoreMock) Load(ctx context.Context) ([]model.CartItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartStoreMock) Save(ctx context.Context, items []model.CartItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *CartStoreMock) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// =====================
// Stubs
// =====================

type fixedSession struct{ s model.Session }

func (f fixedSession) Current() model.Session { return f.s }

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("key-%d", g.n)
}

type tokenSpy struct {
	mu    sync.Mutex
	token string
}

func (t *tokenSpy) SetAccessToken(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = token
}

func (t *tokenSpy) Token() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

// =====================
// Helpers
// =====================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func customer() model.Session {
	return model.AuthenticatedSession(model.Identity{ID: "u1", Username: "mario", Email: "mario@example.com", Role: model.RoleCustomer})
}

func admin() model.Session {
	return model.AuthenticatedSession(model.Identity{ID: "a1", Username: "anna", Email: "anna@example.com", Role: model.RoleAdmin})
}

func owner() model.Session {
	return model.AuthenticatedSession(model.Identity{ID: "o1", Username: "olga", Email: "olga@example.com", Role: model.RoleOwner})
}

func product(id, title string, price string) model.Product {
	return model.Product{ID: id, Title: title, Price: decimal.RequireFromString(price)}
}

// HTTPErrorの実装詳細に依存しない
func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
