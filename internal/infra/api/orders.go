package api

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

const (
	PathCheckoutSession = "/orders/checkout-session"
	PathCancelPending   = "/orders/cancel-pending"
	PathMyOrders        = "/orders/my-orders"
	PathStaffOrders     = "/orders/staff"
)

type OrderRepository struct {
	c *Client
}

func NewOrderRepository(c *Client) *OrderRepository {
	return &OrderRepository{c: c}
}

type ordersPayload struct {
	Orders []model.Order `json:"orders"`
}

func (r *OrderRepository) CreateCheckoutSession(ctx context.Context, req repo.CheckoutSessionRequest) (repo.CheckoutSession, error) {
	var out repo.CheckoutSession
	err := r.c.doJSON(ctx, http.MethodPost, PathCheckoutSession, req, &out, withIdempotencyKey(req.IdempotencyKey))
	if err != nil {
		return repo.CheckoutSession{}, err
	}
	return out, nil
}

func (r *OrderRepository) CancelPending(ctx context.Context, orderID string) error {
	return r.c.doJSON(ctx, http.MethodDelete, PathCancelPending+"/"+url.PathEscape(orderID), nil, nil)
}

func (r *OrderRepository) ListMine(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, PathMyOrders)
}

func (r *OrderRepository) ListStaff(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, PathStaffOrders)
}

func (r *OrderRepository) list(ctx context.Context, path string) ([]model.Order, error) {
	var out ordersPayload
	if err := r.c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Orders == nil {
		out.Orders = []model.Order{}
	}
	return out.Orders, nil
}

func (r *OrderRepository) UpdateStaff(ctx context.Context, orderID string, in model.StaffOrderUpdate) (model.Order, error) {
	//明細と合計は送らない（空文字はクリア）
	var out struct {
		Order model.Order `json:"order"`
	}
	if err := r.c.doJSON(ctx, http.MethodPut, PathStaffOrders+"/"+url.PathEscape(orderID), in, &out); err != nil {
		return model.Order{}, err
	}
	return out.Order, nil
}
