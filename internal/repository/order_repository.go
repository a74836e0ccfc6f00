package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 決済セッション作成で送る1行（価格は送らない）
type CheckoutItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CheckoutSessionRequest struct {
	Items []CheckoutItem `json:"items"`

	//ヘッダーで送る（同じ試行の二重作成防止）
	IdempotencyKey string `json:"-"`
}

// SessionIDかCheckoutURLのどちらか1つだけが入る
type CheckoutSession struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
	OrderID     string `json:"orderId"`
}

// 注文APIの窓口
type OrderRepository interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (CheckoutSession, error)
	//決済キャンセル時の保留注文削除
	CancelPending(ctx context.Context, orderID string) error

	ListMine(ctx context.Context) ([]model.Order, error)
	ListStaff(ctx context.Context) ([]model.Order, error)
	UpdateStaff(ctx context.Context, orderID string, in model.StaffOrderUpdate) (model.Order, error)
}

// PaymentProvider は sessionId から決済ページのURLを得る。
type PaymentProvider interface {
	RedirectURL(ctx context.Context, sessionID string) (string, error)
}
