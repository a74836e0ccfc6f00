package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 注文ステータス（値はサーバーが返す文字列そのまま）
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "In attesa"
	OrderStatusInPreparation OrderStatus = "In preparazione"
	OrderStatusCompleted     OrderStatus = "Completato"
)

// 正しいステータスはこの3つだけ
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusInPreparation,
	OrderStatusCompleted,
}

// ParseOrderStatus は3つの値以外を拒否する。
func ParseOrderStatus(s string) (OrderStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

type OrderOwner struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// 注文明細
// 注文時点の単価を保存（商品価格が後で変わっても変えない）。
type OrderLine struct {
	ID        string          `json:"_id"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// 商品が削除されている場合は空
func (l OrderLine) ProductTitle() string {
	if l.Product == nil {
		return ""
	}
	return l.Product.Title
}

// Order はサーバー側が持つ注文。
// 合計と明細は作成時に確定し、クライアントから変更しない。
type Order struct {
	ID            string          `json:"_id"`
	Owner         *OrderOwner     `json:"user,omitempty"`
	Products      []OrderLine     `json:"products"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        OrderStatus     `json:"status"`
	RemainingTime string          `json:"remainingTime,omitempty"`
	AdminComment  string          `json:"adminComment,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// スタッフが送る更新内容（明細や合計は含めない）
type StaffOrderUpdate struct {
	Status        OrderStatus `json:"status"`
	RemainingTime string      `json:"remainingTime"`
	AdminComment  string      `json:"adminComment"`
}
