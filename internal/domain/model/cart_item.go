package model

import "github.com/shopspring/decimal"

// カートの明細
// 追加時点の価格を保持する（合計計算で商品を再取得しない）。
type CartItem struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"imageRef"`
}

func (it CartItem) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func NewCartItem(p Product) CartItem {
	return CartItem{
		ProductID: p.ID,
		Title:     p.Title,
		UnitPrice: p.Price,
		Quantity:  1,
		ImageRef:  p.Image,
	}
}
