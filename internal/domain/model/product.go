package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// 商品（参照データ）。CRUDはスタッフのみ
type Product struct {
	ID              string          `json:"_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Image           string          `json:"image"`
	Category        *Category       `json:"category,omitempty"`
	PreparationTime *int            `json:"preparationTime,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// カテゴリ名（未設定なら空）
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

func (p Product) CategoryID() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.ID
}
