package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine はカートのスナップショット1行（DATABASE_URLがあるときだけ保存）。
// 合計は保存しない。
type CartLine struct {
	ProductID string          `gorm:"primaryKey;type:varchar(64)"`
	Title     string          `gorm:"type:varchar(255);not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	ImageRef  string          `gorm:"type:text"`
	Position  int             `gorm:"not null;index"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime"`
}

func (CartLine) TableName() string {
	return "cart_lines"
}

func (l CartLine) ToItem() CartItem {
	return CartItem{
		ProductID: l.ProductID,
		Title:     l.Title,
		UnitPrice: l.UnitPrice,
		Quantity:  l.Quantity,
		ImageRef:  l.ImageRef,
	}
}

func NewCartLine(it CartItem, position int) CartLine {
	return CartLine{
		ProductID: it.ProductID,
		Title:     it.Title,
		UnitPrice: it.UnitPrice,
		Quantity:  it.Quantity,
		ImageRef:  it.ImageRef,
		Position:  position,
	}
}
