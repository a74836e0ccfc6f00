package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// カートのスナップショット保存。
// 合計は保存しない（毎回明細から計算する）。
type CartRepository interface {
	//並び順どおりに返す
	Load(ctx context.Context) ([]model.CartItem, error)
	//全件入れ替え
	Save(ctx context.Context, items []model.CartItem) error
	Clear(ctx context.Context) error
}
