package repository

import (
	"context"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
)

// CartGormRepository はカートのスナップショットをcart_linesに持つ。
type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// 保存した順で返す
func (r *CartGormRepository) Load(ctx context.Context) ([]model.CartItem, error) {
	var lines []model.CartLine

	if err := r.db.WithContext(ctx).
		Order("position asc").
		Find(&lines).Error; err != nil {
		return nil, err
	}

	items := make([]model.CartItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, l.ToItem())
	}
	return items, nil
}

// 全件入れ替え（途中で失敗したら前の状態のまま）
func (r *CartGormRepository) Save(ctx context.Context, items []model.CartItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.CartLine{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		lines := make([]model.CartLine, 0, len(items))
		for i, it := range items {
			lines = append(lines, model.NewCartLine(it, i))
		}
		return tx.Create(&lines).Error
	})
}

func (r *CartGormRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&model.CartLine{}).Error
}
