package repository

import (
	"context"
	"io"
	"time"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 商品の作成・更新の入力
type ProductInput struct {
	Title           string          `validate:"required,max=255"`
	Description     string          `validate:"required"`
	Price           decimal.Decimal `validate:"-"`
	Image           string          `validate:"omitempty,max=2048"`
	PreparationTime *int            `validate:"omitempty,min=0"`
	Category        string          `validate:"required"`
}

// 商品APIの窓口。書き込みはスタッフのみ
type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	Create(ctx context.Context, in ProductInput) (model.Product, error)
	Update(ctx context.Context, id string, in ProductInput) (model.Product, error)
	Delete(ctx context.Context, id string) error
	//画像をアップロードしてURLを返す
	UploadImage(ctx context.Context, filename string, content io.Reader) (string, error)
}

// カテゴリAPIの窓口
type CategoryRepository interface {
	//公開一覧（GET /products/categories）
	List(ctx context.Context) ([]model.Category, error)
	//管理用一覧（GET /admin/categories）
	ListAdmin(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, name string) (model.Category, error)
	Update(ctx context.Context, id string, name string) (model.Category, error)
	Delete(ctx context.Context, id string) error
}

// 商品・カテゴリ一覧のキャッシュ。
// Getでヒットしなければ (nil, false, nil)。
type CatalogCache interface {
	GetProducts(ctx context.Context) ([]model.Product, bool, error)
	SetProducts(ctx context.Context, products []model.Product, ttl time.Duration) error
	GetCategories(ctx context.Context) ([]model.Category, bool, error)
	SetCategories(ctx context.Context, categories []model.Category, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
