package usecase

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/domain/model"
	"storefront/internal/guard"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CatalogUsecase は商品とカテゴリ。
// 一覧はキャッシュ（任意）を通し、スタッフの変更でキャッシュを消す。
type CatalogUsecase struct {
	session    SessionReader
	products   repo.ProductRepository
	categories repo.CategoryRepository
	//nilならキャッシュしない
	cache     repo.CatalogCache
	cacheTTL  time.Duration
	validator InputValidator
	logger    *slog.Logger
}

func NewCatalogUsecase(
	session SessionReader,
	products repo.ProductRepository,
	categories repo.CategoryRepository,
	cache repo.CatalogCache,
	cacheTTL time.Duration,
	validator InputValidator,
	logger *slog.Logger,
) *CatalogUsecase {
	return &CatalogUsecase{
		session:    session,
		products:   products,
		categories: categories,
		cache:      cache,
		cacheTTL:   cacheTTL,
		validator:  validator,
		logger:     logger,
	}
}

// ProductFilter は一覧の絞り込み（すべてクライアント側で行う）。
type ProductFilter struct {
	//空白区切り。すべてのトークンを含む商品だけ残す
	Search string
	//いずれかに一致（空なら全カテゴリ）
	CategoryIDs []string
	//両端を含む
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// ListProducts は新しい順に並べてから絞り込む。
func (u *CatalogUsecase) ListProducts(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	all, err := u.allProducts(ctx)
	if err != nil {
		return []model.Product{}, err
	}

	tokens := strings.Fields(strings.ToLower(f.Search))
	categories := make(map[string]struct{}, len(f.CategoryIDs))
	for _, id := range f.CategoryIDs {
		if id = strings.TrimSpace(id); id != "" {
			categories[id] = struct{}{}
		}
	}

	out := make([]model.Product, 0, len(all))
	for _, p := range all {
		if matchProduct(p, tokens, categories, f.MinPrice, f.MaxPrice) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindProduct はカートに入れる商品を探す。
func (u *CatalogUsecase) FindProduct(ctx context.Context, id string) (model.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Product{}, apperror.NewValidation("invalid product id")
	}

	all, err := u.allProducts(ctx)
	if err != nil {
		return model.Product{}, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, apperror.NewNotFound("product not found")
}

func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	if cached, ok := u.cachedCategories(ctx); ok {
		return cached, nil
	}

	categories, err := u.categories.List(ctx)
	if err != nil {
		return []model.Category{}, err
	}
	if categories == nil {
		categories = []model.Category{}
	}

	if u.cache != nil {
		if err := u.cache.SetCategories(ctx, categories, u.cacheTTL); err != nil {
			u.logger.Warn("catalog cache write failed", slog.String("error", err.Error()))
		}
	}
	return categories, nil
}

// 管理画面のカテゴリ一覧（キャッシュしない）
func (u *CatalogUsecase) ListAdminCategories(ctx context.Context) ([]model.Category, error) {
	if err := requireAccess(u.session.Current(), guard.StaffOnly); err != nil {
		return []model.Category{}, err
	}

	categories, err := u.categories.ListAdmin(ctx)
	if err != nil {
		return []model.Category{}, err
	}
	return categories, nil
}

func (u *CatalogUsecase) CreateProduct(ctx context.Context, in repo.ProductInput) (model.Product, error) {
	in, err := u.checkProductInput(ctx, in)
	if err != nil {
		return model.Product{}, err
	}

	p, err := u.products.Create(ctx, in)
	if err != nil {
		return model.Product{}, err
	}

	u.invalidate(ctx)
	u.logger.Info("product created", slog.String("product_id", p.ID))
	return p, nil
}

func (u *CatalogUsecase) UpdateProduct(ctx context.Context, id string, in repo.ProductInput) (model.Product, error) {
	id = strings.TrimSpace(id)
	in, err := u.checkProductInput(ctx, in)
	if err != nil {
		return model.Product{}, err
	}
	if id == "" {
		return model.Product{}, apperror.NewValidation("invalid product id")
	}

	p, err := u.products.Update(ctx, id, in)
	if err != nil {
		return model.Product{}, err
	}

	u.invalidate(ctx)
	u.logger.Info("product updated", slog.String("product_id", id))
	return p, nil
}

func (u *CatalogUsecase) DeleteProduct(ctx context.Context, id string) error {
	if err := requireAccess(u.session.Current(), guard.StaffOnly); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.NewValidation("invalid product id")
	}

	if err := u.products.Delete(ctx, id); err != nil {
		return err
	}

	u.invalidate(ctx)
	u.logger.Info("product deleted", slog.String("product_id", id))
	return nil
}

// UploadImage は商品画像を送ってURLを返す（商品の保存は別）。
func (u *CatalogUsecase) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	if err := requireAccess(u.session.Current(), guard.StaffOnly); err != nil {
		return "", err
	}
	filename = strings.TrimSpace(filename)
	if filename == "" || content == nil {
		return "", apperror.NewValidation("image is required")
	}

	url, err := u.products.UploadImage(ctx, filename, content)
	if err != nil {
		return "", err
	}
	u.logger.Info("product image uploaded", slog.String("filename", filename))
	return url, nil
}

func (u *CatalogUsecase) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	if err := requireAccess(u.session.Current(), guard.StaffOnly); err != nil {
		return model.Category{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, apperror.NewValidation("name is required")
	}

	c, err := u.categories.Create(ctx, name)
	if err != nil {
		return model.Category{}, err
	}

	u.invalidate(ctx)
	return c, nil
}

func (u *CatalogUsecase) UpdateCategory(ctx context.Context, id, name string) (model.Category, error) {
	if err := requireAccess(u.session.Current(), guard.StaffOnly); err != nil {
		return model.Category{}, err
	}
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return model.Category{}, apperror.NewValidation("invalid category id")
	}
	if name == "" {
		return model.Category{}, apperror.NewValidation("name is required")
	}

	c, err := u.categories.Update(ctx, id, name)
	if err != nil {
		return model.Category{}, err
	}

	u.invalidate(ctx)
	return c, nil
}

func (u *CatalogUsecase) DeleteCategory(ctx context.Context, id string) error {
	if err := requireAccess(u.session.Current(), guard.StaffOnly); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.NewValidation("invalid category id")
	}

	if err := u.categories.Delete(ctx, id); err != nil {
		return err
	}

	u.invalidate(ctx)
	return nil
}

func (u *CatalogUsecase) allProducts(ctx context.Context) ([]model.Product, error) {
	if u.cache != nil {
		cached, ok, err := u.cache.GetProducts(ctx)
		if err != nil {
			u.logger.Warn("catalog cache read failed", slog.String("error", err.Error()))
		} else if ok {
			return cached, nil
		}
	}

	products, err := u.products.List(ctx)
	if err != nil {
		return nil, err
	}
	//新しい順
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})

	if u.cache != nil {
		if err := u.cache.SetProducts(ctx, products, u.cacheTTL); err != nil {
			u.logger.Warn("catalog cache write failed", slog.String("error", err.Error()))
		}
	}
	return products, nil
}

func (u *CatalogUsecase) cachedCategories(ctx context.Context) ([]model.Category, bool) {
	if u.cache == nil {
		return nil, false
	}
	cached, ok, err := u.cache.GetCategories(ctx)
	if err != nil {
		u.logger.Warn("catalog cache read failed", slog.String("error", err.Error()))
		return nil, false
	}
	return cached, ok
}

func (u *CatalogUsecase) invalidate(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Invalidate(ctx); err != nil {
		u.logger.Warn("catalog cache invalidate failed", slog.String("error", err.Error()))
	}
}

func (u *CatalogUsecase) checkProductInput(ctx context.Context, in repo.ProductInput) (repo.ProductInput, error) {
	if err := requireAccess(u.session.Current(), guard.StaffOnly); err != nil {
		return in, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)
	in.Category = strings.TrimSpace(in.Category)
	if err := u.validator.Validate(ctx, in); err != nil {
		return in, err
	}
	if in.Price.IsNegative() {
		return in, apperror.NewValidation("price is too small")
	}
	return in, nil
}

func matchProduct(p model.Product, tokens []string, categories map[string]struct{}, min, max *decimal.Decimal) bool {
	if len(tokens) > 0 {
		text := strings.ToLower(p.Title + " " + p.Description + " " + p.CategoryName())
		for _, t := range tokens {
			if !strings.Contains(text, t) {
				return false
			}
		}
	}
	if len(categories) > 0 {
		if _, ok := categories[p.CategoryID()]; !ok {
			return false
		}
	}
	if min != nil && p.Price.LessThan(*min) {
		return false
	}
	if max != nil && p.Price.GreaterThan(*max) {
		return false
	}
	return true
}
