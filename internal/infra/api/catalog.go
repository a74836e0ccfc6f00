package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

const (
	PathProducts        = "/products"
	PathCategories      = "/products/categories"
	PathAdminCategories = "/admin/categories"
	PathUploadImage     = "/uploads/image"
)

type ProductRepository struct {
	c *Client
}

func NewProductRepository(c *Client) *ProductRepository {
	return &ProductRepository{c: c}
}

// 送信用。価格は数値で送る
type productBody struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	Image           string  `json:"image"`
	PreparationTime *int    `json:"preparationTime,omitempty"`
	Category        string  `json:"category"`
}

func toProductBody(in repo.ProductInput) productBody {
	return productBody{
		Title:           in.Title,
		Description:     in.Description,
		Price:           in.Price.InexactFloat64(),
		Image:           in.Image,
		PreparationTime: in.PreparationTime,
		Category:        in.Category,
	}
}

func (r *ProductRepository) List(ctx context.Context) ([]model.Product, error) {
	var out struct {
		Products []model.Product `json:"products"`
	}
	if err := r.c.doJSON(ctx, http.MethodGet, PathProducts, nil, &out); err != nil {
		return nil, err
	}
	if out.Products == nil {
		out.Products = []model.Product{}
	}
	return out.Products, nil
}

func (r *ProductRepository) Create(ctx context.Context, in repo.ProductInput) (model.Product, error) {
	var out struct {
		Product model.Product `json:"product"`
	}
	if err := r.c.doJSON(ctx, http.MethodPost, PathProducts, toProductBody(in), &out); err != nil {
		return model.Product{}, err
	}
	return out.Product, nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, in repo.ProductInput) (model.Product, error) {
	var out struct {
		Product model.Product `json:"product"`
	}
	if err := r.c.doJSON(ctx, http.MethodPut, PathProducts+"/"+url.PathEscape(id), toProductBody(in), &out); err != nil {
		return model.Product{}, err
	}
	return out.Product, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.c.doJSON(ctx, http.MethodDelete, PathProducts+"/"+url.PathEscape(id), nil, nil)
}

// UploadImage は商品画像をmultipartで送り、保存先URLを返す。
func (r *ProductRepository) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("multipart: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("multipart: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.c.baseURL+PathUploadImage, &buf)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := r.c.send(req, PathUploadImage, &out); err != nil {
		return "", err
	}
	return out.ImageURL, nil
}

type CategoryRepository struct {
	c *Client
}

func NewCategoryRepository(c *Client) *CategoryRepository {
	return &CategoryRepository{c: c}
}

type categoriesPayload struct {
	Categories []model.Category `json:"categories"`
}

type categoryPayload struct {
	Category model.Category `json:"category"`
}

type categoryBody struct {
	Name string `json:"name"`
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	return r.list(ctx, PathCategories)
}

func (r *CategoryRepository) ListAdmin(ctx context.Context) ([]model.Category, error) {
	return r.list(ctx, PathAdminCategories)
}

func (r *CategoryRepository) list(ctx context.Context, path string) ([]model.Category, error) {
	var out categoriesPayload
	if err := r.c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Categories == nil {
		out.Categories = []model.Category{}
	}
	return out.Categories, nil
}

func (r *CategoryRepository) Create(ctx context.Context, name string) (model.Category, error) {
	var out categoryPayload
	if err := r.c.doJSON(ctx, http.MethodPost, PathAdminCategories, categoryBody{Name: name}, &out); err != nil {
		return model.Category{}, err
	}
	return out.Category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id string, name string) (model.Category, error) {
	var out categoryPayload
	if err := r.c.doJSON(ctx, http.MethodPut, PathAdminCategories+"/"+url.PathEscape(id), categoryBody{Name: name}, &out); err != nil {
		return model.Category{}, err
	}
	return out.Category, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return r.c.doJSON(ctx, http.MethodDelete, PathAdminCategories+"/"+url.PathEscape(id), nil, nil)
}
