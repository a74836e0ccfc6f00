package handler

import (
	"net/http"
	"strings"

	"storefront/internal/apperror"
	"storefront/internal/domain/model"
	"storefront/internal/guard"
	"storefront/internal/middleware"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 商品・カテゴリ（公開とスタッフ用）
type CatalogHandler struct {
	uc  *usecase.CatalogUsecase
	err *ErrorWriter
}

// DI
func NewCatalogHandler(uc *usecase.CatalogUsecase, ew *ErrorWriter) *CatalogHandler {
	return &CatalogHandler{uc: uc, err: ew}
}

type productsResponse struct {
	Products []model.Product `json:"products"`
}

type productResponse struct {
	Product model.Product `json:"product"`
}

type categoriesResponse struct {
	Categories []model.Category `json:"categories"`
}

type categoryResponse struct {
	Category model.Category `json:"category"`
}

type imageResponse struct {
	ImageURL string `json:"imageUrl"`
}

type ProductRequest struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Image           string          `json:"image"`
	PreparationTime *int            `json:"preparationTime"`
	Category        string          `json:"category"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo, sessions middleware.SessionSource) {
	e.GET("/products", h.listProducts)
	e.GET("/categories", h.listCategories)

	// /adminのグループは管理画面トップが持つのでルートごとに付ける
	staff := middleware.AccessGuard(sessions, guard.StaffOnly)
	e.POST("/admin/products", h.createProduct, staff)
	e.POST("/admin/products/image", h.uploadImage, staff)
	e.PUT("/admin/products/:id", h.updateProduct, staff)
	e.DELETE("/admin/products/:id", h.deleteProduct, staff)

	e.GET("/admin/categories", h.listAdminCategories, staff)
	e.POST("/admin/categories", h.createCategory, staff)
	e.PUT("/admin/categories/:id", h.updateCategory, staff)
	e.DELETE("/admin/categories/:id", h.deleteCategory, staff)
}

// ?q=...&category=a,b&minPrice=..&maxPrice=..
func (h *CatalogHandler) listProducts(c echo.Context) error {
	f, err := parseProductFilter(c)
	if err != nil {
		return h.err.writeError(c, err)
	}

	products, err := h.uc.ListProducts(c.Request().Context(), f)
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, productsResponse{Products: products})
}

func (h *CatalogHandler) listCategories(c echo.Context) error {
	cats, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, categoriesResponse{Categories: cats})
}

func (h *CatalogHandler) listAdminCategories(c echo.Context) error {
	cats, err := h.uc.ListAdminCategories(c.Request().Context())
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, categoriesResponse{Categories: cats})
}

func (h *CatalogHandler) createProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), req.toInput())
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, productResponse{Product: p})
}

func (h *CatalogHandler) updateProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.UpdateProduct(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, productResponse{Product: p})
}

func (h *CatalogHandler) deleteProduct(c echo.Context) error {
	if err := h.uc.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return h.err.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// multipartの"image"を受け取る
func (h *CatalogHandler) uploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return h.err.writeError(c, apperror.NewValidation("image is required"))
	}

	f, err := fh.Open()
	if err != nil {
		return h.err.writeError(c, apperror.NewValidation("image is required"))
	}
	defer f.Close()

	url, err := h.uc.UploadImage(c.Request().Context(), fh.Filename, f)
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, imageResponse{ImageURL: url})
}

func (h *CatalogHandler) createCategory(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	cat, err := h.uc.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, categoryResponse{Category: cat})
}

func (h *CatalogHandler) updateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	cat, err := h.uc.UpdateCategory(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, categoryResponse{Category: cat})
}

func (h *CatalogHandler) deleteCategory(c echo.Context) error {
	if err := h.uc.DeleteCategory(c.Request().Context(), c.Param("id")); err != nil {
		return h.err.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (r ProductRequest) toInput() repo.ProductInput {
	return repo.ProductInput{
		Title:           r.Title,
		Description:     r.Description,
		Price:           r.Price,
		Image:           r.Image,
		PreparationTime: r.PreparationTime,
		Category:        r.Category,
	}
}

func parseProductFilter(c echo.Context) (usecase.ProductFilter, error) {
	f := usecase.ProductFilter{Search: c.QueryParam("q")}

	//category=a&category=b と category=a,b の両方を受ける
	for _, v := range c.QueryParams()["category"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.CategoryIDs = append(f.CategoryIDs, id)
			}
		}
	}

	min, err := parsePrice(c.QueryParam("minPrice"))
	if err != nil {
		return usecase.ProductFilter{}, err
	}
	max, err := parsePrice(c.QueryParam("maxPrice"))
	if err != nil {
		return usecase.ProductFilter{}, err
	}
	f.MinPrice = min
	f.MaxPrice = max
	return f, nil
}

// 空なら条件なし
func parsePrice(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperror.NewValidation("invalid price filter")
	}
	return &d, nil
}
