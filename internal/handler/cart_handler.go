package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP（ログイン不要）
type CartHandler struct {
	cart    *usecase.CartUsecase
	catalog *usecase.CatalogUsecase
	err     *ErrorWriter
}

// DI
func NewCartHandler(cart *usecase.CartUsecase, catalog *usecase.CatalogUsecase, ew *ErrorWriter) *CartHandler {
	return &CartHandler{cart: cart, catalog: catalog, err: ew}
}

type AddCartRequest struct {
	ProductID string `json:"productId"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type DrawerRequest struct {
	Open bool `json:"open"`
}

// /cart, /cart/items/:productId を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")
	g.GET("", h.getCart)
	g.DELETE("", h.clear)
	g.POST("/items", h.addItem)
	g.PUT("/items/:productId", h.setQuantity)
	g.DELETE("/items/:productId", h.removeItem)
	g.PUT("/drawer", h.setDrawer)
}

func (h *CartHandler) getCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cart.View())
}

// 商品はカタログから引いて、その時点の価格で入れる
func (h *CartHandler) addItem(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.catalog.FindProduct(c.Request().Context(), req.ProductID)
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.cart.AddItem(c.Request().Context(), p))
}

// 0以下は削除
func (h *CartHandler) setQuantity(c echo.Context) error {
	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	return c.JSON(http.StatusOK, h.cart.SetQuantity(c.Request().Context(), c.Param("productId"), req.Quantity))
}

func (h *CartHandler) removeItem(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cart.RemoveItem(c.Request().Context(), c.Param("productId")))
}

func (h *CartHandler) clear(c echo.Context) error {
	h.cart.Clear(c.Request().Context())
	return c.JSON(http.StatusOK, h.cart.View())
}

func (h *CartHandler) setDrawer(c echo.Context) error {
	var req DrawerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	h.cart.SetDrawerOpen(req.Open)
	return c.JSON(http.StatusOK, h.cart.View())
}
