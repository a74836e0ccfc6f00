package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/guard"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 自分の注文（/purchases）
type OrderHandler struct {
	uc  *usecase.OrderUsecase
	err *ErrorWriter
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase, ew *ErrorWriter) *OrderHandler {
	return &OrderHandler{uc: uc, err: ew}
}

type ordersResponse struct {
	Orders []model.Order `json:"orders"`
}

type orderResponse struct {
	Order model.Order `json:"order"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, sessions middleware.SessionSource) {
	g := e.Group("/purchases")
	g.Use(middleware.AccessGuard(sessions, guard.Authenticated))

	g.GET("", h.list)
	g.GET("/:id", h.detail)
}

// 新しい順
func (h *OrderHandler) list(c echo.Context) error {
	orders, err := h.uc.ListMine(c.Request().Context())
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, ordersResponse{Orders: orders})
}

func (h *OrderHandler) detail(c echo.Context) error {
	o, err := h.uc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, orderResponse{Order: o})
}
