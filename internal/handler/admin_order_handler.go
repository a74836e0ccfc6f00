package handler

import (
	"net/http"

	"storefront/internal/guard"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// スタッフの注文管理
type AdminOrderHandler struct {
	uc  *usecase.AdminOrderUsecase
	err *ErrorWriter
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase, ew *ErrorWriter) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, err: ew}
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, sessions middleware.SessionSource) {
	admin := e.Group("/admin/orders")
	admin.Use(middleware.AccessGuard(sessions, guard.StaffOnly))

	admin.GET("", h.list)
	admin.PUT("/:id", h.update)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	orders, err := h.uc.List(c.Request().Context())
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, ordersResponse{Orders: orders})
}

// {status, remainingTime, adminComment}
func (h *AdminOrderHandler) update(c echo.Context) error {
	var req usecase.AdminUpdateOrderInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	o, err := h.uc.UpdateStatus(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, orderResponse{Order: o})
}
