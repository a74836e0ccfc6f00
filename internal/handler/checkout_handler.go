package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	uc  *usecase.CheckoutUsecase
	err *ErrorWriter
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase, ew *ErrorWriter) *CheckoutHandler {
	return &CheckoutHandler{uc: uc, err: ew}
}

type returnResponse struct {
	Outcome usecase.ReturnOutcome `json:"outcome"`
}

// ログインの確認はusecaseの前提条件で行う（専用のメッセージを返すため）
func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/checkout", h.start)
	e.GET("/checkout", h.returned)
}

func (h *CheckoutHandler) start(c echo.Context) error {
	res, err := h.uc.Checkout(c.Request().Context())
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// 決済ページからの戻り ?success=true / ?canceled=true&orderId=...
func (h *CheckoutHandler) returned(c echo.Context) error {
	out := h.uc.HandleReturn(usecase.ReturnParams{
		Success:  c.QueryParam("success"),
		Canceled: c.QueryParam("canceled"),
		OrderID:  c.QueryParam("orderId"),
	})
	return c.JSON(http.StatusOK, returnResponse{Outcome: out})
}
