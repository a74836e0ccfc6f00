package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/guard"
	"storefront/internal/middleware"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理画面トップとスタッフアカウント
type AdminAccountHandler struct {
	uc  *usecase.AdminAccountUsecase
	err *ErrorWriter
}

func NewAdminAccountHandler(uc *usecase.AdminAccountUsecase, ew *ErrorWriter) *AdminAccountHandler {
	return &AdminAccountHandler{uc: uc, err: ew}
}

type accountResponse struct {
	Admin model.StaffAccount `json:"admin"`
}

type logsResponse struct {
	Logs []model.AuditLogEntry `json:"logs"`
}

func (h *AdminAccountHandler) RegisterRoutes(e *echo.Echo, sessions middleware.SessionSource) {
	// /admin 配下はスタッフ限定
	admin := e.Group("/admin", middleware.AccessGuard(sessions, guard.StaffOnly))

	admin.GET("", h.dashboard)
	admin.GET("/accounts", h.listAccounts)
	admin.POST("/accounts", h.create)
	admin.PUT("/accounts/:id", h.update)
	admin.DELETE("/accounts/:id", h.delete)

	// 監査ログはownerだけ
	e.GET("/admin/logs", h.logs, middleware.AccessGuard(sessions, guard.OwnerOnly))
}

func (h *AdminAccountHandler) dashboard(c echo.Context) error {
	d, err := h.uc.Dashboard(c.Request().Context())
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// 一覧だけ（行ごとのcanManage付き）
func (h *AdminAccountHandler) listAccounts(c echo.Context) error {
	d, err := h.uc.Dashboard(c.Request().Context())
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, struct {
		Admins    []usecase.AccountRow `json:"admins"`
		CanCreate bool                 `json:"canCreate"`
	}{Admins: d.Accounts, CanCreate: d.CanCreate})
}

func (h *AdminAccountHandler) create(c echo.Context) error {
	var req repo.AccountInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	a, err := h.uc.CreateAdmin(c.Request().Context(), req)
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, accountResponse{Admin: a})
}

// passwordは空なら変更しない
func (h *AdminAccountHandler) update(c echo.Context) error {
	var req repo.AccountInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	a, err := h.uc.UpdateAdmin(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, accountResponse{Admin: a})
}

func (h *AdminAccountHandler) delete(c echo.Context) error {
	if err := h.uc.DeleteAdmin(c.Request().Context(), c.Param("id")); err != nil {
		return h.err.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminAccountHandler) logs(c echo.Context) error {
	logs, err := h.uc.AuditLogs(c.Request().Context())
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, logsResponse{Logs: logs})
}
