package handler

import (
	"net/http"

	"storefront/internal/apperror"
	"storefront/internal/domain/model"
	"storefront/internal/guard"
	"storefront/internal/middleware"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	RouteLogin    = "/login"
	RouteRegister = "/register"
)

// ログイン・登録・ログアウト・プロフィール
type SessionHandler struct {
	uc  *usecase.SessionUsecase
	err *ErrorWriter
}

// DI
func NewSessionHandler(uc *usecase.SessionUsecase, ew *ErrorWriter) *SessionHandler {
	return &SessionHandler{uc: uc, err: ew}
}

type userResponse struct {
	User model.Identity `json:"user"`
}

func (h *SessionHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/session", h.current)
	e.POST(RouteLogin, h.login)
	e.POST(RouteRegister, h.register)
	e.POST("/logout", h.logout)

	g := e.Group("/profile")
	g.Use(middleware.AccessGuard(h.uc, guard.Authenticated))
	g.GET("", h.profile)
	g.PUT("", h.updateProfile)
}

// 現在のセッション（確認中ならpendingのまま返す）
func (h *SessionHandler) current(c echo.Context) error {
	if h.uc.Stale() {
		h.uc.Refresh(c.Request().Context())
	}
	return c.JSON(http.StatusOK, h.uc.Current())
}

func (h *SessionHandler) login(c echo.Context) error {
	var req repo.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	id, err := h.uc.Login(c.Request().Context(), req)
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, userResponse{User: id})
}

func (h *SessionHandler) register(c echo.Context) error {
	var req repo.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	id, err := h.uc.Register(c.Request().Context(), req)
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, userResponse{User: id})
}

// 失敗してもローカルのセッションは消える
func (h *SessionHandler) logout(c echo.Context) error {
	h.uc.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// ガードを通ったセッションのユーザー
func (h *SessionHandler) profile(c echo.Context) error {
	s, ok := middleware.SessionFrom(c)
	if !ok || s.Identity == nil {
		return h.err.writeError(c, apperror.NewAuthentication("login required"))
	}
	return c.JSON(http.StatusOK, userResponse{User: *s.Identity})
}

func (h *SessionHandler) updateProfile(c echo.Context) error {
	var req repo.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	id, err := h.uc.UpdateProfile(c.Request().Context(), req)
	if err != nil {
		return h.err.writeError(c, err)
	}
	return c.JSON(http.StatusOK, userResponse{User: id})
}
