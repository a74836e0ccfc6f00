package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/apperror"
	"storefront/internal/guard"
	"storefront/internal/infra/api"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// 401で消すローカルセッション
type SessionInvalidator interface {
	Invalidate()
}

// ErrorWriter はエラーを1件の通知にする。
// 認証が切れた401だけはセッションを消して/loginへ飛ばす。
type ErrorWriter struct {
	sessions SessionInvalidator
	logger   *slog.Logger
}

// DI
func NewErrorWriter(sessions SessionInvalidator, logger *slog.Logger) *ErrorWriter {
	return &ErrorWriter{sessions: sessions, logger: logger}
}

func (w *ErrorWriter) writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	ae, ok := apperror.As(err)
	if !ok {
		w.logger.Error("unexpected error", slog.String("path", c.Path()), slog.String("error", err.Error()))
		//500
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: apperror.MessageServer})
	}

	if forcesLogin(ae, c.Request().URL.Path) {
		w.sessions.Invalidate()
		w.logger.Info("session expired, redirecting to login",
			slog.String("method", ae.Method),
			slog.String("endpoint", ae.Endpoint),
		)
		return c.Redirect(http.StatusSeeOther, guard.LoginPath)
	}

	if ae.Kind == apperror.KindTransport || ae.Status >= http.StatusInternalServerError {
		w.logger.Warn("request failed",
			slog.String("kind", string(ae.Kind)),
			slog.Int("status", ae.Status),
			slog.String("endpoint", ae.Endpoint),
			slog.String("error", ae.Error()),
		)
	}
	return c.JSON(ae.Status, ErrorResponse{Error: ae.Message})
}

// forcesLogin はサーバーの401のうち強制ログアウトにするものを選ぶ。
// ログイン・登録そのもの、/auth/meの確認、ログイン画面と登録画面では飛ばさない。
func forcesLogin(ae *apperror.Error, route string) bool {
	if ae.Status != http.StatusUnauthorized || ae.Endpoint == "" {
		return false
	}
	if strings.Contains(ae.Endpoint, api.PathMe) {
		return false
	}
	if ae.Endpoint == api.PathLogin || ae.Endpoint == api.PathRegister {
		return false
	}
	if route == RouteLogin || route == RouteRegister {
		return false
	}
	return true
}
