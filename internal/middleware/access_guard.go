package middleware

import (
	"context"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/guard"

	"github.com/labstack/echo/v4"
)

// handlerがセッションを読むときのキー
const CtxSessionKey = "session"

// AccessGuardが見るセッションの窓口（SessionUsecaseが実装）
type SessionSource interface {
	Current() model.Session
	Stale() bool
	Refresh(ctx context.Context)
}

type loadingResponse struct {
	State   model.SessionState `json:"state"`
	Message string             `json:"message"`
}

// AccessGuard はルートグループに必要な権限をguard.Decideで判定する。
// 確認中は202でローディング、拒否はリダイレクト先へ303。
func AccessGuard(sessions SessionSource, req guard.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//トークン期限切れならサーバーに確認し直す
			if sessions.Stale() {
				sessions.Refresh(c.Request().Context())
			}

			s := sessions.Current()
			d := guard.Decide(s, req)

			switch d.Outcome {
			case guard.Allow:
				c.Set(CtxSessionKey, s)
				return next(c)
			case guard.Pending:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusAccepted, loadingResponse{
					State:   model.SessionPending,
					Message: "loading",
				})
			}

			return c.Redirect(http.StatusSeeOther, d.Target)
		}
	}
}

// SessionFrom はAccessGuardが入れたセッションを取り出す。
func SessionFrom(c echo.Context) (model.Session, bool) {
	s, ok := c.Get(CtxSessionKey).(model.Session)
	return s, ok
}
