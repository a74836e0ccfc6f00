package server

import (
	"log/slog"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handlers はルートを持つハンドラ一式。
type Handlers struct {
	Session      *handler.SessionHandler
	Catalog      *handler.CatalogHandler
	Cart         *handler.CartHandler
	Checkout     *handler.CheckoutHandler
	Orders       *handler.OrderHandler
	AdminOrders  *handler.AdminOrderHandler
	AdminAccount *handler.AdminAccountHandler
}

// NewEcho はミドルウェアとルートを登録したechoを返す。
// allowOriginが空ならCORSヘッダーは付けない。
func NewEcho(h Handlers, sessions middleware.SessionSource, logger *slog.Logger, allowOrigin string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	if allowOrigin != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{allowOrigin},
			AllowCredentials: true,
		}))
	}

	RegisterRoutes(e, h, sessions)
	return e
}

func RegisterRoutes(e *echo.Echo, h Handlers, sessions middleware.SessionSource) {
	h.Session.RegisterRoutes(e)
	h.Catalog.RegisterRoutes(e, sessions)
	h.Cart.RegisterRoutes(e)
	h.Checkout.RegisterRoutes(e)
	h.Orders.RegisterRoutes(e, sessions)
	h.AdminOrders.RegisterRoutes(e, sessions)
	h.AdminAccount.RegisterRoutes(e, sessions)
}
