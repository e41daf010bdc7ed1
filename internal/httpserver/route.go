package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/triskelion9/justdjangoecomm/internal/middleware/auth"
)

type Deps struct {
	AuthHandler     *AuthHTTP
	CatalogHandler  *CatalogHTTP
	CartHandler     *CartHTTP
	CheckoutHandler *CheckoutHTTP
	OrderHandler    *OrderHTTP
	WebhookHandler  *WebhookHTTP
	JWTSecret       []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMW := middleware.NewAuthMiddleware(d.JWTSecret)

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)

	items := e.Group("/items")
	items.GET("", d.CatalogHandler.ListItems)
	items.GET("/search", d.CatalogHandler.SearchItems)
	items.GET("/:slug", d.CatalogHandler.GetItem)

	itemsAdmin := items.Group("", authMW.RequireAdmin)
	itemsAdmin.POST("", d.CatalogHandler.CreateItem)
	itemsAdmin.PATCH("/:slug", d.CatalogHandler.UpdateItem)
	itemsAdmin.DELETE("/:slug", d.CatalogHandler.DeleteItem)

	cart := e.Group("/cart", authMW.RequireAuth)
	cart.GET("", d.CartHandler.GetSummary)
	cart.POST("/items/:slug", d.CartHandler.AddItem)
	cart.DELETE("/items/:slug", d.CartHandler.RemoveItem)
	cart.POST("/items/:slug/decrement", d.CartHandler.DecrementItem)

	e.POST("/checkout", d.CheckoutHandler.Checkout, authMW.RequireAuth)

	orders := e.Group("/orders", authMW.RequireAuth)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)

	// refund requests are keyed by ref code, no session required
	e.POST("/refund", d.OrderHandler.RequestRefund)

	admin := e.Group("/admin/orders", authMW.RequireAdmin)
	admin.POST("/:id/delivered", d.OrderHandler.MarkDelivered)
	admin.POST("/:id/received", d.OrderHandler.MarkReceived)
	admin.POST("/:id/refund/grant", d.OrderHandler.GrantRefund)

	e.POST("/webhooks/payment", d.WebhookHandler.PaymentConfirmation)
}
