package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/middleware"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	MenuHandler    *MenuHTTP
	OrderHandler   *OrderHTTP
	PaymentHandler *PaymentHTTP
	ShiftHandler   *ShiftHTTP
	JWTSecret      []byte
	CookieSecure   bool
	DB             *gorm.DB
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB == nil {
			return c.NoContent(http.StatusOK)
		}
		sqlDB, err := d.DB.DB()
		if err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.NewAuth(d.JWTSecret)
	authMW.SecureCookies = d.CookieSecure
	guard := middleware.ShiftGuard(d.ShiftHandler.Svc, d.CookieSecure)
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleCashier)
	admin := middleware.RequireRole(models.RoleAdmin)

	api := e.Group("/api", middleware.CSRF(middleware.CSRFConfig{Secure: d.CookieSecure}))

	auth := api.Group("/auth")
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout, authMW.RequireAuth)
	auth.GET("/profile", d.AuthHandler.Profile, authMW.RequireAuth, guard)

	users := api.Group("/users", authMW.RequireAuth, guard, admin)
	users.GET("", d.AuthHandler.ListUsers)
	users.POST("", d.AuthHandler.CreateUser)
	users.PATCH("/:id/toggle-status", d.AuthHandler.ToggleStatus)

	menu := api.Group("/menu")
	menu.GET("", d.MenuHandler.GetMenu)
	menu.GET("/search", d.MenuHandler.Search)
	menu.GET("/categories", d.MenuHandler.Categories)
	menu.GET("/:id", d.MenuHandler.GetMenuItem)
	menu.POST("", d.MenuHandler.CreateMenuItem, authMW.RequireAuth, guard, admin)
	menu.PATCH("/:id", d.MenuHandler.UpdateMenuItem, authMW.RequireAuth, guard, admin)
	menu.DELETE("/:id", d.MenuHandler.DeleteMenuItem, authMW.RequireAuth, guard, admin)
	menu.PATCH("/:id/stock", d.MenuHandler.AdjustStock, authMW.RequireAuth, guard, staff)

	orders := api.Group("/orders", authMW.RequireAuth, guard)
	orders.GET("", d.OrderHandler.GetOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateStatus, staff)

	payment := api.Group("/payment")
	payment.POST("/notification", d.PaymentHandler.Notification)
	payment.POST("/create", d.PaymentHandler.CreatePayment, authMW.RequireAuth, guard)
	payment.GET("/status/:orderId", d.PaymentHandler.Status, authMW.RequireAuth, guard)

	shifts := api.Group("/shifts", authMW.RequireAuth, guard)
	shifts.GET("/current", d.ShiftHandler.Current)
	shifts.GET("", d.ShiftHandler.List)
	shifts.POST("/clock-out", d.ShiftHandler.ClockOut)
}
