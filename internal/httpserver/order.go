package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/middleware"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
	"github.com/Skotchmaster/restaurant_pos/internal/util"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	userID, err := middleware.UserID(c)
	if err != nil {
		l.Warn("create_order_error", "status", 401, "reason", "no user in context", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.CreateOrder(ctx, userID, req)
	if err != nil {
		// an unknown item in the order body is a bad request, not a missing resource
		if errors.Is(err, domain.ErrItemNotFound) {
			l.Warn("create_order_error", "status", 400, "reason", "unknown menu item", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, domain.Message(err, "Menu item not found"))
		}
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "total", order.Total)
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "Order created successfully",
		"data":    order,
	})
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	offset, limit := util.Calculate(page, util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))

	f := repo.OrderFilter{
		Status:        c.QueryParam("status"),
		PaymentMethod: c.QueryParam("paymentMethod"),
	}
	if raw := c.QueryParam("cashierId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			l.Warn("get_orders_error", "status", 400, "reason", "invalid cashierId", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid cashierId")
		}
		f.CashierID = &id
	}

	total, orders, err := h.Svc.ListOrders(ctx, f, offset, limit)
	if err != nil {
		return fail(l, "get_orders_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"data":       orders,
		"pagination": util.Meta(page, limit, total),
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_order_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": order})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Order status updated successfully",
		"data":    order,
	})
}
