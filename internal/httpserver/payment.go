package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

type PaymentHTTP struct {
	Svc *service.PaymentService
}

func (h *PaymentHTTP) CreatePayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.create")

	var req transport.CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_payment_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	id, err := uuid.Parse(req.OrderID)
	if err != nil {
		l.Warn("create_payment_error", "status", 400, "reason", "invalid orderId", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid orderId")
	}

	link, err := h.Svc.Initiate(ctx, id)
	if err != nil {
		return fail(l, "create_payment_error", err)
	}

	l.Info("create_payment_success", "order_id", id, "gateway_order_id", link.GatewayOrderID)
	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"paymentUrl": link.RedirectURL,
		"token":      link.Token,
		"orderId":    link.GatewayOrderID,
	})
}

// Notification is the gateway webhook. It has no user session.
func (h *PaymentHTTP) Notification(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.notification")

	var n transport.Notification
	if err := c.Bind(&n); err != nil {
		l.Warn("notification_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.HandleNotification(ctx, n)
	if err != nil {
		return fail(l, "notification_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Notification processed",
		"status":  res.Status,
		"applied": res.Changed,
	})
}

func (h *PaymentHTTP) Status(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.status")

	id, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		l.Warn("payment_status_error", "status", 400, "reason", "invalid orderId", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid orderId")
	}

	order, err := h.Svc.Status(ctx, id)
	if err != nil {
		return fail(l, "payment_status_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"id":             order.ID,
			"status":         order.Status,
			"paymentMethod":  order.PaymentMethod,
			"total":          order.Total,
			"gatewayOrderId": order.GatewayOrderID,
		},
	})
}
