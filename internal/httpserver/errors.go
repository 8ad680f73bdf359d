package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
)

type errorKind struct {
	kind   error
	status int
	msg    string
}

// Checked in order; specific kinds precede the generic ones they wrap.
var errorKinds = []errorKind{
	{domain.ErrItemNotFound, http.StatusNotFound, "Menu item not found"},
	{domain.ErrOrderNotFound, http.StatusNotFound, "Order not found"},
	{domain.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{domain.ErrNoActiveShift, http.StatusNotFound, "No active shift found"},
	{domain.ErrNotFound, http.StatusNotFound, "Not found"},
	{domain.ErrValidation, http.StatusBadRequest, "Validation failed"},
	{domain.ErrItemUnavailable, http.StatusBadRequest, "Item is currently not available"},
	{domain.ErrInsufficientStock, http.StatusBadRequest, "Insufficient stock"},
	{domain.ErrInvalidStatus, http.StatusBadRequest, "Invalid status"},
	{domain.ErrInvalidTransition, http.StatusBadRequest, "Invalid status transition"},
	{domain.ErrOrderNotPending, http.StatusBadRequest, "Order is not pending payment"},
	{domain.ErrInvalidSignature, http.StatusBadRequest, "Invalid signature"},
	{domain.ErrConflict, http.StatusConflict, "Conflict"},
	{domain.ErrAmountMismatch, http.StatusConflict, "Order total does not match its items"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{domain.ErrAccountInactive, http.StatusUnauthorized, "Account is deactivated"},
	{domain.ErrShiftExpired, http.StatusUnauthorized, "Shift completed. Please login again for new shift."},
	{domain.ErrGateway, http.StatusBadGateway, "Payment gateway unavailable, please retry"},
}

func classify(err error) (int, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			return k.status, domain.Message(err, k.msg)
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// fail logs err under event and converts it to the HTTP error the client
// sees. Infrastructure failures are logged at error level and their detail
// is never sent to the client.
func fail(l *slog.Logger, event string, err error) error {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(status, msg)
}

// ErrorHandler renders every error as {success:false, message}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		msg    string
		he     *echo.HTTPError
	)
	if errors.As(err, &he) {
		status = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		default:
			msg = fmt.Sprint(m)
		}
	} else {
		status, msg = classify(err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, map[string]any{"success": false, "message": msg})
}
