package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/middleware"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/util"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

type ShiftHTTP struct {
	Svc *service.ShiftService
}

func (h *ShiftHTTP) Current(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shift.current")

	userID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	info, err := h.Svc.Current(ctx, userID)
	if err != nil {
		return fail(l, "current_shift_error", err)
	}

	view := shiftView(info)
	view["currentHours"] = info.HoursWorked()
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": view})
}

// List returns the caller's shifts. Admins may pass userId to see another
// user's.
func (h *ShiftHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shift.list")

	userID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	f := repo.ShiftFilter{
		UserID:    &userID,
		Status:    c.QueryParam("status"),
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
	}
	if raw := c.QueryParam("userId"); raw != "" && middleware.Role(c) == models.RoleAdmin {
		id, err := uuid.Parse(raw)
		if err != nil {
			l.Warn("list_shifts_error", "status", 400, "reason", "invalid userId", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid userId")
		}
		f.UserID = &id
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	offset, limit := util.Calculate(page, util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))

	total, shifts, err := h.Svc.List(ctx, f, offset, limit)
	if err != nil {
		return fail(l, "list_shifts_error", err)
	}

	data := make([]map[string]any, 0, len(shifts))
	for i := range shifts {
		v := closedShiftView(&shifts[i])
		v["userId"] = shifts[i].UserID
		v["date"] = shifts[i].Date
		data = append(data, v)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"data":       data,
		"pagination": util.Meta(page, limit, total),
	})
}

func (h *ShiftHTTP) ClockOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shift.clock_out")

	userID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	sh, err := h.Svc.ClockOut(ctx, userID)
	if err != nil {
		return fail(l, "clock_out_error", err)
	}

	msg := "Clocked out successfully"
	if sh.Status == domain.ShiftOvertime {
		msg = "Clocked out with overtime"
	}
	l.Info("clock_out_success", "shift_id", sh.ID, "status", sh.Status, "duration_min", sh.Duration)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": msg,
		"data":    closedShiftView(sh),
	})
}
