package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/middleware"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
	"github.com/Skotchmaster/restaurant_pos/internal/util"
	jwthelp "github.com/Skotchmaster/restaurant_pos/pkg/jwt"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func shiftView(info *service.ShiftInfo) map[string]any {
	if info == nil {
		return nil
	}
	return map[string]any{
		"id":             info.Shift.ID,
		"clockIn":        info.Shift.ClockIn,
		"clockOut":       info.Shift.ClockOut,
		"status":         info.Shift.Status,
		"date":           info.Shift.Date,
		"hoursWorked":    info.HoursWorked(),
		"remainingHours": info.RemainingHours(),
		"maxHours":       info.MaxHours(),
	}
}

func closedShiftView(sh *models.Shift) map[string]any {
	if sh == nil {
		return nil
	}
	return map[string]any{
		"id":          sh.ID,
		"clockIn":     sh.ClockIn,
		"clockOut":    sh.ClockOut,
		"duration":    sh.Duration,
		"hoursWorked": sh.DurationHours(),
		"status":      sh.Status,
	}
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}

	c.SetCookie(jwthelp.SessionCookie(middleware.AccessCookie, res.AccessToken, res.AccessExp, h.CookieSecure))

	l.Info("login_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"data": map[string]any{
			"user":  res.User,
			"token": res.AccessToken,
			"shift": shiftView(res.Shift),
		},
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	userID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	sh, err := h.Svc.Logout(ctx, userID)
	if err != nil {
		return fail(l, "logout_error", err)
	}
	c.SetCookie(jwthelp.ExpiredCookie(middleware.AccessCookie, h.CookieSecure))

	l.Info("logout_success", "user_id", userID)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Logout successful",
		"data":    map[string]any{"shift": closedShiftView(sh)},
	})
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.profile")

	userID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	user, info, err := h.Svc.Profile(ctx, userID)
	if err != nil {
		return fail(l, "profile_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"user":  user,
			"shift": shiftView(info),
		},
	})
}

func (h *AuthHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create")

	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_user_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.CreateUser(ctx, req)
	if err != nil {
		return fail(l, "create_user_error", err)
	}

	l.Info("create_user_success", "user_id", user.ID, "role", user.Role)
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "User created successfully",
		"data":    user,
	})
}

func (h *AuthHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	offset, limit := util.Calculate(page, util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))

	f := repo.UserFilter{Role: c.QueryParam("role")}
	if raw := c.QueryParam("isActive"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			l.Warn("list_users_error", "status", 400, "reason", "invalid isActive flag", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid isActive flag")
		}
		f.Active = &v
	}

	total, users, err := h.Svc.ListUsers(ctx, f, offset, limit)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"data":       users,
		"pagination": util.Meta(page, limit, total),
	})
}

func (h *AuthHTTP) ToggleStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.toggle_status")

	actorID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}
	id, err := pathID(c)
	if err != nil {
		l.Warn("toggle_status_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := h.Svc.ToggleStatus(ctx, actorID, id)
	if err != nil {
		return fail(l, "toggle_status_error", err)
	}

	msg := "User deactivated successfully"
	if user.IsActive {
		msg = "User activated successfully"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": msg,
		"data":    user,
	})
}
