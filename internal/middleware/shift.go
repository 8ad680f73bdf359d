package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	jwthelp "github.com/Skotchmaster/restaurant_pos/pkg/jwt"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

const ctxShift = "shift"

type ShiftGuarder interface {
	Guard(ctx context.Context, userID, shiftID uuid.UUID) (*service.ShiftInfo, error)
}

func expiredMessage(info *service.ShiftInfo) string {
	if info.Worked >= info.Limit {
		return fmt.Sprintf("Shift completed. %g hours work limit reached. Please login again for new shift.", info.MaxHours())
	}
	return "Shift ended. Please login again for new shift."
}

// ShiftGuard rejects requests whose token belongs to a shift that has
// reached the work-hour cap or has been closed. It must run after
// Auth.RequireAuth.
func ShiftGuard(g ShiftGuarder, secureCookies bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			userID, err := UserID(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
			}

			info, err := g.Guard(ctx, userID, ShiftID(c))
			if errors.Is(err, domain.ErrNoActiveShift) {
				c.SetCookie(jwthelp.ExpiredCookie(AccessCookie, secureCookies))
				return echo.NewHTTPError(http.StatusUnauthorized, "No active shift. Please login again.")
			}
			if errors.Is(err, domain.ErrShiftExpired) {
				logging.FromContext(ctx).Info("shift_guard_rejected", "user_id", userID, "hours_worked", info.HoursWorked())
				c.SetCookie(jwthelp.ExpiredCookie(AccessCookie, secureCookies))
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"success":        false,
					"message":        expiredMessage(info),
					"shiftCompleted": true,
					"hoursWorked":    info.HoursWorked(),
				})
			}
			if err != nil {
				return err
			}

			if info != nil {
				c.Set(ctxShift, info)
				c.Response().Header().Set("X-Shift-Remaining", strconv.FormatInt(int64(info.Remaining.Seconds()), 10))
			}
			return next(c)
		}
	}
}

// Shift returns the shift attached by ShiftGuard, or nil.
func Shift(c echo.Context) *service.ShiftInfo {
	info, _ := c.Get(ctxShift).(*service.ShiftInfo)
	return info
}
