package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	jwthelp "github.com/Skotchmaster/restaurant_pos/pkg/jwt"
	"github.com/Skotchmaster/restaurant_pos/pkg/tokens"
)

const (
	AccessCookie = "accessToken"

	ctxUserID  = "user_id"
	ctxRole    = "role"
	ctxShiftID = "shift_id"
)

type Auth struct {
	JWTSecret     []byte
	SecureCookies bool
}

func NewAuth(secret []byte) *Auth {
	return &Auth{JWTSecret: secret}
}

// bearer returns the access token from the Authorization header, falling
// back to the access cookie used by the web client.
func bearer(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if ck, err := c.Cookie(AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearer(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			c.SetCookie(jwthelp.ExpiredCookie(AccessCookie, m.SecureCookies))
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
		}
		if _, err := uuid.Parse(claims.Subject); err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
		}
		shiftID := uuid.Nil
		if claims.ShiftID != "" {
			if shiftID, err = uuid.Parse(claims.ShiftID); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
			}
		}

		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxShiftID, shiftID)
		return next(c)
	}
}

// RequireRole lets the request through only for the listed roles. It must
// run after RequireAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !slices.Contains(roles, Role(c)) {
				return echo.NewHTTPError(http.StatusForbidden, "Access denied. Insufficient permissions.")
			}
			return next(c)
		}
	}
}

func UserID(c echo.Context) (uuid.UUID, error) {
	s, ok := c.Get(ctxUserID).(string)
	if !ok || s == "" {
		return uuid.Nil, errors.New("unauthorized")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.New("unauthorized")
	}
	return id, nil
}

// ShiftID returns the shift the access token was issued for, or uuid.Nil.
func ShiftID(c echo.Context) uuid.UUID {
	id, _ := c.Get(ctxShiftID).(uuid.UUID)
	return id
}

func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}
