package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type CSRFConfig struct {
	CookieName string
	HeaderName string
	Secure     bool
	MaxAge     time.Duration
}

func DefaultCSRFConfig() CSRFConfig {
	return CSRFConfig{
		CookieName: "XSRF-TOKEN",
		HeaderName: "X-CSRF-Token",
		Secure:     true,
		MaxAge:     24 * time.Hour,
	}
}

// CSRF applies a double-submit token check to state-changing requests that
// authenticate with the access cookie. Bearer clients and requests without
// a session, such as the gateway webhook, pass through.
func CSRF(cfg CSRFConfig) echo.MiddlewareFunc {
	def := DefaultCSRFConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			token := ""
			if ck, err := req.Cookie(cfg.CookieName); err == nil {
				token = ck.Value
			}
			if token == "" {
				var err error
				if token, err = newCSRFToken(); err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "failed to create CSRF token")
				}
				c.SetCookie(&http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					Secure:   cfg.Secure,
					MaxAge:   int(cfg.MaxAge.Seconds()),
					SameSite: http.SameSiteLaxMode,
				})
			}

			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				c.Response().Header().Set(cfg.HeaderName, token)
				return next(c)
			}

			if req.Header.Get(echo.HeaderAuthorization) != "" {
				return next(c)
			}
			if _, err := req.Cookie(AccessCookie); err != nil {
				return next(c)
			}

			provided := req.Header.Get(cfg.HeaderName)
			if provided == "" || subtle.ConstantTimeCompare([]byte(token), []byte(provided)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "invalid CSRF token")
			}
			return next(c)
		}
	}
}

func newCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
