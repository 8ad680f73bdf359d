package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// RequestLogger stores a per-request logger in the request context and
// logs each request once it has been answered.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := base.With("method", req.Method, "route", c.Path())
			if id := requestID(c); id != "" {
				l = l.With("request_id", id)
				c.Response().Header().Set(echo.HeaderXRequestID, id)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			res := c.Response()
			attrs := []any{
				"status", res.Status,
				"uri", req.URL.RequestURI(),
				"remote_ip", c.RealIP(),
				"latency_ms", time.Since(start).Milliseconds(),
				"bytes_out", res.Size,
			}
			if uid, _ := c.Get("user_id").(string); uid != "" {
				attrs = append(attrs, "user_id", uid)
			}
			l.Log(req.Context(), levelFor(res.Status), "http_request", attrs...)
			return nil
		}
	}
}
