package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestCSRF(t *testing.T) {
	h := CSRF(CSRFConfig{})(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	t.Run("safe method issues token", func(t *testing.T) {
		rec, err := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NoError(t, err)
		assert.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))
		assert.NotEmpty(t, rec.Result().Cookies())
	})

	t.Run("cookie session without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "x"})
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
		rec, _ := serve(h, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("cookie session with matching token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "x"})
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
		req.Header.Set("X-CSRF-Token", "abc")
		rec, err := serve(h, req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("bearer and sessionless requests pass", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer t")
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "x"})
		rec, _ := serve(h, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec, _ = serve(h, httptest.NewRequest(http.MethodPost, "/api/payment/notification", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
