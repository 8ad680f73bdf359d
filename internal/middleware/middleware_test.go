package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/pkg/tokens"
)

var secret = []byte("test-jwt-secret")

func signToken(t *testing.T, userID, role string, exp time.Time) string {
	t.Helper()
	tok, err := tokens.SignAccessToken(userID, role, "", exp, secret)
	require.NoError(t, err)
	return tok
}

func serve(h echo.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, err
}

func ok(c echo.Context) error {
	id, err := UserID(c)
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, id.String()+"/"+Role(c))
}

func TestRequireAuth(t *testing.T) {
	user := uuid.NewString()
	auth := NewAuth(secret)
	valid := signToken(t, user, models.RoleCashier, time.Now().Add(time.Hour))

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+valid)
		rec, err := serve(auth.RequireAuth(ok), req)
		require.NoError(t, err)
		assert.Equal(t, user+"/cashier", rec.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: valid})
		rec, err := serve(auth.RequireAuth(ok), req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"expired", signToken(t, user, models.RoleCashier, time.Now().Add(-time.Minute))},
		{"garbage", "not-a-token"},
		{"non uuid subject", signToken(t, "42", models.RoleCashier, time.Now().Add(time.Hour))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.token != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tc.token)
			}
			rec, err := serve(auth.RequireAuth(ok), req)
			require.Error(t, err)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	auth := NewAuth(secret)
	h := auth.RequireAuth(RequireRole(models.RoleAdmin)(ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, uuid.NewString(), models.RoleCashier, time.Now().Add(time.Hour)))
	rec, _ := serve(h, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, uuid.NewString(), models.RoleAdmin, time.Now().Add(time.Hour)))
	rec, err := serve(h, req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type guardFunc func(ctx context.Context, userID, shiftID uuid.UUID) (*service.ShiftInfo, error)

func (f guardFunc) Guard(ctx context.Context, userID, shiftID uuid.UUID) (*service.ShiftInfo, error) {
	return f(ctx, userID, shiftID)
}

func TestShiftGuard(t *testing.T) {
	auth := NewAuth(secret)
	user := uuid.NewString()
	shiftID := uuid.New()
	token, err := tokens.SignAccessToken(user, models.RoleCashier, shiftID.String(), time.Now().Add(time.Hour), secret)
	require.NoError(t, err)

	request := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		return req
	}

	t.Run("within limit", func(t *testing.T) {
		g := guardFunc(func(_ context.Context, _, sid uuid.UUID) (*service.ShiftInfo, error) {
			assert.Equal(t, shiftID, sid)
			return &service.ShiftInfo{
				Shift:     &models.Shift{Status: domain.ShiftActive},
				Worked:    2 * time.Hour,
				Remaining: 6 * time.Hour,
				Limit:     8 * time.Hour,
			}, nil
		})
		var seen *service.ShiftInfo
		h := auth.RequireAuth(ShiftGuard(g, true)(func(c echo.Context) error {
			seen = Shift(c)
			return c.NoContent(http.StatusNoContent)
		}))
		rec, err := serve(h, request())
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "21600", rec.Header().Get("X-Shift-Remaining"))
	})

	t.Run("expired", func(t *testing.T) {
		g := guardFunc(func(context.Context, uuid.UUID, uuid.UUID) (*service.ShiftInfo, error) {
			return &service.ShiftInfo{
				Shift:  &models.Shift{Status: domain.ShiftCompleted, Duration: 480},
				Worked: 8 * time.Hour,
				Limit:  8 * time.Hour,
			}, domain.ErrShiftExpired
		})
		called := false
		h := auth.RequireAuth(ShiftGuard(g, true)(func(c echo.Context) error {
			called = true
			return nil
		}))
		rec, err := serve(h, request())
		require.NoError(t, err)
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.Equal(t, true, body["shiftCompleted"])
		assert.Equal(t, 8.0, body["hoursWorked"])
		assert.Equal(t, "Shift completed. 8 hours work limit reached. Please login again for new shift.", body["message"])
	})

	t.Run("ended by clock out", func(t *testing.T) {
		g := guardFunc(func(context.Context, uuid.UUID, uuid.UUID) (*service.ShiftInfo, error) {
			return &service.ShiftInfo{
				Shift:  &models.Shift{Status: domain.ShiftCompleted, Duration: 120},
				Worked: 2 * time.Hour,
				Limit:  8 * time.Hour,
			}, domain.ErrShiftExpired
		})
		rec, err := serve(auth.RequireAuth(ShiftGuard(g, true)(ok)), request())
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Shift ended. Please login again for new shift.")
	})

	t.Run("unknown shift", func(t *testing.T) {
		g := guardFunc(func(context.Context, uuid.UUID, uuid.UUID) (*service.ShiftInfo, error) {
			return nil, domain.ErrNoActiveShift
		})
		rec, _ := serve(auth.RequireAuth(ShiftGuard(g, true)(ok)), request())
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		g := guardFunc(func(context.Context, uuid.UUID, uuid.UUID) (*service.ShiftInfo, error) {
			return nil, errors.New("db down")
		})
		rec, err := serve(auth.RequireAuth(ShiftGuard(g, true)(ok)), request())
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
