package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAccessToken_RoundTripsClaims(t *testing.T) {
	t.Parallel()

	secret := []byte("test-jwt-secret")
	userID := uuid.NewString()
	shiftID := uuid.NewString()
	exp := time.Now().Add(8 * time.Hour).UTC()

	token, err := SignAccessToken(userID, "cashier", shiftID, exp, secret)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, "cashier", claims.Role)
	assert.Equal(t, shiftID, claims.ShiftID)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	secret := []byte("test-jwt-secret")

	expired, err := SignAccessToken(uuid.NewString(), "admin", "", time.Now().Add(-time.Minute), secret)
	require.NoError(t, err)

	foreign, err := SignAccessToken(uuid.NewString(), "admin", "", time.Now().Add(time.Hour), []byte("other"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong secret", token: foreign},
		{name: "garbage", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := AccessClaimsFromToken(tt.token, secret)
			require.Error(t, err)
			assert.Nil(t, claims)
		})
	}

	_, err = AccessClaimsFromToken(expired, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
