package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_Terminal(t *testing.T) {
	assert.False(t, OrderPending.Terminal())
	assert.False(t, OrderProcessing.Terminal())
	assert.True(t, OrderCompleted.Terminal())
	assert.True(t, OrderCancelled.Terminal())
}

func TestOrderStatus_CanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCompleted, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderPending, true},
		{OrderProcessing, OrderCompleted, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderProcessing, OrderPending, false},
		{OrderCompleted, OrderCompleted, true},
		{OrderCompleted, OrderPending, false},
		{OrderCompleted, OrderCancelled, false},
		{OrderCancelled, OrderProcessing, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	st, ok := ParseOrderStatus("processing")
	require.True(t, ok)
	assert.Equal(t, OrderProcessing, st)

	_, ok = ParseOrderStatus("refunded")
	assert.False(t, ok)
	_, ok = ParseOrderStatus("")
	assert.False(t, ok)
}

func TestParsePaymentMethod_DefaultsToCash(t *testing.T) {
	t.Parallel()

	m, ok := ParsePaymentMethod("")
	require.True(t, ok)
	assert.Equal(t, PaymentCash, m)

	_, ok = ParsePaymentMethod("barter")
	assert.False(t, ok)
}

func TestClosingStatus(t *testing.T) {
	t.Parallel()

	limit := 8 * time.Hour
	assert.Equal(t, ShiftCompleted, ClosingStatus(0, limit))
	assert.Equal(t, ShiftCompleted, ClosingStatus(480, limit))
	assert.Equal(t, ShiftOvertime, ClosingStatus(481, limit))
}

func TestHoursRounding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 8.0, HoursFromMinutes(480))
	assert.Equal(t, 1.33, HoursFromMinutes(80))
	assert.Equal(t, 0.02, HoursFromMinutes(1))
	assert.Equal(t, 2.5, Hours(150*time.Minute))
}

func TestRejection_UnwrapsToKind(t *testing.T) {
	t.Parallel()

	err := InsufficientStock("Latte", 3)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, "Insufficient stock for Latte. Available: 3", err.Error())
	assert.Equal(t, err.Error(), Message(err, "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("boom"), "fallback"))

	assert.True(t, errors.Is(ErrOrderNotFound, ErrNotFound))
}
