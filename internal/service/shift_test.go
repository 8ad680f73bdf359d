package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/pkg/events"
)

var clockIn = time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC)

func newShiftService(t *testing.T) (*ShiftService, *clock, *recordingPublisher) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	clk := &clock{now: clockIn}
	pub := &recordingPublisher{}
	return &ShiftService{
		Repo:      newTestRepo(t),
		Publisher: pub,
		Now:       clk.Now,
		Limit:     8 * time.Hour,
		Location:  loc,
	}, clk, pub
}

func TestEnsureActive_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, clk, pub := newShiftService(t)
	user := uuid.New()

	first, err := svc.EnsureActive(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftActive, first.Status)
	assert.Equal(t, "2025-03-01", first.Date)
	assert.True(t, first.ClockIn.Equal(clockIn))

	clk.Set(clockIn.Add(time.Hour))
	second, err := svc.EnsureActive(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.ClockIn.Equal(clockIn))

	assert.Equal(t, []string{events.ShiftStarted}, pub.types())
}

func TestGuard_BoundaryIsInclusive(t *testing.T) {
	ctx := context.Background()
	svc, clk, _ := newShiftService(t)
	user := uuid.New()
	sh, err := svc.EnsureActive(ctx, user)
	require.NoError(t, err)

	clk.Set(clockIn.Add(8*time.Hour - time.Second))
	info, err := svc.Guard(ctx, user, sh.ID)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, time.Second, info.Remaining)
	assert.Equal(t, 8.0, info.MaxHours())

	clk.Set(clockIn.Add(8 * time.Hour))
	info, err = svc.Guard(ctx, user, sh.ID)
	assert.ErrorIs(t, err, domain.ErrShiftExpired)
	require.NotNil(t, info)
	assert.Equal(t, 8.0, info.HoursWorked())
	assert.Equal(t, domain.ShiftCompleted, info.Shift.Status)
}

func TestGuard_ForceCompletesAfterLimit(t *testing.T) {
	ctx := context.Background()
	svc, clk, pub := newShiftService(t)
	user := uuid.New()
	opened, err := svc.EnsureActive(ctx, user)
	require.NoError(t, err)

	out := clockIn.Add(8*time.Hour + time.Second)
	clk.Set(out)
	_, err = svc.Guard(ctx, user, opened.ID)
	require.ErrorIs(t, err, domain.ErrShiftExpired)

	total, shifts, err := svc.List(ctx, repo.ShiftFilter{UserID: &user}, 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	sh := shifts[0]
	assert.Equal(t, domain.ShiftCompleted, sh.Status)
	assert.Equal(t, int64(480), sh.Duration)
	require.NotNil(t, sh.ClockOut)
	assert.True(t, sh.ClockOut.Equal(out))

	clk.Set(out.Add(time.Minute))
	info, err := svc.Guard(ctx, user, opened.ID)
	assert.ErrorIs(t, err, domain.ErrShiftExpired)
	require.NotNil(t, info)
	assert.Equal(t, 8.0, info.HoursWorked())

	assert.Equal(t, []string{events.ShiftStarted, events.ShiftClosed}, pub.types())
}

func TestGuard_ConcurrentRequestsPastLimit(t *testing.T) {
	ctx := context.Background()
	svc, clk, pub := newShiftService(t)
	user := uuid.New()
	sh, err := svc.EnsureActive(ctx, user)
	require.NoError(t, err)

	clk.Set(clockIn.Add(8*time.Hour + time.Second))

	const workers = 10
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Guard(ctx, user, sh.ID)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, domain.ErrShiftExpired)
	}
	assert.Equal(t, []string{events.ShiftStarted, events.ShiftClosed}, pub.types())
}

func TestGuard_ClosedSessionStaysRejected(t *testing.T) {
	ctx := context.Background()
	svc, clk, _ := newShiftService(t)
	user := uuid.New()

	first, err := svc.EnsureActive(ctx, user)
	require.NoError(t, err)
	clk.Set(clockIn.Add(2 * time.Hour))
	_, err = svc.ClockOut(ctx, user)
	require.NoError(t, err)

	info, err := svc.Guard(ctx, user, first.ID)
	assert.ErrorIs(t, err, domain.ErrShiftExpired)
	require.NotNil(t, info)
	assert.Equal(t, 2.0, info.HoursWorked())

	// a fresh login opens a new shift; the old session stays closed
	second, err := svc.EnsureActive(ctx, user)
	require.NoError(t, err)
	_, err = svc.Guard(ctx, user, second.ID)
	assert.NoError(t, err)
	_, err = svc.Guard(ctx, user, first.ID)
	assert.ErrorIs(t, err, domain.ErrShiftExpired)
}

func TestGuard_UnknownShift(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newShiftService(t)
	user := uuid.New()

	_, err := svc.Guard(ctx, user, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNoActiveShift)

	other, err := svc.EnsureActive(ctx, uuid.New())
	require.NoError(t, err)
	_, err = svc.Guard(ctx, user, other.ID)
	assert.ErrorIs(t, err, domain.ErrNoActiveShift)
}

func TestGuard_WithoutShiftID(t *testing.T) {
	ctx := context.Background()
	svc, clk, _ := newShiftService(t)
	user := uuid.New()

	info, err := svc.Guard(ctx, user, uuid.Nil)
	assert.NoError(t, err)
	assert.Nil(t, info)

	_, err = svc.EnsureActive(ctx, user)
	require.NoError(t, err)
	clk.Set(clockIn.Add(8 * time.Hour))
	_, err = svc.Guard(ctx, user, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrShiftExpired)
}

func TestClockOut(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		worked  time.Duration
		status  domain.ShiftStatus
		minutes int64
		hours   float64
	}{
		{"regular", 3*time.Hour + 20*time.Minute, domain.ShiftCompleted, 200, 3.33},
		{"exactly eight hours", 8 * time.Hour, domain.ShiftCompleted, 480, 8},
		{"overtime", 8*time.Hour + time.Minute, domain.ShiftOvertime, 481, 8.02},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, clk, _ := newShiftService(t)
			user := uuid.New()
			_, err := svc.EnsureActive(ctx, user)
			require.NoError(t, err)

			clk.Set(clockIn.Add(tc.worked))
			sh, err := svc.ClockOut(ctx, user)
			require.NoError(t, err)
			assert.Equal(t, tc.status, sh.Status)
			assert.Equal(t, tc.minutes, sh.Duration)
			assert.Equal(t, tc.hours, sh.DurationHours())

			_, err = svc.ClockOut(ctx, user)
			assert.ErrorIs(t, err, domain.ErrNoActiveShift)
		})
	}
}

func TestEnsureActive_NewShiftAfterClose(t *testing.T) {
	ctx := context.Background()
	svc, clk, _ := newShiftService(t)
	user := uuid.New()

	first, err := svc.EnsureActive(ctx, user)
	require.NoError(t, err)
	clk.Set(clockIn.Add(2 * time.Hour))
	_, err = svc.ClockOut(ctx, user)
	require.NoError(t, err)

	clk.Set(clockIn.Add(3 * time.Hour))
	second, err := svc.EnsureActive(ctx, user)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, domain.ShiftActive, second.Status)

	info, err := svc.Current(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, second.ID, info.Shift.ID)
	assert.Equal(t, 0.0, info.HoursWorked())
}

func TestEnsureActive_ReplacesExpiredShift(t *testing.T) {
	ctx := context.Background()
	svc, clk, _ := newShiftService(t)
	user := uuid.New()

	first, err := svc.EnsureActive(ctx, user)
	require.NoError(t, err)

	clk.Set(clockIn.Add(9 * time.Hour))
	second, err := svc.EnsureActive(ctx, user)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	total, _, err := svc.List(ctx, repo.ShiftFilter{UserID: &user, Status: string(domain.ShiftCompleted)}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestCurrent(t *testing.T) {
	ctx := context.Background()
	svc, clk, _ := newShiftService(t)
	user := uuid.New()

	_, err := svc.Current(ctx, user)
	assert.ErrorIs(t, err, domain.ErrNoActiveShift)

	_, err = svc.EnsureActive(ctx, user)
	require.NoError(t, err)
	clk.Set(clockIn.Add(90 * time.Minute))

	info, err := svc.Current(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1.5, info.HoursWorked())
	assert.Equal(t, 6.5, info.RemainingHours())

	_, err = svc.ClockOut(ctx, user)
	require.NoError(t, err)
	info, err = svc.Current(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftCompleted, info.Shift.Status)
	assert.Equal(t, 1.5, info.HoursWorked())
}
