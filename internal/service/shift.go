package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/pkg/events"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

const DefaultShiftLimit = 8 * time.Hour

// ShiftService tracks clock-in sessions and enforces the work-hour cap.
// Now and Location are injectable so tests can pin the clock.
type ShiftService struct {
	Repo      *repo.GormRepo
	Publisher events.Publisher
	Now       func() time.Time
	Limit     time.Duration
	Location  *time.Location
}

// ShiftInfo is a shift plus the time worked on it as of the lookup.
type ShiftInfo struct {
	Shift     *models.Shift
	Worked    time.Duration
	Remaining time.Duration
	Limit     time.Duration
}

func (i *ShiftInfo) HoursWorked() float64    { return domain.Hours(i.Worked) }
func (i *ShiftInfo) RemainingHours() float64 { return domain.Hours(i.Remaining) }
func (i *ShiftInfo) MaxHours() float64       { return domain.Hours(i.Limit) }

func (s *ShiftService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *ShiftService) limit() time.Duration {
	if s.Limit > 0 {
		return s.Limit
	}
	return DefaultShiftLimit
}

func (s *ShiftService) today(now time.Time) string {
	return domain.DateKey(now, s.Location)
}

func (s *ShiftService) info(sh *models.Shift, now time.Time) *ShiftInfo {
	worked := time.Duration(sh.Duration) * time.Minute
	if sh.Status == domain.ShiftActive {
		worked = now.Sub(sh.ClockIn)
	}
	remaining := s.limit() - worked
	if remaining < 0 {
		remaining = 0
	}
	return &ShiftInfo{Shift: sh, Worked: worked, Remaining: remaining, Limit: s.limit()}
}

// EnsureActive returns the user's open shift, clocking them in if there is
// none. Calling it again while a shift is open returns that same shift. An
// open shift already past the cap is closed first and replaced.
func (s *ShiftService) EnsureActive(ctx context.Context, userID uuid.UUID) (*models.Shift, error) {
	l := logging.FromContext(ctx).With("svc", "shift.ensure_active")
	now := s.now()

	current, err := s.Repo.ActiveShift(ctx, userID)
	switch {
	case err == nil:
		if now.Sub(current.ClockIn) < s.limit() {
			return current, nil
		}
		if err := s.close(ctx, current, now, domain.ShiftCompleted, "expired"); err != nil && !errors.Is(err, domain.ErrNoActiveShift) {
			return nil, err
		}
	case !errors.Is(err, domain.ErrNoActiveShift):
		return nil, err
	}

	sh := &models.Shift{
		UserID:  userID,
		ClockIn: now,
		Status:  domain.ShiftActive,
		Date:    s.today(now),
	}
	if err := s.Repo.CreateShift(ctx, sh); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return s.Repo.ActiveShift(ctx, userID)
		}
		l.Error("create_shift_error", "user_id", userID, "error", err)
		return nil, err
	}

	publish(ctx, s.Publisher, events.TopicShifts, events.New(events.ShiftStarted, sh.ID.String(), map[string]any{
		"user_id":  userID.String(),
		"clock_in": sh.ClockIn,
		"date":     sh.Date,
	}))
	return sh, nil
}

// Guard checks the shift a session was opened for against the cap. The
// shift row is locked for the check so concurrent requests see one
// outcome. At or past the cap the shift is closed as completed; from then
// on, and after any other close, every request on that session gets
// ErrShiftExpired with the final figures. Sessions without a shift id are
// checked against the user's open shift and pass when there is none.
func (s *ShiftService) Guard(ctx context.Context, userID, shiftID uuid.UUID) (*ShiftInfo, error) {
	now := s.now()

	var (
		sh     *models.Shift
		closed bool
	)
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		if shiftID == uuid.Nil {
			sh, err = tx.LockActiveShift(ctx, userID)
		} else {
			sh, err = tx.LockShift(ctx, shiftID, userID)
		}
		if err != nil {
			return err
		}
		if sh.Status != domain.ShiftActive || now.Sub(sh.ClockIn) < s.limit() {
			return nil
		}
		if err := tx.CloseShift(ctx, sh, now, int64(now.Sub(sh.ClockIn)/time.Minute), domain.ShiftCompleted); err != nil {
			return err
		}
		closed = true
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveShift) && shiftID == uuid.Nil {
			return nil, nil
		}
		return nil, err
	}

	if closed {
		s.announceClose(ctx, sh, "limit")
	}
	if sh.Status != domain.ShiftActive {
		return s.info(sh, now), domain.ErrShiftExpired
	}
	return s.info(sh, now), nil
}

// ClockOut closes the user's open shift, labelling it overtime when it ran
// longer than the cap.
func (s *ShiftService) ClockOut(ctx context.Context, userID uuid.UUID) (*models.Shift, error) {
	return s.closeActive(ctx, userID, "clock_out")
}

func (s *ShiftService) closeActive(ctx context.Context, userID uuid.UUID, reason string) (*models.Shift, error) {
	now := s.now()

	sh, err := s.Repo.ActiveShift(ctx, userID)
	if err != nil {
		return nil, err
	}

	minutes := int64(now.Sub(sh.ClockIn) / time.Minute)
	if err := s.close(ctx, sh, now, domain.ClosingStatus(minutes, s.limit()), reason); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *ShiftService) close(ctx context.Context, sh *models.Shift, now time.Time, status domain.ShiftStatus, reason string) error {
	minutes := int64(now.Sub(sh.ClockIn) / time.Minute)
	if err := s.Repo.CloseShift(ctx, sh, now, minutes, status); err != nil {
		return err
	}
	s.announceClose(ctx, sh, reason)
	return nil
}

func (s *ShiftService) announceClose(ctx context.Context, sh *models.Shift, reason string) {
	logging.FromContext(ctx).Info("shift_closed", "shift_id", sh.ID, "user_id", sh.UserID, "status", sh.Status, "reason", reason, "duration_min", sh.Duration)
	publish(ctx, s.Publisher, events.TopicShifts, events.New(events.ShiftClosed, sh.ID.String(), map[string]any{
		"user_id":      sh.UserID.String(),
		"status":       sh.Status,
		"duration_min": sh.Duration,
		"reason":       reason,
	}))
}

// Current returns today's shift for the user: the open one if any, else the
// most recent one with today's date key.
func (s *ShiftService) Current(ctx context.Context, userID uuid.UUID) (*ShiftInfo, error) {
	now := s.now()

	sh, err := s.Repo.ActiveShift(ctx, userID)
	if errors.Is(err, domain.ErrNoActiveShift) {
		sh, err = s.Repo.LatestShiftOn(ctx, userID, s.today(now))
	}
	if err != nil {
		return nil, err
	}
	return s.info(sh, now), nil
}

func (s *ShiftService) List(ctx context.Context, f repo.ShiftFilter, offset, limit int) (int64, []models.Shift, error) {
	return s.Repo.ListShifts(ctx, f, offset, limit)
}
