package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

type ShiftFilter struct {
	UserID    *uuid.UUID
	Status    string
	StartDate string
	EndDate   string
}

// CreateShift opens a shift. A concurrent open for the same user trips the
// unique open_slot index and returns ErrConflict.
func (r *GormRepo) CreateShift(ctx context.Context, s *models.Shift) error {
	if s.Status == domain.ShiftActive {
		slot := s.UserID.String()
		s.OpenSlot = &slot
	}
	if err := r.DB.WithContext(ctx).Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *GormRepo) ActiveShift(ctx context.Context, userID uuid.UUID) (*models.Shift, error) {
	var s models.Shift
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.ShiftActive).
		First(&s).Error; err != nil {
		return nil, notFound(err, domain.ErrNoActiveShift)
	}
	return &s, nil
}

// LockShift loads one of the user's shifts by id with a row lock, whatever
// its status.
func (r *GormRepo) LockShift(ctx context.Context, id, userID uuid.UUID) (*models.Shift, error) {
	var s models.Shift
	if err := r.forUpdate(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&s).Error; err != nil {
		return nil, notFound(err, domain.ErrNoActiveShift)
	}
	return &s, nil
}

func (r *GormRepo) LockActiveShift(ctx context.Context, userID uuid.UUID) (*models.Shift, error) {
	var s models.Shift
	if err := r.forUpdate(ctx).
		Where("user_id = ? AND status = ?", userID, domain.ShiftActive).
		First(&s).Error; err != nil {
		return nil, notFound(err, domain.ErrNoActiveShift)
	}
	return &s, nil
}

// LatestShiftOn returns the most recent shift the user opened on date.
func (r *GormRepo) LatestShiftOn(ctx context.Context, userID uuid.UUID, date string) (*models.Shift, error) {
	var s models.Shift
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("clock_in DESC").
		First(&s).Error; err != nil {
		return nil, notFound(err, domain.ErrNoActiveShift)
	}
	return &s, nil
}

// CloseShift finalizes an active shift. Only the first closer wins; later
// attempts see RowsAffected == 0 and get ErrNoActiveShift.
func (r *GormRepo) CloseShift(ctx context.Context, s *models.Shift, clockOut time.Time, durationMin int64, status domain.ShiftStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.Shift{}).
		Where("id = ? AND status = ?", s.ID, domain.ShiftActive).
		Updates(map[string]any{
			"clock_out": clockOut,
			"duration":  durationMin,
			"status":    status,
			"open_slot": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNoActiveShift
	}
	s.ClockOut = &clockOut
	s.Duration = durationMin
	s.Status = status
	s.OpenSlot = nil
	return nil
}

func (r *GormRepo) ListShifts(ctx context.Context, f ShiftFilter, offset, limit int) (int64, []models.Shift, error) {
	q := r.DB.WithContext(ctx).Model(&models.Shift{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.StartDate != "" {
		q = q.Where("date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		q = q.Where("date <= ?", f.EndDate)
	}

	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	shifts := make([]models.Shift, 0, limit)
	if err := q.Order("clock_in DESC").Offset(offset).Limit(limit).Find(&shifts).Error; err != nil {
		return 0, nil, err
	}
	return total, shifts, nil
}
