package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

type MenuFilter struct {
	Category  string
	Available *bool
}

func (r *GormRepo) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, notFound(err, domain.ErrItemNotFound)
	}
	return &item, nil
}

// LockMenuItem reads an item and holds its row lock until the surrounding
// transaction ends.
func (r *GormRepo) LockMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.forUpdate(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, notFound(err, domain.ErrItemNotFound)
	}
	return &item, nil
}

// AdjustStock adds delta to the item's stock. The update is conditional on
// the result staying non-negative, so two racing decrements can never
// oversell even without a row lock.
func (r *GormRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int64) (*models.MenuItem, error) {
	res := r.DB.WithContext(ctx).Model(&models.MenuItem{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		item, err := r.GetMenuItem(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, domain.InsufficientStock(item.Name, item.Stock)
	}
	return r.GetMenuItem(ctx, id)
}

func (r *GormRepo) ListMenuItems(ctx context.Context, f MenuFilter, offset, limit int) (int64, []models.MenuItem, error) {
	q := r.DB.WithContext(ctx).Model(&models.MenuItem{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Available != nil {
		q = q.Where("is_available = ?", *f.Available)
	}

	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.MenuItem, 0, limit)
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) SearchMenuItems(ctx context.Context, text string, offset, limit int) (int64, []models.MenuItem, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(text)) + "%"
	q := r.DB.WithContext(ctx).Model(&models.MenuItem{}).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)

	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.MenuItem, 0, limit)
	if err := q.Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetMenuItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MenuItem, error) {
	items := make([]models.MenuItem, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

var menuColumns = []string{"name", "description", "price", "category", "image", "is_available", "updated_at"}

// UpdateMenuItem writes the editable columns of item. Stock is only written
// when withStock is set so an edit cannot undo a concurrent sale.
func (r *GormRepo) UpdateMenuItem(ctx context.Context, item *models.MenuItem, withStock bool) error {
	cols := menuColumns
	if withStock {
		cols = append(cols[:len(cols):len(cols)], "stock")
	}
	res := r.DB.WithContext(ctx).Model(item).Select(cols).Updates(item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *GormRepo) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.MenuItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}
