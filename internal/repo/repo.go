package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Transaction runs fn as one unit of work. Every call made through the
// repo handed to fn commits or rolls back together.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func (r *GormRepo) forUpdate(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func notFound(err error, kind error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return kind
	}
	return err
}
