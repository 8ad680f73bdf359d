package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

type OrderFilter struct {
	Status        string
	PaymentMethod string
	CashierID     *uuid.UUID
}

// CreateOrder inserts the order together with its lines.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Lines").Where("id = ?", id).First(&order).Error; err != nil {
		return nil, notFound(err, domain.ErrOrderNotFound)
	}
	return &order, nil
}

func (r *GormRepo) LockOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.forUpdate(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, notFound(err, domain.ErrOrderNotFound)
	}
	if err := r.DB.WithContext(ctx).Where("order_id = ?", order.ID).Find(&order.Lines).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) LockOrderByGatewayID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	var order models.Order
	if err := r.forUpdate(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&order).Error; err != nil {
		return nil, notFound(err, domain.ErrOrderNotFound)
	}
	return &order, nil
}

// SetOrderStatus moves the order from one status to another. It matches on
// the expected current status, so a write based on a stale read changes
// nothing and reports ErrConflict.
func (r *GormRepo) SetOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

// LinkGateway records the gateway transaction on a pending order that has
// none yet. An order that already carries one yields ErrConflict.
func (r *GormRepo) LinkGateway(ctx context.Context, id uuid.UUID, token, redirectURL, gatewayOrderID string) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ? AND gateway_order_id IS NULL", id, domain.OrderPending).
		Updates(map[string]any{
			"gateway_token":    token,
			"gateway_url":      redirectURL,
			"gateway_order_id": gatewayOrderID,
			"payment_method":   domain.PaymentGateway,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var o models.Order
	if err := r.DB.WithContext(ctx).Select("status").First(&o, "id = ?", id).Error; err != nil {
		return notFound(err, domain.ErrOrderNotFound)
	}
	if o.Status != domain.OrderPending {
		return domain.ErrOrderNotPending
	}
	return domain.ErrConflict
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentMethod != "" {
		q = q.Where("payment_method = ?", f.PaymentMethod)
	}
	if f.CashierID != nil {
		q = q.Where("cashier_id = ?", *f.CashierID)
	}

	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	if err := q.Preload("Lines").Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}
