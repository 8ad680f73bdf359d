package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
	"github.com/Skotchmaster/restaurant_pos/pkg/events"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

type OrderService struct {
	Repo      *repo.GormRepo
	Publisher events.Publisher
}

type orderLine struct {
	rawID    string
	id       uuid.UUID
	quantity int64
}

func validateOrder(req transport.CreateOrderRequest) ([]orderLine, domain.PaymentMethod, error) {
	if len(req.Items) == 0 {
		return nil, "", domain.Reject(domain.ErrValidation, "Order must contain at least one item")
	}

	lines := make([]orderLine, 0, len(req.Items))
	for i, it := range req.Items {
		if it.Quantity < 1 {
			return nil, "", domain.Reject(domain.ErrValidation, "items[%d].quantity must be at least 1", i)
		}
		raw := strings.TrimSpace(it.MenuItemID)
		if raw == "" {
			return nil, "", domain.Reject(domain.ErrValidation, "items[%d].menuItemId is required", i)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, "", domain.Reject(domain.ErrItemNotFound, "Menu item with ID %s not found", raw)
		}
		lines = append(lines, orderLine{rawID: raw, id: id, quantity: it.Quantity})
	}

	if utf8.RuneCountInString(strings.TrimSpace(req.CustomerName)) < 2 {
		return nil, "", domain.Reject(domain.ErrValidation, "Customer name must be at least 2 characters")
	}

	method, ok := domain.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		return nil, "", domain.Reject(domain.ErrValidation, "Invalid payment method")
	}
	return lines, method, nil
}

// CreateOrder snapshots each requested item, decrements its stock and
// persists the order in one transaction. Any failing line rolls back every
// decrement made before it.
func (s *OrderService) CreateOrder(ctx context.Context, cashierID uuid.UUID, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")

	lines, method, err := validateOrder(req)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		CashierID:     cashierID,
		PaymentMethod: method,
		Status:        domain.OrderPending,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Notes:         strings.TrimSpace(req.Notes),
		Lines:         make([]models.OrderLine, 0, len(lines)),
	}

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var total int64
		for _, ln := range lines {
			item, err := tx.LockMenuItem(ctx, ln.id)
			if err != nil {
				if errors.Is(err, domain.ErrItemNotFound) {
					return domain.Reject(domain.ErrItemNotFound, "Menu item with ID %s not found", ln.rawID)
				}
				return err
			}
			if !item.IsAvailable {
				return domain.Reject(domain.ErrItemUnavailable, "%s is currently not available", item.Name)
			}
			if item.Stock < ln.quantity {
				return domain.InsufficientStock(item.Name, item.Stock)
			}

			subtotal := item.Price * ln.quantity
			if _, err := tx.AdjustStock(ctx, item.ID, -ln.quantity); err != nil {
				return err
			}
			total += subtotal

			order.Lines = append(order.Lines, models.OrderLine{
				MenuItemID: item.ID,
				Name:       item.Name,
				Category:   item.Category,
				Quantity:   ln.quantity,
				Price:      item.Price,
				Subtotal:   subtotal,
			})
		}
		order.Total = total
		return tx.CreateOrder(ctx, order)
	})
	if err != nil {
		var rej *domain.Rejection
		if !errors.As(err, &rej) {
			l.Error("create_order_error", "status", 500, "reason", "transaction failed", "error", err)
		}
		return nil, err
	}

	publish(ctx, s.Publisher, events.TopicOrders, events.New(events.OrderCreated, order.ID.String(), map[string]any{
		"cashier_id":     order.CashierID.String(),
		"total":          order.Total,
		"payment_method": order.PaymentMethod,
		"lines":          len(order.Lines),
	}))
	return order, nil
}

// UpdateStatus moves an order to raw. Re-applying the current status is a
// no-op; moves the transition table forbids return ErrInvalidTransition.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (*models.Order, error) {
	next, ok := domain.ParseOrderStatus(raw)
	if !ok {
		return nil, domain.Reject(domain.ErrInvalidStatus, "Invalid status")
	}

	var (
		order   *models.Order
		prev    domain.OrderStatus
		changed bool
	)
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = tx.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		prev = order.Status
		changed, err = transition(ctx, tx, order, next)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		publish(ctx, s.Publisher, events.TopicOrders, statusChanged(order.ID, prev, order.Status, "staff"))
	}
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.Repo.GetOrder(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context, f repo.OrderFilter, offset, limit int) (int64, []models.Order, error) {
	if f.Status != "" {
		if _, ok := domain.ParseOrderStatus(f.Status); !ok {
			return 0, nil, domain.Reject(domain.ErrInvalidStatus, "Invalid status")
		}
	}
	return s.Repo.ListOrders(ctx, f, offset, limit)
}

// transition applies next to a locked order inside tx. It reports whether
// the stored status changed.
func transition(ctx context.Context, tx *repo.GormRepo, order *models.Order, next domain.OrderStatus) (bool, error) {
	if order.Status == next {
		return false, nil
	}
	if order.Status.Terminal() {
		return false, domain.Reject(domain.ErrInvalidTransition, "Order is already %s", order.Status)
	}
	if !order.Status.CanTransition(next) {
		return false, domain.Reject(domain.ErrInvalidTransition,
			"Cannot change order status from %s to %s", order.Status, next)
	}
	if err := tx.SetOrderStatus(ctx, order.ID, order.Status, next); err != nil {
		return false, fmt.Errorf("set order status: %w", err)
	}
	order.Status = next
	return true, nil
}

func statusChanged(id uuid.UUID, from, to domain.OrderStatus, source string) events.Event {
	return events.New(events.OrderStatusChanged, id.String(), map[string]any{
		"from":   from,
		"to":     to,
		"source": source,
	})
}
