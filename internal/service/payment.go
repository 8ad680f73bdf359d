package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/paygate"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
	"github.com/Skotchmaster/restaurant_pos/pkg/events"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

type PaymentGateway interface {
	CreateTransaction(ctx context.Context, tr paygate.TransactionRequest) (*paygate.TransactionResponse, error)
}

type PaymentService struct {
	Repo        *repo.GormRepo
	Gateway     PaymentGateway
	ServerKey   string
	CallbackURL string
	Publisher   events.Publisher
	Now         func() time.Time
}

type PaymentLink struct {
	Token          string
	RedirectURL    string
	GatewayOrderID string
}

// existingLink returns the payment link already stored on order, if any.
func existingLink(order *models.Order) *PaymentLink {
	if order.GatewayOrderID == nil {
		return nil
	}
	link := &PaymentLink{GatewayOrderID: *order.GatewayOrderID}
	if order.GatewayToken != nil {
		link.Token = *order.GatewayToken
	}
	if order.GatewayURL != nil {
		link.RedirectURL = *order.GatewayURL
	}
	return link
}

// NotificationResult describes what a gateway callback did to its order.
type NotificationResult struct {
	OrderID uuid.UUID
	Status  domain.OrderStatus
	Mapped  bool
	Changed bool
}

func (s *PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Initiate registers a hosted payment for a pending order and links the
// gateway transaction to it. The order status is left alone.
func (s *PaymentService) Initiate(ctx context.Context, orderID uuid.UUID) (*PaymentLink, error) {
	l := logging.FromContext(ctx).With("svc", "payment.initiate", "order_id", orderID)

	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderPending {
		return nil, domain.ErrOrderNotPending
	}
	if link := existingLink(order); link != nil {
		return link, nil
	}

	tr := paygate.TransactionRequest{
		TransactionDetails: paygate.TransactionDetails{
			OrderID: fmt.Sprintf("ORDER-%s-%d", order.ID, s.now().UnixMilli()),
		},
		CustomerDetails: paygate.CustomerDetails{
			FirstName: order.CustomerName,
			Phone:     order.CustomerPhone,
		},
		ItemDetails: make([]paygate.ItemDetail, 0, len(order.Lines)),
	}
	if s.CallbackURL != "" {
		tr.Callbacks = &paygate.Callbacks{Finish: s.CallbackURL}
	}

	var amount int64
	for _, ln := range order.Lines {
		amount += ln.Price * ln.Quantity
		tr.ItemDetails = append(tr.ItemDetails, paygate.ItemDetail{
			ID:       ln.MenuItemID.String(),
			Price:    ln.Price,
			Quantity: ln.Quantity,
			Name:     ln.Name,
		})
	}
	if amount != order.Total {
		l.Error("initiate_payment_error", "reason", "line sum differs from order total", "amount", amount, "total", order.Total)
		return nil, domain.ErrAmountMismatch
	}
	tr.TransactionDetails.GrossAmount = amount

	res, err := s.Gateway.CreateTransaction(ctx, tr)
	if err != nil {
		l.Error("initiate_payment_error", "reason", "gateway call failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}

	if err := s.Repo.LinkGateway(ctx, order.ID, res.Token, res.RedirectURL, tr.TransactionDetails.OrderID); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		// Another initiation linked first; hand out its transaction.
		l.Warn("initiate_payment_race", "discarded_gateway_order_id", tr.TransactionDetails.OrderID)
		winner, gerr := s.Repo.GetOrder(ctx, order.ID)
		if gerr != nil {
			return nil, gerr
		}
		if link := existingLink(winner); link != nil {
			return link, nil
		}
		return nil, err
	}

	publish(ctx, s.Publisher, events.TopicOrders, events.New(events.PaymentInitiated, order.ID.String(), map[string]any{
		"gateway_order_id": tr.TransactionDetails.OrderID,
		"amount":           amount,
	}))
	return &PaymentLink{
		Token:          res.Token,
		RedirectURL:    res.RedirectURL,
		GatewayOrderID: tr.TransactionDetails.OrderID,
	}, nil
}

// MapTransactionStatus converts a gateway transaction status, and the fraud
// verdict for card captures, to an order status. ok is false for values
// with no defined mapping.
func MapTransactionStatus(txStatus, fraudStatus string) (domain.OrderStatus, bool) {
	switch txStatus {
	case "capture":
		switch fraudStatus {
		case "challenge":
			return domain.OrderPending, true
		case "accept":
			return domain.OrderProcessing, true
		}
	case "settlement":
		return domain.OrderCompleted, true
	case "cancel", "deny", "expire":
		return domain.OrderCancelled, true
	case "pending":
		return domain.OrderPending, true
	}
	return "", false
}

func (s *PaymentService) VerifySignature(n transport.Notification) bool {
	want := paygate.Signature(n.OrderID, n.StatusCode, n.GrossAmount, s.ServerKey)
	return subtle.ConstantTimeCompare([]byte(want), []byte(n.SignatureKey)) == 1
}

// HandleNotification applies a gateway callback. Nothing is read or written
// before the signature checks out. Redelivery is harmless: a status the
// order already has is not written again.
func (s *PaymentService) HandleNotification(ctx context.Context, n transport.Notification) (*NotificationResult, error) {
	l := logging.FromContext(ctx).With("svc", "payment.notification", "gateway_order_id", n.OrderID)

	if !s.VerifySignature(n) {
		l.Warn("notification_rejected", "reason", "signature mismatch")
		return nil, domain.ErrInvalidSignature
	}

	var (
		res  NotificationResult
		prev domain.OrderStatus
	)
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		order, err := tx.LockOrderByGatewayID(ctx, n.OrderID)
		if err != nil {
			return err
		}
		res.OrderID = order.ID
		res.Status = order.Status
		prev = order.Status

		next, ok := MapTransactionStatus(n.TransactionStatus, n.FraudStatus)
		if !ok {
			l.Warn("notification_unmapped", "transaction_status", n.TransactionStatus, "fraud_status", n.FraudStatus)
			return nil
		}
		res.Mapped = true

		changed, err := transition(ctx, tx, order, next)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidTransition) {
				l.Warn("notification_ignored", "reason", "transition not allowed", "from", order.Status, "to", next)
				return nil
			}
			return err
		}
		res.Changed = changed
		res.Status = order.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Changed {
		l.Info("notification_applied", "order_id", res.OrderID, "from", prev, "to", res.Status)
		publish(ctx, s.Publisher, events.TopicOrders, statusChanged(res.OrderID, prev, res.Status, "gateway"))
	}
	return &res, nil
}

func (s *PaymentService) Status(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.Repo.GetOrder(ctx, orderID)
}
