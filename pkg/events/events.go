// Package events publishes domain events to a message broker after the
// state change that produced them has been committed.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	TopicOrders = "order_events"
	TopicShifts = "shift_events"
)

const (
	OrderCreated       = "order_created"
	OrderStatusChanged = "order_status_changed"
	PaymentInitiated   = "payment_initiated"
	ShiftStarted       = "shift_started"
	ShiftClosed        = "shift_closed"
)

type Event struct {
	Type       string         `json:"type"`
	Key        string         `json:"key"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data"`
}

func New(typ, key string, data map[string]any) Event {
	return Event{Type: typ, Key: key, OccurredAt: time.Now().UTC(), Data: data}
}

func (e Event) encode() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("events: marshal %s: %w", e.Type, err)
	}
	return body, nil
}

type Publisher interface {
	Publish(ctx context.Context, topic string, e Event) error
	Close() error
}

type Noop struct{}

func (Noop) Publish(context.Context, string, Event) error { return nil }
func (Noop) Close() error                                  { return nil }
