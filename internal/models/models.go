package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"      json:"id"`
	Name         string     `gorm:"not null"                  json:"name"`
	Email        string     `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash string     `gorm:"not null"                  json:"-"`
	Role         string     `gorm:"not null;default:cashier"  json:"role"`
	IsActive     bool       `gorm:"not null;default:true"     json:"isActive"`
	LastLogin    *time.Time `                                 json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `                                 json:"createdAt"`
	UpdatedAt    time.Time  `                                 json:"updatedAt"`
}

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

type MenuItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"        json:"id"`
	Name        string          `gorm:"not null"                    json:"name"`
	Description string          `gorm:"not null"                    json:"description"`
	Price       int64           `gorm:"not null;check:price >= 0"   json:"price"`
	Category    domain.Category `gorm:"not null;index"              json:"category"`
	Image       string          `                                   json:"image"`
	Stock       int64           `gorm:"not null;check:stock >= 0"   json:"stock"`
	IsAvailable bool            `gorm:"not null;default:true"       json:"isAvailable"`
	CreatedAt   time.Time       `                                   json:"createdAt"`
	UpdatedAt   time.Time       `                                   json:"updatedAt"`
}

// OrderLine is a snapshot of a menu item at order time. MenuItemID is a
// weak reference: the line outlives the menu item.
type OrderLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	OrderID    uuid.UUID       `gorm:"type:uuid;index;not null"      json:"orderId"`
	MenuItemID uuid.UUID       `gorm:"type:uuid;not null"            json:"menuItemId"`
	Name       string          `gorm:"not null"                      json:"name"`
	Category   domain.Category `gorm:"not null"                      json:"category"`
	Quantity   int64           `gorm:"not null;check:quantity >= 1"  json:"quantity"`
	Price      int64           `gorm:"not null"                      json:"price"`
	Subtotal   int64           `gorm:"not null"                      json:"subtotal"`
}

type Order struct {
	ID             uuid.UUID            `gorm:"type:uuid;primaryKey"       json:"id"`
	CashierID      uuid.UUID            `gorm:"type:uuid;index;not null"   json:"cashierId"`
	Lines          []OrderLine          `gorm:"foreignKey:OrderID"         json:"items"`
	Total          int64                `gorm:"not null;check:total >= 0"  json:"total"`
	PaymentMethod  domain.PaymentMethod `gorm:"not null;default:cash"      json:"paymentMethod"`
	Status         domain.OrderStatus   `gorm:"not null;index"             json:"status"`
	CustomerName   string               `gorm:"not null"                   json:"customerName"`
	CustomerPhone  string               `                                  json:"customerPhone,omitempty"`
	Notes          string               `                                  json:"notes,omitempty"`
	GatewayToken   *string              `                                  json:"gatewayToken,omitempty"`
	GatewayOrderID *string              `gorm:"uniqueIndex"                json:"gatewayOrderId,omitempty"`
	GatewayURL     *string              `                                  json:"gatewayUrl,omitempty"`
	CreatedAt      time.Time            `gorm:"index"                      json:"createdAt"`
	UpdatedAt      time.Time            `                                  json:"updatedAt"`
}

// Shift is one clock-in/clock-out session. OpenSlot holds the user id while
// the shift is active and is cleared on close; its unique index keeps at
// most one active shift per user.
type Shift struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey"          json:"id"`
	UserID    uuid.UUID          `gorm:"type:uuid;index;not null"      json:"userId"`
	ClockIn   time.Time          `gorm:"not null"                      json:"clockIn"`
	ClockOut  *time.Time         `                                     json:"clockOut"`
	Duration  int64              `gorm:"not null;default:0"            json:"duration"`
	Status    domain.ShiftStatus `gorm:"not null;index"                json:"status"`
	Date      string             `gorm:"index;not null"                json:"date"`
	OpenSlot  *string            `gorm:"uniqueIndex"                   json:"-"`
	CreatedAt time.Time          `                                     json:"createdAt"`
	UpdatedAt time.Time          `                                     json:"updatedAt"`
}

func (s Shift) DurationHours() float64 {
	return domain.HoursFromMinutes(s.Duration)
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (l *OrderLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (s *Shift) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func All() []any {
	return []any{&User{}, &MenuItem{}, &Order{}, &OrderLine{}, &Shift{}}
}
