package transport

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type OrderItemRequest struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int64  `json:"quantity"`
}

type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items"`
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone"`
	Notes         string             `json:"notes"`
	PaymentMethod string             `json:"paymentMethod"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// MenuItemRequest is used for both create and partial update; nil pointers
// leave the field untouched on update.
type MenuItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Category    *string `json:"category"`
	Image       *string `json:"image"`
	Stock       *int64  `json:"stock"`
	IsAvailable *bool   `json:"isAvailable"`
}

type StockRequest struct {
	Delta int64 `json:"delta"`
}

type CreatePaymentRequest struct {
	OrderID string `json:"orderId"`
}

// Notification is the gateway's asynchronous transaction status callback.
type Notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
}
