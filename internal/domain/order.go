package domain

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCompleted, OrderCancelled},
	OrderProcessing: {OrderCompleted, OrderCancelled},
	OrderCompleted:  nil,
	OrderCancelled:  nil,
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	_, ok := orderTransitions[st]
	return st, ok
}

func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransition reports whether an order in s may move to next. Staying in
// the same state is always allowed and is a no-op for callers.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentDigital PaymentMethod = "digital"
	PaymentGateway PaymentMethod = "gateway"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch m := PaymentMethod(s); m {
	case "":
		return PaymentCash, true
	case PaymentCash, PaymentCard, PaymentDigital, PaymentGateway:
		return m, true
	default:
		return "", false
	}
}

type Category string

const (
	CategoryCoffee   Category = "Coffee"
	CategoryTea      Category = "Tea"
	CategoryFood     Category = "Food"
	CategoryDessert  Category = "Dessert"
	CategoryBeverage Category = "Beverage"
)

var Categories = []Category{CategoryCoffee, CategoryTea, CategoryFood, CategoryDessert, CategoryBeverage}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}
