package models

import "time"

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

var orderStatuses = map[string]struct{}{
	OrderStatusPending:    {},
	OrderStatusProcessing: {},
	OrderStatusShipped:    {},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// ValidOrderStatus reports whether s is one of the five order statuses.
func ValidOrderStatus(s string) bool {
	_, ok := orderStatuses[s]
	return ok
}

// OrderStatuses returns the valid statuses in a stable order.
func OrderStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// User represents a registered account.
type User struct {
	ID           int64     `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Order represents a customer order.
type Order struct {
	OrderID         string    `json:"order_id"`
	CustomerName    string    `json:"customer_name"`
	Items           []string  `json:"items"`
	TotalAmount     float64   `json:"total_amount"`
	Status          string    `json:"status"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	DeliveryAddress string    `json:"delivery_address,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}
