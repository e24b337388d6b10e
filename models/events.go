package models

import "time"

// OrderEvent is the outbound event shape published after a state change
// commits. Publishing is best-effort; consumers must tolerate gaps.
type OrderEvent struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventPaymentVerified = "order.payment_verified"
	EventItemCancelled   = "order.item_cancelled"
	EventItemReturned    = "order.item_returned"
	EventStatusChanged   = "order.status_changed"
)
