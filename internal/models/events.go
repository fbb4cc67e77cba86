package models

import "time"

// Event types
const (
	EventTypeCartCheckedOut = "CART_CHECKED_OUT"
	EventTypeOrderCancelled = "ORDER_CANCELLED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CartCheckedOutEvent published when a cart is handed off to checkout
type CartCheckedOutEvent struct {
	BaseEvent
	SessionID  string         `json:"session_id"`
	SnapshotID string         `json:"snapshot_id"`
	Subtotal   string         `json:"subtotal"`
	Items      []CartLineData `json:"items"`
}

// OrderCancelledEvent published after a successful customer cancellation
type OrderCancelledEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// CartLineData represents cart line data in events
type CartLineData struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}
