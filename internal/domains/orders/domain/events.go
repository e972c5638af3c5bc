package domain

import "time"

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
	AggregateID() int64
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time `json:"occurredAt"`
	OrderID   int64     `json:"orderId"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the order the event belongs to.
func (e BaseEvent) AggregateID() int64 {
	return e.OrderID
}

// OrderPlaced is raised once an order, its reservations and its payment are committed.
type OrderPlaced struct {
	BaseEvent
	Number        string        `json:"number"`
	CustomerID    int64         `json:"customerId"`
	TotalAmount   int64         `json:"totalAmount"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	ItemCount     int           `json:"itemCount"`
}

// EventName returns the event type identifier.
func (e OrderPlaced) EventName() string {
	return "orders.order.placed"
}

// OrderStatusChanged is raised on every forward transition.
type OrderStatusChanged struct {
	BaseEvent
	Number     string `json:"number"`
	CustomerID int64  `json:"customerId"`
	FromStatus Status `json:"fromStatus"`
	ToStatus   Status `json:"toStatus"`
}

// EventName returns the event type identifier.
func (e OrderStatusChanged) EventName() string {
	return "orders.order.status_changed"
}

// OrderCancelled is raised when an order is cancelled and its stock released.
type OrderCancelled struct {
	BaseEvent
	Number         string `json:"number"`
	CustomerID     int64  `json:"customerId"`
	PreviousStatus Status `json:"previousStatus"`
	Reason         string `json:"reason"`
}

// EventName returns the event type identifier.
func (e OrderCancelled) EventName() string {
	return "orders.order.cancelled"
}

// PaymentSettled is raised when a payment moves to PAID.
type PaymentSettled struct {
	BaseEvent
	PaymentID  int64         `json:"paymentId"`
	Amount     int64         `json:"amount"`
	Method     PaymentMethod `json:"method"`
	VerifiedBy string        `json:"verifiedBy"`
}

// EventName returns the event type identifier.
func (e PaymentSettled) EventName() string {
	return "orders.payment.settled"
}

// PaymentAttemptFailed is raised when a payment attempt is marked failed.
type PaymentAttemptFailed struct {
	BaseEvent
	PaymentID int64  `json:"paymentId"`
	Reason    string `json:"reason"`
}

// EventName returns the event type identifier.
func (e PaymentAttemptFailed) EventName() string {
	return "orders.payment.failed"
}

// PaymentRetried is raised when a new attempt is opened after a failure.
type PaymentRetried struct {
	BaseEvent
	PaymentID int64 `json:"paymentId"`
	Amount    int64 `json:"amount"`
}

// EventName returns the event type identifier.
func (e PaymentRetried) EventName() string {
	return "orders.payment.retried"
}
