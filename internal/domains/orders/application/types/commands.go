package types

// ItemInput requests quantity units of a catalog entry. Kind is "product" or "service".
type ItemInput struct {
	Kind     string
	ItemID   int64
	Quantity int32
}

// PlaceOrderInput carries everything needed to place an order.
type PlaceOrderInput struct {
	CustomerID      int64
	Items           []ItemInput
	PaymentMethod   string
	ShippingAddress string
	Notes           string
	// IdempotencyKey is optional; repeated keys replay the original order.
	IdempotencyKey string
}

// CheckoutInput places an order from the customer's cart.
type CheckoutInput struct {
	CustomerID      int64
	PaymentMethod   string
	ShippingAddress string
	Notes           string
	IdempotencyKey  string
}

// OrderIdentifier addresses a single order.
type OrderIdentifier struct {
	ID int64
}

// CustomerIdentifier addresses a customer's orders.
type CustomerIdentifier struct {
	CustomerID int64
}

// AdvanceStatusInput requests a forward status transition.
type AdvanceStatusInput struct {
	OrderID int64
	Target  string
}

// CancelOrderInput requests cancellation.
type CancelOrderInput struct {
	OrderID int64
	Reason  string
}

// SettlePaymentInput records a manual settlement, e.g. a verified bank transfer.
type SettlePaymentInput struct {
	OrderID    int64
	VerifiedBy string
	Notes      string
}

// FailPaymentInput marks the open payment attempt as failed.
type FailPaymentInput struct {
	OrderID int64
	Reason  string
}
