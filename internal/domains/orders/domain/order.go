package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidCustomerID  = errors.New("customer id must be greater than zero")
	ErrEmptyItems         = errors.New("order must contain at least one line item")
	ErrMissingAddress     = errors.New("shipping address is required for orders with products")
	ErrTotalMismatch      = errors.New("order total does not match its line items")
	ErrMissingOrderNumber = errors.New("order number is required")
)

// Order models the purchase order aggregate.
type Order struct {
	ID              int64
	Number          string
	CustomerID      int64
	Items           []LineItem
	TotalAmount     int64
	Status          Status
	PaymentMethod   PaymentMethod
	ShippingAddress string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrder validates and constructs a PENDING order whose total is computed from its lines.
func NewOrder(customerID int64, items []LineItem, method PaymentMethod, shippingAddress, notes string, now time.Time) (*Order, error) {
	order := &Order{
		CustomerID:      customerID,
		Items:           append([]LineItem(nil), items...),
		Status:          StatusPending,
		PaymentMethod:   method,
		ShippingAddress: strings.TrimSpace(shippingAddress),
		Notes:           strings.TrimSpace(notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i, item := range order.Items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	total, err := SumLineItems(order.Items)
	if err != nil {
		return nil, err
	}
	order.TotalAmount = total
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// SumLineItems totals quantity times unit price across lines, failing with ErrAmountOverflow
// instead of wrapping.
func SumLineItems(items []LineItem) (int64, error) {
	var total int64
	for _, item := range items {
		subtotal, err := item.checkedSubtotal()
		if err != nil {
			return 0, err
		}
		if total > math.MaxInt64-subtotal {
			return 0, fmt.Errorf("%w: order total", ErrAmountOverflow)
		}
		total += subtotal
	}
	return total, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.CustomerID <= 0 {
		return ErrInvalidCustomerID
	}
	if len(o.Items) == 0 {
		return ErrEmptyItems
	}
	for i, item := range o.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	if !o.Status.IsValid() {
		return ErrInvalidStatus
	}
	if !o.PaymentMethod.IsValid() {
		return ErrInvalidPaymentMethod
	}
	if o.HasProducts() && o.ShippingAddress == "" {
		return ErrMissingAddress
	}
	total, err := SumLineItems(o.Items)
	if err != nil {
		return err
	}
	if o.TotalAmount != total {
		return ErrTotalMismatch
	}
	return nil
}

// HasProducts reports whether any line is a physical, deliverable product.
func (o *Order) HasProducts() bool {
	for _, item := range o.Items {
		if item.Ref.TracksStock() {
			return true
		}
	}
	return false
}

// StockLines returns the product lines that hold stock reservations.
func (o *Order) StockLines() []LineItem {
	lines := make([]LineItem, 0, len(o.Items))
	for _, item := range o.Items {
		if item.Ref.TracksStock() {
			lines = append(lines, item)
		}
	}
	return lines
}

// CheckAdvance ensures target is the next forward status.
func (o *Order) CheckAdvance(target Status) error {
	if target == StatusCancelled {
		return fmt.Errorf("%w: use cancel to move to %s", ErrInvalidTransition, StatusCancelled)
	}
	return o.Status.CheckTransition(target)
}

// CheckCancel ensures the order can still be cancelled.
func (o *Order) CheckCancel() error {
	return o.Status.CheckTransition(StatusCancelled)
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]LineItem(nil), o.Items...)
	return &clone
}
