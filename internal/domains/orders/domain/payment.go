package domain

import (
	"errors"
	"fmt"
	"time"
)

// PaymentMethod is the label chosen by the customer at checkout.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodCOD          PaymentMethod = "COD"
	MethodEWallet      PaymentMethod = "E_WALLET"
	MethodCreditCard   PaymentMethod = "CREDIT_CARD"
)

// PaymentStatus tracks settlement of a single payment attempt.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentCancelled PaymentStatus = "CANCELLED"
	PaymentFailed    PaymentStatus = "FAILED"
)

var (
	ErrInvalidPaymentMethod     = errors.New("payment method is invalid")
	ErrInvalidPaymentTransition = errors.New("payment status transition is not allowed")
	ErrSettlementDeferred       = errors.New("payment method settles on delivery")
)

// ParsePaymentMethod accepts the transport label for a payment method.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	method := PaymentMethod(raw)
	if !method.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, raw)
	}
	return method, nil
}

// IsValid reports whether the method is one of the supported labels.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodBankTransfer, MethodCOD, MethodEWallet, MethodCreditCard:
		return true
	default:
		return false
	}
}

// DefersSettlement is true for methods that are only settled when the order is delivered.
func (m PaymentMethod) DefersSettlement() bool {
	return m == MethodCOD
}

// IsOpen reports whether the attempt still counts towards the order's single live payment.
func (s PaymentStatus) IsOpen() bool {
	return s == PaymentPending || s == PaymentPaid
}

// IsTerminal reports whether no further payment transition is possible.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentPaid || s == PaymentCancelled || s == PaymentFailed
}

// Payment records one settlement attempt for an order.
type Payment struct {
	ID         int64
	OrderID    int64
	Amount     int64
	Method     PaymentMethod
	Status     PaymentStatus
	SettledAt  *time.Time
	VerifiedBy string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewPendingPayment opens a payment attempt for the full order amount.
func NewPendingPayment(order *Order, now time.Time) *Payment {
	return &Payment{
		OrderID:   order.ID,
		Amount:    order.TotalAmount,
		Method:    order.PaymentMethod,
		Status:    PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Settle marks a pending payment as paid.
func (p *Payment) Settle(at time.Time, verifiedBy, notes string) error {
	if p.Status != PaymentPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidPaymentTransition, p.Status, PaymentPaid)
	}
	settled := at
	p.Status = PaymentPaid
	p.SettledAt = &settled
	p.VerifiedBy = verifiedBy
	if notes != "" {
		p.Notes = notes
	}
	p.UpdatedAt = at
	return nil
}

// Fail marks a pending payment as failed.
func (p *Payment) Fail(at time.Time, reason string) error {
	if p.Status != PaymentPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidPaymentTransition, p.Status, PaymentFailed)
	}
	p.Status = PaymentFailed
	p.Notes = reason
	p.UpdatedAt = at
	return nil
}

// Cancel voids a payment that is still pending or already paid.
func (p *Payment) Cancel(at time.Time) error {
	if p.Status != PaymentPending && p.Status != PaymentPaid {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidPaymentTransition, p.Status, PaymentCancelled)
	}
	p.Status = PaymentCancelled
	p.UpdatedAt = at
	return nil
}

// Clone returns a deep copy.
func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	clone := *p
	if p.SettledAt != nil {
		settled := *p.SettledAt
		clone.SettledAt = &settled
	}
	return &clone
}
