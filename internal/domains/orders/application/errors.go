package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

var (
	// ErrValidation signals the request violated an input or domain invariant.
	ErrValidation = errors.New("invalid order input")
	// ErrItemNotFound signals a referenced product or service does not exist.
	ErrItemNotFound = errors.New("catalog item not found")
	// ErrItemInactive signals a referenced product or service is not sellable.
	ErrItemInactive = errors.New("catalog item is inactive")
	// ErrInsufficientStock signals a product cannot cover the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidTransition signals the requested lifecycle move is not allowed from the current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrOrderNotFound signals the addressed order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrIdempotencyConflict signals an idempotency key was reused for a different request.
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")
	// ErrInternal wraps storage, commit and other unexpected failures.
	ErrInternal = errors.New("internal fulfillment error")
)

var (
	errEmptyCart         = errors.New("cart is empty")
	errVerifierRequired  = errors.New("verifier reference is required")
	errAlreadySettled    = errors.New("order already has a settled payment")
	errNoOpenPayment     = errors.New("order has no pending payment")
	errNoFailedAttempt   = errors.New("latest payment attempt has not failed")
	errOrderCancelled    = errors.New("order is cancelled")
	errCartNotConfigured = errors.New("cart collaborator not configured")
)

// ItemError names the catalog entry that caused a placement failure.
type ItemError struct {
	Ref       domain.ItemRef
	Requested int32
	Available int64
	Err       error
}

func (e *ItemError) Error() string {
	if errors.Is(e.Err, ErrInsufficientStock) {
		return fmt.Sprintf("%s: %s (requested %d, available %d)", e.Err, e.Ref, e.Requested, e.Available)
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Ref)
}

func (e *ItemError) Unwrap() error { return e.Err }

// taxonomy lists the public error kinds in match order.
var taxonomy = []struct {
	kind string
	err  error
}{
	{"validation", ErrValidation},
	{"item_not_found", ErrItemNotFound},
	{"item_inactive", ErrItemInactive},
	{"insufficient_stock", ErrInsufficientStock},
	{"invalid_transition", ErrInvalidTransition},
	{"order_not_found", ErrOrderNotFound},
	{"idempotency_conflict", ErrIdempotencyConflict},
	{"internal", ErrInternal},
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range taxonomy {
		if errors.Is(err, known.err) {
			return err
		}
	}
	switch {
	case errors.Is(err, domain.ErrInvalidCustomerID),
		errors.Is(err, domain.ErrEmptyItems),
		errors.Is(err, domain.ErrInvalidItemRef),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrNegativePrice),
		errors.Is(err, domain.ErrAmountOverflow),
		errors.Is(err, domain.ErrMissingAddress),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrTotalMismatch),
		errors.Is(err, errEmptyCart),
		errors.Is(err, errVerifierRequired):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidPaymentTransition),
		errors.Is(err, domain.ErrSettlementDeferred),
		errors.Is(err, ports.ErrStatusConflict),
		errors.Is(err, ports.ErrOpenPaymentExists),
		errors.Is(err, errAlreadySettled),
		errors.Is(err, errNoOpenPayment),
		errors.Is(err, errNoFailedAttempt),
		errors.Is(err, errOrderCancelled):
		return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	case errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrOrderNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}

// ErrorKind names the taxonomy bucket of err, for metric labels and for carrying errors
// across process boundaries. Unknown errors are "internal".
func ErrorKind(err error) string {
	for _, known := range taxonomy {
		if errors.Is(err, known.err) {
			return known.kind
		}
	}
	return "internal"
}

// IsRetryable reports whether repeating the same request could succeed.
func IsRetryable(err error) bool {
	return ErrorKind(err) == "internal"
}

// remoteError is a taxonomy error rebuilt from its kind and message.
type remoteError struct {
	kind error
	msg  string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.kind }

// ErrorFromKind rebuilds an error that matches the sentinel of kind with errors.Is.
func ErrorFromKind(kind, msg string) error {
	sentinel := ErrInternal
	for _, known := range taxonomy {
		if known.kind == kind {
			sentinel = known.err
			break
		}
	}
	if msg == "" {
		return sentinel
	}
	return &remoteError{kind: sentinel, msg: msg}
}
