package domain

import (
	"errors"
	"fmt"
	"math"
)

// ItemKind distinguishes the two kinds of catalog entries an order line can reference.
type ItemKind string

const (
	KindProduct ItemKind = "product"
	KindService ItemKind = "service"
)

var (
	ErrInvalidItemRef  = errors.New("line item must reference exactly one product or service")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrNegativePrice   = errors.New("unit price must not be negative")
	ErrAmountOverflow  = errors.New("amount exceeds the representable range")
)

// ItemRef points at a single catalog entry. The zero value is invalid.
type ItemRef struct {
	Kind ItemKind
	ID   int64
}

// ProductRef references a stock-tracked product.
func ProductRef(id int64) ItemRef { return ItemRef{Kind: KindProduct, ID: id} }

// ServiceRef references a service offering, which never tracks stock.
func ServiceRef(id int64) ItemRef { return ItemRef{Kind: KindService, ID: id} }

// ParseItemKind accepts the transport label for an item kind.
func ParseItemKind(raw string) (ItemKind, error) {
	switch ItemKind(raw) {
	case KindProduct, KindService:
		return ItemKind(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidItemRef, raw)
	}
}

// Validate rejects unknown kinds and non-positive identifiers.
func (r ItemRef) Validate() error {
	if r.Kind != KindProduct && r.Kind != KindService {
		return ErrInvalidItemRef
	}
	if r.ID <= 0 {
		return ErrInvalidItemRef
	}
	return nil
}

// TracksStock reports whether the referenced item is subject to the stock ledger.
func (r ItemRef) TracksStock() bool { return r.Kind == KindProduct }

func (r ItemRef) String() string { return fmt.Sprintf("%s %d", r.Kind, r.ID) }

// LineItem is a single order line with the unit price captured at placement.
type LineItem struct {
	Ref       ItemRef
	Name      string
	Quantity  int32
	UnitPrice int64
}

// Subtotal is quantity multiplied by the captured unit price. Only meaningful for lines that
// passed Validate.
func (l LineItem) Subtotal() int64 {
	return int64(l.Quantity) * l.UnitPrice
}

func (l LineItem) checkedSubtotal() (int64, error) {
	if l.UnitPrice > 0 && int64(l.Quantity) > math.MaxInt64/l.UnitPrice {
		return 0, fmt.Errorf("%w: %s x %d at %d", ErrAmountOverflow, l.Ref, l.Quantity, l.UnitPrice)
	}
	return int64(l.Quantity) * l.UnitPrice, nil
}

// Validate enforces line-level invariants.
func (l LineItem) Validate() error {
	if err := l.Ref.Validate(); err != nil {
		return err
	}
	if l.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if l.UnitPrice < 0 {
		return ErrNegativePrice
	}
	_, err := l.checkedSubtotal()
	return err
}
