package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
)

var (
	ErrNotFound             = errors.New("order not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrProductNotFound      = errors.New("product not found in stock ledger")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	// ErrStatusConflict is returned by compare-and-set updates when the stored status
	// no longer matches the expected one.
	ErrStatusConflict = errors.New("status changed concurrently")
	// ErrOpenPaymentExists is returned when an order already has a PENDING or PAID attempt.
	ErrOpenPaymentExists = errors.New("order already has an open payment")
)

// UnitOfWork runs fn atomically. Any error returned by fn, a cancelled context or a
// failed commit discards every change made through the Repositories handed to fn.
type UnitOfWork interface {
	Repositories
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}

// Repositories groups the transactional collaborators of the fulfillment engine.
type Repositories interface {
	Orders() OrderRepository
	Payments() PaymentRepository
	Stock() StockLedger
	Idempotency() IdempotencyRepository
}

// StockLedger tracks on-hand quantity for stock-tracked products.
type StockLedger interface {
	// Reserve decrements stock by qty only if at least qty is available.
	Reserve(ctx context.Context, productID int64, qty int32) error
	// Release returns qty units to stock.
	Release(ctx context.Context, productID int64, qty int32) error
	// Level returns the current on-hand quantity.
	Level(ctx context.Context, productID int64) (int64, error)
}

// OrderRepository persists order aggregates.
type OrderRepository interface {
	// Create assigns an ID and stores the order. A clash on the order number yields ErrDuplicateOrderNumber.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error)
	// CompareAndSetStatus moves the order to next only while its stored status equals expected.
	CompareAndSetStatus(ctx context.Context, id int64, expected, next domain.Status, at time.Time) error
}

// PaymentUpdate describes a compare-and-set change of a payment's status.
type PaymentUpdate struct {
	PaymentID  int64
	Expected   domain.PaymentStatus
	Next       domain.PaymentStatus
	SettledAt  *time.Time
	VerifiedBy string
	Notes      string
	At         time.Time
}

// PaymentRepository persists payment attempts.
type PaymentRepository interface {
	// Create stores a new attempt. At most one PENDING or PAID attempt may exist per order;
	// a second one yields ErrOpenPaymentExists.
	Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	// ListByOrder returns attempts oldest first.
	ListByOrder(ctx context.Context, orderID int64) ([]*domain.Payment, error)
	CompareAndSetStatus(ctx context.Context, update PaymentUpdate) error
}
