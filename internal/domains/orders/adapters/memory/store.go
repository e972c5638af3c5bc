package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

var (
	_ ports.UnitOfWork    = (*Store)(nil)
	_ ports.CatalogReader = (*Store)(nil)
)

// Store is an in-memory unit of work holding catalog stock, orders, payments and
// idempotency keys. Units of work are serialised and applied copy-on-write, so a
// failed or cancelled unit leaves the committed state untouched.
type Store struct {
	mu    sync.RWMutex
	state *state
}

// state is treated as immutable once committed: writers replace map entries with
// fresh values instead of mutating shared pointers.
type state struct {
	products        map[int64]ports.Product
	services        map[int64]ports.ServiceOffering
	orders          map[int64]*domain.Order
	orderNumbers    map[string]int64
	payments        map[int64]*domain.Payment
	paymentsByOrder map[int64][]int64
	idempotency     map[string]ports.IdempotencyRecord
	nextOrderID     int64
	nextPaymentID   int64
}

func newState() *state {
	return &state{
		products:        map[int64]ports.Product{},
		services:        map[int64]ports.ServiceOffering{},
		orders:          map[int64]*domain.Order{},
		orderNumbers:    map[string]int64{},
		payments:        map[int64]*domain.Payment{},
		paymentsByOrder: map[int64][]int64{},
		idempotency:     map[string]ports.IdempotencyRecord{},
	}
}

func (st *state) clone() *state {
	return &state{
		products:        maps.Clone(st.products),
		services:        maps.Clone(st.services),
		orders:          maps.Clone(st.orders),
		orderNumbers:    maps.Clone(st.orderNumbers),
		payments:        maps.Clone(st.payments),
		paymentsByOrder: maps.Clone(st.paymentsByOrder),
		idempotency:     maps.Clone(st.idempotency),
		nextOrderID:     st.nextOrderID,
		nextPaymentID:   st.nextPaymentID,
	}
}

// access runs fn against a state. write reports whether fn may modify it.
type access func(write bool, fn func(st *state) error) error

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// RunInTx executes fn against a private copy of the state and publishes the copy only
// when fn succeeds and ctx is still live.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx ports.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	tx := repositories{do: func(_ bool, fn func(st *state) error) error { return fn(staged) }}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = staged
	return nil
}

// autocommit runs single repository calls made outside RunInTx.
func (s *Store) autocommit(write bool, fn func(st *state) error) error {
	if !write {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return fn(s.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := s.state.clone()
	if err := fn(staged); err != nil {
		return err
	}
	s.state = staged
	return nil
}

func (s *Store) repositories() repositories {
	return repositories{do: s.autocommit}
}

// Orders exposes the order repository outside a unit of work.
func (s *Store) Orders() ports.OrderRepository { return s.repositories().Orders() }

// Payments exposes the payment repository outside a unit of work.
func (s *Store) Payments() ports.PaymentRepository { return s.repositories().Payments() }

// Stock exposes the stock ledger outside a unit of work.
func (s *Store) Stock() ports.StockLedger { return s.repositories().Stock() }

// Idempotency exposes the idempotency repository outside a unit of work.
func (s *Store) Idempotency() ports.IdempotencyRepository { return s.repositories().Idempotency() }

type repositories struct {
	do access
}

func (r repositories) Orders() ports.OrderRepository { return orderRepository{do: r.do} }

func (r repositories) Payments() ports.PaymentRepository { return paymentRepository{do: r.do} }

func (r repositories) Stock() ports.StockLedger { return stockLedger{do: r.do} }

func (r repositories) Idempotency() ports.IdempotencyRepository {
	return idempotencyRepository{do: r.do}
}
