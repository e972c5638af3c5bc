package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

type orderRepository struct {
	do access
}

func (r orderRepository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, fmt.Errorf("order is nil")
	}
	if order.Number == "" {
		return nil, domain.ErrMissingOrderNumber
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	err := r.do(true, func(st *state) error {
		if _, exists := st.orderNumbers[clone.Number]; exists {
			return ports.ErrDuplicateOrderNumber
		}
		st.nextOrderID++
		clone.ID = st.nextOrderID
		st.orders[clone.ID] = clone
		st.orderNumbers[clone.Number] = clone.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clone.Clone(), nil
}

func (r orderRepository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	var out *domain.Order
	err := r.do(false, func(st *state) error {
		order, ok := st.orders[id]
		if !ok {
			return ports.ErrNotFound
		}
		out = order.Clone()
		return nil
	})
	return out, err
}

func (r orderRepository) ListByCustomer(_ context.Context, customerID int64) ([]*domain.Order, error) {
	var list []*domain.Order
	err := r.do(false, func(st *state) error {
		for _, order := range st.orders {
			if order.CustomerID == customerID {
				list = append(list, order.Clone())
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, err
}

func (r orderRepository) CompareAndSetStatus(_ context.Context, id int64, expected, next domain.Status, at time.Time) error {
	return r.do(true, func(st *state) error {
		order, ok := st.orders[id]
		if !ok {
			return ports.ErrNotFound
		}
		if order.Status != expected {
			return ports.ErrStatusConflict
		}
		updated := order.Clone()
		updated.Status = next
		updated.UpdatedAt = at
		st.orders[id] = updated
		return nil
	})
}

type paymentRepository struct {
	do access
}

func (r paymentRepository) Create(_ context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if payment == nil {
		return nil, fmt.Errorf("payment is nil")
	}
	clone := payment.Clone()
	err := r.do(true, func(st *state) error {
		if _, ok := st.orders[clone.OrderID]; !ok {
			return ports.ErrNotFound
		}
		if clone.Status.IsOpen() {
			for _, id := range st.paymentsByOrder[clone.OrderID] {
				if st.payments[id].Status.IsOpen() {
					return ports.ErrOpenPaymentExists
				}
			}
		}
		st.nextPaymentID++
		clone.ID = st.nextPaymentID
		st.payments[clone.ID] = clone
		st.paymentsByOrder[clone.OrderID] = append(slices.Clip(st.paymentsByOrder[clone.OrderID]), clone.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clone.Clone(), nil
}

func (r paymentRepository) ListByOrder(_ context.Context, orderID int64) ([]*domain.Payment, error) {
	var list []*domain.Payment
	err := r.do(false, func(st *state) error {
		for _, id := range st.paymentsByOrder[orderID] {
			list = append(list, st.payments[id].Clone())
		}
		return nil
	})
	return list, err
}

func (r paymentRepository) CompareAndSetStatus(_ context.Context, update ports.PaymentUpdate) error {
	return r.do(true, func(st *state) error {
		payment, ok := st.payments[update.PaymentID]
		if !ok {
			return ports.ErrPaymentNotFound
		}
		if payment.Status != update.Expected {
			return ports.ErrStatusConflict
		}
		updated := payment.Clone()
		updated.Status = update.Next
		if update.SettledAt != nil {
			settled := *update.SettledAt
			updated.SettledAt = &settled
		}
		updated.VerifiedBy = update.VerifiedBy
		updated.Notes = update.Notes
		updated.UpdatedAt = update.At
		st.payments[update.PaymentID] = updated
		return nil
	})
}

type stockLedger struct {
	do access
}

func (l stockLedger) Reserve(_ context.Context, productID int64, qty int32) error {
	if qty < 1 {
		return fmt.Errorf("%w: reserve %d", domain.ErrInvalidQuantity, qty)
	}
	return l.do(true, func(st *state) error {
		product, ok := st.products[productID]
		if !ok {
			return ports.ErrProductNotFound
		}
		if product.Stock < int64(qty) {
			return ports.ErrInsufficientStock
		}
		product.Stock -= int64(qty)
		st.products[productID] = product
		return nil
	})
}

func (l stockLedger) Release(_ context.Context, productID int64, qty int32) error {
	if qty < 1 {
		return fmt.Errorf("%w: release %d", domain.ErrInvalidQuantity, qty)
	}
	return l.do(true, func(st *state) error {
		product, ok := st.products[productID]
		if !ok {
			return ports.ErrProductNotFound
		}
		product.Stock += int64(qty)
		st.products[productID] = product
		return nil
	})
}

func (l stockLedger) Level(_ context.Context, productID int64) (int64, error) {
	var level int64
	err := l.do(false, func(st *state) error {
		product, ok := st.products[productID]
		if !ok {
			return ports.ErrProductNotFound
		}
		level = product.Stock
		return nil
	})
	return level, err
}

type idempotencyRepository struct {
	do access
}

func (r idempotencyRepository) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	var out *ports.IdempotencyRecord
	err := r.do(false, func(st *state) error {
		if record, ok := st.idempotency[key]; ok {
			out = &record
		}
		return nil
	})
	return out, err
}

func (r idempotencyRepository) Create(_ context.Context, record ports.IdempotencyRecord) error {
	return r.do(true, func(st *state) error {
		if _, exists := st.idempotency[record.Key]; exists {
			return ports.ErrIdempotencyKeyExists
		}
		st.idempotency[record.Key] = record
		return nil
	})
}

func (r idempotencyRepository) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := r.do(true, func(st *state) error {
		for key, record := range st.idempotency {
			if record.CreatedAt.Before(cutoff) {
				delete(st.idempotency, key)
				removed++
			}
		}
		return nil
	})
	return removed, err
}
