package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

func seededStore(t *testing.T, stock int64) *Store {
	t.Helper()
	store := NewStore()
	require.NoError(t, store.UpsertProduct(ports.Product{ID: 1, Name: "Rebar 10mm", Price: 50000, Stock: stock, Active: true}))
	return store
}

func newTestOrder(t *testing.T, number string, qty int32) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(7, []domain.LineItem{{Ref: domain.ProductRef(1), Name: "Rebar 10mm", Quantity: qty, UnitPrice: 50000}},
		domain.MethodBankTransfer, "Warehouse 3", "", time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	order.Number = number
	return order
}

func TestStockLedger_ReserveNeverGoesNegative(t *testing.T) {
	store := seededStore(t, 3)
	ctx := context.Background()

	require.NoError(t, store.Stock().Reserve(ctx, 1, 2))
	require.ErrorIs(t, store.Stock().Reserve(ctx, 1, 2), ports.ErrInsufficientStock)
	require.NoError(t, store.Stock().Reserve(ctx, 1, 1))

	level, err := store.Stock().Level(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, level)

	require.NoError(t, store.Stock().Release(ctx, 1, 3))
	level, err = store.Stock().Level(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(3), level)

	require.ErrorIs(t, store.Stock().Reserve(ctx, 99, 1), ports.ErrProductNotFound)
	require.ErrorIs(t, store.Stock().Reserve(ctx, 1, 0), domain.ErrInvalidQuantity)
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	store := seededStore(t, 10)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.RunInTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		require.NoError(t, tx.Stock().Reserve(ctx, 1, 4))
		_, err := tx.Orders().Create(ctx, newTestOrder(t, "SO-1", 4))
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	level, err := store.Stock().Level(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(10), level)
	orders, err := store.Orders().ListByCustomer(ctx, 7)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestRunInTx_CancelledContextDiscardsChanges(t *testing.T) {
	store := seededStore(t, 10)
	ctx, cancel := context.WithCancel(context.Background())

	err := store.RunInTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		if err := tx.Stock().Reserve(ctx, 1, 5); err != nil {
			return err
		}
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	level, err := store.Stock().Level(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(10), level)
}

func TestRunInTx_CommitsOnSuccess(t *testing.T) {
	store := seededStore(t, 10)
	ctx := context.Background()

	var orderID int64
	err := store.RunInTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		if err := tx.Stock().Reserve(ctx, 1, 2); err != nil {
			return err
		}
		created, err := tx.Orders().Create(ctx, newTestOrder(t, "SO-1", 2))
		if err != nil {
			return err
		}
		orderID = created.ID
		_, err = tx.Payments().Create(ctx, domain.NewPendingPayment(created, created.CreatedAt))
		return err
	})
	require.NoError(t, err)

	order, err := store.Orders().GetByID(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, "SO-1", order.Number)
	payments, err := store.Payments().ListByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Equal(t, domain.PaymentPending, payments[0].Status)
	level, _ := store.Stock().Level(ctx, 1)
	require.Equal(t, int64(8), level)
}

func TestOrderRepository_RejectsDuplicateNumber(t *testing.T) {
	store := seededStore(t, 10)
	ctx := context.Background()

	_, err := store.Orders().Create(ctx, newTestOrder(t, "SO-DUP", 1))
	require.NoError(t, err)
	_, err = store.Orders().Create(ctx, newTestOrder(t, "SO-DUP", 1))
	require.ErrorIs(t, err, ports.ErrDuplicateOrderNumber)
	_, err = store.Orders().Create(ctx, newTestOrder(t, "", 1))
	require.ErrorIs(t, err, domain.ErrMissingOrderNumber)
}

func TestOrderRepository_CompareAndSetStatus(t *testing.T) {
	store := seededStore(t, 10)
	ctx := context.Background()
	created, err := store.Orders().Create(ctx, newTestOrder(t, "SO-2", 1))
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, store.Orders().CompareAndSetStatus(ctx, created.ID, domain.StatusPending, domain.StatusProcessing, now))
	err = store.Orders().CompareAndSetStatus(ctx, created.ID, domain.StatusPending, domain.StatusCancelled, now)
	require.ErrorIs(t, err, ports.ErrStatusConflict)
	err = store.Orders().CompareAndSetStatus(ctx, 404, domain.StatusPending, domain.StatusProcessing, now)
	require.ErrorIs(t, err, ports.ErrNotFound)

	fetched, err := store.Orders().GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusProcessing, fetched.Status)
}

func TestPaymentRepository_CompareAndSetStatus(t *testing.T) {
	store := seededStore(t, 10)
	ctx := context.Background()
	created, err := store.Orders().Create(ctx, newTestOrder(t, "SO-3", 1))
	require.NoError(t, err)
	payment, err := store.Payments().Create(ctx, domain.NewPendingPayment(created, created.CreatedAt))
	require.NoError(t, err)

	settledAt := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	update := ports.PaymentUpdate{PaymentID: payment.ID, Expected: domain.PaymentPending, Next: domain.PaymentPaid, SettledAt: &settledAt, VerifiedBy: "fin-7", At: settledAt}
	require.NoError(t, store.Payments().CompareAndSetStatus(ctx, update))
	require.ErrorIs(t, store.Payments().CompareAndSetStatus(ctx, update), ports.ErrStatusConflict)

	payments, err := store.Payments().ListByOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentPaid, payments[0].Status)
	require.Equal(t, settledAt, *payments[0].SettledAt)
	require.Equal(t, "fin-7", payments[0].VerifiedBy)

	_, err = store.Payments().Create(ctx, &domain.Payment{OrderID: 404})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPaymentRepository_OneOpenAttemptPerOrder(t *testing.T) {
	store := seededStore(t, 10)
	ctx := context.Background()
	created, err := store.Orders().Create(ctx, newTestOrder(t, "SO-5", 1))
	require.NoError(t, err)
	first, err := store.Payments().Create(ctx, domain.NewPendingPayment(created, created.CreatedAt))
	require.NoError(t, err)

	_, err = store.Payments().Create(ctx, domain.NewPendingPayment(created, created.CreatedAt))
	require.ErrorIs(t, err, ports.ErrOpenPaymentExists)

	at := created.CreatedAt.Add(time.Minute)
	require.NoError(t, store.Payments().CompareAndSetStatus(ctx, ports.PaymentUpdate{PaymentID: first.ID, Expected: domain.PaymentPending, Next: domain.PaymentFailed, At: at}))
	_, err = store.Payments().Create(ctx, domain.NewPendingPayment(created, at))
	require.NoError(t, err)

	payments, err := store.Payments().ListByOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
}

func TestReadsReturnCopies(t *testing.T) {
	store := seededStore(t, 10)
	ctx := context.Background()
	created, err := store.Orders().Create(ctx, newTestOrder(t, "SO-4", 1))
	require.NoError(t, err)

	created.Items[0].Quantity = 500
	created.Status = domain.StatusDelivered

	fetched, err := store.Orders().GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, int32(1), fetched.Items[0].Quantity)
	require.Equal(t, domain.StatusPending, fetched.Status)
}

func TestIdempotencyRepository(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Idempotency().Create(ctx, ports.IdempotencyRecord{Key: "a", RequestHash: "h1", OrderID: 1, CreatedAt: old}))
	require.ErrorIs(t, store.Idempotency().Create(ctx, ports.IdempotencyRecord{Key: "a", RequestHash: "h2", OrderID: 2}), ports.ErrIdempotencyKeyExists)
	require.NoError(t, store.Idempotency().Create(ctx, ports.IdempotencyRecord{Key: "b", RequestHash: "h3", OrderID: 3, CreatedAt: old.Add(48 * time.Hour)}))

	record, err := store.Idempotency().Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, int64(1), record.OrderID)

	missing, err := store.Idempotency().Get(ctx, "zzz")
	require.NoError(t, err)
	require.Nil(t, missing)

	removed, err := store.Idempotency().PurgeBefore(ctx, old.Add(24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)
	record, err = store.Idempotency().Get(ctx, "a")
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestCatalogReader(t *testing.T) {
	store := seededStore(t, 4)
	require.NoError(t, store.UpsertService(ports.ServiceOffering{ID: 9, Name: "Installation", Price: 250000, Active: false}))
	ctx := context.Background()

	product, err := store.GetProduct(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(4), product.Stock)

	service, err := store.GetService(ctx, 9)
	require.NoError(t, err)
	require.False(t, service.Active)

	_, err = store.GetProduct(ctx, 2)
	require.ErrorIs(t, err, ports.ErrCatalogItemNotFound)
	_, err = store.GetService(ctx, 2)
	require.ErrorIs(t, err, ports.ErrCatalogItemNotFound)
	require.Error(t, store.UpsertProduct(ports.Product{ID: 3, Stock: -1}))
}

func TestCarts(t *testing.T) {
	carts := NewCarts()
	ctx := context.Background()
	carts.Put(5, ports.CartItem{Ref: domain.ProductRef(1), Quantity: 2})

	items, err := carts.Items(ctx, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, carts.Clear(ctx, 5))
	items, err = carts.Items(ctx, 5)
	require.NoError(t, err)
	require.Empty(t, items)
}
