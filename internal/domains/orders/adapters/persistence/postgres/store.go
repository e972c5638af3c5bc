package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

var (
	_ ports.UnitOfWork    = (*Store)(nil)
	_ ports.CatalogReader = (*Store)(nil)
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Store persists the fulfillment aggregates in PostgreSQL using GORM. Units of work map onto
// database transactions, so a failed unit leaves no stock, order or payment changes behind.
type Store struct {
	db *gorm.DB
}

// NewStore wires a PostgreSQL-backed store. Caller manages DB lifecycle and schema migrations.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// RunInTx runs fn inside a database transaction. Returning an error rolls back every write.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx ports.Repositories) error) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, repositories{db: tx})
	})
}

func (s *Store) Orders() ports.OrderRepository {
	return orderRepository{db: s.db}
}

func (s *Store) Payments() ports.PaymentRepository {
	return paymentRepository{db: s.db}
}

func (s *Store) Stock() ports.StockLedger {
	return stockLedger{db: s.db}
}

func (s *Store) Idempotency() ports.IdempotencyRepository {
	return idempotencyRepository{db: s.db}
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres fulfillment store not configured")
	}
	return nil
}

// repositories binds the repository set to one transaction handle.
type repositories struct {
	db *gorm.DB
}

func (r repositories) Orders() ports.OrderRepository { return orderRepository{db: r.db} }
func (r repositories) Payments() ports.PaymentRepository { return paymentRepository{db: r.db} }
func (r repositories) Stock() ports.StockLedger { return stockLedger{db: r.db} }
func (r repositories) Idempotency() ports.IdempotencyRepository { return idempotencyRepository{db: r.db} }

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || hasSQLState(err, pgUniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) || hasSQLState(err, pgForeignKeyViolation)
}

func isCheckViolation(err error) bool {
	return errors.Is(err, gorm.ErrCheckConstraintViolated) || hasSQLState(err, pgCheckViolation)
}
