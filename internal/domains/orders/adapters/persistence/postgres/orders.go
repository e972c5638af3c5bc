package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

type orderRepository struct {
	db *gorm.DB
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create inserts the order header and its lines. A clashing order number surfaces as
// ports.ErrDuplicateOrderNumber; the enclosing transaction is then unusable and must be retried.
func (r orderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if order.Number == "" {
		return nil, domain.ErrMissingOrderNumber
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record := toOrderRecord(order)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ports.ErrDuplicateOrderNumber
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var record orderRecord
	if err := r.db.WithContext(ctx).Preload("Items", orderedItems).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r orderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	var records []orderRecord
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

// CompareAndSetStatus moves the order to next only while it is still in expected.
func (r orderRepository) CompareAndSetStatus(ctx context.Context, id int64, expected, next domain.Status, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(map[string]any{"status": string(next), "updated_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}
	return missingOrConflict(ctx, r.db, &orderRecord{}, id, ports.ErrNotFound)
}

// missingOrConflict tells a vanished row apart from a lost compare-and-set race.
func missingOrConflict(ctx context.Context, db *gorm.DB, model any, id int64, notFound error) error {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound
	}
	return ports.ErrStatusConflict
}

type paymentRepository struct {
	db *gorm.DB
}

func (r paymentRepository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if payment == nil {
		return nil, errors.New("payment is nil")
	}
	record := toPaymentRecord(payment)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isForeignKeyViolation(err) {
			return nil, ports.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ports.ErrOpenPaymentExists
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r paymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]*domain.Payment, error) {
	var records []paymentRecord
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	payments := make([]*domain.Payment, 0, len(records))
	for i := range records {
		payments = append(payments, records[i].toDomain())
	}
	return payments, nil
}

func (r paymentRepository) CompareAndSetStatus(ctx context.Context, update ports.PaymentUpdate) error {
	values := map[string]any{
		"status":      string(update.Next),
		"verified_by": update.VerifiedBy,
		"notes":       update.Notes,
		"updated_at":  update.At,
	}
	if update.SettledAt != nil {
		values["settled_at"] = *update.SettledAt
	}
	result := r.db.WithContext(ctx).
		Model(&paymentRecord{}).
		Where("id = ? AND status = ?", update.PaymentID, string(update.Expected)).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}
	return missingOrConflict(ctx, r.db, &paymentRecord{}, update.PaymentID, ports.ErrPaymentNotFound)
}
