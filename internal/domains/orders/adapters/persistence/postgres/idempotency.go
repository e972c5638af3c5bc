package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// Get loads a record by key, returning nil when absent.
func (r idempotencyRepository) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	var record idempotencyRecord
	if err := r.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ports.IdempotencyRecord{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		OrderID:     record.OrderID,
		CreatedAt:   record.CreatedAt,
	}, nil
}

// Create inserts the record; a key that is already taken yields ports.ErrIdempotencyKeyExists.
func (r idempotencyRepository) Create(ctx context.Context, record ports.IdempotencyRecord) error {
	dbRecord := idempotencyRecord{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		OrderID:     record.OrderID,
		CreatedAt:   record.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&dbRecord).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrIdempotencyKeyExists
		}
		return err
	}
	return nil
}

// PurgeBefore deletes keys created before cutoff and reports how many were removed.
func (r idempotencyRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&idempotencyRecord{})
	return result.RowsAffected, result.Error
}
