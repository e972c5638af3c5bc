package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

type stockLedger struct {
	db *gorm.DB
}

// Reserve decrements stock with a single conditional UPDATE so concurrent reservations
// can never drive the level below zero.
func (l stockLedger) Reserve(ctx context.Context, productID int64, qty int32) error {
	if qty < 1 {
		return fmt.Errorf("%w: reserve %d", domain.ErrInvalidQuantity, qty)
	}
	result := l.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		if isCheckViolation(result.Error) {
			return ports.ErrInsufficientStock
		}
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}
	exists, err := l.exists(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		return ports.ErrProductNotFound
	}
	return ports.ErrInsufficientStock
}

func (l stockLedger) Release(ctx context.Context, productID int64, qty int32) error {
	if qty < 1 {
		return fmt.Errorf("%w: release %d", domain.ErrInvalidQuantity, qty)
	}
	result := l.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrProductNotFound
	}
	return nil
}

func (l stockLedger) Level(ctx context.Context, productID int64) (int64, error) {
	var record productRecord
	if err := l.db.WithContext(ctx).Select("stock").First(&record, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ports.ErrProductNotFound
		}
		return 0, err
	}
	return record.Stock, nil
}

func (l stockLedger) exists(ctx context.Context, productID int64) (bool, error) {
	var count int64
	if err := l.db.WithContext(ctx).Model(&productRecord{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetProduct reads the committed catalog entry of a product.
func (s *Store) GetProduct(ctx context.Context, id int64) (*ports.Product, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrCatalogItemNotFound
		}
		return nil, err
	}
	return record.toPort(), nil
}

// GetService reads the committed catalog entry of a service.
func (s *Store) GetService(ctx context.Context, id int64) (*ports.ServiceOffering, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record serviceRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrCatalogItemNotFound
		}
		return nil, err
	}
	return record.toPort(), nil
}

// UpsertProduct inserts or replaces a catalog product, stock included.
func (s *Store) UpsertProduct(ctx context.Context, product ports.Product) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	now := time.Now().UTC()
	record := productRecord{ID: product.ID, Name: product.Name, Price: product.Price, Stock: product.Stock, Active: product.Active, CreatedAt: now, UpdatedAt: now}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":       record.Name,
				"price":      record.Price,
				"stock":      record.Stock,
				"active":     record.Active,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error
}

// UpsertService inserts or replaces a catalog service.
func (s *Store) UpsertService(ctx context.Context, service ports.ServiceOffering) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	now := time.Now().UTC()
	record := serviceRecord{ID: service.ID, Name: service.Name, Price: service.Price, Active: service.Active, CreatedAt: now, UpdatedAt: now}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":       record.Name,
				"price":      record.Price,
				"active":     record.Active,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error
}
