package ports

import (
	"context"
	"errors"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
)

// ErrCatalogItemNotFound is returned by catalog readers for unknown ids.
var ErrCatalogItemNotFound = errors.New("catalog item not found")

// Product is the catalog view of a stock-tracked item.
type Product struct {
	ID     int64
	Name   string
	Price  int64
	Stock  int64
	Active bool
}

// ServiceOffering is the catalog view of a non-stocked service such as delivery.
type ServiceOffering struct {
	ID     int64
	Name   string
	Price  int64
	Active bool
}

// CatalogReader resolves catalog entries referenced by order lines.
type CatalogReader interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	GetService(ctx context.Context, id int64) (*ServiceOffering, error)
}

// CartItem is a single entry supplied by the cart collaborator.
type CartItem struct {
	Ref      domain.ItemRef
	Quantity int32
}

// CartReader supplies the items a customer collected before checkout.
type CartReader interface {
	Items(ctx context.Context, customerID int64) ([]CartItem, error)
	Clear(ctx context.Context, customerID int64) error
}

// Notifier dispatches domain events to interested parties. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event) error
}
