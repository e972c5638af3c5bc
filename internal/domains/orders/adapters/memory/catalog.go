package memory

import (
	"context"
	"fmt"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

// UpsertProduct stores a catalog product including its on-hand stock.
func (s *Store) UpsertProduct(product ports.Product) error {
	if product.ID <= 0 {
		return fmt.Errorf("product id must be greater than zero")
	}
	if product.Stock < 0 {
		return fmt.Errorf("product %d stock must not be negative", product.ID)
	}
	return s.autocommit(true, func(st *state) error {
		st.products[product.ID] = product
		return nil
	})
}

// UpsertService stores a catalog service offering.
func (s *Store) UpsertService(service ports.ServiceOffering) error {
	if service.ID <= 0 {
		return fmt.Errorf("service id must be greater than zero")
	}
	return s.autocommit(true, func(st *state) error {
		st.services[service.ID] = service
		return nil
	})
}

// GetProduct returns the committed view of a product.
func (s *Store) GetProduct(_ context.Context, id int64) (*ports.Product, error) {
	var out *ports.Product
	err := s.autocommit(false, func(st *state) error {
		product, ok := st.products[id]
		if !ok {
			return ports.ErrCatalogItemNotFound
		}
		out = &product
		return nil
	})
	return out, err
}

// GetService returns the committed view of a service.
func (s *Store) GetService(_ context.Context, id int64) (*ports.ServiceOffering, error) {
	var out *ports.ServiceOffering
	err := s.autocommit(false, func(st *state) error {
		service, ok := st.services[id]
		if !ok {
			return ports.ErrCatalogItemNotFound
		}
		out = &service
		return nil
	})
	return out, err
}
