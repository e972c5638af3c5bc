package types

import "github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"

// OrderProjection is the read model returned by order use cases.
type OrderProjection struct {
	Order    *domain.Order
	Payments []*domain.Payment
}

// CurrentPayment returns the most recent payment attempt, if any.
func (p *OrderProjection) CurrentPayment() *domain.Payment {
	if p == nil || len(p.Payments) == 0 {
		return nil
	}
	return p.Payments[len(p.Payments)-1]
}
