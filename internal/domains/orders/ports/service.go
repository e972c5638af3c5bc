package ports

import (
	"context"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/application/types"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
)

// Service exposes order fulfillment use cases to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input types.PlaceOrderInput) (*types.OrderProjection, error)
	PlaceOrderFromCart(ctx context.Context, input types.CheckoutInput) (*types.OrderProjection, error)
	AdvanceStatus(ctx context.Context, input types.AdvanceStatusInput) (*types.OrderProjection, error)
	CancelOrder(ctx context.Context, input types.CancelOrderInput) (*types.OrderProjection, error)
	SettlePayment(ctx context.Context, input types.SettlePaymentInput) (*types.OrderProjection, error)
	FailPayment(ctx context.Context, input types.FailPaymentInput) (*types.OrderProjection, error)
	RetryPayment(ctx context.Context, input types.OrderIdentifier) (*types.OrderProjection, error)
	GetOrder(ctx context.Context, input types.OrderIdentifier) (*types.OrderProjection, error)
	ListCustomerOrders(ctx context.Context, input types.CustomerIdentifier) ([]*domain.Order, error)
	ListPayments(ctx context.Context, input types.OrderIdentifier) ([]*domain.Payment, error)
}

// WorkflowOrchestrator exposes durable workflow operations required by the orders bounded context.
type WorkflowOrchestrator interface {
	PlaceOrder(ctx context.Context, input types.PlaceOrderInput) (*types.OrderProjection, error)
}
