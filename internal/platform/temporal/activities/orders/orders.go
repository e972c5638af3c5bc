package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/application"
	ordertypes "github.com/Apurer/supplier-fulfillment/internal/domains/orders/application/types"
	ordersports "github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

// PlaceOrderActivityName places an order through the fulfillment engine.
const PlaceOrderActivityName = "orders.activities.PlaceOrder"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ordersports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
func NewActivities(service ordersports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrder runs the placement transaction. Rejections the caller has to fix are returned
// as non-retryable application errors typed with their error kind.
func (a *Activities) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*ordertypes.OrderProjection, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("place order activity not initialized", "customerId", input.CustomerID)
		return nil, errors.New("place order activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "customerId", input.CustomerID, "attempt", activity.GetInfo(ctx).Attempt)
	projection, err := a.service.PlaceOrder(ctx, input)
	if err != nil {
		kind := application.ErrorKind(err)
		logger.Error("PlaceOrder activity failed", "customerId", input.CustomerID, "kind", kind, "error", err)
		if !application.IsRetryable(err) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), kind, err)
		}
		return nil, err
	}
	logger.Info("PlaceOrder activity completed", "orderId", projection.Order.ID, "orderNumber", projection.Order.Number)
	return projection, nil
}
