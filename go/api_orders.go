package fulfillmentserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/http/mapper"
	ordertypes "github.com/Apurer/supplier-fulfillment/internal/domains/orders/application/types"
	ordersports "github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
	apierrors "github.com/Apurer/supplier-fulfillment/internal/shared/errors"
)

// IdempotencyKeyHeader carries the client supplied key that makes placement retries safe.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderAPI wires HTTP transport with the orders service and workflows.
type OrderAPI struct {
	service   ordersports.Service
	workflows ordersports.WorkflowOrchestrator
}

// NewOrderAPI creates an OrderAPI. When workflows is nil, placement calls the service directly.
func NewOrderAPI(service ordersports.Service, workflows ordersports.WorkflowOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows}
}

// Post /v1/orders
// Place an order
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	var payload orderhttpmapper.PlaceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	input := orderhttpmapper.ToPlaceOrderInput(payload, strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)))
	placed, err := api.placeOrder(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Location", "/v1/orders/"+formatID(placed.Order.ID))
	c.JSON(http.StatusCreated, orderhttpmapper.FromProjection(placed))
}

func (api *OrderAPI) placeOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*ordertypes.OrderProjection, error) {
	if api.workflows != nil {
		return api.workflows.PlaceOrder(ctx, input)
	}
	return api.service.PlaceOrder(ctx, input)
}

// Post /v1/customers/:customerId/checkout
// Place an order from the customer's cart
func (api *OrderAPI) CheckoutCart(c *gin.Context) {
	customerID, ok := parseIDParam(c, "customerId")
	if !ok {
		return
	}
	var payload orderhttpmapper.CheckoutRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	input := orderhttpmapper.ToCheckoutInput(customerID, payload, strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)))
	placed, err := api.service.PlaceOrderFromCart(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Location", "/v1/orders/"+formatID(placed.Order.ID))
	c.JSON(http.StatusCreated, orderhttpmapper.FromProjection(placed))
}

// Get /v1/orders/:orderId
// Find order by ID
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	projection, err := api.service.GetOrder(c.Request.Context(), ordertypes.OrderIdentifier{ID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromProjection(projection))
}

// Get /v1/customers/:customerId/orders
// List a customer's orders, newest first
func (api *OrderAPI) ListCustomerOrders(c *gin.Context) {
	customerID, ok := parseIDParam(c, "customerId")
	if !ok {
		return
	}
	orders, err := api.service.ListCustomerOrders(c.Request.Context(), ordertypes.CustomerIdentifier{CustomerID: customerID})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrders(orders))
}

type advanceStatusRequest struct {
	Status string `json:"status"`
}

// Post /v1/orders/:orderId/status
// Advance the order to the next lifecycle status
func (api *OrderAPI) AdvanceStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload advanceStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	updated, err := api.service.AdvanceStatus(c.Request.Context(), ordertypes.AdvanceStatusInput{OrderID: id, Target: payload.Status})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromProjection(updated))
}

type cancelOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Post /v1/orders/:orderId/cancel
// Cancel an order and return its stock
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload cancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
			return
		}
	}
	cancelled, err := api.service.CancelOrder(c.Request.Context(), ordertypes.CancelOrderInput{OrderID: id, Reason: payload.Reason})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromProjection(cancelled))
}
