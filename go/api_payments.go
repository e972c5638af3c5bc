package fulfillmentserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/http/mapper"
	ordertypes "github.com/Apurer/supplier-fulfillment/internal/domains/orders/application/types"
	ordersports "github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
	apierrors "github.com/Apurer/supplier-fulfillment/internal/shared/errors"
)

// PaymentAPI exposes payment verification and retries.
type PaymentAPI struct {
	service ordersports.Service
}

// NewPaymentAPI wires dependencies.
func NewPaymentAPI(service ordersports.Service) PaymentAPI {
	return PaymentAPI{service: service}
}

// Get /v1/orders/:orderId/payments
// List payment attempts, oldest first
func (api *PaymentAPI) ListPayments(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	payments, err := api.service.ListPayments(c.Request.Context(), ordertypes.OrderIdentifier{ID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	result := orderhttpmapper.FromPayments(payments)
	if result == nil {
		result = []orderhttpmapper.Payment{}
	}
	c.JSON(http.StatusOK, result)
}

type settlePaymentRequest struct {
	VerifiedBy string `json:"verifiedBy"`
	Notes      string `json:"notes,omitempty"`
}

// Post /v1/orders/:orderId/payments/settle
// Record a verified payment
func (api *PaymentAPI) SettlePayment(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload settlePaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	input := ordertypes.SettlePaymentInput{OrderID: id, VerifiedBy: payload.VerifiedBy, Notes: payload.Notes}
	updated, err := api.service.SettlePayment(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromProjection(updated))
}

type failPaymentRequest struct {
	Reason string `json:"reason"`
}

// Post /v1/orders/:orderId/payments/fail
// Mark the open payment attempt as failed
func (api *PaymentAPI) FailPayment(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload failPaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	updated, err := api.service.FailPayment(c.Request.Context(), ordertypes.FailPaymentInput{OrderID: id, Reason: payload.Reason})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromProjection(updated))
}

// Post /v1/orders/:orderId/payments/retry
// Open a new payment attempt after a failure
func (api *PaymentAPI) RetryPayment(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	updated, err := api.service.RetryPayment(c.Request.Context(), ordertypes.OrderIdentifier{ID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromProjection(updated))
}
