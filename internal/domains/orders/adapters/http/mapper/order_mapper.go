package mapper

import (
	"time"

	ordertypes "github.com/Apurer/supplier-fulfillment/internal/domains/orders/application/types"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
)

// LineItemRequest is one requested line of an inbound order.
type LineItemRequest struct {
	Kind     string `json:"kind"`
	ItemID   int64  `json:"itemId"`
	Quantity int32  `json:"quantity"`
}

// PlaceOrderRequest is the HTTP payload for placing an order.
type PlaceOrderRequest struct {
	CustomerID      int64             `json:"customerId"`
	Items           []LineItemRequest `json:"items"`
	PaymentMethod   string            `json:"paymentMethod"`
	ShippingAddress string            `json:"shippingAddress,omitempty"`
	Notes           string            `json:"notes,omitempty"`
}

// CheckoutRequest places an order from the customer's cart.
type CheckoutRequest struct {
	PaymentMethod   string `json:"paymentMethod"`
	ShippingAddress string `json:"shippingAddress,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// LineItem is the HTTP representation of an order line with its captured price.
type LineItem struct {
	Kind      string `json:"kind"`
	ItemID    int64  `json:"itemId"`
	Name      string `json:"name,omitempty"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	Subtotal  int64  `json:"subtotal"`
}

// Payment is the HTTP representation of a payment attempt.
type Payment struct {
	ID         int64      `json:"id"`
	Amount     int64      `json:"amount"`
	Method     string     `json:"method"`
	Status     string     `json:"status"`
	SettledAt  *time.Time `json:"settledAt,omitempty"`
	VerifiedBy string     `json:"verifiedBy,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Order is the HTTP representation of an order and, when loaded, its payments.
type Order struct {
	ID              int64      `json:"id"`
	Number          string     `json:"orderNumber"`
	CustomerID      int64      `json:"customerId"`
	Status          string     `json:"status"`
	TotalAmount     int64      `json:"totalAmount"`
	PaymentMethod   string     `json:"paymentMethod"`
	ShippingAddress string     `json:"shippingAddress,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Items           []LineItem `json:"items"`
	Payments        []Payment  `json:"payments,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ToPlaceOrderInput maps the HTTP payload into the placement command.
func ToPlaceOrderInput(req PlaceOrderRequest, idempotencyKey string) ordertypes.PlaceOrderInput {
	items := make([]ordertypes.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, ordertypes.ItemInput{Kind: item.Kind, ItemID: item.ItemID, Quantity: item.Quantity})
	}
	return ordertypes.PlaceOrderInput{
		CustomerID:      req.CustomerID,
		Items:           items,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		IdempotencyKey:  idempotencyKey,
	}
}

// ToCheckoutInput maps a cart checkout payload into its command.
func ToCheckoutInput(customerID int64, req CheckoutRequest, idempotencyKey string) ordertypes.CheckoutInput {
	return ordertypes.CheckoutInput{
		CustomerID:      customerID,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		IdempotencyKey:  idempotencyKey,
	}
}

// FromProjection maps an order projection into the HTTP response.
func FromProjection(projection *ordertypes.OrderProjection) Order {
	if projection == nil || projection.Order == nil {
		return Order{}
	}
	out := FromOrder(projection.Order)
	out.Payments = FromPayments(projection.Payments)
	return out
}

// FromOrder maps the aggregate without payments.
func FromOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	items := make([]LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineItem{
			Kind:      string(item.Ref.Kind),
			ItemID:    item.Ref.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		})
	}
	return Order{
		ID:              order.ID,
		Number:          order.Number,
		CustomerID:      order.CustomerID,
		Status:          string(order.Status),
		TotalAmount:     order.TotalAmount,
		PaymentMethod:   string(order.PaymentMethod),
		ShippingAddress: order.ShippingAddress,
		Notes:           order.Notes,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// FromOrders maps a customer's order history.
func FromOrders(orders []*domain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromOrder(order))
	}
	return result
}

// FromPayments maps payment attempts, oldest first.
func FromPayments(payments []*domain.Payment) []Payment {
	if len(payments) == 0 {
		return nil
	}
	result := make([]Payment, 0, len(payments))
	for _, payment := range payments {
		if payment == nil {
			continue
		}
		result = append(result, Payment{
			ID:         payment.ID,
			Amount:     payment.Amount,
			Method:     string(payment.Method),
			Status:     string(payment.Status),
			SettledAt:  payment.SettledAt,
			VerifiedBy: payment.VerifiedBy,
			Notes:      payment.Notes,
			CreatedAt:  payment.CreatedAt,
		})
	}
	return result
}
