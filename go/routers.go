package fulfillmentserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers served by the fulfillment API.
type ApiHandleFunctions struct {
	OrderAPI   OrderAPI
	PaymentAPI PaymentAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the fulfillment routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes that have no handler wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"PlaceOrder",
			http.MethodPost,
			"/v1/orders",
			handleFunctions.OrderAPI.PlaceOrder,
		},
		{
			"GetOrder",
			http.MethodGet,
			"/v1/orders/:orderId",
			handleFunctions.OrderAPI.GetOrder,
		},
		{
			"AdvanceOrderStatus",
			http.MethodPost,
			"/v1/orders/:orderId/status",
			handleFunctions.OrderAPI.AdvanceStatus,
		},
		{
			"CancelOrder",
			http.MethodPost,
			"/v1/orders/:orderId/cancel",
			handleFunctions.OrderAPI.CancelOrder,
		},
		{
			"CheckoutCart",
			http.MethodPost,
			"/v1/customers/:customerId/checkout",
			handleFunctions.OrderAPI.CheckoutCart,
		},
		{
			"ListCustomerOrders",
			http.MethodGet,
			"/v1/customers/:customerId/orders",
			handleFunctions.OrderAPI.ListCustomerOrders,
		},
		{
			"ListPayments",
			http.MethodGet,
			"/v1/orders/:orderId/payments",
			handleFunctions.PaymentAPI.ListPayments,
		},
		{
			"SettlePayment",
			http.MethodPost,
			"/v1/orders/:orderId/payments/settle",
			handleFunctions.PaymentAPI.SettlePayment,
		},
		{
			"FailPayment",
			http.MethodPost,
			"/v1/orders/:orderId/payments/fail",
			handleFunctions.PaymentAPI.FailPayment,
		},
		{
			"RetryPayment",
			http.MethodPost,
			"/v1/orders/:orderId/payments/retry",
			handleFunctions.PaymentAPI.RetryPayment,
		},
	}
}
