package fulfillmentserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	orderhttpmapper "github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/memory"
	ordersworkflows "github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/supplier-fulfillment/internal/domains/orders/application"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
	apierrors "github.com/Apurer/supplier-fulfillment/internal/shared/errors"
)

type testServer struct {
	router *gin.Engine
	store  *memory.Store
	carts  *memory.Carts
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	require.NoError(t, store.UpsertProduct(ports.Product{ID: 1, Name: "Portland cement 50kg", Price: 50000, Stock: 10, Active: true}))
	require.NoError(t, store.UpsertProduct(ports.Product{ID: 2, Name: "Discontinued tile", Price: 9000, Stock: 100, Active: false}))
	require.NoError(t, store.UpsertService(ports.ServiceOffering{ID: 10, Name: "Truck delivery", Price: 150000, Active: true}))
	carts := memory.NewCarts()

	service := ordersapp.NewService(store, store, ordersapp.WithCart(carts))
	handlers := ApiHandleFunctions{
		OrderAPI:   NewOrderAPI(service, ordersworkflows.NewInlineOrderWorkflows(service)),
		PaymentAPI: NewPaymentAPI(service),
	}
	return &testServer{
		router: NewRouterWithGinEngine(gin.New(), handlers),
		store:  store,
		carts:  carts,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func cementRequest(qty int32, method string) orderhttpmapper.PlaceOrderRequest {
	return orderhttpmapper.PlaceOrderRequest{
		CustomerID:      42,
		Items:           []orderhttpmapper.LineItemRequest{{Kind: "product", ItemID: 1, Quantity: qty}},
		PaymentMethod:   method,
		ShippingAddress: "Jl. Gatot Subroto 12",
	}
}

func (s *testServer) placeCement(t *testing.T, qty int32, method string) orderhttpmapper.Order {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/orders", cementRequest(qty, method))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[orderhttpmapper.Order](t, rec)
}

func TestPlaceOrder_Created(t *testing.T) {
	s := newTestServer(t)
	req := cementRequest(2, "BANK_TRANSFER")
	req.Items = append(req.Items, orderhttpmapper.LineItemRequest{Kind: "service", ItemID: 10, Quantity: 1})

	rec := s.do(t, http.MethodPost, "/v1/orders", req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[orderhttpmapper.Order](t, rec)
	require.Equal(t, fmt.Sprintf("/v1/orders/%d", order.ID), rec.Header().Get("Location"))
	require.Equal(t, "PENDING", order.Status)
	require.Equal(t, int64(250000), order.TotalAmount)
	require.Len(t, order.Items, 2)
	require.Equal(t, int64(100000), order.Items[0].Subtotal)
	require.Len(t, order.Payments, 1)
	require.Equal(t, "PENDING", order.Payments[0].Status)
	require.NotEmpty(t, order.Number)

	level, err := s.store.Stock().Level(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(8), level)
}

func TestPlaceOrder_ProblemResponses(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		body   any
		status int
		typ    string
		kind   string
	}{
		{name: "malformed json", body: `{"customerId":`, status: http.StatusBadRequest, typ: apierrors.TypeBadRequest},
		{name: "zero quantity", body: cementRequest(0, "COD"), status: http.StatusBadRequest, typ: apierrors.TypeValidation, kind: "validation"},
		{name: "unknown method", body: cementRequest(1, "BARTER"), status: http.StatusBadRequest, typ: apierrors.TypeValidation, kind: "validation"},
		{name: "insufficient stock", body: cementRequest(11, "COD"), status: http.StatusConflict, typ: apierrors.TypeConflict, kind: "insufficient_stock"},
		{
			name: "inactive item",
			body: orderhttpmapper.PlaceOrderRequest{
				CustomerID:      42,
				Items:           []orderhttpmapper.LineItemRequest{{Kind: "product", ItemID: 2, Quantity: 1}},
				PaymentMethod:   "COD",
				ShippingAddress: "Depot",
			},
			status: http.StatusUnprocessableEntity,
			typ:    apierrors.TypeUnprocessable,
			kind:   "item_inactive",
		},
		{
			name: "unknown item",
			body: orderhttpmapper.PlaceOrderRequest{
				CustomerID:    42,
				Items:         []orderhttpmapper.LineItemRequest{{Kind: "service", ItemID: 99, Quantity: 1}},
				PaymentMethod: "COD",
			},
			status: http.StatusUnprocessableEntity,
			typ:    apierrors.TypeUnprocessable,
			kind:   "item_not_found",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/v1/orders", tc.body)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			require.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
			problem := decode[apierrors.ProblemDetail](t, rec)
			require.Equal(t, tc.typ, problem.Type)
			require.Equal(t, tc.kind, problem.Kind)
			require.Equal(t, "/v1/orders", problem.Instance)
		})
	}

	level, err := s.store.Stock().Level(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(10), level)
}

func TestPlaceOrder_InsufficientStockNamesTheItem(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/orders", cementRequest(12, "COD"))

	require.Equal(t, http.StatusConflict, rec.Code)
	problem := decode[apierrors.ProblemDetail](t, rec)
	require.Equal(t, "product", problem.Extras["itemKind"])
	require.EqualValues(t, 1, problem.Extras["itemId"])
	require.EqualValues(t, 12, problem.Extras["requested"])
	require.EqualValues(t, 10, problem.Extras["available"])
}

func TestPlaceOrder_IdempotencyKeyReplays(t *testing.T) {
	s := newTestServer(t)

	first := s.do(t, http.MethodPost, "/v1/orders", cementRequest(1, "COD"), IdempotencyKeyHeader, "checkout-7")
	require.Equal(t, http.StatusCreated, first.Code)
	second := s.do(t, http.MethodPost, "/v1/orders", cementRequest(1, "COD"), IdempotencyKeyHeader, "checkout-7")
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, decode[orderhttpmapper.Order](t, first).ID, decode[orderhttpmapper.Order](t, second).ID)

	conflict := s.do(t, http.MethodPost, "/v1/orders", cementRequest(3, "COD"), IdempotencyKeyHeader, "checkout-7")
	require.Equal(t, http.StatusConflict, conflict.Code)
	require.Equal(t, "idempotency_conflict", decode[apierrors.ProblemDetail](t, conflict).Kind)

	level, err := s.store.Stock().Level(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(9), level)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	order := s.placeCement(t, 3, "COD")
	path := fmt.Sprintf("/v1/orders/%d", order.ID)

	rec := s.do(t, http.MethodPost, path+"/status", map[string]string{"status": "SHIPPED"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "invalid_transition", decode[apierrors.ProblemDetail](t, rec).Kind)

	for _, target := range []string{"PROCESSING", "SHIPPED", "DELIVERED"} {
		rec := s.do(t, http.MethodPost, path+"/status", map[string]string{"status": target})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Equal(t, target, decode[orderhttpmapper.Order](t, rec).Status)
	}

	rec = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decode[orderhttpmapper.Order](t, rec)
	require.Equal(t, domain.StatusDelivered, domain.Status(fetched.Status))
	require.Len(t, fetched.Payments, 1)
	require.Equal(t, "PAID", fetched.Payments[0].Status)
	require.NotNil(t, fetched.Payments[0].SettledAt)

	rec = s.do(t, http.MethodPost, path+"/cancel", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelOrderOverHTTP(t *testing.T) {
	s := newTestServer(t)
	order := s.placeCement(t, 4, "BANK_TRANSFER")
	path := fmt.Sprintf("/v1/orders/%d/cancel", order.ID)

	rec := s.do(t, http.MethodPost, path, map[string]string{"reason": "customer changed mind"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cancelled := decode[orderhttpmapper.Order](t, rec)
	require.Equal(t, "CANCELLED", cancelled.Status)
	require.Equal(t, "CANCELLED", cancelled.Payments[0].Status)

	level, err := s.store.Stock().Level(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(10), level)

	rec = s.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestOrderLookups(t *testing.T) {
	s := newTestServer(t)
	first := s.placeCement(t, 1, "COD")
	second := s.placeCement(t, 1, "E_WALLET")

	rec := s.do(t, http.MethodGet, "/v1/customers/42/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[[]orderhttpmapper.Order](t, rec)
	require.Len(t, orders, 2)
	require.ElementsMatch(t, []int64{first.ID, second.ID}, []int64{orders[0].ID, orders[1].ID})

	rec = s.do(t, http.MethodGet, "/v1/orders/9999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "order_not_found", decode[apierrors.ProblemDetail](t, rec).Kind)

	rec = s.do(t, http.MethodGet, "/v1/orders/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, apierrors.TypeBadRequest, decode[apierrors.ProblemDetail](t, rec).Type)
}

func TestCheckoutCart(t *testing.T) {
	s := newTestServer(t)
	s.carts.Put(42, ports.CartItem{Ref: domain.ProductRef(1), Quantity: 2}, ports.CartItem{Ref: domain.ServiceRef(10), Quantity: 1})

	rec := s.do(t, http.MethodPost, "/v1/customers/42/checkout", orderhttpmapper.CheckoutRequest{
		PaymentMethod:   "COD",
		ShippingAddress: "Depot 3",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, int64(250000), decode[orderhttpmapper.Order](t, rec).TotalAmount)

	rec = s.do(t, http.MethodPost, "/v1/customers/42/checkout", orderhttpmapper.CheckoutRequest{PaymentMethod: "COD", ShippingAddress: "Depot 3"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation", decode[apierrors.ProblemDetail](t, rec).Kind)
}
