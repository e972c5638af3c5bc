package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewOrder_ComputesTotalFromLines(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	items := []LineItem{
		{Ref: ProductRef(1), Name: "Cement 50kg", Quantity: 2, UnitPrice: 50000},
		{Ref: ServiceRef(7), Name: "Delivery", Quantity: 1, UnitPrice: 15000},
	}

	order, err := NewOrder(10, items, MethodBankTransfer, " Jl. Merdeka 1 ", "", now)
	require.NoError(t, err)
	require.Equal(t, int64(115000), order.TotalAmount)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, "Jl. Merdeka 1", order.ShippingAddress)
	require.Len(t, order.StockLines(), 1)

	items[0].Quantity = 99
	require.Equal(t, int32(2), order.Items[0].Quantity, "order must not alias caller slice")
}

func TestNewOrder_RejectsInvalidInput(t *testing.T) {
	now := time.Now()
	product := LineItem{Ref: ProductRef(1), Quantity: 1, UnitPrice: 100}

	cases := []struct {
		name    string
		custID  int64
		items   []LineItem
		method  PaymentMethod
		address string
		want    error
	}{
		{name: "no customer", custID: 0, items: []LineItem{product}, method: MethodCOD, address: "a", want: ErrInvalidCustomerID},
		{name: "no items", custID: 1, items: nil, method: MethodCOD, address: "a", want: ErrEmptyItems},
		{name: "zero quantity", custID: 1, items: []LineItem{{Ref: ProductRef(1), Quantity: 0}}, method: MethodCOD, address: "a", want: ErrInvalidQuantity},
		{name: "zero ref", custID: 1, items: []LineItem{{Quantity: 1}}, method: MethodCOD, address: "a", want: ErrInvalidItemRef},
		{name: "negative price", custID: 1, items: []LineItem{{Ref: ServiceRef(2), Quantity: 1, UnitPrice: -1}}, method: MethodCOD, want: ErrNegativePrice},
		{name: "unknown method", custID: 1, items: []LineItem{product}, method: "BARTER", address: "a", want: ErrInvalidPaymentMethod},
		{name: "product without address", custID: 1, items: []LineItem{product}, method: MethodCOD, address: "  ", want: ErrMissingAddress},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOrder(tc.custID, tc.items, tc.method, tc.address, "", now)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewOrder_ServicesOnlyNeedsNoAddress(t *testing.T) {
	order, err := NewOrder(3, []LineItem{{Ref: ServiceRef(4), Quantity: 3, UnitPrice: 2000}}, MethodEWallet, "", "", time.Now())
	require.NoError(t, err)
	require.False(t, order.HasProducts())
	require.Equal(t, int64(6000), order.TotalAmount)
}

func TestOrderValidate_DetectsTotalDrift(t *testing.T) {
	order, err := NewOrder(3, []LineItem{{Ref: ServiceRef(4), Quantity: 1, UnitPrice: 2000}}, MethodEWallet, "", "", time.Now())
	require.NoError(t, err)
	order.TotalAmount++
	require.ErrorIs(t, order.Validate(), ErrTotalMismatch)
}

func TestNewOrder_RejectsAmountOverflow(t *testing.T) {
	now := time.Now()
	huge := LineItem{Ref: ProductRef(1), Quantity: 3, UnitPrice: 4_000_000_000_000_000_000}
	_, err := NewOrder(1, []LineItem{huge}, MethodCOD, "Depot", "", now)
	require.ErrorIs(t, err, ErrAmountOverflow)

	half := LineItem{Ref: ProductRef(1), Quantity: 1, UnitPrice: math.MaxInt64/2 + 1}
	_, err = NewOrder(1, []LineItem{half, {Ref: ProductRef(2), Quantity: 1, UnitPrice: math.MaxInt64 / 2}}, MethodCOD, "Depot", "", now)
	require.NoError(t, err)
	_, err = NewOrder(1, []LineItem{half, half}, MethodCOD, "Depot", "", now)
	require.ErrorIs(t, err, ErrAmountOverflow)

	require.ErrorIs(t, huge.Validate(), ErrAmountOverflow)
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusDelivered, StatusPending, false},
		{StatusProcessing, StatusPending, false},
	}
	for _, tc := range cases {
		err := tc.from.CheckTransition(tc.to)
		if tc.ok {
			require.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			require.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
		}
	}
}

func TestOrderCheckAdvance_RejectsCancelTarget(t *testing.T) {
	order := &Order{Status: StatusPending}
	require.ErrorIs(t, order.CheckAdvance(StatusCancelled), ErrInvalidTransition)
	require.ErrorIs(t, order.CheckAdvance("LOST"), ErrInvalidStatus)
}

func TestStatusTerminal(t *testing.T) {
	require.True(t, StatusDelivered.IsTerminal())
	require.True(t, StatusCancelled.IsTerminal())
	require.False(t, StatusShipped.IsTerminal())
	_, ok := StatusDelivered.Next()
	require.False(t, ok)
}

func TestPaymentLifecycle(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	order := &Order{ID: 5, TotalAmount: 100000, PaymentMethod: MethodBankTransfer}
	payment := NewPendingPayment(order, now)
	require.Equal(t, PaymentPending, payment.Status)
	require.Equal(t, int64(100000), payment.Amount)

	require.NoError(t, payment.Settle(now, "finance-01", "transfer ref 778"))
	require.Equal(t, PaymentPaid, payment.Status)
	require.NotNil(t, payment.SettledAt)
	require.ErrorIs(t, payment.Settle(now, "x", ""), ErrInvalidPaymentTransition)
	require.ErrorIs(t, payment.Fail(now, "late"), ErrInvalidPaymentTransition)

	require.NoError(t, payment.Cancel(now))
	require.Equal(t, PaymentCancelled, payment.Status)
	require.ErrorIs(t, payment.Cancel(now), ErrInvalidPaymentTransition)
}

func TestPaymentClone_CopiesSettledAt(t *testing.T) {
	now := time.Now()
	payment := &Payment{Status: PaymentPaid, SettledAt: &now}
	clone := payment.Clone()
	*clone.SettledAt = now.Add(time.Hour)
	require.Equal(t, now, *payment.SettledAt)
}

func TestParseHelpers(t *testing.T) {
	_, err := ParseItemKind("bundle")
	require.ErrorIs(t, err, ErrInvalidItemRef)
	kind, err := ParseItemKind("service")
	require.NoError(t, err)
	require.Equal(t, KindService, kind)

	_, err = ParsePaymentMethod("IOU")
	require.ErrorIs(t, err, ErrInvalidPaymentMethod)
	require.True(t, MethodCOD.DefersSettlement())
	require.False(t, MethodBankTransfer.DefersSettlement())
}
