package application

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ordertypes "github.com/Apurer/supplier-fulfillment/internal/domains/orders/application/types"
)

func TestFingerprintPlaceOrder_IgnoresLineOrderAndSplits(t *testing.T) {
	base := ordertypes.PlaceOrderInput{
		CustomerID: 9,
		Items: []ordertypes.ItemInput{
			{Kind: "product", ItemID: 1, Quantity: 3},
			{Kind: "service", ItemID: 4, Quantity: 1},
		},
		PaymentMethod:   "COD",
		ShippingAddress: "Depot 1",
		IdempotencyKey:  "k-1",
	}
	reordered := ordertypes.PlaceOrderInput{
		CustomerID: 9,
		Items: []ordertypes.ItemInput{
			{Kind: "service", ItemID: 4, Quantity: 1},
			{Kind: "product", ItemID: 1, Quantity: 1},
			{Kind: "product", ItemID: 1, Quantity: 2},
		},
		PaymentMethod:   " COD ",
		ShippingAddress: "Depot 1 ",
		IdempotencyKey:  "k-2",
	}

	a, err := FingerprintPlaceOrder(base)
	require.NoError(t, err)
	b, err := FingerprintPlaceOrder(reordered)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 64)

	changed := base
	changed.Notes = "leave at gate"
	c, err := FingerprintPlaceOrder(changed)
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestSequenceNumberGenerator(t *testing.T) {
	gen := NewSequenceNumberGenerator("  ")
	at := time.Date(2026, 3, 1, 23, 0, 0, 0, time.FixedZone("WIB", 7*60*60))
	pattern := regexp.MustCompile(`^SO-20260301-\d{4}[0-9A-Z]{4}$`)

	seen := make(map[string]struct{}, 500)
	for range 500 {
		number := gen.Next(at)
		require.Regexp(t, pattern, number)
		seen[number] = struct{}{}
	}
	require.Len(t, seen, 500)

	require.Regexp(t, `^PO-`, NewSequenceNumberGenerator("PO").Next(at))
}
