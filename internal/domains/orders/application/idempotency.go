package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	ordertypes "github.com/Apurer/supplier-fulfillment/internal/domains/orders/application/types"
)

type normalizedPlaceOrderInput struct {
	CustomerID      int64                `json:"customerId"`
	Items           []normalizedItemLine `json:"items"`
	PaymentMethod   string               `json:"paymentMethod"`
	ShippingAddress string               `json:"shippingAddress"`
	Notes           string               `json:"notes"`
}

type normalizedItemLine struct {
	Kind     string `json:"kind"`
	ItemID   int64  `json:"itemId"`
	Quantity int64  `json:"quantity"`
}

// FingerprintPlaceOrder builds a deterministic hash of the placement request (excluding the idempotency key).
// Line order and split duplicate lines do not change the fingerprint.
func FingerprintPlaceOrder(input ordertypes.PlaceOrderInput) (string, error) {
	payload, err := json.Marshal(normalizePlaceOrderInput(input))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func normalizePlaceOrderInput(input ordertypes.PlaceOrderInput) normalizedPlaceOrderInput {
	type lineKey struct {
		kind string
		id   int64
	}
	merged := map[lineKey]int64{}
	for _, item := range input.Items {
		merged[lineKey{kind: strings.TrimSpace(item.Kind), id: item.ItemID}] += int64(item.Quantity)
	}
	lines := make([]normalizedItemLine, 0, len(merged))
	for k, qty := range merged {
		lines = append(lines, normalizedItemLine{Kind: k.kind, ItemID: k.id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Kind != lines[j].Kind {
			return lines[i].Kind < lines[j].Kind
		}
		return lines[i].ItemID < lines[j].ItemID
	})
	return normalizedPlaceOrderInput{
		CustomerID:      input.CustomerID,
		Items:           lines,
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
		Notes:           strings.TrimSpace(input.Notes),
	}
}
