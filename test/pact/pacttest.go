//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "fulfillment-api"
	ConsumerName = "depot-portal"

	StateCatalogBaseline = "catalog baseline"
	StateOrderExists     = "pending order 1 exists"
	StateOrderMissing    = "no order with id 999"
	StateStockExhausted  = "cement stock is 2 bags"
)

const (
	ExistingOrderID int64 = 1
	MissingOrderID  int64 = 999
	CustomerID      int64 = 42

	CementProductID   int64 = 1
	DeliveryServiceID int64 = 10
	CementPrice       int64 = 65000
	DeliveryPrice     int64 = 150000
	ExhaustedStock    int64 = 2
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the depot portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExamplePlaceOrderPayload is a cement order with truck delivery.
func ExamplePlaceOrderPayload(cementBags int) map[string]any {
	return map[string]any{
		"customerId": CustomerID,
		"items": []map[string]any{
			{"kind": "product", "itemId": CementProductID, "quantity": cementBags},
			{"kind": "service", "itemId": DeliveryServiceID, "quantity": 1},
		},
		"paymentMethod":   "COD",
		"shippingAddress": "Jl. Gatot Subroto 12, Jakarta",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
