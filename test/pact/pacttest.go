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
	ProviderName = "gifting-api"
	ConsumerName = "gifting-storefront"

	StateCatalogBaseline = "catalog baseline"
	StateProductInStock  = "product 101 has 5 units in stock"
	StateProductLowStock = "product 101 has 1 unit in stock"
	StateProductMissing  = "no product with id 404"
)

const (
	ExistingProductID int64 = 101
	MissingProductID  int64 = 404

	ExistingProductName  = "Personalised Photo Mug"
	ExistingProductPrice = "299.00"
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

// PactFile returns the canonical pact file path for the storefront consumer.
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

// ExampleOrderPayload is a guest checkout for two units of the existing product.
func ExampleOrderPayload(quantity int) map[string]any {
	return map[string]any{
		"customerName":    "Pact Customer",
		"customerPhone":   "9876543210",
		"deliveryAddress": "12 MG Road",
		"city":            "Bengaluru",
		"pincode":         "560001",
		"deliveryMethod":  "COURIER_DELIVERY",
		"orderItems": []map[string]any{{
			"productId": ExistingProductID,
			"quantity":  quantity,
			"unitPrice": 299.00,
		}},
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
