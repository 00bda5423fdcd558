package inventory

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/heliosdynamics/helios/internal/erp"
)

func setupTestHandler(t *testing.T) (*Handler, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := erp.CreateSchema(db); err != nil {
		t.Fatalf("schema: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, db), db
}

func insertProduct(t *testing.T, db *sql.DB, sku, name string, price float64, stock int) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO products (sku, name, price, stock_quantity, created_at) VALUES (?, ?, ?, ?, datetime('now'))",
		sku, name, price, stock)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
}

func TestProductsSummary(t *testing.T) {
	h, db := setupTestHandler(t)
	insertProduct(t, db, "WID-001", "Widget Pro", 199.99, 120)
	insertProduct(t, db, "TLM-001", "Tool Max", 249.50, 12)

	out, err := h.ProductsSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{"Total products: 2", "Widget Pro", "120 in stock", "Tool Max", "12 in stock"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestStockSummary(t *testing.T) {
	h, db := setupTestHandler(t)
	insertProduct(t, db, "A", "Alpha", 10.00, 5)
	insertProduct(t, db, "B", "Beta", 2.50, 100)

	out, err := h.StockSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "Units on hand: 105") {
		t.Errorf("unit total wrong:\n%s", out)
	}
	// 5*10.00 + 100*2.50 = 300.00
	if !strings.Contains(out, "$300.00") {
		t.Errorf("inventory value wrong:\n%s", out)
	}
	if !strings.Contains(out, "below 20 units: 1") {
		t.Errorf("low-stock count wrong:\n%s", out)
	}
}

func TestLowStock(t *testing.T) {
	h, db := setupTestHandler(t)
	insertProduct(t, db, "A", "Alpha", 10.00, 5)
	insertProduct(t, db, "B", "Beta", 2.50, 100)
	insertProduct(t, db, "C", "Gamma", 7.00, 19)

	out, err := h.LowStock(context.Background())
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if !strings.Contains(out, "Alpha") || !strings.Contains(out, "Gamma") {
		t.Errorf("missing low-stock products:\n%s", out)
	}
	if strings.Contains(out, "Beta") {
		t.Errorf("Beta is not low stock:\n%s", out)
	}
	// Sorted ascending by quantity: Alpha (5) before Gamma (19).
	if strings.Index(out, "Alpha") > strings.Index(out, "Gamma") {
		t.Errorf("low stock not sorted by quantity:\n%s", out)
	}
}

func TestLowStockHealthy(t *testing.T) {
	h, db := setupTestHandler(t)
	insertProduct(t, db, "B", "Beta", 2.50, 100)

	out, err := h.LowStock(context.Background())
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if !strings.Contains(out, "healthy") {
		t.Errorf("output:\n%s", out)
	}
}

func TestHandleRouting(t *testing.T) {
	h, db := setupTestHandler(t)
	insertProduct(t, db, "A", "Alpha", 10.00, 5)

	cases := []struct {
		request string
		want    string
	}{
		{"what products do we sell", "Product Catalog"},
		{"current stock levels", "Stock Summary"},
		{"anything running low?", "Low stock"},
		{"hello", "products, stock levels"},
	}
	for _, tc := range cases {
		out, err := h.Handle(context.Background(), tc.request)
		if err != nil {
			t.Errorf("Handle(%q): %v", tc.request, err)
			continue
		}
		if !strings.Contains(out, tc.want) {
			t.Errorf("Handle(%q) = %q, want substring %q", tc.request, out, tc.want)
		}
	}
}
