package finance

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

func seedFinance(t *testing.T, db *sql.DB) {
	t.Helper()
	stmts := []string{
		"INSERT INTO customers (name, email, created_at) VALUES ('Acme Corp', 'contact@acme.example', datetime('now'))",
		"INSERT INTO orders (customer_id, total, status, created_at) VALUES (1, 948.49, 'paid', datetime('now'))",
		"INSERT INTO orders (customer_id, total, status, created_at) VALUES (1, 249.50, 'pending', datetime('now'))",
		"INSERT INTO invoices (order_id, total, status, issued_at) VALUES (1, 948.49, 'paid', datetime('now'))",
		"INSERT INTO invoices (order_id, total, status, issued_at) VALUES (2, 249.50, 'pending', datetime('now'))",
		"INSERT INTO payments (invoice_id, amount, method, paid_at) VALUES (1, 948.49, 'card', datetime('now'))",
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestInvoicesSummary(t *testing.T) {
	h, db := setupTestHandler(t)
	seedFinance(t, db)

	out, err := h.InvoicesSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{"paid: 1", "pending: 1", "$948.49", "$249.50", "Total: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestInvoicesSummaryEmpty(t *testing.T) {
	h, _ := setupTestHandler(t)

	out, err := h.InvoicesSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if out != "No invoices found." {
		t.Errorf("output = %q", out)
	}
}

func TestPaymentsSummary(t *testing.T) {
	h, db := setupTestHandler(t)
	seedFinance(t, db)

	out, err := h.PaymentsSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "Total payments: 1") || !strings.Contains(out, "$948.49") {
		t.Errorf("output:\n%s", out)
	}
	if !strings.Contains(out, "via card") {
		t.Errorf("missing method in output:\n%s", out)
	}
}

func TestRevenueSummary(t *testing.T) {
	h, db := setupTestHandler(t)
	seedFinance(t, db)

	out, err := h.RevenueSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{"Collected", "$948.49", "Outstanding", "$249.50", "$1197.99"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestHandleRouting(t *testing.T) {
	h, db := setupTestHandler(t)
	seedFinance(t, db)

	cases := []struct {
		request string
		want    string
	}{
		{"show me unpaid invoices", "Invoice Summary"},
		{"recent payments", "Payments Summary"},
		{"what's our revenue", "Revenue Summary"},
		{"hello", "invoices, payments, and revenue"},
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
