// Package finance handles invoice, payment, and revenue requests.
package finance

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heliosdynamics/helios/internal/erp"
)

// Handler answers finance-domain requests. All operations are read-only;
// money movement goes through the ERP billing system, with large amounts
// diverted to the approval queue upstream.
type Handler struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewHandler creates a finance handler.
func NewHandler(logger *slog.Logger, db *sql.DB) *Handler {
	return &Handler{db: db, logger: logger}
}

// Handle routes a free-text finance request to one of the fixed operations.
func (h *Handler) Handle(ctx context.Context, request string) (string, error) {
	lower := strings.ToLower(request)

	switch {
	case strings.Contains(lower, "invoice") || strings.Contains(lower, "billing"):
		return h.InvoicesSummary(ctx)
	case strings.Contains(lower, "payment"):
		return h.PaymentsSummary(ctx)
	case strings.Contains(lower, "revenue") || strings.Contains(lower, "income") || strings.Contains(lower, "budget"):
		return h.RevenueSummary(ctx)
	default:
		return "I can help you with invoices, payments, and revenue. What would you like to know?", nil
	}
}

// InvoicesSummary reports invoice counts and totals broken down by status.
func (h *Handler) InvoicesSummary(ctx context.Context) (string, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT COALESCE(status, 'unknown'), COUNT(*), COALESCE(SUM(total), 0)
		FROM invoices
		GROUP BY status
		ORDER BY status
	`)
	if err != nil {
		return "", fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	b.WriteString("**Invoice Summary:**\n")
	total := 0
	var totalAmount float64
	for rows.Next() {
		var status string
		var count int
		var amount float64
		if err := rows.Scan(&status, &count, &amount); err != nil {
			return "", fmt.Errorf("scan invoice group: %w", err)
		}
		total += count
		totalAmount += amount
		fmt.Fprintf(&b, "- %s: %d invoice(s), %s\n", status, count, erp.Money(amount))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if total == 0 {
		return "No invoices found.", nil
	}
	fmt.Fprintf(&b, "\nTotal: %d invoice(s), %s\n", total, erp.Money(totalAmount))
	return b.String(), nil
}

// PaymentsSummary reports payment totals and the most recent payments.
func (h *Handler) PaymentsSummary(ctx context.Context) (string, error) {
	count, err := erp.Count(ctx, h.db, "SELECT COUNT(*) FROM payments")
	if err != nil {
		return "", fmt.Errorf("count payments: %w", err)
	}
	total, err := erp.Sum(ctx, h.db, "SELECT COALESCE(SUM(amount), 0) FROM payments")
	if err != nil {
		return "", fmt.Errorf("sum payments: %w", err)
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT p.id, p.amount, COALESCE(p.method, ''), p.invoice_id
		FROM payments p
		ORDER BY p.paid_at DESC
		LIMIT 5
	`)
	if err != nil {
		return "", fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	b.WriteString("**Payments Summary:**\n")
	fmt.Fprintf(&b, "Total payments: %d, %s received\n\n", count, erp.Money(total))
	b.WriteString("Recent payments:\n")
	for rows.Next() {
		var id, invoiceID int
		var amount float64
		var method string
		if err := rows.Scan(&id, &amount, &method, &invoiceID); err != nil {
			return "", fmt.Errorf("scan payment: %w", err)
		}
		fmt.Fprintf(&b, "- Payment #%d: %s via %s (invoice #%d)\n",
			id, erp.Money(amount), method, invoiceID)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RevenueSummary reports collected versus outstanding revenue.
func (h *Handler) RevenueSummary(ctx context.Context) (string, error) {
	paid, err := erp.Sum(ctx, h.db,
		"SELECT COALESCE(SUM(total), 0) FROM invoices WHERE status = 'paid'")
	if err != nil {
		return "", fmt.Errorf("sum paid invoices: %w", err)
	}
	pending, err := erp.Sum(ctx, h.db,
		"SELECT COALESCE(SUM(total), 0) FROM invoices WHERE status = 'pending'")
	if err != nil {
		return "", fmt.Errorf("sum pending invoices: %w", err)
	}

	var b strings.Builder
	b.WriteString("**Revenue Summary:**\n")
	fmt.Fprintf(&b, "Collected (paid invoices): %s\n", erp.Money(paid))
	fmt.Fprintf(&b, "Outstanding (pending invoices): %s\n", erp.Money(pending))
	fmt.Fprintf(&b, "Total billed: %s\n", erp.Money(paid+pending))
	return b.String(), nil
}
