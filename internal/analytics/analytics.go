// Package analytics handles reporting requests across the business data.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heliosdynamics/helios/internal/erp"
)

// Handler answers analytics-domain requests with read-only aggregate
// queries.
type Handler struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewHandler creates an analytics handler.
func NewHandler(logger *slog.Logger, db *sql.DB) *Handler {
	return &Handler{db: db, logger: logger}
}

// Handle routes a free-text analytics request to one of the fixed operations.
func (h *Handler) Handle(ctx context.Context, request string) (string, error) {
	lower := strings.ToLower(request)

	switch {
	case strings.Contains(lower, "month") || strings.Contains(lower, "trend"):
		return h.RevenueByMonth(ctx)
	case strings.Contains(lower, "product"):
		return h.TopProducts(ctx)
	case strings.Contains(lower, "order") || strings.Contains(lower, "statistic") || strings.Contains(lower, "average"):
		return h.OrderStats(ctx)
	case strings.Contains(lower, "report") || strings.Contains(lower, "dashboard") || strings.Contains(lower, "analytics"):
		return h.RevenueByMonth(ctx)
	default:
		return "I can help you with monthly revenue, order statistics, and top products. What would you like to know?", nil
	}
}

// RevenueByMonth reports order revenue grouped by calendar month.
func (h *Handler) RevenueByMonth(ctx context.Context) (string, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', created_at) AS month,
		       COUNT(*), COALESCE(SUM(total), 0)
		FROM orders
		WHERE created_at IS NOT NULL
		GROUP BY month
		ORDER BY month DESC
		LIMIT 12
	`)
	if err != nil {
		return "", fmt.Errorf("query monthly revenue: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	found := 0
	for rows.Next() {
		var month string
		var count int
		var revenue float64
		if err := rows.Scan(&month, &count, &revenue); err != nil {
			return "", fmt.Errorf("scan month: %w", err)
		}
		if found == 0 {
			b.WriteString("**Revenue by month:**\n")
		}
		found++
		fmt.Fprintf(&b, "- %s: %d order(s), %s\n", month, count, erp.Money(revenue))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if found == 0 {
		return "No order data to report on yet.", nil
	}
	return b.String(), nil
}

// OrderStats reports count, average, minimum, and maximum order value.
func (h *Handler) OrderStats(ctx context.Context) (string, error) {
	var count sql.NullInt64
	var avg, min, max sql.NullFloat64
	err := h.db.QueryRowContext(ctx, `
		SELECT COUNT(*), AVG(total), MIN(total), MAX(total) FROM orders
	`).Scan(&count, &avg, &min, &max)
	if err != nil {
		return "", fmt.Errorf("query order stats: %w", err)
	}

	if count.Int64 == 0 {
		return "No order data to report on yet.", nil
	}

	var b strings.Builder
	b.WriteString("**Order statistics:**\n")
	fmt.Fprintf(&b, "Orders: %d\n", count.Int64)
	fmt.Fprintf(&b, "Average value: %s\n", erp.Money(avg.Float64))
	fmt.Fprintf(&b, "Smallest: %s\n", erp.Money(min.Float64))
	fmt.Fprintf(&b, "Largest: %s\n", erp.Money(max.Float64))
	return b.String(), nil
}

// TopProducts lists the five best-selling products by quantity.
func (h *Handler) TopProducts(ctx context.Context) (string, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT p.name, SUM(oi.quantity) AS sold,
		       COALESCE(SUM(oi.quantity * oi.price), 0) AS revenue
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		GROUP BY p.id
		ORDER BY sold DESC, revenue DESC
		LIMIT 5
	`)
	if err != nil {
		return "", fmt.Errorf("query top products: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	rank := 0
	for rows.Next() {
		var name string
		var sold int
		var revenue float64
		if err := rows.Scan(&name, &sold, &revenue); err != nil {
			return "", fmt.Errorf("scan product: %w", err)
		}
		if rank == 0 {
			b.WriteString("**Top products by quantity sold:**\n")
		}
		rank++
		fmt.Fprintf(&b, "%d. %s: %d sold, %s\n", rank, name, sold, erp.Money(revenue))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if rank == 0 {
		return "No sales data to report on yet.", nil
	}
	return b.String(), nil
}
