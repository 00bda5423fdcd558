// Package inventory handles product and stock requests.
package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heliosdynamics/helios/internal/erp"
)

// LowStockThreshold is the unit count at which a product is flagged for
// reordering.
const LowStockThreshold = 20

// Handler answers inventory-domain requests. All operations are
// read-only; stock adjustments go through the ERP warehouse system.
type Handler struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewHandler creates an inventory handler.
func NewHandler(logger *slog.Logger, db *sql.DB) *Handler {
	return &Handler{db: db, logger: logger}
}

// Handle routes a free-text inventory request to one of the fixed operations.
func (h *Handler) Handle(ctx context.Context, request string) (string, error) {
	lower := strings.ToLower(request)

	switch {
	case strings.Contains(lower, "low") || strings.Contains(lower, "reorder") || strings.Contains(lower, "running out"):
		return h.LowStock(ctx)
	case strings.Contains(lower, "stock") || strings.Contains(lower, "warehouse") || strings.Contains(lower, "supply"):
		return h.StockSummary(ctx)
	case strings.Contains(lower, "product") || strings.Contains(lower, "item"):
		return h.ProductsSummary(ctx)
	default:
		return "I can help you with products, stock levels, and low-stock alerts. What would you like to know?", nil
	}
}

// ProductsSummary lists the catalog with price and stock.
func (h *Handler) ProductsSummary(ctx context.Context) (string, error) {
	count, err := erp.Count(ctx, h.db, "SELECT COUNT(*) FROM products")
	if err != nil {
		return "", fmt.Errorf("count products: %w", err)
	}
	if count == 0 {
		return "No products found.", nil
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT COALESCE(sku, ''), name, price, stock_quantity
		FROM products
		ORDER BY name
		LIMIT 20
	`)
	if err != nil {
		return "", fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	b.WriteString("**Product Catalog:**\n")
	fmt.Fprintf(&b, "Total products: %d\n\n", count)
	for rows.Next() {
		var sku, name string
		var price float64
		var stock int
		if err := rows.Scan(&sku, &name, &price, &stock); err != nil {
			return "", fmt.Errorf("scan product: %w", err)
		}
		fmt.Fprintf(&b, "- %s (%s): %s, %d in stock\n", name, sku, erp.Money(price), stock)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// StockSummary reports total units on hand and inventory value.
func (h *Handler) StockSummary(ctx context.Context) (string, error) {
	units, err := erp.Count(ctx, h.db, "SELECT COALESCE(SUM(stock_quantity), 0) FROM products")
	if err != nil {
		return "", fmt.Errorf("sum stock: %w", err)
	}
	value, err := erp.Sum(ctx, h.db, "SELECT COALESCE(SUM(price * stock_quantity), 0) FROM products")
	if err != nil {
		return "", fmt.Errorf("sum stock value: %w", err)
	}
	low, err := erp.Count(ctx, h.db,
		"SELECT COUNT(*) FROM products WHERE stock_quantity < ?", LowStockThreshold)
	if err != nil {
		return "", fmt.Errorf("count low stock: %w", err)
	}

	var b strings.Builder
	b.WriteString("**Stock Summary:**\n")
	fmt.Fprintf(&b, "Units on hand: %d\n", units)
	fmt.Fprintf(&b, "Inventory value: %s\n", erp.Money(value))
	fmt.Fprintf(&b, "Products below %d units: %d\n", LowStockThreshold, low)
	return b.String(), nil
}

// LowStock lists products below the reorder threshold.
func (h *Handler) LowStock(ctx context.Context) (string, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT COALESCE(sku, ''), name, stock_quantity
		FROM products
		WHERE stock_quantity < ?
		ORDER BY stock_quantity
	`, LowStockThreshold)
	if err != nil {
		return "", fmt.Errorf("query low stock: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	found := 0
	for rows.Next() {
		var sku, name string
		var stock int
		if err := rows.Scan(&sku, &name, &stock); err != nil {
			return "", fmt.Errorf("scan product: %w", err)
		}
		if found == 0 {
			fmt.Fprintf(&b, "**Low stock (below %d units):**\n", LowStockThreshold)
		}
		found++
		fmt.Fprintf(&b, "- %s (%s): %d left\n", name, sku, stock)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if found == 0 {
		return fmt.Sprintf("No products are below %d units. Stock levels look healthy.", LowStockThreshold), nil
	}
	return b.String(), nil
}
