package inventory

import (
	"context"

	"github.com/heliosdynamics/helios/internal/tools"
)

// Tools exposes the inventory operations to the reasoning loop.
func (h *Handler) Tools() []*tools.Tool {
	return []*tools.Tool{
		{
			Name:        "get_products",
			Description: "List the product catalog with prices and stock levels",
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.ProductsSummary(ctx)
			},
		},
		{
			Name:        "get_stock",
			Description: "Report total units on hand and inventory value",
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.StockSummary(ctx)
			},
		},
		{
			Name:        "get_low_stock",
			Description: "List products below the reorder threshold",
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.LowStock(ctx)
			},
		},
	}
}
