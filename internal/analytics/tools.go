package analytics

import (
	"context"

	"github.com/heliosdynamics/helios/internal/tools"
)

// Tools exposes the analytics operations to the reasoning loop.
func (h *Handler) Tools() []*tools.Tool {
	return []*tools.Tool{
		{
			Name:        "get_revenue_by_month",
			Description: "Report order revenue grouped by calendar month",
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.RevenueByMonth(ctx)
			},
		},
		{
			Name:        "get_order_stats",
			Description: "Report order count with average, smallest, and largest value",
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.OrderStats(ctx)
			},
		},
		{
			Name:        "get_top_products",
			Description: "List the best-selling products by quantity sold",
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.TopProducts(ctx)
			},
		},
	}
}
