package finance

import (
	"context"

	"github.com/heliosdynamics/helios/internal/tools"
)

// Tools exposes the finance operations to the reasoning loop.
func (h *Handler) Tools() []*tools.Tool {
	return []*tools.Tool{
		{
			Name:        "get_invoices",
			Description: "Summarize invoices by status with counts and totals",
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.InvoicesSummary(ctx)
			},
		},
		{
			Name:        "get_payments",
			Description: "Summarize payments received and recent payment activity",
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.PaymentsSummary(ctx)
			},
		},
		{
			Name:        "get_revenue",
			Description: "Report collected versus outstanding revenue",
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.RevenueSummary(ctx)
			},
		},
	}
}
