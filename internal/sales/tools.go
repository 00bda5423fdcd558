package sales

import (
	"context"

	"github.com/heliosdynamics/helios/internal/tools"
)

// Tools exposes the sales operations to the reasoning loop.
func (h *Handler) Tools() []*tools.Tool {
	return []*tools.Tool{
		{
			Name:        "get_customers",
			Description: "Summarize customers with their order counts and total spending",
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.CustomersSummary(ctx)
			},
		},
		{
			Name:        "search_customers",
			Description: "Search customers by name or email",
			Parameters:  map[string]string{"term": "name or email fragment, at least 3 characters"},
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.SearchCustomers(ctx, input)
			},
		},
		{
			Name:        "get_top_customers",
			Description: "List the highest-spending customers",
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.TopCustomers(ctx)
			},
		},
		{
			Name:        "get_orders",
			Description: "Summarize orders and recent order activity",
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.OrdersSummary(ctx)
			},
		},
		{
			Name:        "get_leads",
			Description: "List recent sales leads with status and score",
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.LeadsSummary(ctx)
			},
		},
		{
			Name:        "score_leads",
			Description: "Score all unscored leads from their message and contact details",
			Handler: func(ctx context.Context, input string) (string, error) {
				return h.ScoreLeads(ctx)
			},
		},
	}
}
