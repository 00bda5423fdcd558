// Package sales handles customer, order, and lead requests.
package sales

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heliosdynamics/helios/internal/erp"
)

// Handler answers sales-domain requests against the ERP datastore.
// All operations are read-only except lead scoring, which updates only
// the leads.score column with computed, clamped values.
type Handler struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewHandler creates a sales handler.
func NewHandler(logger *slog.Logger, db *sql.DB) *Handler {
	return &Handler{db: db, logger: logger}
}

// mutationGuidance is returned for requests that would change customer or
// order data. Handlers are read/advisory only.
const mutationGuidance = "I can't modify records directly. To add a customer I need: name, email, and phone. " +
	"Please submit the change through the ERP interface, or ask me to summarize existing data."

// Handle routes a free-text sales request to one of the fixed operations.
func (h *Handler) Handle(ctx context.Context, request string) (string, error) {
	lower := strings.ToLower(request)

	switch {
	// Lead scoring is the one permitted write, so it is matched ahead of
	// the mutation guard: "update lead scores" must reach it.
	case strings.Contains(lower, "score") && strings.Contains(lower, "lead"):
		return h.ScoreLeads(ctx)
	case isMutation(lower):
		return mutationGuidance, nil
	case strings.Contains(lower, "lead"):
		return h.LeadsSummary(ctx)
	case strings.Contains(lower, "search") || strings.Contains(lower, "find"):
		return h.SearchCustomers(ctx, searchTerm(request))
	case strings.Contains(lower, "top") && (strings.Contains(lower, "customer") || strings.Contains(lower, "client")):
		return h.TopCustomers(ctx)
	case strings.Contains(lower, "customer") || strings.Contains(lower, "client"):
		return h.CustomersSummary(ctx)
	case strings.Contains(lower, "order") || strings.Contains(lower, "sale"):
		return h.OrdersSummary(ctx)
	default:
		return "I can help you with customers, orders, and leads. What would you like to know?", nil
	}
}

// isMutation detects requests that would write business data.
func isMutation(lower string) bool {
	for _, verb := range []string{"add ", "create ", "update ", "delete ", "remove "} {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

// searchTerm extracts the search argument: everything after the routing
// verb. Crude but predictable for "search customers <term>" phrasings.
func searchTerm(request string) string {
	words := strings.Fields(request)
	for i, w := range words {
		lw := strings.ToLower(w)
		if lw == "search" || lw == "find" {
			rest := words[i+1:]
			// Drop the noun if present: "search customers acme".
			if len(rest) > 0 {
				first := strings.ToLower(rest[0])
				if strings.HasPrefix(first, "customer") || strings.HasPrefix(first, "client") || first == "for" {
					rest = rest[1:]
				}
			}
			return strings.Join(rest, " ")
		}
	}
	return ""
}

// CustomersSummary lists customer count and recent customers with their
// order history. Customers without orders show a total spent of $0.00.
func (h *Handler) CustomersSummary(ctx context.Context) (string, error) {
	count, err := erp.Count(ctx, h.db, "SELECT COUNT(*) FROM customers")
	if err != nil {
		return "", fmt.Errorf("count customers: %w", err)
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT c.name, COALESCE(c.email, ''),
		       COUNT(o.id) AS order_count,
		       COALESCE(SUM(o.total), 0) AS total_spent
		FROM customers c
		LEFT JOIN orders o ON c.id = o.customer_id
		GROUP BY c.id
		ORDER BY c.created_at DESC
		LIMIT 10
	`)
	if err != nil {
		return "", fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	b.WriteString("**Customer Summary:**\n")
	fmt.Fprintf(&b, "Total customers: %d\n\n", count)
	b.WriteString("Recent customers:\n")

	for rows.Next() {
		var name, email string
		var orderCount int
		var totalSpent float64
		if err := rows.Scan(&name, &email, &orderCount, &totalSpent); err != nil {
			return "", fmt.Errorf("scan customer: %w", err)
		}
		fmt.Fprintf(&b, "- %s (%s): %d orders, total spent %s\n",
			name, email, orderCount, erp.Money(totalSpent))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	return b.String(), nil
}

// SearchCustomers finds customers by name or email. The term is bound as
// a query parameter; it is never interpolated into the SQL text.
func (h *Handler) SearchCustomers(ctx context.Context, term string) (string, error) {
	if len(strings.TrimSpace(term)) < 3 {
		return "Please provide a search term with at least 3 characters.", nil
	}

	pattern := "%" + term + "%"
	rows, err := h.db.QueryContext(ctx, `
		SELECT c.name, COALESCE(c.email, ''),
		       COUNT(o.id) AS order_count,
		       COALESCE(SUM(o.total), 0) AS total_spent
		FROM customers c
		LEFT JOIN orders o ON c.id = o.customer_id
		WHERE c.name LIKE ? OR c.email LIKE ?
		GROUP BY c.id
		ORDER BY c.name
		LIMIT 5
	`, pattern, pattern)
	if err != nil {
		return "", fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	found := 0
	for rows.Next() {
		var name, email string
		var orderCount int
		var totalSpent float64
		if err := rows.Scan(&name, &email, &orderCount, &totalSpent); err != nil {
			return "", fmt.Errorf("scan customer: %w", err)
		}
		if found == 0 {
			fmt.Fprintf(&b, "**Search results for %q:**\n", term)
		}
		found++
		fmt.Fprintf(&b, "- %s (%s): %d orders, total spent %s\n",
			name, email, orderCount, erp.Money(totalSpent))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if found == 0 {
		return fmt.Sprintf("No customers found matching %q.", term), nil
	}
	return b.String(), nil
}

// TopCustomers lists the five highest-spending customers.
func (h *Handler) TopCustomers(ctx context.Context) (string, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT c.name, COALESCE(c.email, ''),
		       COUNT(o.id) AS order_count,
		       COALESCE(SUM(o.total), 0) AS total_spent
		FROM customers c
		LEFT JOIN orders o ON c.id = o.customer_id
		GROUP BY c.id
		ORDER BY total_spent DESC, order_count DESC
		LIMIT 5
	`)
	if err != nil {
		return "", fmt.Errorf("query top customers: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	b.WriteString("**Top customers by spending:**\n")
	rank := 0
	for rows.Next() {
		var name, email string
		var orderCount int
		var totalSpent float64
		if err := rows.Scan(&name, &email, &orderCount, &totalSpent); err != nil {
			return "", fmt.Errorf("scan customer: %w", err)
		}
		rank++
		fmt.Fprintf(&b, "%d. %s (%s): %d orders, %s\n",
			rank, name, email, orderCount, erp.Money(totalSpent))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if rank == 0 {
		return "No customers found.", nil
	}
	return b.String(), nil
}

// OrdersSummary reports order totals and the most recent orders.
func (h *Handler) OrdersSummary(ctx context.Context) (string, error) {
	totalOrders, err := erp.Count(ctx, h.db, "SELECT COUNT(*) FROM orders")
	if err != nil {
		return "", fmt.Errorf("count orders: %w", err)
	}
	totalRevenue, err := erp.Sum(ctx, h.db, "SELECT COALESCE(SUM(total), 0) FROM orders")
	if err != nil {
		return "", fmt.Errorf("sum orders: %w", err)
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT o.id, c.name, o.total, COALESCE(o.status, '')
		FROM orders o
		JOIN customers c ON o.customer_id = c.id
		ORDER BY o.created_at DESC
		LIMIT 5
	`)
	if err != nil {
		return "", fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	b.WriteString("**Orders Summary:**\n")
	fmt.Fprintf(&b, "Total orders: %d\n", totalOrders)
	fmt.Fprintf(&b, "Total revenue: %s\n\n", erp.Money(totalRevenue))
	b.WriteString("Recent orders:\n")

	for rows.Next() {
		var id int
		var name, status string
		var total float64
		if err := rows.Scan(&id, &name, &total, &status); err != nil {
			return "", fmt.Errorf("scan order: %w", err)
		}
		fmt.Fprintf(&b, "- Order #%d: %s, %s (%s)\n", id, name, erp.Money(total), status)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	return b.String(), nil
}

// LeadsSummary lists recent leads with status and score.
func (h *Handler) LeadsSummary(ctx context.Context) (string, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT COALESCE(customer_name, ''), COALESCE(contact_email, ''),
		       score, COALESCE(status, ''), COALESCE(message, '')
		FROM leads
		ORDER BY created_at DESC
		LIMIT 10
	`)
	if err != nil {
		return "", fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	found := 0
	for rows.Next() {
		var name, email, status, message string
		var score sql.NullFloat64
		if err := rows.Scan(&name, &email, &score, &status, &message); err != nil {
			return "", fmt.Errorf("scan lead: %w", err)
		}
		if found == 0 {
			b.WriteString("**Recent Leads:**\n")
		}
		found++
		fmt.Fprintf(&b, "- %s (%s), status %s", name, email, status)
		if score.Valid {
			fmt.Fprintf(&b, ", score %.1f/10", score.Float64)
		}
		b.WriteString("\n")
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if found == 0 {
		return "No leads found.", nil
	}
	return b.String(), nil
}
