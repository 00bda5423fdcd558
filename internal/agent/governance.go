package agent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// approvalRequest describes an operation diverted to the approval queue
// instead of being executed.
type approvalRequest struct {
	module  string
	action  string
	details string
}

var (
	amountPattern = regexp.MustCompile(`\$\s?([0-9][0-9,]*(?:\.[0-9]+)?)`)
	unitsPattern  = regexp.MustCompile(`([0-9][0-9,]*)\s*(?:units?|pcs|pieces|items)\b`)

	// Whole words only: "payments" must not match "pay", "orders" must
	// not match "order". Mutation phrasing puts the verb ahead of the
	// figure ("record a payment of $25,000"); read questions mention the
	// figure after a noun only ("show me all payments above $15,000").
	monetaryVerbPattern = regexp.MustCompile(`\b(pay|record|make|issue|refund|transfer|wire|purchase|spend|send)\b`)
	stockVerbPattern    = regexp.MustCompile(`\b(adjust|restock|reorder|order|add|remove|increase|decrease|write off)\b`)
)

// governanceCheck inspects a request for material operations: money
// movement above the dollar threshold, or stock changes above the unit
// threshold. Matching requests are not executed; they are queued for
// human approval. Read-only questions that merely mention a large figure
// are dispatched normally.
func (a *Agent) governanceCheck(message string) (*approvalRequest, bool) {
	lower := strings.ToLower(message)

	if a.maxAmount > 0 {
		if amount, ok := parseAmount(lower); ok && amount > a.maxAmount && verbBefore(monetaryVerbPattern, lower, amountPattern) {
			action := "record_payment"
			if strings.Contains(lower, "refund") {
				action = "issue_refund"
			}
			return &approvalRequest{
				module:  "finance",
				action:  action,
				details: fmt.Sprintf("amount=$%.2f request=%q", amount, truncateRequest(message)),
			}, true
		}
	}

	if a.maxUnits > 0 {
		if units, ok := parseUnits(lower); ok && units > a.maxUnits && verbBefore(stockVerbPattern, lower, unitsPattern) {
			return &approvalRequest{
				module:  "inventory",
				action:  "adjust_stock",
				details: fmt.Sprintf("quantity=%d request=%q", units, truncateRequest(message)),
			}, true
		}
	}

	return nil, false
}

// verbBefore reports whether verbs matches before the first figure match
// in lower.
func verbBefore(verbs *regexp.Regexp, lower string, figure *regexp.Regexp) bool {
	fig := figure.FindStringIndex(lower)
	if fig == nil {
		return false
	}
	verb := verbs.FindStringIndex(lower)
	return verb != nil && verb[0] < fig[0]
}

// divertToApproval queues the operation and acknowledges with the
// request id so the user can track it.
func (a *Agent) divertToApproval(ctx context.Context, userID string, req *approvalRequest) string {
	approval, err := a.store.SubmitApproval(ctx, req.module, req.action, userID, req.details)
	if err != nil {
		a.logger.Error("approval submission failed", "error", err)
		return "That operation needs approval, but I couldn't queue the request. Please try again."
	}

	a.logger.Info("operation diverted to approval queue",
		"approval_id", approval.ID,
		"module", req.module,
		"action", req.action,
	)
	return fmt.Sprintf(
		"This operation exceeds my approval limit, so I've queued it for review instead of executing it. "+
			"Approval request ID: %s. A manager can approve or reject it from the approvals queue.",
		approval.ID)
}

// parseAmount extracts the first dollar amount in the text.
func parseAmount(s string) (float64, bool) {
	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseUnits extracts the first "<n> units" style quantity in the text.
func parseUnits(s string) (int, bool) {
	m := unitsPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return v, true
}

func truncateRequest(s string) string {
	if len(s) <= 120 {
		return s
	}
	return s[:120] + "..."
}
