package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/heliosdynamics/helios/internal/buildinfo"
	"github.com/heliosdynamics/helios/internal/tools"
)

// routerTools are the operations the router itself provides, independent
// of any business domain.
func (a *Agent) routerTools() []*tools.Tool {
	return []*tools.Tool{
		{
			Name:        "system_info",
			Description: "Report assistant version and uptime",
			Handler: func(ctx context.Context, input string) (string, error) {
				return buildinfo.String(), nil
			},
		},
		{
			Name:        "get_pending_approvals",
			Description: "List operations waiting for human approval",
			Handler: func(ctx context.Context, input string) (string, error) {
				return a.pendingApprovalsSummary(ctx)
			},
		},
		{
			Name:        "submit_for_approval",
			Description: "Queue a sensitive operation for human approval. Input: module/action followed by details",
			Parameters: map[string]string{
				"input": "module/action, then a free-text description of the operation",
			},
			Handler: func(ctx context.Context, input string) (string, error) {
				return a.submitForApproval(ctx, input)
			},
		},
	}
}

// submitForApproval parses "module/action details" and queues the
// operation. The reasoning loop calls this when it recognizes a request
// it is not allowed to execute directly.
func (a *Agent) submitForApproval(ctx context.Context, input string) (string, error) {
	target, details, _ := strings.Cut(strings.TrimSpace(input), " ")
	module, action, ok := strings.Cut(target, "/")
	if !ok || module == "" || action == "" {
		return "", fmt.Errorf("expected input of the form module/action details, got %q", input)
	}

	approval, err := a.store.SubmitApproval(ctx, module, action, agentType, strings.TrimSpace(details))
	if err != nil {
		return "", fmt.Errorf("submit approval: %w", err)
	}
	return fmt.Sprintf("Queued %s/%s for approval. Approval request ID: %s.", module, action, approval.ID), nil
}

func (a *Agent) pendingApprovalsSummary(ctx context.Context) (string, error) {
	pending, err := a.store.PendingApprovals(ctx)
	if err != nil {
		return "", fmt.Errorf("list pending approvals: %w", err)
	}
	if len(pending) == 0 {
		return "There are no operations waiting for approval.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%d operation(s) waiting for approval:**\n", len(pending))
	for _, p := range pending {
		fmt.Fprintf(&b, "- %s: %s/%s requested by %s", p.ID, p.Module, p.Action, p.RequestedBy)
		if p.Details != "" {
			fmt.Fprintf(&b, " (%s)", p.Details)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
