package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus is the lifecycle state of an approval request.
type ApprovalStatus string

// Approval states. Approved and rejected are terminal.
const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ErrNotPending is returned when approving or rejecting a request that
// is not in the pending state (already decided, or nonexistent).
var ErrNotPending = errors.New("approval request is not pending")

// Approval is a request for human review of a sensitive operation.
// Status changes only through Approve and Reject.
type Approval struct {
	ID          string         `json:"id"`
	Module      string         `json:"module"`
	Action      string         `json:"action"`
	Status      ApprovalStatus `json:"status"`
	RequestedBy string         `json:"requested_by"`
	ApprovedBy  string         `json:"approved_by,omitempty"`
	Details     string         `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// SubmitApproval creates a pending approval request and returns it.
func (s *Store) SubmitApproval(ctx context.Context, module, action, requestedBy, details string) (*Approval, error) {
	a := &Approval{
		ID:          uuid.New().String(),
		Module:      module,
		Action:      action,
		Status:      ApprovalPending,
		RequestedBy: requestedBy,
		Details:     details,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO approvals (id, module, action, status, requested_by, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Module, a.Action, a.Status, a.RequestedBy, a.Details, a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("submit approval: %w", err)
	}

	return a, nil
}

// GetApproval fetches one approval request by id.
func (s *Store) GetApproval(ctx context.Context, id string) (*Approval, error) {
	a := &Approval{}
	var approvedBy, details sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, module, action, status, requested_by, approved_by, details, created_at
		FROM approvals WHERE id = ?
	`, id).Scan(&a.ID, &a.Module, &a.Action, &a.Status, &a.RequestedBy, &approvedBy, &details, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get approval: %w", err)
	}
	a.ApprovedBy = approvedBy.String
	a.Details = details.String
	return a, nil
}

// PendingApprovals lists requests awaiting review, newest first.
func (s *Store) PendingApprovals(ctx context.Context) ([]Approval, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, module, action, status, requested_by, COALESCE(approved_by, ''), COALESCE(details, ''), created_at
		FROM approvals
		WHERE status = ?
		ORDER BY created_at DESC, rowid DESC
	`, ApprovalPending)
	if err != nil {
		return nil, fmt.Errorf("query pending approvals: %w", err)
	}
	defer rows.Close()

	var approvals []Approval
	for rows.Next() {
		var a Approval
		if err := rows.Scan(&a.ID, &a.Module, &a.Action, &a.Status, &a.RequestedBy, &a.ApprovedBy, &a.Details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		approvals = append(approvals, a)
	}
	return approvals, rows.Err()
}

// Approve transitions a pending request to approved. Deciding a request
// that is not pending returns ErrNotPending; terminal states never change.
func (s *Store) Approve(ctx context.Context, id, approvedBy string) error {
	return s.decide(ctx, id, approvedBy, ApprovalApproved)
}

// Reject transitions a pending request to rejected.
func (s *Store) Reject(ctx context.Context, id, approvedBy string) error {
	return s.decide(ctx, id, approvedBy, ApprovalRejected)
}

func (s *Store) decide(ctx context.Context, id, approvedBy string, status ApprovalStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE approvals SET status = ?, approved_by = ?
		WHERE id = ? AND status = ?
	`, status, approvedBy, id, ApprovalPending)
	if err != nil {
		return fmt.Errorf("decide approval: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("approval %s: %w", id, ErrNotPending)
	}
	return nil
}
