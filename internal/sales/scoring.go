package sales

import (
	"context"
	"fmt"
	"strings"
)

// Scoring signals. A lead starts at the neutral midpoint and moves on
// intent keywords in its message and the kind of email domain it came
// from. Scores are clamped to 1..10.
const (
	scoreBase           = 5.0
	scoreKeywordBonus   = 0.8
	scorePersonalDomain = -0.5
	scoreBusinessDomain = 1.0
	scoreMin            = 1.0
	scoreMax            = 10.0
)

var intentKeywords = []string{
	"urgent", "asap", "interested", "buy", "purchase", "demo", "immediately",
}

var personalDomains = map[string]bool{
	"gmail.com":   true,
	"hotmail.com": true,
	"yahoo.com":   true,
}

// scoreLead computes a 1..10 score from the lead's message and contact
// email.
func scoreLead(message, email string) float64 {
	score := scoreBase

	lower := strings.ToLower(message)
	for _, kw := range intentKeywords {
		if strings.Contains(lower, kw) {
			score += scoreKeywordBonus
		}
	}

	if at := strings.LastIndex(email, "@"); at >= 0 && at < len(email)-1 {
		domain := strings.ToLower(email[at+1:])
		if personalDomains[domain] {
			score += scorePersonalDomain
		} else {
			score += scoreBusinessDomain
		}
	}

	if score < scoreMin {
		score = scoreMin
	}
	if score > scoreMax {
		score = scoreMax
	}
	return score
}

// ScoreLeads scores every unscored lead and writes the result back. This
// is the one write the sales handler performs; the update binds only the
// computed score and the lead's own id.
func (h *Handler) ScoreLeads(ctx context.Context) (string, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, COALESCE(customer_name, ''), COALESCE(contact_email, ''), COALESCE(message, '')
		FROM leads
		WHERE score IS NULL
	`)
	if err != nil {
		return "", fmt.Errorf("query unscored leads: %w", err)
	}

	type scored struct {
		id    int
		name  string
		score float64
	}
	var results []scored
	for rows.Next() {
		var id int
		var name, email, message string
		if err := rows.Scan(&id, &name, &email, &message); err != nil {
			rows.Close()
			return "", fmt.Errorf("scan lead: %w", err)
		}
		results = append(results, scored{id: id, name: name, score: scoreLead(message, email)})
	}
	if err := rows.Close(); err != nil {
		return "", err
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if len(results) == 0 {
		return "All leads are already scored.", nil
	}

	for _, r := range results {
		if _, err := h.db.ExecContext(ctx,
			"UPDATE leads SET score = ? WHERE id = ?", r.score, r.id); err != nil {
			return "", fmt.Errorf("update lead %d: %w", r.id, err)
		}
		h.logger.Debug("scored lead", "lead_id", r.id, "score", r.score)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Scored %d lead(s):**\n", len(results))
	for _, r := range results {
		fmt.Fprintf(&b, "- %s: %.1f/10\n", r.name, r.score)
	}
	return b.String(), nil
}
