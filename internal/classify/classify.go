// Package classify scores free-text requests against per-domain keyword sets.
package classify

import "strings"

// Domain is a business area with its own handler and keyword set.
type Domain string

// Known domains. DomainUnknown is returned when no keyword matches and no
// fallback is configured.
const (
	DomainSales     Domain = "sales"
	DomainFinance   Domain = "finance"
	DomainInventory Domain = "inventory"
	DomainAnalytics Domain = "analytics"
	DomainUnknown   Domain = "unknown"
)

// Result is the outcome of classifying one request. Confidence is the
// number of keyword matches; zero means the fallback was used.
type Result struct {
	Domain     Domain `json:"domain"`
	Confidence int    `json:"confidence"`
}

// Classifier is the deterministic keyword strategy. The domain order is
// fixed: on tied scores the earliest domain wins, which is arbitrary but
// reproducible.
type Classifier struct {
	order    []Domain
	keywords map[Domain][]string
	fallback Domain
}

// defaultKeywords maps each domain to the substrings that signal it.
func defaultKeywords() map[Domain][]string {
	return map[Domain][]string{
		DomainSales:     {"customer", "lead", "prospect", "sale", "order", "crm", "contact", "deal", "client"},
		DomainFinance:   {"invoice", "payment", "finance", "accounting", "revenue", "expense", "budget", "financial", "money", "cost"},
		DomainInventory: {"stock", "inventory", "product", "warehouse", "supply", "procurement", "vendor", "item"},
		DomainAnalytics: {"report", "analytics", "dashboard", "metrics", "analysis", "trend", "chart", "insight"},
	}
}

// New creates a keyword classifier. fallback is the domain returned when
// nothing matches; pass DomainUnknown (or "") for no fallback.
func New(fallback Domain) *Classifier {
	if fallback == "" {
		fallback = DomainUnknown
	}
	return &Classifier{
		order:    []Domain{DomainSales, DomainFinance, DomainInventory, DomainAnalytics},
		keywords: defaultKeywords(),
		fallback: fallback,
	}
}

// Classify scores the input against every domain's keyword set. Score is
// the count of keywords present as substrings of the lowercased input.
func (c *Classifier) Classify(input string) Result {
	lower := strings.ToLower(input)

	best := Result{Domain: c.fallback, Confidence: 0}
	for _, d := range c.order {
		score := 0
		for _, kw := range c.keywords[d] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		// Strictly greater: ties resolve to the earliest domain.
		if score > best.Confidence {
			best = Result{Domain: d, Confidence: score}
		}
	}

	return best
}

// Domains returns the classifier's domain order.
func (c *Classifier) Domains() []Domain {
	out := make([]Domain, len(c.order))
	copy(out, c.order)
	return out
}
