package classify

import "testing"

func TestClassifySingleDomainKeywords(t *testing.T) {
	c := New(DomainUnknown)

	tests := []struct {
		input string
		want  Domain
	}{
		{"show me all customers", DomainSales},
		{"list unpaid invoices", DomainFinance},
		{"what is our current stock level", DomainInventory},
		{"generate the quarterly report", DomainAnalytics},
	}

	for _, tt := range tests {
		got := c.Classify(tt.input)
		if got.Domain != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.input, got.Domain, tt.want)
		}
		if got.Confidence < 1 {
			t.Errorf("Classify(%q) confidence = %d, want >= 1", tt.input, got.Confidence)
		}
	}
}

func TestClassifyTopCustomersByRevenue(t *testing.T) {
	c := New(DomainUnknown)

	// "customer" matches sales and "revenue" matches finance; the tie
	// resolves to sales because it comes first in the domain order.
	got := c.Classify("show me top customers by revenue")
	if got.Domain != DomainSales {
		t.Errorf("domain = %s, want sales", got.Domain)
	}
	if got.Confidence != 1 {
		t.Errorf("confidence = %d, want 1", got.Confidence)
	}
}

func TestClassifyNoMatchReturnsFallback(t *testing.T) {
	c := New(DomainSales)

	got := c.Classify("hello there")
	if got.Domain != DomainSales {
		t.Errorf("domain = %s, want configured fallback sales", got.Domain)
	}
	if got.Confidence != 0 {
		t.Errorf("confidence = %d, want 0", got.Confidence)
	}
}

func TestClassifyNoMatchNoFallback(t *testing.T) {
	c := New("")

	got := c.Classify("completely unrelated text")
	if got.Domain != DomainUnknown {
		t.Errorf("domain = %s, want unknown", got.Domain)
	}
	if got.Confidence != 0 {
		t.Errorf("confidence = %d, want 0", got.Confidence)
	}
}

func TestClassifyTieBreakIsFirstDomainInOrder(t *testing.T) {
	c := New(DomainUnknown)

	// One keyword from each of sales ("order") and inventory ("stock"):
	// both score 1, and sales precedes inventory in the fixed order.
	got := c.Classify("order more stock")
	if got.Domain != DomainSales {
		t.Errorf("domain = %s, want sales (tie-break by domain order)", got.Domain)
	}
}

func TestClassifyCountsMultipleKeywords(t *testing.T) {
	c := New(DomainUnknown)

	got := c.Classify("invoice and payment status for the budget review")
	if got.Domain != DomainFinance {
		t.Errorf("domain = %s, want finance", got.Domain)
	}
	if got.Confidence != 3 {
		t.Errorf("confidence = %d, want 3 (invoice, payment, budget)", got.Confidence)
	}
}
