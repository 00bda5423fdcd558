package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIDefaultModel(t *testing.T) {
	c := NewOpenAIClient("key", "", "")
	if c.model != "gpt-4o-mini" {
		t.Errorf("default model = %q, want gpt-4o-mini", c.model)
	}

	c = NewOpenAIClient("key", "", "gpt-4o")
	if c.model != "gpt-4o" {
		t.Errorf("explicit model = %q, want gpt-4o", c.model)
	}
}

func TestOpenAICompleteSendsConfiguredModel(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotModel = req.Model
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenAIClient("key", srv.URL, "")
	out, err := c.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "ok" {
		t.Errorf("response = %q", out)
	}
	if gotModel != "gpt-4o-mini" {
		t.Errorf("request model = %q, want gpt-4o-mini", gotModel)
	}
}
