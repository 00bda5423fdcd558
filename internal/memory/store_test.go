package memory

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestGetOrCreateConversationIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.GetOrCreateConversation(ctx, "u1", "s1", "router")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := store.GetOrCreateConversation(ctx, "u1", "s1", "router")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("conversation ids differ: %s vs %s", first.ID, second.ID)
	}
}

func TestGetOrCreateConversationDistinctSessions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a, _ := store.GetOrCreateConversation(ctx, "u1", "s1", "router")
	b, _ := store.GetOrCreateConversation(ctx, "u1", "s2", "router")
	c, _ := store.GetOrCreateConversation(ctx, "u2", "s1", "router")

	if a.ID == b.ID || a.ID == c.ID || b.ID == c.ID {
		t.Errorf("expected three distinct conversations, got %s %s %s", a.ID, b.ID, c.ID)
	}
}

func TestHistoryChronologicalOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	conv, err := store.GetOrCreateConversation(ctx, "u1", "s1", "router")
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}

	// Inserted in quick succession; timestamps may collide, and the
	// rowid tiebreak must keep insertion order regardless.
	contents := []string{"show customers", "Customer Summary: 3", "show orders", "Orders Summary: 0"}
	roles := []Role{RoleHuman, RoleAI, RoleHuman, RoleAI}
	for i := range contents {
		if _, err := store.AddMessage(ctx, conv.ID, roles[i], contents[i]); err != nil {
			t.Fatalf("add message %d: %v", i, err)
		}
	}

	history, err := store.History(ctx, conv.ID, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("history length = %d, want 4", len(history))
	}

	for i, m := range history {
		if m.Content != contents[i] {
			t.Errorf("history[%d] = %q, want %q", i, m.Content, contents[i])
		}
		if m.Role != roles[i] {
			t.Errorf("history[%d] role = %q, want %q", i, m.Role, roles[i])
		}
	}
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.Before(history[i-1].Timestamp) {
			t.Errorf("timestamps not ascending at index %d", i)
		}
	}
}

func TestHistoryLimitReturnsMostRecent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	conv, _ := store.GetOrCreateConversation(ctx, "u1", "s1", "router")
	for _, c := range []string{"one", "two", "three", "four"} {
		store.AddMessage(ctx, conv.ID, RoleHuman, c)
	}

	history, err := store.History(ctx, conv.ID, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Content != "three" || history[1].Content != "four" {
		t.Errorf("limited history = [%q %q], want the two newest oldest-first",
			history[0].Content, history[1].Content)
	}
}

func TestHistoryEmptyConversation(t *testing.T) {
	store := setupTestStore(t)

	history, err := store.History(context.Background(), "no-such-conversation", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history length = %d, want 0", len(history))
	}
}

func TestLogToolCallTruncatesInput(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'x'
	}

	if err := store.LogToolCall(ctx, "sales", "search_customers", string(long), "ok", nil); err != nil {
		t.Fatalf("log: %v", err)
	}

	calls, err := store.ToolCalls(ctx, "search_customers")
	if err != nil {
		t.Fatalf("tool calls: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if len(calls[0].InputData) != maxLoggedInput {
		t.Errorf("input length = %d, want %d", len(calls[0].InputData), maxLoggedInput)
	}
}

func TestLogToolCallRecordsError(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	execErr := errors.New("no such table: custmers")
	if err := store.LogToolCall(ctx, "sales", "get_customers", "all", "", execErr); err != nil {
		t.Fatalf("log: %v", err)
	}

	calls, _ := store.ToolCalls(ctx, "get_customers")
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0].Error != execErr.Error() {
		t.Errorf("error = %q, want %q", calls[0].Error, execErr.Error())
	}
}
