package web

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/heliosdynamics/helios/internal/memory"
)

func setupTestWeb(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := memory.NewStore(db)
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	mux := http.NewServeMux()
	RegisterRoutes(mux, store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, store
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestDashboardEmpty(t *testing.T) {
	ts, _ := setupTestWeb(t)

	code, body := getBody(t, ts.URL+"/")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !strings.Contains(body, "No conversations yet") {
		t.Errorf("missing empty state:\n%s", body)
	}
	if !strings.Contains(body, "Nothing is waiting for approval") {
		t.Errorf("missing approval empty state:\n%s", body)
	}
}

func TestDashboardListsData(t *testing.T) {
	ts, store := setupTestWeb(t)
	ctx := context.Background()

	if _, err := store.GetOrCreateConversation(ctx, "u1", "s1", "router"); err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if _, err := store.SubmitApproval(ctx, "finance", "record_payment", "u1", "amount=$25000.00"); err != nil {
		t.Fatalf("approval: %v", err)
	}

	code, body := getBody(t, ts.URL+"/")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	for _, want := range []string{"u1", "s1", "record_payment", "amount=$25000.00", "transcript"} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in dashboard:\n%s", want, body)
		}
	}
}

func TestConversationTranscriptRendersMarkdown(t *testing.T) {
	ts, store := setupTestWeb(t)
	ctx := context.Background()

	conv, err := store.GetOrCreateConversation(ctx, "u1", "s1", "router")
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	store.AddMessage(ctx, conv.ID, memory.RoleHuman, "show customers")
	store.AddMessage(ctx, conv.ID, memory.RoleAI, "**Customer Summary:**\n- Acme Corp")

	code, body := getBody(t, ts.URL+"/conversations/"+conv.ID)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !strings.Contains(body, "<strong>Customer Summary:</strong>") {
		t.Errorf("markdown not rendered:\n%s", body)
	}
	if !strings.Contains(body, "show customers") {
		t.Errorf("human message missing:\n%s", body)
	}
}

func TestConversationEscapesScriptTags(t *testing.T) {
	ts, store := setupTestWeb(t)
	ctx := context.Background()

	conv, _ := store.GetOrCreateConversation(ctx, "u1", "s1", "router")
	store.AddMessage(ctx, conv.ID, memory.RoleHuman, "<script>alert(1)</script>")

	code, body := getBody(t, ts.URL+"/conversations/"+conv.ID)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Errorf("raw script tag leaked into page:\n%s", body)
	}
}

func TestConversationNotFound(t *testing.T) {
	ts, _ := setupTestWeb(t)

	code, _ := getBody(t, ts.URL+"/conversations/no-such-id")
	if code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}
