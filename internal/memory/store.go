// Package memory persists conversational state: conversations, messages,
// tool-call audit records, and approval requests.
//
// The store owns these four tables and initializes them on startup
// (create-if-not-exists, no destructive migration). All other tables in
// the database belong to the ERP system and are never touched here.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// Conversation is a logical session of exchanged messages, identified by
// (user_id, session_id). Conversations are append-only and never deleted.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	AgentType string    `json:"agent_type"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one utterance within a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

// ToolCall is an append-only audit record of one tool invocation.
type ToolCall struct {
	ID        string    `json:"id"`
	AgentType string    `json:"agent_type"`
	ToolName  string    `json:"tool_name"`
	InputData string    `json:"input_data"`
	OutputData string   `json:"output_data"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// maxLoggedInput bounds how much tool input is kept in the audit log.
const maxLoggedInput = 1000

// Store is a SQLite-backed conversation state store.
type Store struct {
	db *sql.DB
}

// NewStore creates the store and initializes its tables.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate memory tables: %w", err)
	}
	return s, nil
}

// migrate creates the memory schema. The unique index on
// (user_id, session_id) is what makes get-or-create safe under
// concurrent first turns of the same session.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		agent_type TEXT NOT NULL DEFAULT 'router',
		created_at TIMESTAMP NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_conversations_session
		ON conversations(user_id, session_id);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id)
	);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation
		ON messages(conversation_id, timestamp);

	CREATE TABLE IF NOT EXISTS tool_calls (
		id TEXT PRIMARY KEY,
		agent_type TEXT NOT NULL,
		tool_name TEXT NOT NULL,
		input_data TEXT NOT NULL,
		output_data TEXT,
		error TEXT,
		timestamp TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tool_calls_tool ON tool_calls(tool_name);

	CREATE TABLE IF NOT EXISTS approvals (
		id TEXT PRIMARY KEY,
		module TEXT NOT NULL,
		action TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		requested_by TEXT NOT NULL,
		approved_by TEXT,
		details TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_approvals_status ON approvals(status, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// GetOrCreateConversation returns the conversation for (userID, sessionID),
// creating it on first use. The operation is idempotent: repeated calls
// with the same pair return the same conversation id. Atomicity comes from
// the unique index, not from a read-then-write.
func (s *Store) GetOrCreateConversation(ctx context.Context, userID, sessionID, agentType string) (*Conversation, error) {
	if agentType == "" {
		agentType = "router"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, session_id, agent_type, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, session_id) DO NOTHING
	`, uuid.New().String(), userID, sessionID, agentType, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	conv := &Conversation{}
	err = s.db.QueryRowContext(ctx, `
		SELECT id, user_id, session_id, agent_type, created_at
		FROM conversations
		WHERE user_id = ? AND session_id = ?
	`, userID, sessionID).Scan(&conv.ID, &conv.UserID, &conv.SessionID, &conv.AgentType, &conv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("fetch conversation: %w", err)
	}

	return conv, nil
}

// AddMessage appends a message to a conversation.
func (s *Store) AddMessage(ctx context.Context, conversationID string, role Role, content string) (*Message, error) {
	m := &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Timestamp:      time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.ConversationID, m.Role, m.Content, m.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("add message: %w", err)
	}

	return m, nil
}

// History returns a conversation's messages in chronological order,
// oldest first. Equal timestamps keep insertion order (rowid tiebreak).
// limit > 0 returns only the most recent limit messages, still oldest
// first.
func (s *Store) History(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	query := `
		SELECT id, conversation_id, role, content, timestamp
		FROM messages
		WHERE conversation_id = ?
		ORDER BY timestamp DESC, rowid DESC
	`
	args := []any{conversationID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest-first query (for the LIMIT), reversed to chronological.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// Conversations lists all conversations, most recent first.
func (s *Store) Conversations(ctx context.Context) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, session_id, agent_type, created_at
		FROM conversations
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var convs []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.SessionID, &c.AgentType, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// LogToolCall records one tool invocation for audit. Input is truncated
// so oversized payloads can't bloat the log.
func (s *Store) LogToolCall(ctx context.Context, agentType, toolName, input, output string, callErr error) error {
	if len(input) > maxLoggedInput {
		input = input[:maxLoggedInput]
	}

	errText := ""
	if callErr != nil {
		errText = callErr.Error()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_calls (id, agent_type, tool_name, input_data, output_data, error, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), agentType, toolName, input, output, errText, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("log tool call: %w", err)
	}
	return nil
}

// ToolCalls returns audit records for a tool name, newest first.
// An empty name returns all records.
func (s *Store) ToolCalls(ctx context.Context, toolName string) ([]ToolCall, error) {
	query := `
		SELECT id, agent_type, tool_name, input_data, output_data, COALESCE(error, ''), timestamp
		FROM tool_calls
	`
	var args []any
	if toolName != "" {
		query += " WHERE tool_name = ?"
		args = append(args, toolName)
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tool calls: %w", err)
	}
	defer rows.Close()

	var calls []ToolCall
	for rows.Next() {
		var tc ToolCall
		if err := rows.Scan(&tc.ID, &tc.AgentType, &tc.ToolName, &tc.InputData, &tc.OutputData, &tc.Error, &tc.Timestamp); err != nil {
			return nil, fmt.Errorf("scan tool call: %w", err)
		}
		calls = append(calls, tc)
	}
	return calls, rows.Err()
}
