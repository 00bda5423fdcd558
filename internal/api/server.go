// Package api implements the HTTP surface over the router: chat,
// approvals, and read-only history endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/heliosdynamics/helios/internal/agent"
	"github.com/heliosdynamics/helios/internal/buildinfo"
	"github.com/heliosdynamics/helios/internal/memory"
	"github.com/heliosdynamics/helios/internal/web"
)

// writeJSON encodes v as JSON to w, logging any errors at debug level.
// Errors here typically mean the client disconnected mid-response.
func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("failed to write JSON response", "error", err)
	}
}

// Server is the HTTP API server.
type Server struct {
	listen string
	agent  *agent.Agent
	store  *memory.Store
	logger *slog.Logger
	server *http.Server
}

// NewServer creates the API server. listen is a host:port address.
func NewServer(listen string, a *agent.Agent, store *memory.Store, logger *slog.Logger) *Server {
	return &Server{
		listen: listen,
		agent:  a,
		store:  store,
		logger: logger,
	}
}

// routes assembles the mux. Split out from Start so tests can drive the
// handler directly through httptest.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat", s.handleChat)

	mux.HandleFunc("GET /api/approvals", s.handleApprovalsList)
	mux.HandleFunc("POST /api/approvals/{id}/approve", s.handleApprovalDecision)
	mux.HandleFunc("POST /api/approvals/{id}/reject", s.handleApprovalDecision)

	mux.HandleFunc("GET /api/conversations", s.handleConversationList)
	mux.HandleFunc("GET /api/conversations/{id}/messages", s.handleConversationMessages)
	mux.HandleFunc("GET /api/tools", s.handleTools)

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/version", s.handleVersion)

	web.RegisterRoutes(mux, s.store, s.logger)

	return s.withLogging(mux)
}

// Start begins serving HTTP requests and blocks until the server stops.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.listen,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	s.logger.Info("starting API server", "listen", s.listen)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) errorResponse(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	writeJSON(w, map[string]any{
		"error": map[string]any{
			"message": message,
			"code":    code,
		},
	}, s.logger)
}

// ChatRequest is the inbound chat payload.
type ChatRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is the chat reply.
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.errorResponse(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.UserID == "" {
		req.UserID = "anonymous"
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	response, convID := s.agent.Chat(r.Context(), req.UserID, req.SessionID, req.Message)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, ChatResponse{Response: response, ConversationID: convID}, s.logger)
}

func (s *Server) handleApprovalsList(w http.ResponseWriter, r *http.Request) {
	pending, err := s.store.PendingApprovals(r.Context())
	if err != nil {
		s.logger.Error("list approvals failed", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to list approvals")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"approvals": pending,
		"count":     len(pending),
	}, s.logger)
}

type approvalDecisionRequest struct {
	DecidedBy string `json:"decided_by"`
}

func (s *Server) handleApprovalDecision(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "approval id required")
		return
	}

	var req approvalDecisionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.DecidedBy == "" {
		req.DecidedBy = "unknown"
	}

	var err error
	if strings.HasSuffix(r.URL.Path, "/approve") {
		err = s.store.Approve(r.Context(), id, req.DecidedBy)
	} else {
		err = s.store.Reject(r.Context(), id, req.DecidedBy)
	}
	if err != nil {
		if errors.Is(err, memory.ErrNotPending) {
			s.errorResponse(w, http.StatusConflict, "approval is not pending")
			return
		}
		s.logger.Error("approval decision failed", "id", id, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to decide approval")
		return
	}

	approval, err := s.store.GetApproval(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to load approval")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, approval, s.logger)
}

func (s *Server) handleConversationList(w http.ResponseWriter, r *http.Request) {
	convs, err := s.store.Conversations(r.Context())
	if err != nil {
		s.logger.Error("list conversations failed", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"conversations": convs,
		"count":         len(convs),
	}, s.logger)
}

func (s *Server) handleConversationMessages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	messages, err := s.store.History(r.Context(), id, 0)
	if err != nil {
		s.logger.Error("history failed", "id", id, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"messages": messages,
		"count":    len(messages),
	}, s.logger)
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	type toolInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	var infos []toolInfo
	for _, t := range s.agent.Registry().List() {
		infos = append(infos, toolInfo{Name: t.Name, Description: t.Description})
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"tools": infos,
		"count": len(infos),
	}, s.logger)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": "healthy"}, s.logger)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, buildinfo.Info(), s.logger)
}
