// Package web provides the read-only operations dashboard: recent
// conversations, their transcripts, and the approval queue.
package web

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/heliosdynamics/helios/internal/memory"
)

// WebServer renders the dashboard pages.
type WebServer struct {
	store     *memory.Store
	logger    *slog.Logger
	templates map[string]*template.Template
}

// RegisterRoutes mounts the dashboard on a mux.
func RegisterRoutes(mux *http.ServeMux, store *memory.Store, logger *slog.Logger) {
	s := &WebServer{
		store:     store,
		logger:    logger,
		templates: loadTemplates(),
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /conversations/{id}", s.handleConversation)
}

// DashboardData is the template context for the overview page.
type DashboardData struct {
	Conversations []memory.Conversation
	Approvals     []memory.Approval
}

func (s *WebServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := DashboardData{}

	convs, err := s.store.Conversations(r.Context())
	if err != nil {
		s.logger.Error("dashboard conversations failed", "error", err)
	} else {
		data.Conversations = convs
	}

	approvals, err := s.store.PendingApprovals(r.Context())
	if err != nil {
		s.logger.Error("dashboard approvals failed", "error", err)
	} else {
		data.Approvals = approvals
	}

	s.render(w, "dashboard.html", data)
}

// transcriptMessage is one rendered message: markdown already converted
// to safe HTML.
type transcriptMessage struct {
	Role memory.Role
	HTML template.HTML
}

// ConversationData is the template context for a transcript page.
type ConversationData struct {
	ID       string
	Messages []transcriptMessage
}

func (s *WebServer) handleConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	messages, err := s.store.History(r.Context(), id, 0)
	if err != nil {
		s.logger.Error("transcript load failed", "id", id, "error", err)
		http.Error(w, "failed to load conversation", http.StatusInternalServerError)
		return
	}
	if len(messages) == 0 {
		http.NotFound(w, r)
		return
	}

	data := ConversationData{ID: id}
	for _, m := range messages {
		html, err := renderMarkdown(m.Content)
		if err != nil {
			s.logger.Warn("markdown render failed", "message", m.ID, "error", err)
			html = template.HTML(template.HTMLEscapeString(m.Content))
		}
		data.Messages = append(data.Messages, transcriptMessage{Role: m.Role, HTML: html})
	}

	s.render(w, "conversation.html", data)
}
