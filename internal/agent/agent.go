// Package agent is the router: it owns the tool registry, classifies
// inbound requests, dispatches them to domain handlers, and persists the
// exchange. Its boundary contract is simple: the caller always gets a
// string back, never an error or a panic.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heliosdynamics/helios/internal/classify"
	"github.com/heliosdynamics/helios/internal/llm"
	"github.com/heliosdynamics/helios/internal/memory"
	"github.com/heliosdynamics/helios/internal/react"
	"github.com/heliosdynamics/helios/internal/tools"
)

// agentType tags conversations and audit rows written by this router.
const agentType = "router"

// Canned boundary responses.
const (
	msgStoreDown  = "I'm having trouble reaching my conversation store right now. Please try again in a moment."
	msgNoDomain   = "I can help with sales, finance, inventory, and analytics questions. Could you tell me more about what you need?"
	msgToolFailed = "I encountered an error while looking that up: %v"
)

// DomainHandler is what every business domain exposes to the router: a
// free-text entry point and a set of tools for the reasoning loop.
type DomainHandler interface {
	Handle(ctx context.Context, request string) (string, error)
	Tools() []*tools.Tool
}

// Options configures the router.
type Options struct {
	// LLM is the completion client driving the reasoning loop. nil means
	// keyword dispatch only.
	LLM llm.Client
	// MaxIterations bounds the reasoning loop. <= 0 defaults to 3.
	MaxIterations int
	// HistoryLimit is how many prior messages feed the loop's prompt.
	// <= 0 defaults to 10.
	HistoryLimit int
	// MaxAmount is the monetary governance threshold in dollars.
	// Requests above it are diverted to the approval queue.
	MaxAmount float64
	// MaxUnits is the quantity governance threshold.
	MaxUnits int
	// Fallback is the domain used when classification matches nothing.
	// Empty means unknown, which produces a guidance response.
	Fallback classify.Domain
}

// Agent routes chat turns to domain handlers.
type Agent struct {
	logger       *slog.Logger
	store        *memory.Store
	registry     *tools.Registry
	loop         *react.Loop
	classifier   *classify.Classifier
	handlers     map[classify.Domain]DomainHandler
	historyLimit int
	maxAmount    float64
	maxUnits     int
}

// New creates the router and registers every handler's tools. A duplicate
// tool name across handlers is a configuration bug and fails startup.
func New(logger *slog.Logger, store *memory.Store, handlers map[classify.Domain]DomainHandler, opts Options) (*Agent, error) {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}

	a := &Agent{
		logger:       logger,
		store:        store,
		registry:     tools.NewRegistry(),
		classifier:   classify.New(opts.Fallback),
		handlers:     handlers,
		historyLimit: opts.HistoryLimit,
		maxAmount:    opts.MaxAmount,
		maxUnits:     opts.MaxUnits,
	}

	// Registration order is the classifier's domain order so the prompt's
	// tool catalog is stable run to run.
	for _, domain := range a.classifier.Domains() {
		h, ok := handlers[domain]
		if !ok {
			continue
		}
		for _, t := range h.Tools() {
			if err := a.registry.Register(t); err != nil {
				return nil, fmt.Errorf("register %s tools: %w", domain, err)
			}
		}
	}
	for _, t := range a.routerTools() {
		if err := a.registry.Register(t); err != nil {
			return nil, fmt.Errorf("register router tools: %w", err)
		}
	}

	if opts.LLM != nil {
		a.loop = react.New(logger, opts.LLM, a.registry, opts.MaxIterations, a.auditToolCall)
	}

	return a, nil
}

// Registry exposes the assembled tool registry, mainly for inspection.
func (a *Agent) Registry() *tools.Registry {
	return a.registry
}

// Chat runs one conversation turn and returns the response text plus the
// conversation id. It never returns an error: every failure mode becomes
// a user-readable string.
func (a *Agent) Chat(ctx context.Context, userID, sessionID, message string) (response, conversationID string) {
	conv, err := a.store.GetOrCreateConversation(ctx, userID, sessionID, agentType)
	if err != nil {
		a.logger.Error("conversation lookup failed", "error", err)
		return msgStoreDown, ""
	}

	if _, err := a.store.AddMessage(ctx, conv.ID, memory.RoleHuman, message); err != nil {
		a.logger.Error("persist human message failed", "error", err)
	}

	response = a.respond(ctx, conv.ID, userID, message)

	if _, err := a.store.AddMessage(ctx, conv.ID, memory.RoleAI, response); err != nil {
		a.logger.Error("persist ai message failed", "error", err)
	}

	return response, conv.ID
}

// respond produces the turn's answer: governance gate, then reasoning
// loop, then deterministic keyword dispatch.
func (a *Agent) respond(ctx context.Context, conversationID, userID, message string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("handler panic recovered", "panic", r)
			out = fmt.Sprintf(msgToolFailed, r)
		}
	}()

	if req, ok := a.governanceCheck(message); ok {
		return a.divertToApproval(ctx, userID, req)
	}

	if a.loop != nil {
		answer, err := a.loop.Run(ctx, message, a.historyText(ctx, conversationID))
		if err == nil {
			return answer
		}
		a.logger.Warn("reasoning loop unavailable, falling back to keyword dispatch", "error", err)
	}

	return a.keywordDispatch(ctx, message)
}

// keywordDispatch is the deterministic path: classify, hand the request
// to that domain's handler, convert failures to strings.
func (a *Agent) keywordDispatch(ctx context.Context, message string) string {
	result := a.classifier.Classify(message)
	a.logger.Debug("classified request",
		"domain", result.Domain,
		"confidence", result.Confidence,
	)

	h, ok := a.handlers[result.Domain]
	if !ok {
		return msgNoDomain
	}

	out, err := h.Handle(ctx, message)
	a.auditToolCall(ctx, "handle_"+string(result.Domain), message, out, err)
	if err != nil {
		a.logger.Error("handler failed",
			"domain", result.Domain,
			"error", err,
		)
		return fmt.Sprintf(msgToolFailed, err)
	}
	return out
}

// historyText renders recent messages for the loop's prompt.
func (a *Agent) historyText(ctx context.Context, conversationID string) string {
	msgs, err := a.store.History(ctx, conversationID, a.historyLimit)
	if err != nil {
		a.logger.Warn("history load failed", "error", err)
		return ""
	}

	var b strings.Builder
	for _, m := range msgs {
		switch m.Role {
		case memory.RoleHuman:
			fmt.Fprintf(&b, "User: %s\n", m.Content)
		case memory.RoleAI:
			fmt.Fprintf(&b, "Assistant: %s\n", m.Content)
		}
	}
	return b.String()
}

// auditToolCall records one tool invocation. Audit failures are logged
// and swallowed; they must not fail the turn.
func (a *Agent) auditToolCall(ctx context.Context, toolName, input, output string, callErr error) {
	if err := a.store.LogToolCall(ctx, agentType, toolName, input, output, callErr); err != nil {
		a.logger.Error("tool call audit failed", "tool", toolName, "error", err)
	}
}
