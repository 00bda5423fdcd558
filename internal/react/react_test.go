package react

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/heliosdynamics/helios/internal/llm"
	"github.com/heliosdynamics/helios/internal/tools"
)

// scriptedLLM returns canned completions in order.
type scriptedLLM struct {
	completions []string
	calls       int
	err         error
}

func (s *scriptedLLM) Complete(ctx context.Context, prompt string, stop ...string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.calls >= len(s.completions) {
		return "", fmt.Errorf("scripted llm exhausted after %d calls", s.calls)
	}
	out := s.completions[s.calls]
	s.calls++
	return out, nil
}

func (s *scriptedLLM) Ping(ctx context.Context) error { return s.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry()
	r.MustRegister(&tools.Tool{
		Name:        "get_customers",
		Description: "List customers with order totals.",
		Handler: func(ctx context.Context, input string) (string, error) {
			return "3 customers found", nil
		},
	})
	r.MustRegister(&tools.Tool{
		Name:        "failing_tool",
		Description: "Always fails.",
		Handler: func(ctx context.Context, input string) (string, error) {
			return "", errors.New("database locked")
		},
	})
	return r
}

func TestParseStepFinalAnswer(t *testing.T) {
	step, err := ParseStep("Thought: I know this already\nFinal Answer: 42 orders")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if step.Kind != StepFinal {
		t.Errorf("kind = %v, want StepFinal", step.Kind)
	}
	if step.FinalAnswer != "42 orders" {
		t.Errorf("answer = %q", step.FinalAnswer)
	}
	if step.Thought != "I know this already" {
		t.Errorf("thought = %q", step.Thought)
	}
}

func TestParseStepAction(t *testing.T) {
	step, err := ParseStep("Thought: need customer data\nAction: get_customers\nAction Input: all")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if step.Kind != StepAction {
		t.Errorf("kind = %v, want StepAction", step.Kind)
	}
	if step.Action != "get_customers" {
		t.Errorf("action = %q", step.Action)
	}
	if step.ActionInput != "all" {
		t.Errorf("input = %q", step.ActionInput)
	}
}

func TestParseStepTrimsInventedObservation(t *testing.T) {
	step, err := ParseStep("Action: get_customers\nAction Input: all\nObservation: made up")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if step.ActionInput != "all" {
		t.Errorf("input = %q, want invented observation stripped", step.ActionInput)
	}
}

func TestParseStepMalformed(t *testing.T) {
	if _, err := ParseStep("I think the answer might be around here somewhere"); err == nil {
		t.Error("expected error for completion with no Action or Final Answer")
	}
	if _, err := ParseStep("Thought: hmm\nAction:\nAction Input: x"); err == nil {
		t.Error("expected error for empty action")
	}
}

func TestRunDirectFinalAnswer(t *testing.T) {
	model := &scriptedLLM{completions: []string{
		"Thought: no tools needed\nFinal Answer: Hello from Helios.",
	}}
	loop := New(testLogger(), model, testRegistry(t), 3, nil)

	got, err := loop.Run(context.Background(), "hi", "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != "Hello from Helios." {
		t.Errorf("answer = %q", got)
	}
}

func TestRunActionThenAnswer(t *testing.T) {
	model := &scriptedLLM{completions: []string{
		"Thought: need data\nAction: get_customers\nAction Input: all",
		"Thought: I now know the final answer\nFinal Answer: There are 3 customers.",
	}}

	var loggedTool, loggedOutput string
	loop := New(testLogger(), model, testRegistry(t), 3, func(ctx context.Context, name, input, output string, err error) {
		loggedTool = name
		loggedOutput = output
	})

	got, err := loop.Run(context.Background(), "how many customers?", "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != "There are 3 customers." {
		t.Errorf("answer = %q", got)
	}
	if loggedTool != "get_customers" || loggedOutput != "3 customers found" {
		t.Errorf("audit hook saw tool=%q output=%q", loggedTool, loggedOutput)
	}
	if model.calls != 2 {
		t.Errorf("llm calls = %d, want 2", model.calls)
	}
}

func TestRunToolErrorBecomesObservation(t *testing.T) {
	model := &scriptedLLM{completions: []string{
		"Thought: try it\nAction: failing_tool\nAction Input: x",
		"Thought: it failed\nFinal Answer: I encountered an error reading the database.",
	}}

	var hookErr error
	loop := New(testLogger(), model, testRegistry(t), 3, func(ctx context.Context, name, input, output string, err error) {
		hookErr = err
	})

	got, err := loop.Run(context.Background(), "do the thing", "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(got, "error") {
		t.Errorf("answer = %q, want error acknowledgement", got)
	}
	if hookErr == nil {
		t.Error("audit hook should have seen the tool failure")
	}
}

func TestRunUnknownToolTerminates(t *testing.T) {
	model := &scriptedLLM{completions: []string{
		"Thought: use magic\nAction: teleport_inventory\nAction Input: warehouse 9",
	}}
	loop := New(testLogger(), model, testRegistry(t), 3, nil)

	got, err := loop.Run(context.Background(), "move the stock", "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(got, "teleport_inventory") || !strings.Contains(got, "move the stock") {
		t.Errorf("answer = %q, want unknown-tool message echoing the question", got)
	}
	if model.calls != 1 {
		t.Errorf("llm calls = %d, want 1 (turn must terminate)", model.calls)
	}
}

func TestRunMalformedCompletionTerminates(t *testing.T) {
	model := &scriptedLLM{completions: []string{
		"Sure! Let me look into that for you.",
	}}
	loop := New(testLogger(), model, testRegistry(t), 3, nil)

	got, err := loop.Run(context.Background(), "show customers", "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(got, "show customers") {
		t.Errorf("answer = %q, must echo the original question", got)
	}
}

func TestRunIterationBound(t *testing.T) {
	// The model loops on the same action forever; the bound must cut it off.
	model := &scriptedLLM{completions: []string{
		"Thought: step 1\nAction: get_customers\nAction Input: a",
		"Thought: step 2\nAction: get_customers\nAction Input: b",
		"Thought: step 3\nAction: get_customers\nAction Input: c",
		"Thought: step 4\nAction: get_customers\nAction Input: d",
	}}
	loop := New(testLogger(), model, testRegistry(t), 3, nil)

	got, err := loop.Run(context.Background(), "endless question", "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(got, "could not complete") {
		t.Errorf("answer = %q, want could-not-complete message", got)
	}
	if model.calls != 3 {
		t.Errorf("llm calls = %d, want exactly 3", model.calls)
	}
}

func TestRunPropagatesUnavailable(t *testing.T) {
	model := &scriptedLLM{err: llm.ErrUnavailable}
	loop := New(testLogger(), model, testRegistry(t), 3, nil)

	_, err := loop.Run(context.Background(), "anything", "")
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable for caller fallback", err)
	}
}

func TestPromptListsToolsInRegistrationOrder(t *testing.T) {
	loop := New(testLogger(), &scriptedLLM{}, testRegistry(t), 3, nil)
	prompt := loop.buildPrompt("q", "")

	first := strings.Index(prompt, "get_customers")
	second := strings.Index(prompt, "failing_tool")
	if first < 0 || second < 0 || first > second {
		t.Errorf("tool catalog order wrong in prompt:\n%s", prompt)
	}
}
