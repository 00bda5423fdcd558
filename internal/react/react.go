// Package react implements the LLM-driven dispatch loop as an explicit
// state machine. The model is the sole source of non-determinism: it picks
// the next action. Everything else (parsing, transitions, the iteration
// bound) is deterministic and typed.
package react

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heliosdynamics/helios/internal/llm"
	"github.com/heliosdynamics/helios/internal/tools"
)

// State is the loop's position within a single conversation turn.
type State int

const (
	// StateThinking awaits the model's next step.
	StateThinking State = iota
	// StateActing executes the tool the model selected.
	StateActing
	// StateDone is terminal; the turn has produced its answer.
	StateDone
)

// StepKind discriminates a parsed model step.
type StepKind int

const (
	// StepAction is a tool invocation request.
	StepAction StepKind = iota
	// StepFinal is a final answer.
	StepFinal
)

// Step is one parsed model completion.
type Step struct {
	Kind        StepKind
	Thought     string
	Action      string
	ActionInput string
	FinalAnswer string
}

// Canned turn-terminal responses. Parsing failures and hallucinated tool
// names end the turn with one of these instead of crashing or retrying
// forever; the user's question is echoed so it is never silently dropped.
const (
	msgParseFailure = "I wasn't able to work out how to answer that. Could you rephrase your question: %q?"
	msgUnknownTool  = "I don't know how to do that. The step I planned (%s) isn't one of my capabilities. Your question was: %q."
	msgOutOfSteps   = "I could not complete that request within the allowed number of steps. Try asking something more specific than: %q."
)

// stopObservation truncates generation before the model invents its own
// tool output.
const stopObservation = "\nObservation:"

// ToolCallFunc observes every tool invocation the loop makes, including
// failures. Used for audit logging.
type ToolCallFunc func(ctx context.Context, toolName, input, output string, err error)

// Loop drives one Thought/Action cycle per iteration until the model
// produces a final answer or the iteration bound forces termination.
type Loop struct {
	llm           llm.Client
	registry      *tools.Registry
	logger        *slog.Logger
	maxIterations int
	onToolCall    ToolCallFunc
}

// New creates a dispatch loop. maxIterations <= 0 defaults to 3.
func New(logger *slog.Logger, client llm.Client, registry *tools.Registry, maxIterations int, onToolCall ToolCallFunc) *Loop {
	if maxIterations <= 0 {
		maxIterations = 3
	}
	return &Loop{
		llm:           client,
		registry:      registry,
		logger:        logger,
		maxIterations: maxIterations,
		onToolCall:    onToolCall,
	}
}

// Run executes one conversation turn. history is prior dialogue rendered
// as plain text (may be empty).
//
// The only error Run returns is a completion-service failure, so the
// caller can degrade to deterministic routing. Every other outcome,
// including malformed model output, is a valid string response.
func (l *Loop) Run(ctx context.Context, question, history string) (string, error) {
	prompt := l.buildPrompt(question, history)
	state := StateThinking

	var transcript strings.Builder

	for i := 0; i < l.maxIterations; i++ {
		if state != StateThinking {
			break
		}

		completion, err := l.llm.Complete(ctx, prompt+transcript.String(), stopObservation)
		if err != nil {
			return "", fmt.Errorf("dispatch completion: %w", err)
		}

		step, perr := ParseStep(completion)
		if perr != nil {
			l.logger.Warn("unparseable model step, ending turn",
				"iteration", i,
				"error", perr,
			)
			return fmt.Sprintf(msgParseFailure, question), nil
		}

		if step.Kind == StepFinal {
			state = StateDone
			return step.FinalAnswer, nil
		}

		// THINKING -> ACTING: run the selected tool.
		state = StateActing
		tool, terr := l.registry.Get(step.Action)
		if terr != nil {
			l.logger.Warn("model selected unknown tool, ending turn",
				"tool", step.Action,
			)
			return fmt.Sprintf(msgUnknownTool, step.Action, question), nil
		}

		output, execErr := tool.Handler(ctx, step.ActionInput)
		if l.onToolCall != nil {
			l.onToolCall(ctx, step.Action, step.ActionInput, output, execErr)
		}

		observation := output
		if execErr != nil {
			observation = "Error: " + execErr.Error()
		}

		l.logger.Debug("tool executed",
			"tool", step.Action,
			"input", truncate(step.ActionInput, 80),
			"error", execErr,
		)

		// ACTING -> THINKING: feed the observation back.
		fmt.Fprintf(&transcript, "Thought: %s\nAction: %s\nAction Input: %s\nObservation: %s\n",
			step.Thought, step.Action, step.ActionInput, observation)
		state = StateThinking
	}

	return fmt.Sprintf(msgOutOfSteps, question), nil
}

// buildPrompt renders the tool catalog and format instructions.
func (l *Loop) buildPrompt(question, history string) string {
	var b strings.Builder

	b.WriteString("You are the assistant for the Helios Dynamics ERP system. ")
	b.WriteString("Answer the user's question using the tools below.\n\n")

	b.WriteString("Available tools:\n")
	for _, t := range l.registry.List() {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	}

	b.WriteString("\nUse the following format:\n\n")
	b.WriteString("Thought: what to do next\n")
	fmt.Fprintf(&b, "Action: one of [%s]\n", strings.Join(l.registry.Names(), ", "))
	b.WriteString("Action Input: the input to the action\n")
	b.WriteString("Observation: the result of the action\n")
	b.WriteString("... (Thought/Action/Action Input/Observation can repeat)\n")
	b.WriteString("Thought: I now know the final answer\n")
	b.WriteString("Final Answer: the answer to the original question\n\n")

	if history != "" {
		b.WriteString("Previous conversation:\n")
		b.WriteString(history)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s\n", question)
	return b.String()
}

// ParseStep extracts a typed step from raw model output. A completion with
// neither an Action nor a Final Answer is malformed.
func ParseStep(text string) (*Step, error) {
	if idx := strings.Index(text, "Final Answer:"); idx >= 0 {
		answer := strings.TrimSpace(text[idx+len("Final Answer:"):])
		if answer == "" {
			return nil, fmt.Errorf("empty final answer")
		}
		return &Step{
			Kind:        StepFinal,
			Thought:     extractThought(text[:idx]),
			FinalAnswer: answer,
		}, nil
	}

	actIdx := strings.Index(text, "Action:")
	if actIdx < 0 {
		return nil, fmt.Errorf("completion has neither Action nor Final Answer")
	}

	rest := text[actIdx+len("Action:"):]
	var action, input string
	if inIdx := strings.Index(rest, "Action Input:"); inIdx >= 0 {
		action = strings.TrimSpace(rest[:inIdx])
		input = strings.TrimSpace(rest[inIdx+len("Action Input:"):])
	} else {
		action = strings.TrimSpace(firstLine(rest))
	}

	// Models sometimes run past the stop sequence and invent observations.
	if obsIdx := strings.Index(input, "Observation:"); obsIdx >= 0 {
		input = strings.TrimSpace(input[:obsIdx])
	}
	input = strings.Trim(input, `"`)

	if action == "" {
		return nil, fmt.Errorf("action keyword present but no tool named")
	}

	return &Step{
		Kind:        StepAction,
		Thought:     extractThought(text[:actIdx]),
		Action:      action,
		ActionInput: input,
	}, nil
}

func extractThought(text string) string {
	if idx := strings.Index(text, "Thought:"); idx >= 0 {
		return strings.TrimSpace(text[idx+len("Thought:"):])
	}
	return strings.TrimSpace(text)
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
