package recallagent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kahani-engine/narrative/pkg/llmprovider"
)

// Limits bounds one agent run, per §4.4.
type Limits struct {
	MaxTurns int
	Timeout  time.Duration
}

// DefaultLimits returns the spec defaults: 8 turns, 45 second budget.
func DefaultLimits() Limits {
	return Limits{MaxTurns: 8, Timeout: 45 * time.Second}
}

// TraceLogger receives one entry per loop iteration for observability;
// a nil TraceLogger disables tracing.
type TraceLogger interface {
	LogStep(turn int, step Step, observation string)
}

// Runner drives the ReAct loop over a fixed Tool set.
type Runner struct {
	provider llmprovider.Provider
	tools    map[string]Tool
	toolList []Tool
	limits   Limits
	logger   *slog.Logger
	trace    TraceLogger
}

// NewRunner constructs a Runner. provider is used without its native
// tool-calling path — the agent's tool protocol is entirely text-parsed,
// per §4.4 — so requests never populate CompletionRequest.Tools.
func NewRunner(provider llmprovider.Provider, tools []Tool, limits Limits, logger *slog.Logger, trace TraceLogger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}
	return &Runner{provider: provider, tools: byName, toolList: tools, limits: limits, logger: logger, trace: trace}
}

// Outcome is the result of a completed Run.
type Outcome struct {
	Scenes  []int
	Failed  bool
	Reason  string
}

// Run executes the ReAct loop for userIntent. It never returns an error
// for agent-internal failure — timeout, max-turns exhaustion, and
// malformed output all surface as Outcome.Failed, per §4.4's "return
// failure and let the caller use the deterministic pipeline" contract.
// It returns a Go error only if the context was already canceled before
// the first call.
func (r *Runner) Run(ctx context.Context, userIntent string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	limits := r.limits
	if limits.MaxTurns <= 0 {
		limits = DefaultLimits()
	}

	runCtx, cancel := context.WithTimeout(ctx, limits.Timeout)
	defer cancel()

	messages := []llmprovider.Message{
		{Role: "user", Content: userIntent},
	}
	systemPrompt := r.systemPrompt()

	for turn := 1; turn <= limits.MaxTurns; turn++ {
		if runCtx.Err() != nil {
			return Outcome{Failed: true, Reason: "timeout"}, nil
		}

		resp, err := r.provider.Complete(runCtx, llmprovider.CompletionRequest{
			SystemPrompt: systemPrompt,
			Messages:     messages,
			Temperature:  0.2,
			MaxTokens:    800,
		})
		if err != nil {
			if runCtx.Err() != nil {
				return Outcome{Failed: true, Reason: "timeout"}, nil
			}
			r.logger.Warn("recallagent: LLM call failed", "turn", turn, "error", err)
			return Outcome{Failed: true, Reason: "llm error"}, nil
		}

		step := ParseStep(resp.Content)
		messages = append(messages, llmprovider.Message{Role: "assistant", Content: resp.Content})

		if step.IsFinal {
			scenes := FinalScenes(step.FinalAnswer)
			if r.trace != nil {
				r.trace.LogStep(turn, step, "")
			}
			return Outcome{Scenes: scenes}, nil
		}

		if step.Malformed {
			obs := correctiveObservation()
			if r.trace != nil {
				r.trace.LogStep(turn, step, obs)
			}
			messages = append(messages, llmprovider.Message{Role: "user", Content: "Observation: " + obs})
			continue
		}

		tool, ok := r.tools[step.Action]
		if !ok {
			obs := fmt.Sprintf("Unknown tool %q. Available tools: %s", step.Action, r.toolNames())
			if r.trace != nil {
				r.trace.LogStep(turn, step, obs)
			}
			messages = append(messages, llmprovider.Message{Role: "user", Content: "Observation: " + obs})
			continue
		}

		observation, err := tool.Run(runCtx, step.ActionInput)
		if err != nil {
			observation = fmt.Sprintf("Tool %q failed: %v", step.Action, err)
		}
		observation = truncate(observation, maxObservationChars)

		if r.trace != nil {
			r.trace.LogStep(turn, step, observation)
		}
		messages = append(messages, llmprovider.Message{Role: "user", Content: "Observation: " + observation})
	}

	return Outcome{Failed: true, Reason: "max turns exceeded"}, nil
}

func (r *Runner) toolNames() string {
	names := make([]string, len(r.toolList))
	for i, t := range r.toolList {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

func correctiveObservation() string {
	return "Your response could not be parsed. Respond with either:\n" +
		"Thought: <reasoning>\nAction: <tool name>\nAction Input: <JSON object>\n" +
		"or:\nThought: <reasoning>\nFinal Answer: {\"relevant_scenes\": [N, ...]}"
}

func (r *Runner) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a research assistant finding scenes from earlier in an interactive story " +
		"that are relevant to the player's current message. Use the available tools to search, then " +
		"respond with a Final Answer listing the relevant scene numbers.\n\n")
	b.WriteString("Available tools:\n")
	for _, t := range r.toolList {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	}
	b.WriteString("\nRespond in exactly this format each turn:\n")
	b.WriteString("Thought: <your reasoning>\nAction: <tool name>\nAction Input: <JSON object of arguments>\n\n")
	b.WriteString("When you have enough information, respond instead with:\n")
	b.WriteString("Thought: <your reasoning>\nFinal Answer: {\"relevant_scenes\": [N, ...]}\n")
	return b.String()
}
