// Package agent implements the tool-calling reasoning loop as an
// explicit state machine: an agent state asks the model to either
// request tool calls or produce a final answer, a tools state executes
// the requested calls and feeds results back. A bounded step counter
// prevents unbounded cycling.
package agent

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/insight-lab/mnemosyne/pkg/agent/tool"
	"github.com/insight-lab/mnemosyne/pkg/domain/types"
	"github.com/insight-lab/mnemosyne/pkg/utils/logging"
)

//go:embed prompt/system.md
var systemPrompt string

// DefaultMaxSteps bounds the number of agent turns per question
const DefaultMaxSteps = 10

// Result is the outcome of one question-answering invocation
type Result struct {
	// Answer is the final answer text
	Answer string
	// Trace is the ordered sequence of AI-authored messages and tool
	// execution labels, for observability
	Trace []string
}

// Agent answers questions by iteratively querying memory tools
type Agent struct {
	llmClient gollem.LLMClient
	tools     []gollem.Tool
	maxSteps  int
}

type Option func(*Agent)

// WithMaxSteps sets the agent turn cap. Exceeding it fails with an
// exhausted-tagged error rather than returning a partial answer.
func WithMaxSteps(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxSteps = n
		}
	}
}

func New(llmClient gollem.LLMClient, tools []gollem.Tool, opts ...Option) *Agent {
	a := &Agent{
		llmClient: llmClient,
		tools:     tools,
		maxSteps:  DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute runs the state machine for one question. The session is
// seeded with the system instruction and the question; state cycles
// between the model deciding (agent) and tool execution (tools) until
// the model responds without tool calls or the step cap is hit.
func (a *Agent) Execute(ctx context.Context, question string) (*Result, error) {
	logger := logging.From(ctx)

	result := &Result{}
	ctx = tool.WithUpdate(ctx, func(ctx context.Context, message string) {
		result.Trace = append(result.Trace, message)
	})

	session, err := a.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(systemPrompt),
		gollem.WithSessionTools(a.tools...),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create agent session")
	}

	inputs := []gollem.Input{gollem.Text(question)}

	for step := 1; step <= a.maxSteps; step++ {
		resp, err := session.GenerateContent(ctx, inputs...)
		if err != nil {
			return nil, types.WrapLLMError(err, "agent model call failed", goerr.V("step", step))
		}

		for _, text := range resp.Texts {
			if strings.TrimSpace(text) != "" {
				result.Trace = append(result.Trace, text)
			}
		}

		// Terminal condition: a response without tool calls is the
		// final answer.
		if len(resp.FunctionCalls) == 0 {
			result.Answer = strings.TrimSpace(strings.Join(resp.Texts, "\n"))
			logger.Debug("agent finished", "steps", step, "trace_len", len(result.Trace))
			return result, nil
		}

		inputs = a.runTools(ctx, resp.FunctionCalls)
	}

	return nil, goerr.New("agent exceeded step limit without final answer",
		goerr.V("maxSteps", a.maxSteps),
		goerr.T(types.TagExhausted),
	)
}

// runTools executes the requested tool calls and converts their
// results into function-response inputs for the next agent turn. Tool
// failures are returned to the model rather than aborting the loop.
func (a *Agent) runTools(ctx context.Context, calls []*gollem.FunctionCall) []gollem.Input {
	inputs := make([]gollem.Input, 0, len(calls))

	for _, call := range calls {
		resp := gollem.FunctionResponse{
			ID:   call.ID,
			Name: call.Name,
		}

		t := a.findTool(call.Name)
		if t == nil {
			resp.Error = fmt.Errorf("unknown tool: %s", call.Name)
			tool.Update(ctx, fmt.Sprintf("Unknown tool requested: %s", call.Name))
		} else {
			data, err := t.Run(ctx, call.Arguments)
			if err != nil {
				resp.Error = err
				logging.From(ctx).Warn("tool execution failed",
					"tool", call.Name, "error", err.Error())
			} else {
				resp.Data = data
			}
		}

		inputs = append(inputs, resp)
	}

	return inputs
}

func (a *Agent) findTool(name string) gollem.Tool {
	for _, t := range a.tools {
		if t.Spec().Name == name {
			return t
		}
	}
	return nil
}
