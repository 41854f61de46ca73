// Package agent runs a chat model in a loop, letting it call tools until it
// produces a final answer or runs out of steps.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/KaushalVachhani/mcp-databricks-sql/internal/logger"
)

// DefaultMaxSteps is the step budget used when Config.MaxSteps is zero.
const DefaultMaxSteps = 30

// ErrMaxSteps is returned alongside the stop message when the model is still
// calling tools after the last step.
var ErrMaxSteps = errors.New("agent stopped after reaching the maximum number of steps")

// Role of a message in the conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation.
type Message struct {
	Role    Role
	Content string
	// ToolCalls are the calls requested by an assistant message.
	ToolCalls []ToolCall
	// ToolCallID links a tool message to the call it answers.
	ToolCallID string
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolSpec describes a tool offered to the model.
type ToolSpec struct {
	Name        string
	Description string
	// Parameters is the JSON schema of the tool arguments.
	Parameters map[string]any
}

// Model is a chat-completion model able to request tool calls.
type Model interface {
	Complete(ctx context.Context, messages []Message, tools []ToolSpec) (*Message, error)
}

// Tools lists and invokes the tools available to the agent.
type Tools interface {
	ListTools(ctx context.Context) ([]ToolSpec, error)
	CallTool(ctx context.Context, name string, arguments json.RawMessage) (string, error)
}

// Config configures an Agent.
type Config struct {
	Model Model
	Tools Tools
	// MaxSteps bounds the number of model calls per run.
	MaxSteps int
	// SystemPrompt is prepended to every run. A default is used when empty.
	SystemPrompt string
	Logger       logger.Logger
}

// Agent answers natural-language instructions using a model and tools.
type Agent struct {
	model        Model
	tools        Tools
	maxSteps     int
	systemPrompt string
	log          logger.Logger
}

// New creates an agent.
func New(config *Config) *Agent {
	a := &Agent{
		model:        config.Model,
		tools:        config.Tools,
		maxSteps:     config.MaxSteps,
		systemPrompt: config.SystemPrompt,
		log:          config.Logger,
	}
	if a.maxSteps <= 0 {
		a.maxSteps = DefaultMaxSteps
	}
	if a.log == nil {
		a.log = logger.Discard()
	}
	return a
}

func (a *Agent) buildSystemPrompt(tools []ToolSpec) string {
	if a.systemPrompt != "" {
		return a.systemPrompt
	}

	var b strings.Builder
	b.WriteString("You are a helpful assistant with access to the following tools:\n\n")
	for _, t := range tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, firstLine(t.Description))
	}
	b.WriteString("\nUse the tools to gather the information needed, then answer the user's request. ")
	b.WriteString("When a tool call fails, read the error and adjust the arguments before trying again.")
	return b.String()
}

// Run asks the agent to satisfy instruction and returns its final answer.
//
// When the step budget runs out, the answer is a message saying so and the
// error wraps ErrMaxSteps.
func (a *Agent) Run(ctx context.Context, instruction string) (string, error) {
	log := a.log.AddContext(logger.Ctx{"run": uuid.NewString()})

	tools, err := a.tools.ListTools(ctx)
	if err != nil {
		return "", fmt.Errorf("list tools: %w", err)
	}
	log.Debug("Starting agent run", logger.Ctx{"tools": len(tools), "max_steps": a.maxSteps})

	messages := []Message{
		{Role: RoleSystem, Content: a.buildSystemPrompt(tools)},
		{Role: RoleUser, Content: instruction},
	}

	for step := 1; step <= a.maxSteps; step++ {
		reply, err := a.model.Complete(ctx, messages, tools)
		if err != nil {
			return "", fmt.Errorf("step %d: %w", step, err)
		}
		reply.Role = RoleAssistant
		messages = append(messages, *reply)

		if len(reply.ToolCalls) == 0 {
			log.Info("Agent finished", logger.Ctx{"steps": step})
			return reply.Content, nil
		}

		for _, call := range reply.ToolCalls {
			messages = append(messages, a.callTool(ctx, log, step, call))
		}
	}

	log.Warn("Agent ran out of steps", logger.Ctx{"max_steps": a.maxSteps})
	return stoppedMessage(a.maxSteps), fmt.Errorf("%w (%d)", ErrMaxSteps, a.maxSteps)
}

func stoppedMessage(steps int) string {
	return fmt.Sprintf("Agent stopped after reaching the maximum number of steps (%d).", steps)
}

// callTool runs one tool call. Failures are reported back to the model as the
// tool result so it can recover.
func (a *Agent) callTool(ctx context.Context, log logger.Logger, step int, call ToolCall) Message {
	log = log.AddContext(logger.Ctx{"step": step, "tool": call.Name, "call": call.ID})
	log.Info("Calling tool", logger.Ctx{"arguments": string(call.Arguments)})

	out, err := a.tools.CallTool(ctx, call.Name, call.Arguments)
	if err != nil {
		log.Warn("Tool call failed", logger.Ctx{"err": err})
		out = "Error: " + err.Error()
	}

	return Message{Role: RoleTool, Content: out, ToolCallID: call.ID}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
