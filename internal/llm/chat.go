// Package llm adapts a Databricks model serving endpoint to the agent.Model
// interface through the OpenAI-compatible chat-completions API.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/KaushalVachhani/mcp-databricks-sql/internal/agent"
)

// DefaultModel is the serving endpoint used when Config.Model is empty.
const DefaultModel = "databricks-claude-3-7-sonnet"

// ErrNoChoices is returned when the endpoint answers without a completion choice.
var ErrNoChoices = errors.New("chat completion returned no choices")

// Config configures a ChatModel.
type Config struct {
	// Host is the workspace URL; requests go to {Host}/serving-endpoints/.
	Host string
	// Token is the bearer token.
	Token string
	// Model is the serving endpoint name.
	Model string
	// Temperature is the sampling temperature.
	Temperature float64
	// Options are appended to the default request options and win over them.
	Options []option.RequestOption
}

// ChatModel is an agent.Model backed by a chat-completions endpoint.
type ChatModel struct {
	client      openai.Client
	model       string
	temperature float64
}

var _ agent.Model = (*ChatModel)(nil)

// NewChatModel creates a chat model for the given serving endpoint.
func NewChatModel(config *Config) *ChatModel {
	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	// Requests are sent once; Options may turn retries back on.
	opts := []option.RequestOption{
		option.WithAPIKey(config.Token),
		option.WithBaseURL(servingEndpointsURL(config.Host)),
		option.WithMaxRetries(0),
	}
	opts = append(opts, config.Options...)

	return &ChatModel{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: config.Temperature,
	}
}

func servingEndpointsURL(host string) string {
	host = strings.TrimRight(host, "/")
	if host != "" && !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return host + "/serving-endpoints/"
}

// Complete sends the conversation and returns the assistant reply.
func (m *ChatModel) Complete(ctx context.Context, messages []agent.Message, tools []agent.ToolSpec) (*agent.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(m.model),
		Messages:    toMessageParams(messages),
		Temperature: openai.Float(m.temperature),
	}
	if len(tools) > 0 {
		params.Tools = toToolParams(tools)
	}

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, ErrNoChoices
	}

	msg := completion.Choices[0].Message
	reply := &agent.Message{Role: agent.RoleAssistant, Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		args := json.RawMessage(tc.Function.Arguments)
		if len(args) == 0 {
			args = json.RawMessage(`{}`)
		}
		reply.ToolCalls = append(reply.ToolCalls, agent.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	return reply, nil
}

func toMessageParams(messages []agent.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case agent.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case agent.RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case agent.RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		case agent.RoleAssistant:
			out = append(out, assistantMessage(msg))
		}
	}
	return out
}

func assistantMessage(msg agent.Message) openai.ChatCompletionMessageParamUnion {
	asst := openai.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" {
		asst.Content.OfString = param.NewOpt(msg.Content)
	}
	for _, tc := range msg.ToolCalls {
		asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallParam{
			ID: tc.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      tc.Name,
				Arguments: string(tc.Arguments),
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
}

func toToolParams(tools []agent.ToolSpec) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		params := t.Parameters
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: param.NewOpt(t.Description),
				Parameters:  openai.FunctionParameters(params),
			},
		})
	}
	return out
}
