// Package mcpclient connects to the MCP servers listed in a configuration file
// and exposes their tools to the agent.
package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/KaushalVachhani/mcp-databricks-sql/internal/agent"
	"github.com/KaushalVachhani/mcp-databricks-sql/internal/logger"
	"github.com/KaushalVachhani/mcp-databricks-sql/internal/version"
)

// ErrUnknownTool is returned by CallTool for a name no connected server offers.
var ErrUnknownTool = errors.New("unknown tool")

// Client holds one session per connected server and routes tool calls by name.
type Client struct {
	client *mcp.Client
	log    logger.Logger

	sessions map[string]*mcp.ClientSession
	// routes maps a tool name to the server offering it.
	routes map[string]string
	tools  []agent.ToolSpec
}

var _ agent.Tools = (*Client)(nil)

// New creates a client without any connected server.
func New(log logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		client:   mcp.NewClient(&mcp.Implementation{Name: "dbsql-agent", Version: version.Version}, nil),
		log:      log,
		sessions: map[string]*mcp.ClientSession{},
		routes:   map[string]string{},
	}
}

// ConnectAll starts every configured server as a subprocess speaking MCP over
// stdio. Servers are started in name order. On failure the servers already
// started stay connected; call Close to stop them.
func (c *Client) ConnectAll(ctx context.Context, config *Config) error {
	names := make([]string, 0, len(config.MCPServers))
	for name := range config.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		server := config.MCPServers[name]
		if server.Command == "" {
			return fmt.Errorf("server %q: command is required", name)
		}

		cmd := exec.Command(server.Command, server.Args...)
		cmd.Env = os.Environ()
		for k, v := range server.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
		cmd.Stderr = os.Stderr

		if err := c.Connect(ctx, name, &mcp.CommandTransport{Command: cmd}); err != nil {
			return err
		}
	}
	return nil
}

// Connect registers a server reachable over transport and fetches its tools.
func (c *Client) Connect(ctx context.Context, name string, transport mcp.Transport) error {
	if _, ok := c.sessions[name]; ok {
		return fmt.Errorf("server %q: already connected", name)
	}

	session, err := c.client.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("server %q: connect: %w", name, err)
	}

	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		_ = session.Close()
		return fmt.Errorf("server %q: list tools: %w", name, err)
	}

	specs := make([]agent.ToolSpec, 0, len(res.Tools))
	for _, t := range res.Tools {
		if owner, ok := c.routes[t.Name]; ok {
			_ = session.Close()
			return fmt.Errorf("server %q: tool %q is already provided by %q", name, t.Name, owner)
		}
		schema, err := schemaMap(t.InputSchema)
		if err != nil {
			_ = session.Close()
			return fmt.Errorf("server %q: tool %q: %w", name, t.Name, err)
		}
		specs = append(specs, agent.ToolSpec{Name: t.Name, Description: t.Description, Parameters: schema})
	}

	c.sessions[name] = session
	for _, spec := range specs {
		c.routes[spec.Name] = name
	}
	c.tools = append(c.tools, specs...)

	c.log.Info("Connected to MCP server", logger.Ctx{"server": name, "tools": len(specs)})
	return nil
}

// schemaMap converts a tool input schema into its generic JSON form.
func schemaMap(schema any) (map[string]any, error) {
	if schema == nil {
		return nil, nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("input schema is not an object: %w", err)
	}
	return out, nil
}

// ListTools returns the tools of all connected servers.
func (c *Client) ListTools(context.Context) ([]agent.ToolSpec, error) {
	return append([]agent.ToolSpec(nil), c.tools...), nil
}

// CallTool invokes name on the server offering it and returns the text content
// of the result. A result flagged as a tool error is returned as an error.
func (c *Client) CallTool(ctx context.Context, name string, arguments json.RawMessage) (string, error) {
	server, ok := c.routes[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if len(arguments) == 0 {
		arguments = json.RawMessage(`{}`)
	}

	res, err := c.sessions[server].CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: arguments})
	if err != nil {
		return "", fmt.Errorf("call %s on %s: %w", name, server, err)
	}

	text := contentText(res.Content)
	if res.IsError {
		return "", errors.New(text)
	}
	return text, nil
}

func contentText(content []mcp.Content) string {
	parts := make([]string, 0, len(content))
	for _, c := range content {
		if text, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Close closes every session.
func (c *Client) Close() error {
	var errs []error
	for name, session := range c.sessions {
		if err := session.Close(); err != nil {
			errs = append(errs, fmt.Errorf("server %q: %w", name, err))
		}
		delete(c.sessions, name)
	}
	c.routes = map[string]string{}
	c.tools = nil
	return errors.Join(errs...)
}
