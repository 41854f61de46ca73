package mcpclient

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultConfigFile is the configuration file read by the agent.
const DefaultConfigFile = "mcp_configs.json"

// ServerConfig describes how to start one MCP server.
type ServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Config is the content of an MCP configuration file.
type Config struct {
	MCPServers map[string]ServerConfig `json:"mcpServers"`
}

// LoadConfig reads an MCP configuration file. ${VAR} references in arguments
// and environment values are expanded from the process environment.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(config.MCPServers) == 0 {
		return nil, fmt.Errorf("parse %s: no servers in mcpServers", path)
	}

	for name, server := range config.MCPServers {
		for i, arg := range server.Args {
			server.Args[i] = os.ExpandEnv(arg)
		}
		for k, v := range server.Env {
			server.Env[k] = os.ExpandEnv(v)
		}
		config.MCPServers[name] = server
	}
	return config, nil
}
