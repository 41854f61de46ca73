// Package tool exposes statement execution as an MCP tool.
package tool

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	dbsql "github.com/KaushalVachhani/mcp-databricks-sql"
	"github.com/KaushalVachhani/mcp-databricks-sql/internal/logger"
	"github.com/KaushalVachhani/mcp-databricks-sql/internal/version"
)

// ExecuteStatementName is the name the tool is registered under.
const ExecuteStatementName = "execute_statement"

const executeStatementDescription = `Execute a SQL statement against a Databricks SQL warehouse.

Returns the statement execution response, including:
- manifest: query metadata and schema information
- result: array of result rows
- status: query execution status`

// ExecuteStatementInput holds the tool arguments.
type ExecuteStatementInput struct {
	Statement   string         `json:"statement" jsonschema:"SQL query to execute on the warehouse"`
	WarehouseID string         `json:"warehouse_id,omitempty" jsonschema:"Unique identifier of the Databricks SQL warehouse, defaults to the configured warehouse"`
	Catalog     string         `json:"catalog,omitempty" jsonschema:"Optional Unity Catalog name to query against"`
	Schema      string         `json:"schema,omitempty" jsonschema:"Optional database schema name within the catalog"`
	Parameters  map[string]any `json:"parameters,omitempty" jsonschema:"Optional dictionary of query parameters for parameterized SQL"`
	RowLimit    *int           `json:"row_limit,omitempty" jsonschema:"Maximum number of rows to return (default: 10)"`
}

// Server serves the statement tool for one client.
type Server struct {
	client *dbsql.Client
	log    logger.Logger
}

// NewServer creates an MCP server with the execute_statement tool registered.
func NewServer(client *dbsql.Client, log logger.Logger) *mcp.Server {
	s := &Server{
		client: client,
		log:    log.AddContext(logger.Ctx{"tool": ExecuteStatementName}),
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "databricks-sql", Version: version.Version}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        ExecuteStatementName,
		Description: executeStatementDescription,
	}, s.ExecuteStatement)
	return server
}

// Statement maps the tool arguments onto a statement.
func (s *Server) Statement(in ExecuteStatementInput) *dbsql.Statement {
	stmt := s.client.Statement(in.Statement)
	if in.WarehouseID != "" {
		stmt.WarehouseID = in.WarehouseID
	}
	stmt.Catalog = in.Catalog
	stmt.Schema = in.Schema
	stmt.Parameters = in.Parameters
	if in.RowLimit != nil {
		stmt.RowLimit = *in.RowLimit
	}
	return stmt
}

// ExecuteStatement is the tool handler. The response body is returned as
// structured content and as JSON text.
func (s *Server) ExecuteStatement(ctx context.Context, _ *mcp.CallToolRequest, in ExecuteStatementInput) (*mcp.CallToolResult, map[string]any, error) {
	stmt := s.Statement(in)
	log := s.log.AddContext(logger.Ctx{
		"warehouse": stmt.WarehouseID,
		"catalog":   stmt.Catalog,
		"schema":    stmt.Schema,
		"row_limit": stmt.RowLimit,
	})
	log.Debug("Executing statement", logger.Ctx{"statement": in.Statement})

	start := time.Now()
	body, err := stmt.Execute(ctx)
	if err != nil {
		log.Warn("Statement execution failed", logger.Ctx{"err": err, "duration": time.Since(start)})
		return nil, nil, err
	}
	log.Info("Statement executed", logger.Ctx{"duration": time.Since(start)})

	text, err := json.Marshal(body)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
	}, body, nil
}
