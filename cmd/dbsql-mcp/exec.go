package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	dbsql "github.com/KaushalVachhani/mcp-databricks-sql"
	"github.com/KaushalVachhani/mcp-databricks-sql/internal/logger"
)

type cmdExec struct {
	global *cmdGlobal

	flagCatalog  string
	flagSchema   string
	flagParams   []string
	flagRowLimit int
	flagWait     bool
	flagFormat   string
}

func (c *cmdExec) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "exec <sql>"
	cmd.Short = "Execute a SQL statement"
	cmd.Long = `Execute a SQL statement

The statement is submitted exactly as the execute_statement tool does. With
--wait, a statement still running after the server-side wait is polled until
it finishes.

Named parameters are passed as --param name=value and referenced as :name.`
	cmd.Example = `  dbsql-mcp exec --catalog kaushal --schema b2b "SHOW TABLES"
  dbsql-mcp exec --param id=C10001 --format table "SELECT * FROM transactions WHERE customer_id = :id"`
	cmd.Args = cobra.ExactArgs(1)
	cmd.RunE = c.Run

	cmd.Flags().StringVar(&c.flagCatalog, "catalog", "", "Catalog to execute in")
	cmd.Flags().StringVar(&c.flagSchema, "schema", "", "Schema to execute in")
	cmd.Flags().StringArrayVarP(&c.flagParams, "param", "p", nil, "Named parameter as name=value")
	cmd.Flags().IntVar(&c.flagRowLimit, "row-limit", dbsql.DefaultRowLimit, "Maximum number of rows to return")
	cmd.Flags().BoolVar(&c.flagWait, "wait", false, "Poll until the statement finishes")
	cmd.Flags().StringVarP(&c.flagFormat, "format", "f", formatJSON, "Output format (json, table or arrow)")
	return cmd
}

func (c *cmdExec) Run(cmd *cobra.Command, args []string) error {
	if err := validateFormat(c.flagFormat); err != nil {
		return err
	}
	params, err := parseParams(c.flagParams)
	if err != nil {
		return err
	}

	stmt := c.global.client().Statement(args[0])
	stmt.Catalog = c.flagCatalog
	stmt.Schema = c.flagSchema
	stmt.Parameters = params
	stmt.RowLimit = c.flagRowLimit

	log := c.global.log.AddContext(logger.Ctx{"warehouse": stmt.WarehouseID})
	out := cmd.OutOrStdout()

	// Without polling, the json output is the body as returned by the server.
	if c.flagFormat == formatJSON && !c.flagWait {
		body, err := stmt.Execute(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(out, body)
	}

	handle, err := stmt.Submit(cmd.Context())
	if err != nil {
		return err
	}
	log.Debug("Statement submitted", logger.Ctx{"statement": handle.ID(), "state": handle.State()})

	var rs *dbsql.ResultSet
	if c.flagWait {
		rs, err = handle.Fetch(cmd.Context())
	} else {
		rs, err = handle.Response().ResultSet()
	}
	if c.flagFormat == formatJSON {
		// A failed statement is still printed before its error is returned.
		if handle.State().Terminated() {
			if err := printJSON(out, handle.Response()); err != nil {
				return err
			}
		}
		return err
	}
	if err != nil {
		return err
	}
	return printResultSet(out, c.flagFormat, rs)
}

// parseParams turns name=value pairs into statement parameters.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", pair)
		}
		params[name] = value
	}
	return params, nil
}
