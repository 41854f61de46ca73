package main

import (
	"github.com/spf13/cobra"
)

type cmdDescribe struct {
	global *cmdGlobal

	flagCatalog string
	flagSchema  string
	flagFormat  string
}

func (c *cmdDescribe) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "describe <table>"
	cmd.Short = "Show the columns of a table"
	cmd.Long = `Show the columns of a table

The table may be qualified as schema.table or catalog.schema.table. Missing
parts are taken from --catalog and --schema.`
	cmd.Example = `  dbsql-mcp describe kaushal.b2b.transactions`
	cmd.Args = cobra.ExactArgs(1)
	cmd.RunE = c.Run

	cmd.Flags().StringVar(&c.flagCatalog, "catalog", "", "Catalog of the table")
	cmd.Flags().StringVar(&c.flagSchema, "schema", "", "Schema of the table")
	cmd.Flags().StringVarP(&c.flagFormat, "format", "f", formatTable, "Output format (json, table or arrow)")
	return cmd
}

func (c *cmdDescribe) Run(cmd *cobra.Command, args []string) error {
	if err := validateFormat(c.flagFormat); err != nil {
		return err
	}

	table := c.global.client().Table(args[0])
	if table.Schema == "" {
		table.Schema = c.flagSchema
	}
	// A catalog without a schema is not a valid qualifier.
	if table.Catalog == "" && table.Schema != "" {
		table.Catalog = c.flagCatalog
	}

	rs, err := table.Describe(cmd.Context())
	if err != nil {
		return err
	}
	return printResultSet(cmd.OutOrStdout(), c.flagFormat, rs)
}
