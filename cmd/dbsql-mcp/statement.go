package main

import (
	"github.com/spf13/cobra"

	"github.com/KaushalVachhani/mcp-databricks-sql/internal/logger"
)

type cmdStatement struct {
	global *cmdGlobal
}

func (c *cmdStatement) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "statement"
	cmd.Short = "Manage submitted statements"
	cmd.Args = cobra.NoArgs
	cmd.RunE = func(cmd *cobra.Command, _ []string) error { return cmd.Help() }

	// Get
	statementGetCmd := cmdStatementGet{global: c.global}
	cmd.AddCommand(statementGetCmd.Command())

	// Cancel
	statementCancelCmd := cmdStatementCancel{global: c.global}
	cmd.AddCommand(statementCancelCmd.Command())

	return cmd
}

// Get.
type cmdStatementGet struct {
	global *cmdGlobal
}

func (c *cmdStatementGet) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "get <id>"
	cmd.Short = "Show the status and result of a statement"
	cmd.Args = cobra.ExactArgs(1)
	cmd.RunE = c.Run
	return cmd
}

func (c *cmdStatementGet) Run(cmd *cobra.Command, args []string) error {
	handle, err := c.global.client().StatementHandle(args[0])
	if err != nil {
		return err
	}
	if err := handle.FetchOnce(cmd.Context()); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), handle.Response())
}

// Cancel.
type cmdStatementCancel struct {
	global *cmdGlobal
}

func (c *cmdStatementCancel) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "cancel <id>"
	cmd.Short = "Cancel a pending or running statement"
	cmd.Args = cobra.ExactArgs(1)
	cmd.RunE = c.Run
	return cmd
}

func (c *cmdStatementCancel) Run(cmd *cobra.Command, args []string) error {
	handle, err := c.global.client().StatementHandle(args[0])
	if err != nil {
		return err
	}
	if err := handle.Cancel(cmd.Context()); err != nil {
		return err
	}
	c.global.log.Info("Statement cancellation requested", logger.Ctx{"statement": handle.ID()})
	return nil
}
