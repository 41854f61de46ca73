package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	dbsql "github.com/KaushalVachhani/mcp-databricks-sql"
	"github.com/KaushalVachhani/mcp-databricks-sql/internal/config"
	"github.com/KaushalVachhani/mcp-databricks-sql/internal/logger"
	"github.com/KaushalVachhani/mcp-databricks-sql/internal/tool"
	"github.com/KaushalVachhani/mcp-databricks-sql/internal/version"
)

type cmdGlobal struct {
	flagHost        string
	flagToken       string
	flagWarehouseID string
	flagConfig      string
	flagDebug       bool
	flagQuiet       bool

	log logger.Logger
}

// PreRun loads .env, layers env and config file values onto the flags and
// sets up logging.
func (g *cmdGlobal) PreRun(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	if err := config.Bind(viper.New(), cmd.Flags()); err != nil {
		return err
	}

	g.log = logger.New(logger.Options{Debug: g.flagDebug, Quiet: g.flagQuiet, Output: cmd.ErrOrStderr()})
	return nil
}

func (g *cmdGlobal) client() *dbsql.Client {
	return dbsql.NewClient(&dbsql.Config{
		Host:        g.flagHost,
		Token:       g.flagToken,
		WarehouseID: g.flagWarehouseID,
	})
}

type cmdServe struct {
	global *cmdGlobal
}

func (c *cmdServe) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "dbsql-mcp"
	cmd.Short = "Databricks SQL statement execution MCP server"
	cmd.Long = `Databricks SQL statement execution MCP server

Without a subcommand, serves the execute_statement tool over stdio. The
subcommands run statements directly, for debugging.

Options are read from flags, then DATABRICKS_* environment variables
(e.g. DATABRICKS_WAREHOUSE_ID), then the --config file.`
	cmd.Args = cobra.NoArgs
	cmd.RunE = c.Run
	return cmd
}

func (c *cmdServe) Run(cmd *cobra.Command, _ []string) error {
	log := c.global.log
	if c.global.flagWarehouseID == "" {
		log.Warn("No default warehouse configured, every call must pass warehouse_id")
	}

	server := tool.NewServer(c.global.client(), log)
	log.Info("Serving on stdio", logger.Ctx{"version": version.Version, "host": c.global.flagHost})
	return server.Run(cmd.Context(), &mcp.StdioTransport{})
}

func newApp() *cobra.Command {
	globalCmd := cmdGlobal{}

	serveCmd := cmdServe{global: &globalCmd}
	app := serveCmd.Command()
	app.SilenceUsage = true
	app.CompletionOptions = cobra.CompletionOptions{DisableDefaultCmd: true}
	app.PersistentPreRunE = globalCmd.PreRun

	// Global flags
	app.PersistentFlags().StringVar(&globalCmd.flagHost, "host", "", "Databricks workspace URL")
	app.PersistentFlags().StringVar(&globalCmd.flagToken, "token", "", "Databricks personal access token")
	app.PersistentFlags().StringVar(&globalCmd.flagWarehouseID, "warehouse-id", "", "Default SQL warehouse ID")
	app.PersistentFlags().StringVar(&globalCmd.flagConfig, config.ConfigFlag, "", "Configuration file (toml, yaml or json)")
	app.PersistentFlags().BoolVarP(&globalCmd.flagDebug, "debug", "d", false, "Show all debug messages")
	app.PersistentFlags().BoolVarP(&globalCmd.flagQuiet, "quiet", "q", false, "Only show warnings and errors")

	// Version handling
	app.SetVersionTemplate("{{.Version}}\n")
	app.Version = version.Version

	// exec sub-command
	execCmd := cmdExec{global: &globalCmd}
	app.AddCommand(execCmd.Command())

	// statement sub-command
	statementCmd := cmdStatement{global: &globalCmd}
	app.AddCommand(statementCmd.Command())

	// describe sub-command
	describeCmd := cmdDescribe{global: &globalCmd}
	app.AddCommand(describeCmd.Command())

	return app
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newApp().ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}
