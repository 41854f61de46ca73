package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KaushalVachhani/mcp-databricks-sql/internal/agent"
	"github.com/KaushalVachhani/mcp-databricks-sql/internal/config"
	"github.com/KaushalVachhani/mcp-databricks-sql/internal/llm"
	"github.com/KaushalVachhani/mcp-databricks-sql/internal/logger"
	"github.com/KaushalVachhani/mcp-databricks-sql/internal/mcpclient"
	"github.com/KaushalVachhani/mcp-databricks-sql/internal/version"
)

const defaultInstruction = `
        Give me last 2 transaction data for customer id C10001.

        Use catalog "kaushal" and schema "b2b" to find relevent tables.
        `

// toolsConnector starts the configured tool servers. Tests replace it.
type toolsConnector func(ctx context.Context, log logger.Logger, path string) (*mcpclient.Client, error)

func connectTools(ctx context.Context, log logger.Logger, path string) (*mcpclient.Client, error) {
	cfg, err := mcpclient.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	client := mcpclient.New(log)
	if err := client.ConnectAll(ctx, cfg); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

type cmdAgent struct {
	flagHost        string
	flagToken       string
	flagModel       string
	flagTemperature float64
	flagMaxSteps    int
	flagMCPConfig   string
	flagConfig      string
	flagDebug       bool
	flagQuiet       bool

	connect toolsConnector
}

func (c *cmdAgent) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "dbsql-agent [instruction]"
	cmd.Short = "Answer a question with the Databricks SQL tools"
	cmd.Long = `Answer a question with the Databricks SQL tools

Starts the MCP servers listed in the --mcp-config file, then lets the chat
model call their tools until it has an answer, which is printed.

Options are read from flags, then DATABRICKS_* environment variables
(e.g. DATABRICKS_MODEL), then the --config file. A .env file in the working
directory is loaded first.`
	cmd.Args = cobra.MaximumNArgs(1)
	cmd.PreRunE = c.PreRun
	cmd.RunE = c.Run

	cmd.Flags().StringVar(&c.flagHost, "host", "", "Databricks workspace URL")
	cmd.Flags().StringVar(&c.flagToken, "token", "", "Databricks personal access token")
	cmd.Flags().StringVar(&c.flagModel, "model", llm.DefaultModel, "Chat model serving endpoint")
	cmd.Flags().Float64Var(&c.flagTemperature, "temperature", 0, "Sampling temperature")
	cmd.Flags().IntVar(&c.flagMaxSteps, "max-steps", agent.DefaultMaxSteps, "Maximum number of agent steps")
	cmd.Flags().StringVar(&c.flagMCPConfig, "mcp-config", mcpclient.DefaultConfigFile, "MCP servers configuration file")
	cmd.Flags().StringVar(&c.flagConfig, config.ConfigFlag, "", "Configuration file (toml, yaml or json)")
	cmd.Flags().BoolVarP(&c.flagDebug, "debug", "d", false, "Show all debug messages")
	cmd.Flags().BoolVarP(&c.flagQuiet, "quiet", "q", false, "Only show warnings and errors")
	return cmd
}

func (c *cmdAgent) PreRun(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	return config.Bind(viper.New(), cmd.Flags())
}

func (c *cmdAgent) Run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.New(logger.Options{Debug: c.flagDebug, Quiet: c.flagQuiet, Output: cmd.ErrOrStderr()})

	instruction := defaultInstruction
	if len(args) == 1 {
		instruction = args[0]
	}

	tools, err := c.connect(ctx, log, c.flagMCPConfig)
	if err != nil {
		return err
	}
	defer func() { _ = tools.Close() }()

	a := agent.New(&agent.Config{
		Model: llm.NewChatModel(&llm.Config{
			Host:        c.flagHost,
			Token:       c.flagToken,
			Model:       c.flagModel,
			Temperature: c.flagTemperature,
		}),
		Tools:    tools,
		MaxSteps: c.flagMaxSteps,
		Logger:   log,
	})

	// Running out of steps still yields a result to print.
	result, err := a.Run(ctx, instruction)
	if err != nil && !errors.Is(err, agent.ErrMaxSteps) {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "\nResult: %s\n", result)
	return err
}

func newApp(connect toolsConnector) *cobra.Command {
	agentCmd := cmdAgent{connect: connect}
	app := agentCmd.Command()
	app.SilenceUsage = true
	app.CompletionOptions = cobra.CompletionOptions{DisableDefaultCmd: true}

	// Version handling
	app.SetVersionTemplate("{{.Version}}\n")
	app.Version = version.Version
	return app
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newApp(connectTools).ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}
