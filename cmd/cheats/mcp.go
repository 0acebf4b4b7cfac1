package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/opsdeck/cheatsheets/api"
	"github.com/opsdeck/cheatsheets/constants"
	mcpserver "github.com/opsdeck/cheatsheets/mcp"
	"github.com/opsdeck/cheatsheets/utils"
	"github.com/spf13/cobra"
)

// newMCPCmd creates the 'mcp' subcommand and its subcommands.
func newMCPCmd(sess *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.CmdMCP,
		Short: constants.DescMCP,
	}
	cmd.AddCommand(newMCPServeCmd(sess), newMCPToolsCmd())
	return cmd
}

// newMCPServeCmd creates the serve subcommand for MCP
func newMCPServeCmd(sess *session) *cobra.Command {
	var stdio bool
	var addr string
	cmd := &cobra.Command{
		Use:   constants.CmdServe,
		Short: constants.DescMCPServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := sess.service(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return mcpserver.Serve(ctx, mcpserver.ServeOptions{
				Stdio: stdio,
				Addr:  addr,
				Debug: debug,
			}, api.GenerateMCPTools(svc))
		},
	}
	cmd.Flags().BoolVar(&stdio, "stdio", true, "serve over stdin/stdout instead of HTTP (default)")
	cmd.Flags().StringVar(&addr, "addr", constants.DefaultMCPAddr, "listen address for HTTP mode")
	return cmd
}

// newMCPToolsCmd lists the tool names and descriptions without serving.
func newMCPToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools this server exposes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, tool := range api.GenerateMCPTools(nil) {
				utils.User("%-28s %s", tool.Name, tool.Description)
			}
			return nil
		},
	}
}
