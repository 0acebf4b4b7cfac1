// Package mcp serves catalog operations as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"io"

	mcp "github.com/metoro-io/mcp-golang"
	mcphttp "github.com/metoro-io/mcp-golang/transport/http"
	mcpstdio "github.com/metoro-io/mcp-golang/transport/stdio"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/utils"
)

// ToolRegistration holds a tool's registration info for the MCP server.
type ToolRegistration struct {
	Name        string
	Description string
	Handler     any // must be a func(ctx, args) (*mcp.ToolResponse, error)
}

// ServeOptions selects the transport.
type ServeOptions struct {
	// Stdio serves over stdin/stdout; otherwise HTTP on Addr.
	Stdio bool
	Addr  string
	Debug bool
}

// Serve runs an MCP server with the given tools until ctx is cancelled.
func Serve(ctx context.Context, opts ServeOptions, tools []ToolRegistration) error {
	// stdout belongs to the protocol in stdio mode
	if opts.Stdio && !opts.Debug {
		utils.SetUserOutput(io.Discard)
	}

	var server *mcp.Server
	var closer interface{ Close() error }
	if opts.Stdio {
		utils.Info("Starting MCP server on stdio...")
		transport := mcpstdio.NewStdioServerTransport()
		server = mcp.NewServer(transport)
		closer = transport
	} else {
		addr := opts.Addr
		if addr == "" {
			addr = constants.DefaultMCPAddr
		}
		utils.Info("Starting MCP server on HTTP at %s...", addr)
		transport := mcphttp.NewHTTPTransport(constants.PathMCP).WithAddr(addr)
		server = mcp.NewServer(transport)
		closer = transport
	}
	if err := RegisterAllTools(server, tools); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve() }()

	select {
	case err := <-errCh:
		if err != nil {
			return utils.Errorf("MCP server failed: %w", err)
		}
		// the stdio transport returns as soon as it is listening
		<-ctx.Done()
	case <-ctx.Done():
	}
	utils.Info("Shutting down MCP server")
	if err := closer.Close(); err != nil && !errors.Is(err, context.Canceled) {
		utils.Warn("MCP transport close: %v", err)
	}
	return nil
}

// RegisterAllTools registers all provided tools with the MCP server.
func RegisterAllTools(server *mcp.Server, tools []ToolRegistration) error {
	for _, t := range tools {
		if err := server.RegisterTool(t.Name, t.Description, t.Handler); err != nil {
			return utils.Errorf("register MCP tool %s: %w", t.Name, err)
		}
	}
	return nil
}

// EmptyArgs is the argument type of tools that take no input.
type EmptyArgs struct{}
