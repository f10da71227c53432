package main

import (
	"context"

	"github.com/spf13/cobra"

	"rpgpanel/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	open := func(ctx context.Context, name string) (mcp.Panel, error) {
		p, err := a.registry.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	server := mcp.NewServer(a.schema, open, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
