package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-splitter/server"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start the Model Context Protocol server over stdio.

The server exposes the pdf-split tool and pdf-split://plan resources that
describe what a split would produce. Logs must not go to stdout in this mode.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Log.Output == "stdout" {
				a.log.Warn("logging to stdout corrupts the MCP stream")
			}

			store, err := a.objectStore()
			if err != nil {
				return err
			}

			a.log.Info("Starting pdf-splitter MCP server")
			srv := server.CreateServer(a.service(store), a.log)
			if err := srv.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				a.log.Error("Server failed: %v", err)
				return err
			}
			return nil
		},
	}
}
