package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/comigor/roomchat/internal/app"
	"github.com/comigor/roomchat/internal/logger"
	"github.com/comigor/roomchat/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the chatroom tools over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetOutput(os.Stderr)

		a := app.New(cmd.Context(), cfg)
		defer a.Close()

		return mcpserver.New(a, version).ServeStdio()
	},
}
