package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/comigor/roomchat/internal/config"
	"github.com/comigor/roomchat/internal/logger"
)

var (
	storagePath string
	logLevel    string
	version     = "dev"

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "roomchat",
	Short: "Chatrooms with a simulated assistant",
	Long: `roomchat keeps a set of chatrooms, each with its own persisted history, and
answers every message with a delayed assistant reply.

  roomchat serve              # HTTP API on server.host:server.port
  roomchat mcp                # MCP tools on stdio
  roomchat show <room-id>     # print a room's history`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cmd.Flags().Changed("storage") {
			cfg.Storage.Path = storagePath
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		logger.SetLevel(cfg.LogLevel)
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "sqlite file holding rooms and messages (empty keeps everything in memory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(serveCmd, mcpCmd, showCmd)
}
