package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ninja-mcp",
	Short: "MCP server for the Invoice Ninja API",
	Long: `ninja-mcp exposes an Invoice Ninja v5 instance as MCP tools for AI agents:
clients, invoices, projects, tasks with time tracking, payments, expenses,
documents, and reporting. Configure with NINJA_URL and NINJA_TOKEN.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pingCmd)
}
