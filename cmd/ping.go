package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/averden/invoice-ninja-mcp/internal/config"
	"github.com/averden/invoice-ninja-mcp/internal/ninja"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity to the configured Invoice Ninja instance",
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func runPing(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	api := ninja.New(cfg)
	if err := api.Ping(cmd.Context()); err != nil {
		fmt.Fprintf(os.Stderr, "Connection failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully connected to %s\n", cfg.BaseURL)
	return nil
}
