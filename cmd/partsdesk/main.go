package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/partsdesk/internal/cli"
	"github.com/cloo-solutions/partsdesk/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "partsdesk",
		Short: "Partsdesk CLI - ask the appliance parts assistant",
		Long: `Partsdesk CLI talks to a running partsdeskd server.

Environment variables:
  PARTSDESK_API_URL   API base URL (default: http://localhost:8000)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.HealthCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
