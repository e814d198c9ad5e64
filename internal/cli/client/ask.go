package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/spf13/cobra"
)

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var pageURL string

	cmd := &cobra.Command{
		Use:   "ask <message>...",
		Short: "Ask the parts assistant a question",
		Long: `Sends one message to the chat API and prints the answer, any referenced
parts and follow-up suggestions.

Use --page-url to ask about the part on a product page.`,
		Example: `partsdesk ask "How do I install PS11752778?"
partsdesk ask "will this fit my fridge?" --page-url https://www.partselect.com/PS11752778-Whirlpool-W10321304-Refrigerator-Door-Shelf-Bin.htm
partsdesk ask --output "Is PS3406971 in stock?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			client := NewAPIClientWithCmd(cmd)

			resp, err := client.Chat(cmd.Context(), domain.ChatRequest{
				Message: strings.Join(args, " "),
				PageURL: pageURL,
			})
			if err != nil {
				return err
			}

			if outputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			printAnswer(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&pageURL, "page-url", "", "Product page the question is asked from")

	return cmd
}

func printAnswer(w io.Writer, resp *domain.ChatResponse) {
	fmt.Fprintln(w, resp.Content)

	if len(resp.Parts) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Parts:")
		for _, part := range resp.Parts {
			line := fmt.Sprintf("  %s  %s", part.PartNumber, part.Name)
			if part.Price != "" {
				line += "  " + part.Price
			}
			if part.InStock != nil && !*part.InStock {
				line += "  (out of stock)"
			}
			fmt.Fprintln(w, line)
			if part.PartURL != "" {
				fmt.Fprintf(w, "    %s\n", part.PartURL)
			}
		}
	}

	if len(resp.SuggestedQueries) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "You could also ask:")
		for _, q := range resp.SuggestedQueries {
			fmt.Fprintf(w, "  - %s\n", q)
		}
	}
}

// HealthCmd creates the health command.
func HealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			status, err := NewAPIClientWithCmd(cmd).Health(cmd.Context())
			if err != nil {
				return err
			}

			if outputJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
			}
			if status.Chunks != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d chunks indexed)\n", status.Status, *status.Chunks)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), status.Status)
			return nil
		},
	}
}
