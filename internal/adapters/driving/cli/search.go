package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// snippetLength bounds the chunk text printed per result.
const snippetLength = 160

var (
	searchLimit    int
	searchMinScore float64
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the organisation's knowledge",
	Long: `Embeds the query and ranks the organisation's chunks by cosine
similarity. Results below the minimum score are dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultMatchCount, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", domain.DefaultMinScore, "minimum similarity (0 returns every match, negative disables)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	resp, err := retrievalService.SearchText(cmd.Context(), tenantID, args[0], searchLimit, searchMinScore)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, resp)
	}
	return outputSearchTable(cmd, resp)
}

func outputSearchJSON(cmd *cobra.Command, resp *domain.SearchResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, resp *domain.SearchResponse) error {
	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Intent: %s\n\n", resp.Intent)
	for i := range resp.Results {
		r := &resp.Results[i]
		title := r.Document.Title
		if title == "" {
			title = r.DocumentID
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, r.Score)
		if snippet := snippet(r.Content); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}
	return nil
}

// snippet flattens whitespace and truncates to snippetLength runes.
func snippet(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	runes := []rune(s)
	if len(runes) <= snippetLength {
		return s
	}
	return string(runes[:snippetLength]) + "..."
}
