package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Run a ranked search over the publication corpus",
	Long: `Search ranks publications against the query by TF-IDF cosine similarity.
An empty query browses the whole corpus, newest first. Results whose
scores tie exactly are ordered by the sort key.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := engineConfig(cmd)
	e, err := openEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if err := e.ReloadCorpus(ctx); err != nil {
		return err
	}

	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")
	sortBy, _ := cmd.Flags().GetString("sort-by")
	sortOrder, _ := cmd.Flags().GetString("sort-order")

	result, err := e.Search(ctx, strings.Join(args, " "), page, size,
		types.SortBy(sortBy), types.SortOrder(sortOrder))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(result, jsonOutput)
}

func formatSearchOutput(page types.SearchPage, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}

	if page.Total == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-7s  %-45s  %-28s  %s\n",
		"Rank", "Score", "Title", "Authors", "Published")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	rank := (page.Page-1)*page.Size + 1
	for i, r := range page.Results {
		names := make([]string, len(r.Authors))
		for j, a := range r.Authors {
			names[j] = a.Name
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-7.4f  %-45s  %-28s  %s\n",
			rank+i, r.Score, truncate(r.Title, 45), truncate(strings.Join(names, ", "), 28), r.PublishedDate)
	}

	fmt.Fprintf(os.Stdout, "\n%d result(s), page %d/%d\n", page.Total, page.Page, page.TotalPages)
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	searchCmd.Flags().Int("page", 1, "1-based result page")
	searchCmd.Flags().Int("size", 0, "results per page (default 10)")
	searchCmd.Flags().String("sort-by", "", "tie-break order: relevance, title, or date")
	searchCmd.Flags().String("sort-order", "", "sort direction: asc or desc")
	searchCmd.Flags().Bool("json", false, "output the result page as JSON")

	rootCmd.AddCommand(searchCmd)
}
