// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/concept-engine/internal/corpus"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the paper catalog (ingest, search)",
	Long: `Corpus manages a local SQLite catalog built from the paper metadata
files in the papers directory. Use subcommands to index the files or
search them.`,
}

// --- ingest subcommand ---

var corpusIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index paper metadata files into the catalog",
	Long: `Ingest reads every .yaml, .yml, and .json file in the papers directory
and loads its paper records into a SQLite catalog with FTS5 indexing.
Unchanged files are skipped on subsequent runs; a file that fails to
parse is reported and does not stop the run.`,
	RunE: runCorpusIngest,
}

func runCorpusIngest(cmd *cobra.Command, args []string) error {
	cfg, err := engineConfig(viper.GetViper())
	if err != nil {
		return err
	}

	idx, err := corpus.OpenIndex(cfg.Corpus)
	if err != nil {
		return err
	}
	defer idx.Close()

	summary, err := idx.Ingest(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var corpusSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over titles, abstracts, and keywords",
	Long: `Search runs an FTS5 query against the catalog. Quote phrases to match
them exactly; terms are combined with AND by default.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCorpusSearch,
}

func runCorpusSearch(cmd *cobra.Command, args []string) error {
	cfg, err := engineConfig(viper.GetViper())
	if err != nil {
		return err
	}

	idx, err := corpus.OpenIndex(cfg.Corpus)
	if err != nil {
		return err
	}
	defer idx.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	results, err := idx.Search(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []corpus.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-20s  %-60s  %s\n", "Rank", "Paper", "Title", "Year")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 94))

	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%-4d  %-20s  %-60s  %d\n",
			i+1, truncate(r.ID, 20), truncate(r.Title, 60), r.Year)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// truncate shortens s to n characters, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	corpusSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use corpus.max_results)")
	corpusSearchCmd.Flags().Bool("json", false, "output results as JSON")

	corpusCmd.AddCommand(corpusIngestCmd)
	corpusCmd.AddCommand(corpusSearchCmd)

	rootCmd.AddCommand(corpusCmd)
}
