// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/concept-engine/internal/corpus"
	"github.com/pdiddy/concept-engine/internal/export"
	"github.com/pdiddy/concept-engine/internal/reasoning"
	"github.com/pdiddy/concept-engine/pkg/types"
)

// loadSession loads the corpus, builds the concept graph, and analyzes it.
// Progress lines go to stderr so stdout stays parseable.
func loadSession(cmd *cobra.Command) (*reasoning.Session, error) {
	cfg, err := engineConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()

	papers, err := loadPapers(cmd, cfg.Corpus)
	if err != nil {
		return nil, err
	}
	if len(papers) == 0 {
		return nil, fmt.Errorf("no papers found in %s", cfg.Corpus.PapersDir)
	}

	s, err := reasoning.NewSession(cfg, reasoning.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if _, err := s.BuildGraph(ctx, papers); err != nil {
		return nil, err
	}
	if err := s.Analyze(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func loadPapers(cmd *cobra.Command, cfg types.CorpusConfig) ([]types.Paper, error) {
	fromIndex, _ := cmd.Flags().GetBool("from-index")
	if fromIndex {
		idx, err := corpus.OpenIndex(cfg)
		if err != nil {
			return nil, err
		}
		defer idx.Close()
		return idx.Papers(cmd.Context())
	}

	store, _, err := corpus.LoadDir(cmd.Context(), cfg.PapersDir, os.Stderr)
	if err != nil {
		return nil, err
	}
	return store.Papers(), nil
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect the concept graph (stats, export)",
	Long: `Graph builds the concept graph from the corpus and reports on it.
The graph is rebuilt on every run; nothing is persisted.`,
}

// --- stats subcommand ---

var graphStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print graph size, community structure, and top bridge concepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd)
		if err != nil {
			return err
		}
		sum, err := s.Summary()
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			return export.Write(os.Stdout, export.FormatJSON, sum)
		}

		fmt.Printf("Papers:       %d (%d without concepts)\n", sum.Papers, sum.EmptyPapers)
		fmt.Printf("Concepts:     %d\n", sum.Concepts)
		fmt.Printf("Edges:        %d\n", sum.Edges)
		fmt.Printf("Communities:  %d\n", sum.Communities)
		fmt.Printf("Modularity:   %.4f\n", sum.Modularity)
		if len(sum.Bridges) > 0 {
			fmt.Println("\nTop bridge concepts:")
			for i, n := range sum.Bridges {
				fmt.Printf("  %d. %s (%s)\n", i+1, n.Label, n.ID)
			}
		}
		return nil
	},
}

// --- export subcommand ---

var graphExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the annotated graph to YAML or JSON",
	Long: `Export writes every concept with its community and centrality, and
every edge with its weight and evidence papers. The format follows --format,
or the --out extension when --format is not set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd)
		if err != nil {
			return err
		}
		ann, err := s.Annotations()
		if err != nil {
			return err
		}
		return writeOutput(cmd, export.Graph(s.Graph(), ann))
	},
}

// --- concept queries ---

var conceptsCmd = &cobra.Command{
	Use:   "concepts <keyword>...",
	Short: "Find concepts whose label contains any keyword",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd)
		if err != nil {
			return err
		}
		matches := s.SearchConcepts(args)

		limit, _ := cmd.Flags().GetInt("limit")
		if limit > 0 && len(matches) > limit {
			matches = matches[:limit]
		}
		return printConcepts(s, matches)
	},
}

var bridgesCmd = &cobra.Command{
	Use:   "bridges",
	Short: "List the concepts with the highest betweenness centrality",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd)
		if err != nil {
			return err
		}
		top, _ := cmd.Flags().GetInt("top")
		bridges, err := s.FindBridgeConcepts(top)
		if err != nil {
			return err
		}
		return printConcepts(s, bridges)
	},
}

var communityCmd = &cobra.Command{
	Use:   "community <concept-id>",
	Short: "Show the community of a concept and its other members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd)
		if err != nil {
			return err
		}
		c, ok, err := s.GetCommunity(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("concept %q not found", args[0])
		}

		limit, _ := cmd.Flags().GetInt("limit")
		members, err := s.CommunityMembers(args[0], limit)
		if err != nil {
			return err
		}
		fmt.Printf("%s is in community %d\n\n", args[0], c)
		return printConcepts(s, members)
	},
}

func printConcepts(s *reasoning.Session, nodes []types.ConceptNode) error {
	if len(nodes) == 0 {
		fmt.Println("No concepts found.")
		return nil
	}
	ann, err := s.Annotations()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%-30s  %-10s  %-9s  %-6s  %-9s  %s\n",
		"Concept", "Type", "Frequency", "Papers", "Community", "Centrality")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, n := range nodes {
		community, _ := ann.Community(n.ID)
		centrality, _ := ann.Centrality(n.ID)
		fmt.Fprintf(os.Stdout, "%-30s  %-10s  %-9d  %-6d  %-9d  %.4f\n",
			truncate(n.ID, 30), n.Type, n.Frequency, len(n.Papers), community, centrality)
	}
	return nil
}

// writeOutput encodes v to --out, or to stdout when --out is empty.
func writeOutput(cmd *cobra.Command, v any) error {
	out, _ := cmd.Flags().GetString("out")
	formatFlag, _ := cmd.Flags().GetString("format")

	var format export.Format
	if formatFlag != "" {
		f, err := export.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		format = f
	}

	if out == "" {
		if format == "" {
			format = export.FormatYAML
		}
		return export.Write(os.Stdout, format, v)
	}

	if err := export.WriteFile(out, format, v); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported to %s\n", out)
	return nil
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("out", "", "output file (default: stdout)")
	cmd.Flags().String("format", "", "output format: yaml or json (default: from --out extension, else yaml)")
}

func init() {
	rootCmd.PersistentFlags().Bool("from-index", false, "load papers from the catalog instead of the papers directory")

	graphStatsCmd.Flags().Bool("json", false, "output the summary as JSON")
	addOutputFlags(graphExportCmd)

	conceptsCmd.Flags().Int("limit", 20, "maximum concepts to list (0 = all)")
	bridgesCmd.Flags().Int("top", 10, "number of bridge concepts to list")
	communityCmd.Flags().Int("limit", 20, "maximum members to list (0 = all)")

	graphCmd.AddCommand(graphStatsCmd)
	graphCmd.AddCommand(graphExportCmd)

	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(conceptsCmd)
	rootCmd.AddCommand(bridgesCmd)
	rootCmd.AddCommand(communityCmd)
}
