// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/concept-engine/internal/export"
	"github.com/pdiddy/concept-engine/internal/reasoning"
	"github.com/pdiddy/concept-engine/pkg/types"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Sample novel paths through the concept graph",
	Long: `Paths samples concept chains and ranks them by novelty: how often they
cross community boundaries, how weak their links are, how long they are,
and how far they stay from hub concepts.`,
}

var pathsFindCmd = &cobra.Command{
	Use:   "find <source-id> [target-id]",
	Short: "Find paths from a concept, or the shortest path between two",
	Long: `Find samples diverse community-biased walks from the source concept.
With a target it returns the shortest path between the two concepts instead.
Equal --seed values give equal results.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd)
		if err != nil {
			return err
		}
		target := ""
		if len(args) == 2 {
			target = args[1]
		}

		paths, err := s.FindPaths(cmd.Context(), args[0], target, pathOptions(cmd, s))
		if err != nil {
			return err
		}
		return emitPaths(cmd, paths)
	},
}

var pathsExploreCmd = &cobra.Command{
	Use:   "explore <keyword>...",
	Short: "Find paths from the most frequent concept matching the keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd)
		if err != nil {
			return err
		}

		exp, err := s.Explore(cmd.Context(), args, pathOptions(cmd, s))
		if err != nil {
			return err
		}
		if exp == nil {
			fmt.Printf("No concepts match %q.\n", strings.Join(args, " "))
			return nil
		}
		fmt.Fprintf(os.Stderr, "Exploring from %s (%s)\n", exp.Source.Label, exp.Source.ID)
		return emitPaths(cmd, exp.Paths)
	},
}

// pathOptions starts from the configured sampling defaults and applies any
// flags the user set.
func pathOptions(cmd *cobra.Command, s *reasoning.Session) reasoning.PathOptions {
	opts := s.DefaultPathOptions()
	if cmd.Flags().Changed("length") {
		opts.PathLength, _ = cmd.Flags().GetInt("length")
	}
	if cmd.Flags().Changed("max-results") {
		opts.MaxResults, _ = cmd.Flags().GetInt("max-results")
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	return opts
}

// emitPaths writes paths as YAML or JSON when --out or --format is set,
// otherwise as a readable list.
func emitPaths(cmd *cobra.Command, paths []types.GraphPath) error {
	out, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")
	if out != "" || format != "" {
		return writeOutput(cmd, export.Paths(paths))
	}

	if len(paths) == 0 {
		fmt.Println("No paths found.")
		return nil
	}
	for i, p := range paths {
		labels := make([]string, len(p.Nodes))
		for j, n := range p.Nodes {
			labels[j] = n.Label
		}
		fmt.Printf("%2d. [novelty %.3f, weight %.3f] %s\n",
			i+1, p.Novelty, p.TotalWeight, strings.Join(labels, " -> "))
	}
	fmt.Printf("\n%d paths\n", len(paths))
	return nil
}

func init() {
	for _, c := range []*cobra.Command{pathsFindCmd, pathsExploreCmd} {
		c.Flags().Int("length", 0, "maximum concepts per path (default from config: 5)")
		c.Flags().Int("max-results", 0, "maximum paths returned (default from config: 10)")
		c.Flags().Uint64("seed", 0, "random seed for walk sampling (default from config: 42)")
		addOutputFlags(c)
	}

	pathsCmd.AddCommand(pathsFindCmd)
	pathsCmd.AddCommand(pathsExploreCmd)

	rootCmd.AddCommand(pathsCmd)
}
