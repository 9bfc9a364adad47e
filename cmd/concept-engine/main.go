// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the concept-engine CLI.
// It exposes the paper catalog, graph construction and analysis, concept
// search, and novel path sampling as subcommands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/concept-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built in PersistentPreRunE from the --verbose flag.
var logger = zap.NewNop()

// rootCmd is the base command for the concept-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "concept-engine",
	Short: "Concept graph construction and novel path sampling over a paper corpus",
	Long: `concept-engine turns a corpus of paper metadata into a weighted concept
graph and samples structurally novel paths through it.

Papers are read from YAML or JSON metadata files. Every graph command
extracts concepts, links co-occurring concepts, detects communities, and
scores betweenness before answering. The corpus subcommands maintain a
SQLite catalog with full-text search over the same files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./concept-engine.yaml or ~/.config/concept-engine/concept-engine.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log debug output to stderr")
	rootCmd.PersistentFlags().String("papers-dir", "", "directory of paper metadata files (default from config: papers)")
	rootCmd.PersistentFlags().String("index-dir", "", "directory of the SQLite paper catalog (default from config: index)")

	viper.BindPFlag("corpus.papers_dir", rootCmd.PersistentFlags().Lookup("papers-dir"))
	viper.BindPFlag("corpus.index_dir", rootCmd.PersistentFlags().Lookup("index-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("concept-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "concept-engine"))
		}
	}

	viper.SetEnvPrefix("CONCEPT_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setConfigDefaults(viper.GetViper(), types.DefaultEngineConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setConfigDefaults registers every configuration key so that environment
// variables resolve even when no config file sets them.
func setConfigDefaults(v *viper.Viper, d types.EngineConfig) {
	v.SetDefault("corpus.papers_dir", d.Corpus.PapersDir)
	v.SetDefault("corpus.index_dir", d.Corpus.IndexDir)
	v.SetDefault("corpus.max_results", d.Corpus.MaxResults)
	v.SetDefault("extraction.min_phrase_frequency", d.Extraction.MinPhraseFrequency)
	v.SetDefault("extraction.min_phrase_length", d.Extraction.MinPhraseLength)
	v.SetDefault("graph.edge_threshold", d.Graph.EdgeThreshold)
	v.SetDefault("analysis.resolution", d.Analysis.Resolution)
	v.SetDefault("analysis.max_levels", d.Analysis.MaxLevels)
	v.SetDefault("sampling.path_length", d.Sampling.PathLength)
	v.SetDefault("sampling.max_results", d.Sampling.MaxResults)
	v.SetDefault("sampling.seed", d.Sampling.Seed)
}

// engineConfig reads the effective configuration from v and validates it.
func engineConfig(v *viper.Viper) (types.EngineConfig, error) {
	cfg := types.EngineConfig{
		Corpus: types.CorpusConfig{
			PapersDir:  v.GetString("corpus.papers_dir"),
			IndexDir:   v.GetString("corpus.index_dir"),
			MaxResults: v.GetInt("corpus.max_results"),
		},
		Extraction: types.ExtractionConfig{
			MinPhraseFrequency: v.GetInt("extraction.min_phrase_frequency"),
			MinPhraseLength:    v.GetInt("extraction.min_phrase_length"),
		},
		Graph: types.GraphConfig{
			EdgeThreshold: v.GetFloat64("graph.edge_threshold"),
		},
		Analysis: types.AnalysisConfig{
			Resolution: v.GetFloat64("analysis.resolution"),
			MaxLevels:  v.GetInt("analysis.max_levels"),
		},
		Sampling: types.SamplingConfig{
			PathLength: v.GetInt("sampling.path_length"),
			MaxResults: v.GetInt("sampling.max_results"),
			Seed:       v.GetUint64("sampling.seed"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return types.EngineConfig{}, err
	}
	return cfg, nil
}

// newLogger returns a development logger when verbose, otherwise a
// production logger that only reports warnings and errors.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
