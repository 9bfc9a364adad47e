// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes ranked paths and annotated graph snapshots as YAML
// or JSON for the hypothesis-generation stage and for inspection.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/concept-engine/internal/graph"
	"github.com/pdiddy/concept-engine/pkg/types"
)

// Format is an output encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml", or "json" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want yaml or json)", s)
	}
}

// FormatFor picks the format from a file extension, defaulting to YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// PathEntry is one ranked path in export form.
type PathEntry struct {
	Rank        int        `json:"rank" yaml:"rank"`
	Novelty     float64    `json:"novelty" yaml:"novelty"`
	TotalWeight float64    `json:"total_weight" yaml:"total_weight"`
	Concepts    []PathStep `json:"concepts" yaml:"concepts"`
	Links       []PathLink `json:"links" yaml:"links"`
}

// PathStep is a concept on a path.
type PathStep struct {
	ID    string            `json:"id" yaml:"id"`
	Label string            `json:"label" yaml:"label"`
	Type  types.ConceptType `json:"type" yaml:"type"`
}

// PathLink is an edge on a path with the papers that support it.
type PathLink struct {
	Source   string   `json:"source" yaml:"source"`
	Target   string   `json:"target" yaml:"target"`
	Relation string   `json:"relation" yaml:"relation"`
	Weight   float64  `json:"weight" yaml:"weight"`
	Evidence []string `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// Paths converts ranked paths into export entries, ranked from 1.
func Paths(paths []types.GraphPath) []PathEntry {
	entries := make([]PathEntry, len(paths))
	for i, p := range paths {
		e := PathEntry{
			Rank:        i + 1,
			Novelty:     p.Novelty,
			TotalWeight: p.TotalWeight,
			Concepts:    make([]PathStep, len(p.Nodes)),
			Links:       make([]PathLink, len(p.Edges)),
		}
		for j, n := range p.Nodes {
			e.Concepts[j] = PathStep{ID: n.ID, Label: n.Label, Type: n.Type}
		}
		for j, edge := range p.Edges {
			e.Links[j] = PathLink{
				Source:   edge.Source,
				Target:   edge.Target,
				Relation: edge.Relation,
				Weight:   edge.Weight,
				Evidence: edge.Evidence,
			}
		}
		entries[i] = e
	}
	return entries
}

// Annotations supplies per-concept community and centrality values.
// *analysis.Annotations satisfies it.
type Annotations interface {
	Community(id string) (int, bool)
	Centrality(id string) (float64, bool)
}

// Snapshot is a whole graph in export form.
type Snapshot struct {
	Metadata types.GraphMetadata `json:"metadata" yaml:"metadata"`
	Concepts []ConceptEntry      `json:"concepts" yaml:"concepts"`
	Edges    []types.ConceptEdge `json:"edges" yaml:"edges"`
}

// ConceptEntry is a concept with its analysis annotations, when known.
type ConceptEntry struct {
	ID         string            `json:"id" yaml:"id"`
	Label      string            `json:"label" yaml:"label"`
	Type       types.ConceptType `json:"type" yaml:"type"`
	Frequency  int               `json:"frequency" yaml:"frequency"`
	Papers     []string          `json:"papers" yaml:"papers"`
	Community  *int              `json:"community,omitempty" yaml:"community,omitempty"`
	Centrality *float64          `json:"centrality,omitempty" yaml:"centrality,omitempty"`
}

// Graph snapshots g. ann may be nil for an unanalyzed graph.
func Graph(g *graph.Graph, ann Annotations) Snapshot {
	nodes := g.Nodes()
	s := Snapshot{
		Metadata: g.Metadata(),
		Concepts: make([]ConceptEntry, len(nodes)),
		Edges:    g.Edges(),
	}
	for i, n := range nodes {
		e := ConceptEntry{
			ID:        n.ID,
			Label:     n.Label,
			Type:      n.Type,
			Frequency: n.Frequency,
			Papers:    n.Papers,
		}
		if ann != nil {
			if c, ok := ann.Community(n.ID); ok {
				e.Community = &c
			}
			if c, ok := ann.Centrality(n.ID); ok {
				e.Centrality = &c
			}
		}
		s.Concepts[i] = e
	}
	return s
}

// Write encodes v to w.
func Write(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteFile encodes v to path, creating parent directories. An empty format
// is chosen from the file extension.
func WriteFile(path string, format Format, v any) error {
	if format == "" {
		format = FormatFor(path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, format, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
