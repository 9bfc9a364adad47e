// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis annotates a concept graph with community assignments and
// betweenness centrality.
//
// Both annotations are computed once per graph, as a batch, by Analyze.
// Every query before that returns ErrNotAnalyzed.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pdiddy/concept-engine/internal/graph"
	"github.com/pdiddy/concept-engine/pkg/types"
)

// ErrNotAnalyzed is returned by queries made before Analyze has run.
var ErrNotAnalyzed = errors.New("graph not analyzed: call Analyze first")

// CommunityDetector partitions a graph into communities.
type CommunityDetector interface {
	Detect(ctx context.Context, g *graph.Graph) (map[string]int, error)
}

// CentralityScorer assigns a centrality score to every node of a graph.
type CentralityScorer interface {
	Score(ctx context.Context, g *graph.Graph) (map[string]float64, error)
}

// Annotations holds the derived per-node maps. It is read-only once
// returned by Analyze and may be shared by concurrent readers.
type Annotations struct {
	communities map[string]int
	centrality  map[string]float64
	members     map[int][]string

	// Modularity is the modularity of the community partition.
	Modularity float64

	// CommunityCount is the number of distinct communities.
	CommunityCount int
}

// NewAnnotations builds Annotations from precomputed maps. order fixes the
// member order of each community; ids missing from communities are skipped.
func NewAnnotations(order []string, communities map[string]int, centrality map[string]float64) *Annotations {
	a := &Annotations{
		communities: communities,
		centrality:  centrality,
		members:     make(map[int][]string),
	}
	for _, id := range order {
		c, ok := communities[id]
		if !ok {
			continue
		}
		a.members[c] = append(a.members[c], id)
	}
	a.CommunityCount = len(a.members)
	return a
}

// Community returns the community id of a concept. A nil *Annotations
// knows no concepts.
func (a *Annotations) Community(id string) (int, bool) {
	if a == nil {
		return 0, false
	}
	c, ok := a.communities[id]
	return c, ok
}

// Centrality returns the betweenness score of a concept.
func (a *Annotations) Centrality(id string) (float64, bool) {
	if a == nil {
		return 0, false
	}
	s, ok := a.centrality[id]
	return s, ok
}

// HasCommunities reports whether any community assignment exists.
func (a *Annotations) HasCommunities() bool {
	return a != nil && len(a.communities) > 0
}

// Members returns the ids in a community, in graph order.
func (a *Annotations) Members(community int) []string {
	return a.members[community]
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDetector replaces the default Louvain detector.
func WithDetector(d CommunityDetector) Option {
	return func(a *Analyzer) { a.detector = d }
}

// WithCentrality replaces the default betweenness scorer.
func WithCentrality(s CentralityScorer) Option {
	return func(a *Analyzer) { a.scorer = s }
}

// Analyzer computes and serves the annotations of one graph.
type Analyzer struct {
	g        *graph.Graph
	detector CommunityDetector
	scorer   CentralityScorer
	ann      *Annotations
}

// NewAnalyzer returns an Analyzer for g using Louvain and Betweenness unless
// overridden.
func NewAnalyzer(g *graph.Graph, cfg types.AnalysisConfig, opts ...Option) *Analyzer {
	a := &Analyzer{
		g:        g,
		detector: Louvain{Resolution: cfg.Resolution, MaxLevels: cfg.MaxLevels},
		scorer:   Betweenness{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes communities and centrality for the whole graph.
// Calling it again recomputes both.
func (a *Analyzer) Analyze(ctx context.Context) error {
	communities, err := a.detector.Detect(ctx, a.g)
	if err != nil {
		return fmt.Errorf("detecting communities: %w", err)
	}
	centrality, err := a.scorer.Score(ctx, a.g)
	if err != nil {
		return fmt.Errorf("scoring centrality: %w", err)
	}

	ann := NewAnnotations(a.g.NodeIDs(), communities, centrality)
	ann.Modularity = Modularity(a.g, communities, DefaultResolution)
	a.ann = ann
	return nil
}

// Analyzed reports whether Analyze has completed.
func (a *Analyzer) Analyzed() bool {
	return a.ann != nil
}

// Annotations returns the computed maps.
func (a *Analyzer) Annotations() (*Annotations, error) {
	if a.ann == nil {
		return nil, ErrNotAnalyzed
	}
	return a.ann, nil
}

// Community returns the community id of a concept. ok is false for ids not
// in the graph.
func (a *Analyzer) Community(id string) (community int, ok bool, err error) {
	if a.ann == nil {
		return 0, false, ErrNotAnalyzed
	}
	community, ok = a.ann.Community(id)
	return community, ok, nil
}

// TopCentral returns the k concepts with the highest centrality. Ties are
// broken by higher frequency, then by id.
func (a *Analyzer) TopCentral(k int) ([]types.ConceptNode, error) {
	if a.ann == nil {
		return nil, ErrNotAnalyzed
	}
	if k <= 0 {
		return nil, nil
	}

	nodes := a.g.Nodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		ci, _ := a.ann.Centrality(nodes[i].ID)
		cj, _ := a.ann.Centrality(nodes[j].ID)
		if ci != cj {
			return ci > cj
		}
		if nodes[i].Frequency != nodes[j].Frequency {
			return nodes[i].Frequency > nodes[j].Frequency
		}
		return nodes[i].ID < nodes[j].ID
	})

	if k > len(nodes) {
		k = len(nodes)
	}
	return nodes[:k], nil
}

// Members returns up to limit other concepts in the same community as id,
// in graph order. A non-positive limit returns all of them; an unknown id
// returns nil.
func (a *Analyzer) Members(id string, limit int) ([]types.ConceptNode, error) {
	if a.ann == nil {
		return nil, ErrNotAnalyzed
	}
	c, ok := a.ann.Community(id)
	if !ok {
		return nil, nil
	}

	var out []types.ConceptNode
	for _, m := range a.ann.Members(c) {
		if m == id {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		if n, ok := a.g.Node(m); ok {
			out = append(out, n)
		}
	}
	return out, nil
}
