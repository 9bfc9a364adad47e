// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reasoning is the entry point of the graph reasoning engine. A
// Session owns one knowledge graph: it builds the graph from papers,
// analyzes it once, and then answers concept, community, bridge, and path
// queries against it.
package reasoning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/concept-engine/internal/analysis"
	"github.com/pdiddy/concept-engine/internal/extract"
	"github.com/pdiddy/concept-engine/internal/graph"
	"github.com/pdiddy/concept-engine/internal/novelty"
	"github.com/pdiddy/concept-engine/internal/sampler"
	"github.com/pdiddy/concept-engine/pkg/types"
)

// ErrNoGraph is returned by Analyze when BuildGraph has not run.
var ErrNoGraph = errors.New("no graph built: call BuildGraph first")

// summaryBridges is the number of bridge concepts reported by Summary.
const summaryBridges = 5

// PathOptions controls one path-finding request.
type PathOptions struct {
	// PathLength is the maximum number of concepts in a diverse walk.
	PathLength int `json:"path_length" yaml:"path_length" validate:"gte=2,lte=50"`

	// MaxResults is the maximum number of ranked paths returned.
	MaxResults int `json:"max_results" yaml:"max_results" validate:"gte=1,lte=1000"`

	// Seed seeds the walk source. Equal seeds give equal results.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock sets the time source used to stamp graph metadata.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithDetector replaces the Louvain community detector.
func WithDetector(d analysis.CommunityDetector) Option {
	return func(s *Session) { s.analysisOpts = append(s.analysisOpts, analysis.WithDetector(d)) }
}

// WithCentrality replaces the betweenness centrality scorer.
func WithCentrality(c analysis.CentralityScorer) Option {
	return func(s *Session) { s.analysisOpts = append(s.analysisOpts, analysis.WithCentrality(c)) }
}

// Session holds one knowledge graph and its analysis. BuildGraph and
// Analyze take an exclusive lock; queries share a read lock and may run
// concurrently.
type Session struct {
	id     string
	cfg    types.EngineConfig
	logger *zap.Logger
	now    func() time.Time

	analysisOpts []analysis.Option

	mu         sync.RWMutex
	graph      *graph.Graph
	analyzer   *analysis.Analyzer
	extraction extract.Summary
}

// NewSession validates cfg and returns an empty session.
func NewSession(cfg types.EngineConfig, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s := &Session{
		id:     uuid.NewString(),
		cfg:    cfg,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", s.id))
	return s, nil
}

// ID returns the session's unique id, attached to every log entry.
func (s *Session) ID() string { return s.id }

// DefaultPathOptions returns path options taken from the sampling config.
func (s *Session) DefaultPathOptions() PathOptions {
	return PathOptions{
		PathLength: s.cfg.Sampling.PathLength,
		MaxResults: s.cfg.Sampling.MaxResults,
		Seed:       s.cfg.Sampling.Seed,
	}
}

// BuildGraph extracts concepts from papers and builds a new graph,
// replacing any previous graph and discarding its analysis.
func (s *Session) BuildGraph(ctx context.Context, papers []types.Paper) (*graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}

	start := s.now()
	concepts, summary := extract.ExtractAll(papers, s.cfg.Extraction)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}
	g := graph.Build(papers, concepts, s.cfg.Graph, s.now())

	s.mu.Lock()
	s.graph = g
	s.analyzer = nil
	s.extraction = summary
	s.mu.Unlock()

	s.logger.Info("graph built",
		zap.Int("papers", summary.Papers),
		zap.Int("empty_papers", summary.Empty),
		zap.Int("concepts", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Duration("elapsed", s.now().Sub(start)),
	)
	return g, nil
}

// Graph returns the current graph, or nil before BuildGraph.
func (s *Session) Graph() *graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// Analyze computes communities and centrality for the current graph.
func (s *Session) Analyze(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph == nil {
		return ErrNoGraph
	}

	a := analysis.NewAnalyzer(s.graph, s.cfg.Analysis, s.analysisOpts...)
	if err := a.Analyze(ctx); err != nil {
		return fmt.Errorf("analyzing graph: %w", err)
	}
	s.analyzer = a

	ann, _ := a.Annotations()
	s.logger.Info("graph analyzed",
		zap.Int("communities", ann.CommunityCount),
		zap.Float64("modularity", ann.Modularity),
	)
	return nil
}

// SearchConcepts returns concepts whose label contains any keyword, most
// frequent first. It returns nil before BuildGraph.
func (s *Session) SearchConcepts(keywords []string) []types.ConceptNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.graph == nil {
		return nil
	}
	return s.graph.SearchConcepts(keywords)
}

// FindPaths samples paths from sourceID and returns them ranked by
// descending novelty. A non-empty targetID asks for the shortest path to
// that concept instead of diverse walks. Unknown concepts yield no paths.
func (s *Session) FindPaths(ctx context.Context, sourceID, targetID string, opts PathOptions) ([]types.GraphPath, error) {
	if err := types.Validate(opts); err != nil {
		return nil, fmt.Errorf("finding paths: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ann, err := s.annotations()
	if err != nil {
		return nil, fmt.Errorf("finding paths: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("finding paths: %w", err)
	}

	if !s.graph.Has(sourceID) || (targetID != "" && !s.graph.Has(targetID)) {
		s.logger.Debug("unknown concept",
			zap.String("source", sourceID),
			zap.String("target", targetID),
		)
		return nil, nil
	}

	smp := sampler.New(s.graph, ann, sampler.NewRand(opts.Seed))
	paths := smp.Sample(sampler.Request{
		Source:     sourceID,
		Target:     targetID,
		MaxLength:  opts.PathLength,
		MaxResults: opts.MaxResults,
	})

	novelty.NewScorer(ann).ScoreAll(paths)
	ranked := novelty.Rank(paths, opts.MaxResults)

	s.logger.Debug("paths found",
		zap.String("source", sourceID),
		zap.String("target", targetID),
		zap.Int("sampled", len(paths)),
		zap.Int("returned", len(ranked)),
	)
	return ranked, nil
}

// Exploration is the result of a keyword-driven path search.
type Exploration struct {
	Source types.ConceptNode `json:"source" yaml:"source"`
	Paths  []types.GraphPath `json:"paths" yaml:"paths"`
}

// Explore picks the most frequent concept matching the keywords and returns
// diverse paths from it. No match yields a nil Exploration.
func (s *Session) Explore(ctx context.Context, keywords []string, opts PathOptions) (*Exploration, error) {
	matches := s.SearchConcepts(keywords)
	if len(matches) == 0 {
		s.logger.Debug("no concepts match keywords", zap.Strings("keywords", keywords))
		return nil, nil
	}

	source := matches[0]
	paths, err := s.FindPaths(ctx, source.ID, "", opts)
	if err != nil {
		return nil, fmt.Errorf("exploring from %s: %w", source.ID, err)
	}
	return &Exploration{Source: source, Paths: paths}, nil
}

// FindBridgeConcepts returns the topN concepts with the highest betweenness.
func (s *Session) FindBridgeConcepts(topN int) ([]types.ConceptNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.analyzer == nil {
		return nil, fmt.Errorf("finding bridge concepts: %w", analysis.ErrNotAnalyzed)
	}
	return s.analyzer.TopCentral(topN)
}

// GetCommunity returns the community of a concept. ok is false for unknown
// concepts.
func (s *Session) GetCommunity(conceptID string) (community int, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.analyzer == nil {
		return 0, false, fmt.Errorf("getting community: %w", analysis.ErrNotAnalyzed)
	}
	return s.analyzer.Community(conceptID)
}

// CommunityMembers returns up to limit other concepts in conceptID's
// community.
func (s *Session) CommunityMembers(conceptID string, limit int) ([]types.ConceptNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.analyzer == nil {
		return nil, fmt.Errorf("listing community members: %w", analysis.ErrNotAnalyzed)
	}
	return s.analyzer.Members(conceptID, limit)
}

// Summary describes an analyzed graph.
type Summary struct {
	SessionID   string              `json:"session_id" yaml:"session_id"`
	Papers      int                 `json:"papers" yaml:"papers"`
	EmptyPapers int                 `json:"empty_papers" yaml:"empty_papers"`
	Concepts    int                 `json:"concepts" yaml:"concepts"`
	Edges       int                 `json:"edges" yaml:"edges"`
	Communities int                 `json:"communities" yaml:"communities"`
	Modularity  float64             `json:"modularity" yaml:"modularity"`
	Bridges     []types.ConceptNode `json:"bridges" yaml:"bridges"`
	Metadata    types.GraphMetadata `json:"metadata" yaml:"metadata"`
}

// Summary returns graph statistics. It requires Analyze.
func (s *Session) Summary() (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ann, err := s.annotations()
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing graph: %w", err)
	}
	bridges, err := s.analyzer.TopCentral(summaryBridges)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing graph: %w", err)
	}

	return Summary{
		SessionID:   s.id,
		Papers:      s.extraction.Papers,
		EmptyPapers: s.extraction.Empty,
		Concepts:    s.graph.NodeCount(),
		Edges:       s.graph.EdgeCount(),
		Communities: ann.CommunityCount,
		Modularity:  ann.Modularity,
		Bridges:     bridges,
		Metadata:    s.graph.Metadata(),
	}, nil
}

// Annotations returns the community and centrality maps of the analyzed
// graph.
func (s *Session) Annotations() (*analysis.Annotations, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.annotations()
}

// annotations returns the analysis results. The caller holds mu.
func (s *Session) annotations() (*analysis.Annotations, error) {
	if s.analyzer == nil {
		return nil, analysis.ErrNotAnalyzed
	}
	return s.analyzer.Annotations()
}
