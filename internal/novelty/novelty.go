// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package novelty scores sampled paths by how structurally unusual they are
// and ranks them.
package novelty

import (
	"sort"

	"github.com/pdiddy/concept-engine/pkg/types"
)

const (
	// NeutralScore is returned for every path when no community data exists.
	NeutralScore = 0.5

	// lengthCap is the node count at which the length factor saturates.
	lengthCap = 6.0

	// centralityScale maps mean betweenness onto [0,1] before capping.
	centralityScale = 10.0
)

// Weights are the factor weights of the novelty score. They sum to 1.
type Weights struct {
	CrossCommunity  float64
	EdgeWeakness    float64
	Length          float64
	BridgeAvoidance float64
}

// DefaultWeights favour community crossings, then rare connections.
var DefaultWeights = Weights{
	CrossCommunity:  0.40,
	EdgeWeakness:    0.30,
	Length:          0.20,
	BridgeAvoidance: 0.10,
}

// Annotations is the read-only view of analysis results the scorer needs.
// *analysis.Annotations satisfies it.
type Annotations interface {
	Community(id string) (int, bool)
	Centrality(id string) (float64, bool)
	HasCommunities() bool
}

// Scorer computes novelty scores from graph annotations.
type Scorer struct {
	ann     Annotations
	Weights Weights
}

// NewScorer returns a Scorer with DefaultWeights. ann may be nil.
func NewScorer(ann Annotations) *Scorer {
	return &Scorer{ann: ann, Weights: DefaultWeights}
}

// Score returns the novelty of a path in [0,1].
func (s *Scorer) Score(p types.GraphPath) float64 {
	if s.ann == nil || !s.ann.HasCommunities() {
		return NeutralScore
	}

	score := s.Weights.CrossCommunity*s.crossCommunity(p) +
		s.Weights.EdgeWeakness*edgeWeakness(p) +
		s.Weights.Length*clamp(float64(p.Length())/lengthCap) +
		s.Weights.BridgeAvoidance*(1-clamp(s.meanCentrality(p)*centralityScale))

	return clamp(score)
}

// ScoreAll sets the Novelty field of every path in place and returns the
// same slice.
func (s *Scorer) ScoreAll(paths []types.GraphPath) []types.GraphPath {
	for i := range paths {
		paths[i].Novelty = s.Score(paths[i])
	}
	return paths
}

// crossCommunity is the fraction of consecutive node pairs whose known
// communities differ.
func (s *Scorer) crossCommunity(p types.GraphPath) float64 {
	if len(p.Nodes) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(p.Nodes); i++ {
		a, okA := s.ann.Community(p.Nodes[i-1].ID)
		b, okB := s.ann.Community(p.Nodes[i].ID)
		if okA && okB && a != b {
			crossings++
		}
	}
	return float64(crossings) / float64(len(p.Nodes)-1)
}

func edgeWeakness(p types.GraphPath) float64 {
	if len(p.Edges) == 0 {
		return 1
	}
	mean := p.TotalWeight / float64(len(p.Edges))
	return 1 - clamp(mean)
}

func (s *Scorer) meanCentrality(p types.GraphPath) float64 {
	if len(p.Nodes) == 0 {
		return 0
	}
	sum := 0.0
	for _, n := range p.Nodes {
		c, _ := s.ann.Centrality(n.ID)
		sum += c
	}
	return sum / float64(len(p.Nodes))
}

// clamp limits v to [0,1].
func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Rank returns a copy of paths sorted by descending novelty, truncated to n.
// Paths with equal novelty keep their input order. A non-positive n keeps
// every path.
func Rank(paths []types.GraphPath, n int) []types.GraphPath {
	ranked := append([]types.GraphPath(nil), paths...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Novelty > ranked[j].Novelty
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
