package novelty

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/concept-engine/internal/analysis"
	"github.com/pdiddy/concept-engine/pkg/types"
)

// path builds a GraphPath over ids with the given edge weights.
func path(t *testing.T, ids []string, weights ...float64) types.GraphPath {
	t.Helper()
	p := types.GraphPath{}
	for _, id := range ids {
		p.Nodes = append(p.Nodes, types.ConceptNode{ID: id, Label: id})
	}
	for i, w := range weights {
		p.Edges = append(p.Edges, types.ConceptEdge{Source: ids[i], Target: ids[i+1], Weight: w})
		p.TotalWeight += w
	}
	return p
}

func barbellAnnotations() *analysis.Annotations {
	order := []string{"a", "b", "c", "d", "e", "f"}
	communities := map[string]int{"a": 0, "b": 0, "c": 0, "d": 1, "e": 1, "f": 1}
	centrality := map[string]float64{"a": 0, "b": 0, "c": 0.6, "d": 0.6, "e": 0, "f": 0}
	return analysis.NewAnnotations(order, communities, centrality)
}

func TestScore(t *testing.T) {
	s := NewScorer(barbellAnnotations())

	tests := []struct {
		name string
		path types.GraphPath
		want float64
	}{
		{
			// cross 1/3, weakness 1-1.25/3, length 4/6, centrality 0.3 saturates.
			name: "across the bridge",
			path: path(t, []string{"a", "c", "d", "f"}, 0.5, 0.25, 0.5),
			want: 0.4/3 + 0.3*(1-1.25/3) + 0.2*4/6,
		},
		{
			// No crossing, weakness 0, length 2/6, no hubs.
			name: "strong single edge",
			path: path(t, []string{"a", "b"}, 1),
			want: 0.2*2/6 + 0.1,
		},
		{
			// Every step crosses, weakness 0.9, length 2/6, no hubs.
			name: "weak crossing",
			path: path(t, []string{"a", "e"}, 0.1),
			want: 0.4 + 0.3*0.9 + 0.2*2/6 + 0.1,
		},
		{
			// Unknown ids count as no crossing and zero centrality.
			name: "unknown concepts",
			path: path(t, []string{"x", "y"}, 0.5),
			want: 0.3*0.5 + 0.2*2/6 + 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Score(tt.path), 1e-9)
		})
	}
}

func TestScoreRange(t *testing.T) {
	s := NewScorer(barbellAnnotations())

	paths := []types.GraphPath{
		path(t, []string{"a", "b"}, 0),
		path(t, []string{"a", "d"}, 5),
		path(t, []string{"a", "d", "b", "e", "c", "f", "a", "d"}, 0, 0, 0, 0, 0, 0, 0),
		path(t, []string{"c", "d"}, 1),
		{Nodes: []types.ConceptNode{{ID: "a"}}},
	}
	for _, p := range paths {
		got := s.Score(p)
		assert.GreaterOrEqual(t, got, 0.0, p.NodeIDs())
		assert.LessOrEqual(t, got, 1.0, p.NodeIDs())
	}
}

func TestScoreWithoutCommunities(t *testing.T) {
	p := path(t, []string{"a", "b", "c"}, 0.2, 0.3)

	assert.Equal(t, NeutralScore, NewScorer(nil).Score(p))

	var missing *analysis.Annotations
	assert.Equal(t, NeutralScore, NewScorer(missing).Score(p))

	empty := analysis.NewAnnotations(nil, map[string]int{}, map[string]float64{})
	assert.Equal(t, NeutralScore, NewScorer(empty).Score(p))
}

func TestScoreAll(t *testing.T) {
	s := NewScorer(barbellAnnotations())
	paths := []types.GraphPath{
		path(t, []string{"a", "b"}, 1),
		path(t, []string{"a", "e"}, 0.1),
	}

	got := s.ScoreAll(paths)
	assert.InDelta(t, s.Score(paths[0]), got[0].Novelty, 1e-12)
	assert.Greater(t, got[1].Novelty, got[0].Novelty)
}

func TestRank(t *testing.T) {
	mk := func(id string, novelty float64) types.GraphPath {
		return types.GraphPath{Nodes: []types.ConceptNode{{ID: id}}, Novelty: novelty}
	}
	paths := []types.GraphPath{
		mk("p1", 0.2),
		mk("p2", 0.8),
		mk("p3", 0.5),
		mk("p4", 0.8),
		mk("p5", 0.5),
	}

	ids := func(ps []types.GraphPath) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Nodes[0].ID)
		}
		return out
	}

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"ties keep input order", 0, []string{"p2", "p4", "p3", "p5", "p1"}},
		{"truncated", 3, []string{"p2", "p4", "p3"}},
		{"n larger than input", 10, []string{"p2", "p4", "p3", "p5", "p1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Rank(paths, tt.n)))
		})
	}

	// The input is untouched.
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5"}, ids(paths))
}
