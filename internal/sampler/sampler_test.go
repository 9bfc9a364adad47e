package sampler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/concept-engine/internal/graph"
	"github.com/pdiddy/concept-engine/pkg/types"
)

// --- test helpers ---

func newGraph(t *testing.T, ids ...string) *graph.Graph {
	t.Helper()
	g := graph.New(time.Unix(0, 0))
	for _, id := range ids {
		g.AddNode(types.ConceptNode{ID: id, Label: id, Frequency: 2})
	}
	return g
}

func link(g *graph.Graph, a, b string, w float64) {
	g.AddEdge(types.ConceptEdge{Source: a, Target: b, Weight: w})
	g.AddEdge(types.ConceptEdge{Source: b, Target: a, Weight: w})
}

// barbell builds two triangles {a,b,c} and {d,e,f} joined by the bridge c-d.
func barbell(t *testing.T) *graph.Graph {
	t.Helper()
	g := newGraph(t, "a", "b", "c", "d", "e", "f")
	link(g, "a", "b", 1)
	link(g, "a", "c", 0.5)
	link(g, "b", "c", 1)
	link(g, "d", "e", 1)
	link(g, "d", "f", 0.5)
	link(g, "e", "f", 1)
	link(g, "c", "d", 0.25)
	return g
}

type communityMap map[string]int

func (m communityMap) Community(id string) (int, bool) {
	c, ok := m[id]
	return c, ok
}

// fixedRand always returns the same draw.
type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

// --- Shortest ---

func TestShortest(t *testing.T) {
	g := barbell(t)
	g.AddNode(types.ConceptNode{ID: "lonely", Label: "lonely"})

	tests := []struct {
		name           string
		source, target string
		want           []string
	}{
		{"adjacent", "a", "b", []string{"a", "b"}},
		{"across the bridge", "a", "f", []string{"a", "c", "d", "f"}},
		{"reverse direction", "e", "c", []string{"e", "d", "c"}},
		{"same node", "a", "a", nil},
		{"disconnected", "a", "lonely", nil},
		{"unknown source", "missing", "a", nil},
		{"unknown target", "a", "missing", nil},
	}

	s := New(g, nil, NewRand(1))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Shortest(tt.source, tt.target))
		})
	}
}

func TestShortestFollowsDirection(t *testing.T) {
	g := newGraph(t, "p", "q", "r")
	g.AddEdge(types.ConceptEdge{Source: "p", Target: "q", Weight: 1})
	g.AddEdge(types.ConceptEdge{Source: "q", Target: "r", Weight: 1})

	s := New(g, nil, NewRand(1))
	assert.Equal(t, []string{"p", "q", "r"}, s.Shortest("p", "r"))
	assert.Nil(t, s.Shortest("r", "p"))
}

func TestShortestLongChain(t *testing.T) {
	ids := []string{"n0", "n1", "n2", "n3", "n4", "n5", "n6"}
	g := newGraph(t, ids...)
	for i := 1; i < len(ids); i++ {
		link(g, ids[i-1], ids[i], 1)
	}
	// A shortcut that both searches can see.
	link(g, "n1", "n5", 1)

	s := New(g, nil, NewRand(1))
	assert.Equal(t, []string{"n0", "n1", "n5", "n6"}, s.Shortest("n0", "n6"))
}

// --- Diverse ---

func TestDiverseExhaustsDistinctWalks(t *testing.T) {
	g := newGraph(t, "s", "a", "b")
	link(g, "s", "a", 0.5)
	link(g, "s", "b", 0.5)

	s := New(g, nil, NewRand(7))
	walks := s.Diverse("s", 5, 5)

	require.Len(t, walks, 2)
	assert.ElementsMatch(t, [][]string{{"s", "a"}, {"s", "b"}}, walks)
}

func TestDiverseInvariants(t *testing.T) {
	g := barbell(t)
	s := New(g, communityMap{"a": 0, "b": 0, "c": 0, "d": 1, "e": 1, "f": 1}, NewRand(42))

	walks := s.Diverse("a", 4, 10)
	require.NotEmpty(t, walks)
	assert.LessOrEqual(t, len(walks), 10)

	seen := make(map[string]bool)
	for _, w := range walks {
		assert.Equal(t, "a", w[0])
		assert.GreaterOrEqual(t, len(w), 2)
		assert.LessOrEqual(t, len(w), 4)

		visited := make(map[string]bool)
		for i, id := range w {
			assert.False(t, visited[id], "walk %v revisits %s", w, id)
			visited[id] = true
			if i > 0 {
				_, ok := g.Edge(w[i-1], id)
				assert.True(t, ok, "walk %v uses a missing edge", w)
			}
		}

		key := ""
		for _, id := range w {
			key += id + "/"
		}
		assert.False(t, seen[key], "duplicate walk %v", w)
		seen[key] = true
	}
}

func TestDiverseDeterministic(t *testing.T) {
	g := barbell(t)
	comms := communityMap{"a": 0, "b": 0, "c": 0, "d": 1, "e": 1, "f": 1}

	first := New(g, comms, NewRand(99)).Diverse("b", 5, 6)
	second := New(g, comms, NewRand(99)).Diverse("b", 5, 6)
	assert.Equal(t, first, second)
}

func TestDiverseEdgeCases(t *testing.T) {
	g := barbell(t)
	g.AddNode(types.ConceptNode{ID: "lonely", Label: "lonely"})
	s := New(g, nil, NewRand(1))

	assert.Nil(t, s.Diverse("missing", 5, 5), "unknown source")
	assert.Nil(t, s.Diverse("a", 5, 0), "no results requested")
	assert.Nil(t, s.Diverse("a", 1, 5), "length below two")
	assert.Empty(t, s.Diverse("lonely", 5, 5), "no outgoing edges")
}

func TestWalkPrefersCrossCommunityStep(t *testing.T) {
	g := newGraph(t, "s", "same", "other")
	g.AddEdge(types.ConceptEdge{Source: "s", Target: "same", Weight: 1})
	g.AddEdge(types.ConceptEdge{Source: "s", Target: "other", Weight: 1})
	comms := communityMap{"s": 0, "same": 0, "other": 1}

	// Scores are [1, 2] with the boost; a draw of 0.4 lands at 1.2 of 3.
	boosted := New(g, comms, fixedRand(0.4))
	assert.Equal(t, []string{"s", "other"}, boosted.walk("s", 3))

	// Without communities the same draw lands at 0.8 of 2.
	plain := New(g, nil, fixedRand(0.4))
	assert.Equal(t, []string{"s", "same"}, plain.walk("s", 3))
}

func TestPickZeroWeights(t *testing.T) {
	s := New(newGraph(t), nil, fixedRand(0.99))
	assert.Equal(t, 2, s.pick([]float64{0, 0, 0}, 0))

	s = New(newGraph(t), nil, fixedRand(0))
	assert.Equal(t, 0, s.pick([]float64{0, 0, 0}, 0))
}

// --- ToPath / Sample ---

func TestToPath(t *testing.T) {
	s := New(barbell(t), nil, NewRand(1))

	p, ok := s.ToPath([]string{"a", "c", "d"})
	require.True(t, ok)
	assert.Equal(t, []string{"a", "c", "d"}, p.NodeIDs())
	require.Len(t, p.Edges, 2)
	assert.InDelta(t, 0.75, p.TotalWeight, 1e-9)
	assert.Equal(t, 3, p.Length())

	_, ok = s.ToPath([]string{"a", "f"})
	assert.False(t, ok, "missing edge")

	_, ok = s.ToPath([]string{"a"})
	assert.False(t, ok, "single node")

	_, ok = s.ToPath([]string{"a", "missing"})
	assert.False(t, ok, "missing node")
}

func TestSample(t *testing.T) {
	g := barbell(t)
	s := New(g, nil, NewRand(3))

	targeted := s.Sample(Request{Source: "a", Target: "f", MaxLength: 5, MaxResults: 3})
	require.Len(t, targeted, 1)
	assert.Equal(t, []string{"a", "c", "d", "f"}, targeted[0].NodeIDs())

	none := s.Sample(Request{Source: "a", Target: "missing", MaxLength: 5, MaxResults: 3})
	assert.Empty(t, none)

	diverse := s.Sample(Request{Source: "a", MaxLength: 3, MaxResults: 4})
	require.NotEmpty(t, diverse)
	for _, p := range diverse {
		assert.Equal(t, "a", p.Nodes[0].ID)
		assert.Len(t, p.Edges, p.Length()-1)
		assert.Zero(t, p.Novelty)
	}
}
