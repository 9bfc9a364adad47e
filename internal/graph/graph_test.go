package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/concept-engine/internal/extract"
	"github.com/pdiddy/concept-engine/pkg/types"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

// --- test helpers ---

func scenarioPapers() []types.Paper {
	return []types.Paper{
		{ID: "A", Title: "neural network", Abstract: "protein folding with neural network and protein folding"},
		{ID: "B", Title: "deep learning", Abstract: "neural network for deep learning beats neural network"},
	}
}

func scenarioGraph(t *testing.T) *Graph {
	t.Helper()
	papers := scenarioPapers()
	concepts, _ := extract.ExtractAll(papers, types.ExtractionConfig{})
	return Build(papers, concepts, types.GraphConfig{}, testNow)
}

func node(id string, freq int, papers ...string) types.ConceptNode {
	return types.ConceptNode{ID: id, Label: id, Frequency: freq, Papers: papers}
}

// --- CooccurrenceEdges ---

func TestCooccurrenceEdgesScenario(t *testing.T) {
	g := scenarioGraph(t)

	e, ok := g.Edge("neural_network", "protein_folding")
	require.True(t, ok)
	assert.InDelta(t, 0.5, e.Weight, 1e-9, "1 shared paper / min(4, 2)")
	assert.InDelta(t, 0.25, e.Confidence, 1e-9, "1 shared paper / max(4, 2)")
	assert.Equal(t, []string{"A"}, e.Evidence)
	assert.Equal(t, types.DefaultRelation, e.Relation)

	back, ok := g.Edge("protein_folding", "neural_network")
	require.True(t, ok)
	assert.Equal(t, e.Weight, back.Weight)

	_, ok = g.Edge("protein_folding", "deep_learning")
	assert.False(t, ok)
	_, ok = g.Edge("deep_learning", "protein_folding")
	assert.False(t, ok)

	meta := g.Metadata()
	assert.Equal(t, 2, meta.PaperCount)
	assert.Equal(t, 3, meta.ConceptCount)
	assert.Equal(t, 4, meta.EdgeCount)
	assert.Equal(t, testNow, meta.CreatedAt)
}

func TestCooccurrenceEdgesInvariants(t *testing.T) {
	concepts := []types.ConceptNode{
		node("a", 10, "p1", "p2", "p3", "p4", "p5"),
		node("b", 2, "p1"),
		node("c", 40, "p5", "p6", "p7", "p8", "p9", "p10", "p11", "p12", "p13", "p14", "p15", "p16", "p17", "p18", "p19", "p20"),
		node("d", 6, "p2", "p3", "p4"),
	}

	edges := CooccurrenceEdges(concepts, DefaultEdgeThreshold)
	require.NotEmpty(t, edges)
	for _, e := range edges {
		assert.Greater(t, e.Weight, DefaultEdgeThreshold, "%s->%s", e.Source, e.Target)
		assert.LessOrEqual(t, e.Weight, 1.0)
		assert.Greater(t, e.Confidence, 0.0)
		assert.LessOrEqual(t, e.Confidence, 1.0)
		assert.NotEmpty(t, e.Evidence)
	}

	// a and c share one paper: weight 1/10 is not above the threshold.
	for _, e := range edges {
		if (e.Source == "a" && e.Target == "c") || (e.Source == "c" && e.Target == "a") {
			t.Errorf("unexpected edge %s->%s with weight %f", e.Source, e.Target, e.Weight)
		}
	}
}

func TestCooccurrenceEdgesSkipsZeroFrequency(t *testing.T) {
	concepts := []types.ConceptNode{
		node("a", 0, "p1"),
		node("b", 2, "p1"),
	}
	assert.Empty(t, CooccurrenceEdges(concepts, DefaultEdgeThreshold))
}

func TestCooccurrenceEdgesOrderIndependentOfPapers(t *testing.T) {
	forward := []types.ConceptNode{
		node("x", 4, "p1", "p2"),
		node("y", 4, "p2", "p1"),
		node("z", 2, "p2"),
	}
	edges := CooccurrenceEdges(forward, DefaultEdgeThreshold)
	require.Len(t, edges, 6)
	assert.Equal(t, "x", edges[0].Source)
	assert.Equal(t, "y", edges[0].Target)
	assert.Equal(t, []string{"p1", "p2"}, edges[0].Evidence)
	assert.InDelta(t, 0.5, edges[0].Weight, 1e-9)
}

// --- Graph ---

func TestAddEdgeFirstWriteWins(t *testing.T) {
	g := New(testNow)
	require.True(t, g.AddNode(node("a", 2, "p")))
	require.True(t, g.AddNode(node("b", 2, "p")))
	assert.False(t, g.AddNode(node("a", 99, "q")), "duplicate node ignored")

	assert.True(t, g.AddEdge(types.ConceptEdge{Source: "a", Target: "b", Weight: 0.4}))
	assert.False(t, g.AddEdge(types.ConceptEdge{Source: "a", Target: "b", Weight: 0.9}))
	assert.False(t, g.AddEdge(types.ConceptEdge{Source: "a", Target: "missing", Weight: 0.9}))

	e, ok := g.Edge("a", "b")
	require.True(t, ok)
	assert.Equal(t, 0.4, e.Weight)
	assert.Equal(t, types.DefaultRelation, e.Relation)
	assert.Equal(t, 1, g.EdgeCount())

	n, _ := g.Node("a")
	assert.Equal(t, 2, n.Frequency)
}

func TestNeighborsAndPredecessors(t *testing.T) {
	g := New(testNow)
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(node(id, 2, "p"))
	}
	g.AddEdge(types.ConceptEdge{Source: "a", Target: "c", Weight: 0.5})
	g.AddEdge(types.ConceptEdge{Source: "a", Target: "b", Weight: 0.5})
	g.AddEdge(types.ConceptEdge{Source: "b", Target: "c", Weight: 0.5})

	assert.Equal(t, []string{"c", "b"}, g.Neighbors("a"))
	assert.Equal(t, []string{"a", "b"}, g.Predecessors("c"))
	assert.Nil(t, g.Neighbors("missing"))
}

func TestUndirectedAdjacency(t *testing.T) {
	g := New(testNow)
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(node(id, 2, "p"))
	}
	g.AddEdge(types.ConceptEdge{Source: "a", Target: "b", Weight: 0.3})
	g.AddEdge(types.ConceptEdge{Source: "b", Target: "a", Weight: 0.6})
	g.AddEdge(types.ConceptEdge{Source: "c", Target: "b", Weight: 0.2})

	adj := g.UndirectedAdjacency()
	require.Len(t, adj, 3)
	assert.Equal(t, []WeightedNeighbor{{Node: 1, Weight: 0.6}}, adj[0])
	assert.Equal(t, []WeightedNeighbor{{Node: 0, Weight: 0.6}, {Node: 2, Weight: 0.2}}, adj[1])
	assert.Equal(t, []WeightedNeighbor{{Node: 1, Weight: 0.2}}, adj[2])
}

// --- SearchConcepts ---

func TestSearchConcepts(t *testing.T) {
	g := scenarioGraph(t)

	tests := []struct {
		name     string
		keywords []string
		want     []string
	}{
		{"single keyword", []string{"network"}, []string{"neural_network"}},
		{"case insensitive", []string{"NEURAL"}, []string{"neural_network"}},
		{"any keyword matches, sorted by frequency then id", []string{"learning", "folding"}, []string{"deep_learning", "protein_folding"}},
		{"substring across concepts", []string{"n"}, []string{"neural_network", "deep_learning", "protein_folding"}},
		{"no match", []string{"quantum"}, nil},
		{"blank keywords", []string{"  ", ""}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.SearchConcepts(tt.keywords)
			var ids []string
			for _, n := range got {
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSearchConceptsIdempotent(t *testing.T) {
	g := scenarioGraph(t)
	first := g.SearchConcepts([]string{"n", "learning"})
	second := g.SearchConcepts([]string{"n", "learning"})
	assert.Equal(t, first, second)
}
