package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/concept-engine/pkg/types"
)

// --- fixtures ---

func paperA() types.Paper {
	return types.Paper{
		ID:       "A",
		Title:    "neural network",
		Abstract: "protein folding with neural network and protein folding",
	}
}

func paperB() types.Paper {
	return types.Paper{
		ID:       "B",
		Title:    "deep learning",
		Abstract: "neural network for deep learning beats neural network",
	}
}

func conceptByID(nodes []types.ConceptNode, id string) (types.ConceptNode, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return types.ConceptNode{}, false
}

// --- Extract ---

func TestExtract(t *testing.T) {
	ext := New(types.ExtractionConfig{})

	got := ext.Extract(paperA())
	require.Len(t, got, 2)

	assert.Equal(t, "neural_network", got[0].ID)
	assert.Equal(t, "neural network", got[0].Label)
	assert.Equal(t, types.ConceptMethod, got[0].Type)
	assert.Equal(t, 2, got[0].Frequency)
	assert.Equal(t, []string{"A"}, got[0].Papers)

	assert.Equal(t, "protein_folding", got[1].ID)
	assert.Equal(t, types.ConceptMaterial, got[1].Type)
	assert.Equal(t, 2, got[1].Frequency)
}

func TestExtractInvariants(t *testing.T) {
	papers := []types.Paper{
		paperA(),
		paperB(),
		{
			ID:       "C",
			Title:    "Graphene oxide membranes for water desalination",
			Abstract: "Graphene oxide membranes show selective ion transport. Graphene oxide membranes were tested for water desalination under pressure.",
			Keywords: []string{"graphene oxide", "water desalination"},
		},
	}

	ext := New(types.ExtractionConfig{})
	for _, p := range papers {
		for _, c := range ext.Extract(p) {
			assert.GreaterOrEqual(t, c.Frequency, 2, "concept %s", c.ID)
			assert.Greater(t, len(c.Label), 5, "concept %s", c.ID)
			assert.Regexp(t, `^[a-z0-9_]+$`, c.ID)
		}
	}
}

func TestExtractEmptyText(t *testing.T) {
	tests := []struct {
		name  string
		paper types.Paper
	}{
		{"no fields", types.Paper{ID: "x"}},
		{"whitespace only", types.Paper{ID: "x", Title: "   ", Abstract: "\n\t "}},
		{"punctuation only", types.Paper{ID: "x", Title: "!!! ??? 123 456"}},
	}

	ext := New(types.ExtractionConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ext.Extract(tt.paper))
		})
	}
}

func TestExtractDropsShortAndRarePhrases(t *testing.T) {
	ext := New(types.ExtractionConfig{})

	// "a b" repeats but is too short; "rare phrase" appears once.
	p := types.Paper{ID: "p", Abstract: "a b a b rare phrase"}
	assert.Empty(t, ext.Extract(p))
}

func TestExtractCustomThresholds(t *testing.T) {
	ext := New(types.ExtractionConfig{MinPhraseFrequency: 3, MinPhraseLength: 5})

	got := ext.Extract(paperA())
	assert.Empty(t, got, "no phrase reaches three occurrences")
}

func TestExtractHyphenatedTokens(t *testing.T) {
	ext := New(types.ExtractionConfig{})
	p := types.Paper{
		ID:       "h",
		Abstract: "long-term potentiation drives memory; long-term potentiation decays",
	}

	got := ext.Extract(p)
	c, ok := conceptByID(got, "longterm_potentiation")
	require.True(t, ok, "got %v", got)
	assert.Equal(t, "long-term potentiation", c.Label)
	assert.Equal(t, 2, c.Frequency)
}

// --- Classify / Normalize ---

func TestClassify(t *testing.T) {
	tests := []struct {
		phrase string
		want   types.ConceptType
	}{
		{"neural network", types.ConceptMethod},
		{"regression analysis", types.ConceptMethod},
		{"protein folding", types.ConceptMaterial},
		{"stem cells", types.ConceptMaterial},
		{"germ theory", types.ConceptTheory},
		{"immune response", types.ConceptPhenomenon},
		{"placebo effect", types.ConceptPhenomenon},
		{"climate change", types.ConceptGeneric},
		// method outranks material in the priority order.
		{"protein network", types.ConceptMethod},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.phrase))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"neural network", "neural_network"},
		{"Neural  Network", "neural_network"},
		{"long-term memory", "longterm_memory"},
		{" x-ray  crystallography ", "xray_crystallography"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

// --- Aggregator ---

func TestExtractAllTwoPaperScenario(t *testing.T) {
	concepts, summary := ExtractAll([]types.Paper{paperA(), paperB()}, types.ExtractionConfig{})

	assert.Equal(t, 2, summary.Papers)
	assert.Equal(t, 0, summary.Empty)
	assert.Equal(t, 3, summary.Concepts)

	nn, ok := conceptByID(concepts, "neural_network")
	require.True(t, ok)
	assert.Equal(t, 4, nn.Frequency)
	assert.Equal(t, []string{"A", "B"}, nn.Papers)

	pf, ok := conceptByID(concepts, "protein_folding")
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, pf.Papers)

	dl, ok := conceptByID(concepts, "deep_learning")
	require.True(t, ok)
	assert.Equal(t, []string{"B"}, dl.Papers)
}

func TestAggregatorFrequencyMatchesCounts(t *testing.T) {
	agg := NewAggregator()
	agg.Add("p1", []types.ConceptNode{{ID: "gene_expression", Frequency: 3}})
	agg.Add("p2", []types.ConceptNode{{ID: "gene_expression", Frequency: 2}})

	got := agg.Concepts()
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Frequency)
	assert.Equal(t, []string{"p1", "p2"}, got[0].Papers)
}

func TestAggregatorReAddReplacesContribution(t *testing.T) {
	agg := NewAggregator()
	agg.Add("p1", []types.ConceptNode{
		{ID: "gene_expression", Frequency: 3},
		{ID: "cell_cycle", Frequency: 2},
	})
	agg.Add("p2", []types.ConceptNode{{ID: "gene_expression", Frequency: 2}})

	// Re-extracting p1 with different results replaces, not adds.
	agg.Add("p1", []types.ConceptNode{{ID: "gene_expression", Frequency: 4}})

	got := agg.Concepts()
	require.Len(t, got, 1, "cell_cycle lost its only paper")
	assert.Equal(t, "gene_expression", got[0].ID)
	assert.Equal(t, 6, got[0].Frequency)
	assert.ElementsMatch(t, []string{"p1", "p2"}, got[0].Papers)
	assert.Equal(t, 1, agg.Len())
}

func TestAggregatorIgnoresNonPositiveCounts(t *testing.T) {
	agg := NewAggregator()
	agg.Add("p1", []types.ConceptNode{{ID: "ghost_concept", Frequency: 0}})
	assert.Equal(t, 0, agg.Len())
	assert.Empty(t, agg.Concepts())
}

func TestExtractAllCountsEmptyPapers(t *testing.T) {
	concepts, summary := ExtractAll([]types.Paper{{ID: "e"}, paperA()}, types.ExtractionConfig{})
	assert.Equal(t, 1, summary.Empty)
	assert.Len(t, concepts, 2)
}

func TestExtractAllRepeatedIDWithoutConcepts(t *testing.T) {
	papers := []types.Paper{
		{ID: "p1", Abstract: "neural network and neural network"},
		{ID: "p1"},
	}
	concepts, summary := ExtractAll(papers, types.ExtractionConfig{})

	assert.Empty(t, concepts, "the later empty record replaces the earlier one")
	assert.Equal(t, Summary{Papers: 1, Empty: 1, Concepts: 0}, summary)
}

func TestExtractAllRepeatedIDReplacesConcepts(t *testing.T) {
	papers := []types.Paper{
		{ID: "p1", Abstract: "neural network and neural network"},
		{ID: "p1", Abstract: "deep learning and deep learning"},
	}
	concepts, summary := ExtractAll(papers, types.ExtractionConfig{})

	require.Len(t, concepts, 1)
	assert.Equal(t, "deep_learning", concepts[0].ID)
	assert.Equal(t, 2, concepts[0].Frequency)
	assert.Equal(t, []string{"p1"}, concepts[0].Papers)
	assert.Equal(t, Summary{Papers: 1, Empty: 0, Concepts: 1}, summary)
}
