// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"sort"
	"time"

	"github.com/pdiddy/concept-engine/pkg/types"
)

// DefaultEdgeThreshold is the exclusive lower bound on emitted edge weight.
const DefaultEdgeThreshold = 0.1

// CooccurrenceEdges derives weighted edges from concepts that share papers.
//
// For a pair (A, B) sharing c papers:
//
//	weight     = c / min(freq(A), freq(B))
//	confidence = c / max(freq(A), freq(B))
//	evidence   = papers of A that are also papers of B, in A's order
//
// Only pairs with weight > threshold are emitted. Each qualifying pair yields
// two directed edges, A→B then B→A, with identical weight, confidence, and
// evidence. Pairs are visited in concept order, so output is deterministic.
func CooccurrenceEdges(concepts []types.ConceptNode, threshold float64) []types.ConceptEdge {
	// Inverted index: paper id → concept positions, ascending.
	byPaper := make(map[string][]int)
	var paperOrder []string
	for i, c := range concepts {
		seen := make(map[string]bool, len(c.Papers))
		for _, p := range c.Papers {
			if seen[p] {
				continue
			}
			seen[p] = true
			if _, ok := byPaper[p]; !ok {
				paperOrder = append(paperOrder, p)
			}
			byPaper[p] = append(byPaper[p], i)
		}
	}

	shared := make(map[[2]int]int)
	var pairs [][2]int
	for _, p := range paperOrder {
		members := byPaper[p]
		for x := 0; x < len(members); x++ {
			for y := x + 1; y < len(members); y++ {
				key := [2]int{members[x], members[y]}
				if shared[key] == 0 {
					pairs = append(pairs, key)
				}
				shared[key]++
			}
		}
	}

	sortPairs(pairs)

	var edges []types.ConceptEdge
	for _, key := range pairs {
		a, b := concepts[key[0]], concepts[key[1]]
		lo, hi := a.Frequency, b.Frequency
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo <= 0 {
			continue
		}

		c := float64(shared[key])
		weight := c / float64(lo)
		if weight > 1 {
			weight = 1
		}
		if weight <= threshold {
			continue
		}
		confidence := c / float64(hi)
		if confidence > 1 {
			confidence = 1
		}

		evidence := intersect(a.Papers, b.Papers)
		edges = append(edges,
			types.ConceptEdge{
				Source: a.ID, Target: b.ID, Relation: types.DefaultRelation,
				Weight: weight, Confidence: confidence, Evidence: evidence,
			},
			types.ConceptEdge{
				Source: b.ID, Target: a.ID, Relation: types.DefaultRelation,
				Weight: weight, Confidence: confidence, Evidence: append([]string(nil), evidence...),
			},
		)
	}

	return edges
}

// Build assembles a graph from the corpus and its aggregated concepts.
// A zero threshold, as in a zero-value GraphConfig, uses DefaultEdgeThreshold;
// loaded configurations reject it.
func Build(papers []types.Paper, concepts []types.ConceptNode, cfg types.GraphConfig, now time.Time) *Graph {
	threshold := cfg.EdgeThreshold
	if threshold <= 0 {
		threshold = DefaultEdgeThreshold
	}

	g := New(now)
	g.SetPaperCount(len(papers))
	for _, c := range concepts {
		g.AddNode(c)
	}
	for _, e := range CooccurrenceEdges(concepts, threshold) {
		g.AddEdge(e)
	}
	return g
}

func intersect(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, p := range b {
		in[p] = true
	}
	var out []string
	seen := make(map[string]bool)
	for _, p := range a {
		if in[p] && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// sortPairs orders pairs by concept position, making the output independent
// of paper order.
func sortPairs(pairs [][2]int) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
}
