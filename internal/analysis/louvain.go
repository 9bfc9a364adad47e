// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"context"

	"github.com/pdiddy/concept-engine/internal/graph"
)

// Louvain defaults.
const (
	DefaultResolution = 1.0
	DefaultMaxLevels  = 10
	defaultMaxPasses  = 100
	minModularityGain = 1e-12
)

// Louvain detects communities by greedy multilevel modularity optimization
// over the undirected, weighted view of the graph.
//
// Each level moves nodes one at a time into the neighboring community with
// the largest modularity gain until no move helps, then collapses every
// community into a single node and repeats on the smaller graph. Nodes are
// visited in graph insertion order, so results are deterministic.
type Louvain struct {
	// Resolution scales the null-model term. Zero uses DefaultResolution.
	Resolution float64

	// MaxLevels bounds aggregation levels. Zero uses DefaultMaxLevels.
	MaxLevels int
}

// levelGraph is the weighted undirected graph of one Louvain level.
type levelGraph struct {
	adj    [][]graph.WeightedNeighbor // excludes self loops
	self   []float64                  // self-loop weight per node
	degree []float64                  // weighted degree, self loops counted twice
	total  float64                    // sum of degrees (2m)
}

func newLevelGraph(adj [][]graph.WeightedNeighbor, self []float64) *levelGraph {
	lg := &levelGraph{
		adj:    adj,
		self:   self,
		degree: make([]float64, len(adj)),
	}
	for u, list := range adj {
		d := 2 * self[u]
		for _, nb := range list {
			d += nb.Weight
		}
		lg.degree[u] = d
		lg.total += d
	}
	return lg
}

// Detect implements CommunityDetector. Community ids are renumbered 0..k-1
// in graph node order.
func (l Louvain) Detect(ctx context.Context, g *graph.Graph) (map[string]int, error) {
	resolution := l.Resolution
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	maxLevels := l.MaxLevels
	if maxLevels <= 0 {
		maxLevels = DefaultMaxLevels
	}

	ids := g.NodeIDs()
	membership := make([]int, len(ids))
	for i := range membership {
		membership[i] = i
	}

	lg := newLevelGraph(g.UndirectedAdjacency(), make([]float64, len(ids)))

	for level := 0; level < maxLevels && lg.total > 0; level++ {
		comm, moved, err := lg.moveNodes(ctx, resolution)
		if err != nil {
			return nil, err
		}
		if !moved {
			break
		}

		k := renumber(comm)
		for v := range membership {
			membership[v] = comm[membership[v]]
		}
		if k == len(lg.adj) {
			break
		}
		lg = lg.aggregate(comm, k)
	}

	renumber(membership)

	result := make(map[string]int, len(ids))
	for i, id := range ids {
		result[id] = membership[i]
	}
	return result, nil
}

// moveNodes runs local moving passes until no node changes community.
// It returns the community of every node and whether any node moved.
func (lg *levelGraph) moveNodes(ctx context.Context, resolution float64) ([]int, bool, error) {
	n := len(lg.adj)
	comm := make([]int, n)
	tot := make([]float64, n)
	for i := range comm {
		comm[i] = i
		tot[i] = lg.degree[i]
	}

	weightTo := make(map[int]float64)
	var candidates []int
	movedAny := false

	for pass := 0; pass < defaultMaxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		moved := false
		for u := 0; u < n; u++ {
			ku := lg.degree[u]
			if ku == 0 {
				continue
			}
			old := comm[u]

			clear(weightTo)
			candidates = candidates[:0]
			for _, nb := range lg.adj[u] {
				c := comm[nb.Node]
				if _, ok := weightTo[c]; !ok {
					candidates = append(candidates, c)
				}
				weightTo[c] += nb.Weight
			}

			tot[old] -= ku

			best := old
			bestGain := weightTo[old] - resolution*tot[old]*ku/lg.total
			for _, c := range candidates {
				gain := weightTo[c] - resolution*tot[c]*ku/lg.total
				if gain > bestGain+minModularityGain {
					best, bestGain = c, gain
				}
			}

			tot[best] += ku
			if best != old {
				comm[u] = best
				moved = true
				movedAny = true
			}
		}

		if !moved {
			break
		}
	}

	return comm, movedAny, nil
}

// aggregate collapses each community into one node of a new level graph.
func (lg *levelGraph) aggregate(comm []int, k int) *levelGraph {
	self := make([]float64, k)
	inter := make([]map[int]float64, k)
	for i := range inter {
		inter[i] = make(map[int]float64)
	}

	for u, list := range lg.adj {
		cu := comm[u]
		self[cu] += lg.self[u]
		for _, nb := range list {
			cv := comm[nb.Node]
			if cu == cv {
				// Each internal edge is seen from both endpoints.
				self[cu] += nb.Weight / 2
				continue
			}
			inter[cu][cv] += nb.Weight
		}
	}

	adj := make([][]graph.WeightedNeighbor, k)
	for c := 0; c < k; c++ {
		list := make([]graph.WeightedNeighbor, 0, len(inter[c]))
		for d := 0; d < k; d++ {
			if w, ok := inter[c][d]; ok {
				list = append(list, graph.WeightedNeighbor{Node: d, Weight: w})
			}
		}
		adj[c] = list
	}

	return newLevelGraph(adj, self)
}

// renumber rewrites labels in place to 0..k-1 by first appearance and
// returns k.
func renumber(labels []int) int {
	mapping := make(map[int]int)
	for i, c := range labels {
		id, ok := mapping[c]
		if !ok {
			id = len(mapping)
			mapping[c] = id
		}
		labels[i] = id
	}
	return len(mapping)
}

// Modularity returns the modularity of a partition of g's undirected,
// weighted view:
//
//	Q = Σ_c [ L_c/m − γ·(d_c/2m)² ]
//
// where L_c is the internal edge weight of community c and d_c its total
// degree. A graph without edges has modularity 0.
func Modularity(g *graph.Graph, communities map[string]int, resolution float64) float64 {
	adj := g.UndirectedAdjacency()
	ids := g.NodeIDs()

	var total float64
	internal := make(map[int]float64)
	degree := make(map[int]float64)
	for u, list := range adj {
		cu := communities[ids[u]]
		for _, nb := range list {
			total += nb.Weight
			degree[cu] += nb.Weight
			if communities[ids[nb.Node]] == cu {
				internal[cu] += nb.Weight
			}
		}
	}
	if total == 0 {
		return 0
	}

	// total is 2m; internal counts each edge twice.
	q := 0.0
	for c, d := range degree {
		q += internal[c]/total - resolution*(d/total)*(d/total)
	}
	return q
}
