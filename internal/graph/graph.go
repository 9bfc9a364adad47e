// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph holds the concept knowledge graph and builds it from
// co-occurrence statistics.
//
// The graph is an arena: nodes and edges live in slices and are addressed by
// stable integer handles, with an id-to-handle index. A built graph is
// read-only and safe for concurrent readers.
package graph

import (
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/concept-engine/pkg/types"
)

// Graph is a directed, weighted concept graph.
type Graph struct {
	nodes []types.ConceptNode
	index map[string]int

	edges     []types.ConceptEdge
	edgeIndex map[[2]int]int

	// out and in hold edge handles per node handle, in insertion order.
	out [][]int
	in  [][]int

	meta types.GraphMetadata
}

// New returns an empty graph stamped with the given creation time.
func New(now time.Time) *Graph {
	return &Graph{
		index:     make(map[string]int),
		edgeIndex: make(map[[2]int]int),
		meta: types.GraphMetadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// AddNode inserts a node. A node whose id is already present is ignored;
// the first write wins. It reports whether the node was added.
func (g *Graph) AddNode(n types.ConceptNode) bool {
	if n.ID == "" {
		return false
	}
	if _, ok := g.index[n.ID]; ok {
		return false
	}
	g.index[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.meta.ConceptCount = len(g.nodes)
	return true
}

// AddEdge inserts a directed edge. Duplicate (source, target) pairs and
// edges with unknown endpoints are ignored. It reports whether the edge was
// added.
func (g *Graph) AddEdge(e types.ConceptEdge) bool {
	src, ok := g.index[e.Source]
	if !ok {
		return false
	}
	dst, ok := g.index[e.Target]
	if !ok {
		return false
	}
	key := [2]int{src, dst}
	if _, dup := g.edgeIndex[key]; dup {
		return false
	}
	if e.Relation == "" {
		e.Relation = types.DefaultRelation
	}
	h := len(g.edges)
	g.edges = append(g.edges, e)
	g.edgeIndex[key] = h
	g.out[src] = append(g.out[src], h)
	g.in[dst] = append(g.in[dst], h)
	g.meta.EdgeCount = len(g.edges)
	return true
}

// Touch updates the modification timestamp.
func (g *Graph) Touch(now time.Time) {
	g.meta.UpdatedAt = now
}

// SetPaperCount records the size of the corpus the graph was built from.
func (g *Graph) SetPaperCount(n int) {
	g.meta.PaperCount = n
}

// Metadata returns the graph summary.
func (g *Graph) Metadata() types.GraphMetadata {
	return g.meta
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node with the given id.
func (g *Graph) Node(id string) (types.ConceptNode, bool) {
	h, ok := g.index[id]
	if !ok {
		return types.ConceptNode{}, false
	}
	return g.nodes[h], true
}

// Has reports whether a node with the given id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Handle returns the integer handle of a node id.
func (g *Graph) Handle(id string) (int, bool) {
	h, ok := g.index[id]
	return h, ok
}

// NodeAt returns the node for a handle obtained from Handle.
func (g *Graph) NodeAt(h int) types.ConceptNode {
	return g.nodes[h]
}

// Nodes returns all nodes in insertion order. The slice is a copy.
func (g *Graph) Nodes() []types.ConceptNode {
	return append([]types.ConceptNode(nil), g.nodes...)
}

// NodeIDs returns all node ids in insertion order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		ids[i] = n.ID
	}
	return ids
}

// Edges returns all edges in insertion order. The slice is a copy.
func (g *Graph) Edges() []types.ConceptEdge {
	return append([]types.ConceptEdge(nil), g.edges...)
}

// Edge returns the directed edge source→target.
func (g *Graph) Edge(source, target string) (types.ConceptEdge, bool) {
	src, ok := g.index[source]
	if !ok {
		return types.ConceptEdge{}, false
	}
	dst, ok := g.index[target]
	if !ok {
		return types.ConceptEdge{}, false
	}
	h, ok := g.edgeIndex[[2]int{src, dst}]
	if !ok {
		return types.ConceptEdge{}, false
	}
	return g.edges[h], true
}

// Neighbors returns the targets of id's outgoing edges in insertion order.
func (g *Graph) Neighbors(id string) []string {
	h, ok := g.index[id]
	if !ok {
		return nil
	}
	ids := make([]string, len(g.out[h]))
	for i, eh := range g.out[h] {
		ids[i] = g.edges[eh].Target
	}
	return ids
}

// OutEdges returns id's outgoing edges in insertion order.
func (g *Graph) OutEdges(id string) []types.ConceptEdge {
	h, ok := g.index[id]
	if !ok {
		return nil
	}
	edges := make([]types.ConceptEdge, len(g.out[h]))
	for i, eh := range g.out[h] {
		edges[i] = g.edges[eh]
	}
	return edges
}

// Predecessors returns the sources of id's incoming edges in insertion order.
func (g *Graph) Predecessors(id string) []string {
	h, ok := g.index[id]
	if !ok {
		return nil
	}
	ids := make([]string, len(g.in[h]))
	for i, eh := range g.in[h] {
		ids[i] = g.edges[eh].Source
	}
	return ids
}

// UndirectedAdjacency returns, per node handle, the handles of nodes joined
// to it by an edge in either direction, with the largest weight among those
// edges. Lists are sorted by neighbor handle.
func (g *Graph) UndirectedAdjacency() [][]WeightedNeighbor {
	merged := make([]map[int]float64, len(g.nodes))
	for i := range merged {
		merged[i] = make(map[int]float64)
	}
	for key, h := range g.edgeIndex {
		u, v := key[0], key[1]
		if u == v {
			continue
		}
		w := g.edges[h].Weight
		if w > merged[u][v] {
			merged[u][v] = w
			merged[v][u] = w
		}
	}

	adj := make([][]WeightedNeighbor, len(g.nodes))
	for u, m := range merged {
		list := make([]WeightedNeighbor, 0, len(m))
		for v, w := range m {
			list = append(list, WeightedNeighbor{Node: v, Weight: w})
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Node < list[j].Node })
		adj[u] = list
	}
	return adj
}

// WeightedNeighbor is one entry of an undirected adjacency list.
type WeightedNeighbor struct {
	Node   int
	Weight float64
}

// SearchConcepts returns the nodes whose label contains any of the keywords,
// case-insensitively, sorted by descending frequency and then by id. Blank
// keywords are ignored; no usable keyword yields nil.
func (g *Graph) SearchConcepts(keywords []string) []types.ConceptNode {
	var terms []string
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			terms = append(terms, k)
		}
	}
	if len(terms) == 0 {
		return nil
	}

	var matches []types.ConceptNode
	for _, n := range g.nodes {
		label := strings.ToLower(n.Label)
		for _, term := range terms {
			if strings.Contains(label, term) {
				matches = append(matches, n)
				break
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Frequency != matches[j].Frequency {
			return matches[i].Frequency > matches[j].Frequency
		}
		return matches[i].ID < matches[j].ID
	})
	return matches
}
