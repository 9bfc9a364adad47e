// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sampler draws paths through a concept graph: exact shortest paths
// between two concepts, and community-biased random walks from one concept.
package sampler

import (
	"math/rand/v2"
	"strings"

	"github.com/pdiddy/concept-engine/internal/graph"
	"github.com/pdiddy/concept-engine/pkg/types"
)

const (
	// CrossCommunityBoost multiplies the score of a step that leaves the
	// current community.
	CrossCommunityBoost = 2.0

	// attemptsPerResult bounds diverse sampling at attemptsPerResult walks
	// per requested path.
	attemptsPerResult = 10
)

// Rand is the random source used for walk steps. *math/rand/v2.Rand
// satisfies it.
type Rand interface {
	Float64() float64
}

// NewRand returns a deterministic random source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Communities looks up the community of a concept.
type Communities interface {
	Community(id string) (int, bool)
}

// Sampler draws paths from one graph. It is not safe for concurrent use
// because it owns its random source; create one per sampling session.
type Sampler struct {
	g     *graph.Graph
	comms Communities
	rng   Rand
}

// New returns a Sampler. comms may be nil, in which case walks are biased by
// edge weight alone.
func New(g *graph.Graph, comms Communities, rng Rand) *Sampler {
	return &Sampler{g: g, comms: comms, rng: rng}
}

// Request describes one sampling call. A non-empty Target selects a
// shortest-path search; otherwise diverse walks start at Source.
type Request struct {
	Source     string
	Target     string
	MaxLength  int
	MaxResults int
}

// Sample runs a request and resolves every raw walk into a GraphPath with
// its total weight. Novelty is left at zero for the scorer to fill in.
func (s *Sampler) Sample(req Request) []types.GraphPath {
	var walks [][]string
	if req.Target != "" {
		if ids := s.Shortest(req.Source, req.Target); ids != nil {
			walks = append(walks, ids)
		}
	} else {
		walks = s.Diverse(req.Source, req.MaxLength, req.MaxResults)
	}

	paths := make([]types.GraphPath, 0, len(walks))
	for _, ids := range walks {
		if p, ok := s.ToPath(ids); ok {
			paths = append(paths, p)
		}
	}
	return paths
}

// Shortest returns the node ids of one shortest path from source to target
// following edge direction, or nil if there is none. It searches from both
// ends, always expanding the smaller frontier by one full level.
func (s *Sampler) Shortest(source, target string) []string {
	if source == target || !s.g.Has(source) || !s.g.Has(target) {
		return nil
	}

	fwd := newSearch(source)
	bwd := newSearch(target)

	for len(fwd.frontier) > 0 && len(bwd.frontier) > 0 {
		var meet string
		var found bool
		if len(fwd.frontier) <= len(bwd.frontier) {
			meet, found = fwd.expand(s.g.Neighbors, bwd.dist)
		} else {
			meet, found = bwd.expand(s.g.Predecessors, fwd.dist)
		}
		if found {
			return join(meet, fwd.parent, bwd.parent)
		}
	}
	return nil
}

type search struct {
	frontier []string
	dist     map[string]int
	parent   map[string]string
}

func newSearch(root string) *search {
	return &search{
		frontier: []string{root},
		dist:     map[string]int{root: 0},
		parent:   make(map[string]string),
	}
}

// expand advances the search by one level. Among nodes discovered in this
// level that the other search has reached, it returns the one with the
// smallest combined distance, first discovered on ties.
func (sr *search) expand(next func(string) []string, other map[string]int) (string, bool) {
	var frontier []string
	meet := ""
	best := -1

	for _, v := range sr.frontier {
		for _, w := range next(v) {
			if _, seen := sr.dist[w]; seen {
				continue
			}
			sr.dist[w] = sr.dist[v] + 1
			sr.parent[w] = v
			frontier = append(frontier, w)

			if d, ok := other[w]; ok {
				if total := sr.dist[w] + d; best < 0 || total < best {
					meet, best = w, total
				}
			}
		}
	}

	sr.frontier = frontier
	return meet, best >= 0
}

// join stitches the forward chain to meet with the backward chain from meet.
func join(meet string, fwdParent, bwdParent map[string]string) []string {
	var head []string
	for v := meet; ; {
		head = append(head, v)
		p, ok := fwdParent[v]
		if !ok {
			break
		}
		v = p
	}
	for i, j := 0, len(head)-1; i < j; i, j = i+1, j-1 {
		head[i], head[j] = head[j], head[i]
	}

	for v := meet; ; {
		n, ok := bwdParent[v]
		if !ok {
			break
		}
		head = append(head, n)
		v = n
	}
	return head
}

// Diverse returns up to maxResults distinct walks of at most maxLength nodes
// starting at source. It stops after 10×maxResults attempts and returns what
// it collected, in discovery order.
func (s *Sampler) Diverse(source string, maxLength, maxResults int) [][]string {
	if maxResults <= 0 || maxLength < 2 || !s.g.Has(source) {
		return nil
	}

	seen := make(map[string]bool)
	var walks [][]string

	for attempt := 0; attempt < attemptsPerResult*maxResults && len(walks) < maxResults; attempt++ {
		w := s.walk(source, maxLength)
		if len(w) < 2 {
			continue
		}
		key := strings.Join(w, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		walks = append(walks, w)
	}

	return walks
}

// walk performs one community-biased random walk.
func (s *Sampler) walk(source string, maxLength int) []string {
	path := []string{source}
	visited := map[string]bool{source: true}
	current := source

	var candidates []string
	var scores []float64

	for len(path) < maxLength {
		candidates = candidates[:0]
		scores = scores[:0]
		total := 0.0

		for _, e := range s.g.OutEdges(current) {
			if visited[e.Target] {
				continue
			}
			score := e.Weight
			if s.crossesCommunity(current, e.Target) {
				score *= CrossCommunityBoost
			}
			candidates = append(candidates, e.Target)
			scores = append(scores, score)
			total += score
		}
		if len(candidates) == 0 {
			break
		}

		next := candidates[s.pick(scores, total)]
		path = append(path, next)
		visited[next] = true
		current = next
	}

	return path
}

func (s *Sampler) crossesCommunity(from, to string) bool {
	if s.comms == nil {
		return false
	}
	a, ok := s.comms.Community(from)
	if !ok {
		return false
	}
	b, ok := s.comms.Community(to)
	if !ok {
		return false
	}
	return a != b
}

// pick draws an index with probability proportional to its score. When all
// scores are zero it draws uniformly.
func (s *Sampler) pick(scores []float64, total float64) int {
	r := s.rng.Float64()
	if total <= 0 {
		i := int(r * float64(len(scores)))
		if i >= len(scores) {
			i = len(scores) - 1
		}
		return i
	}

	r *= total
	cum := 0.0
	for i, sc := range scores {
		cum += sc
		if r < cum {
			return i
		}
	}
	return len(scores) - 1
}

// ToPath resolves node ids into a GraphPath. It reports false when the
// sequence is shorter than two nodes or references a missing node or edge.
func (s *Sampler) ToPath(ids []string) (types.GraphPath, bool) {
	if len(ids) < 2 {
		return types.GraphPath{}, false
	}

	path := types.GraphPath{
		Nodes: make([]types.ConceptNode, 0, len(ids)),
		Edges: make([]types.ConceptEdge, 0, len(ids)-1),
	}
	for i, id := range ids {
		n, ok := s.g.Node(id)
		if !ok {
			return types.GraphPath{}, false
		}
		path.Nodes = append(path.Nodes, n)
		if i == 0 {
			continue
		}
		e, ok := s.g.Edge(ids[i-1], id)
		if !ok {
			return types.GraphPath{}, false
		}
		path.Edges = append(path.Edges, e)
		path.TotalWeight += e.Weight
	}
	return path, true
}
