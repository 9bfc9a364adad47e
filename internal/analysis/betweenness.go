// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"context"

	"github.com/pdiddy/concept-engine/internal/graph"
)

// ctxCheckInterval is how many BFS sources run between cancellation checks.
const ctxCheckInterval = 64

// Betweenness scores nodes by shortest-path betweenness centrality over the
// undirected, unweighted view of the graph (Brandes' algorithm). Scores are
// normalized by 2/((n-1)(n-2)) when the graph has more than two nodes.
type Betweenness struct{}

// Score implements CentralityScorer.
func (Betweenness) Score(ctx context.Context, g *graph.Graph) (map[string]float64, error) {
	adj := g.UndirectedAdjacency()
	ids := g.NodeIDs()
	n := len(ids)

	raw := make([]float64, n)
	sigma := make([]float64, n)
	dist := make([]int, n)
	delta := make([]float64, n)
	pred := make([][]int, n)
	order := make([]int, 0, n)
	queue := make([]int, 0, n)

	for s := 0; s < n; s++ {
		if s%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		for i := 0; i < n; i++ {
			sigma[i] = 0
			dist[i] = -1
			delta[i] = 0
			pred[i] = pred[i][:0]
		}
		order = order[:0]
		queue = append(queue[:0], s)
		sigma[s] = 1
		dist[s] = 0

		for head := 0; head < len(queue); head++ {
			v := queue[head]
			order = append(order, v)
			for _, nb := range adj[v] {
				w := nb.Node
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		// Accumulate dependencies in reverse BFS order.
		for i := len(order) - 1; i >= 0; i-- {
			w := order[i]
			for _, v := range pred[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				raw[w] += delta[w]
			}
		}
	}

	// Every undirected pair was counted from both endpoints.
	scale := 0.5
	if n > 2 {
		scale = 1 / float64((n-1)*(n-2))
	}

	scores := make(map[string]float64, n)
	for i, id := range ids {
		scores[id] = raw[i] * scale
	}
	return scores, nil
}
