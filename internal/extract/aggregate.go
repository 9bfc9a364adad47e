// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"github.com/pdiddy/concept-engine/pkg/types"
)

// Aggregator merges per-paper candidates into corpus-level concepts.
//
// A per-paper count table is the only state: Frequency is always the sum of
// the counts and Papers is the list of contributing paper ids in first-seen
// order. Adding a paper id a second time replaces its earlier contribution.
type Aggregator struct {
	order   []string
	entries map[string]*aggregate

	// byPaper maps a paper id to the concept ids it contributed.
	byPaper map[string][]string
}

type aggregate struct {
	first  types.ConceptNode
	papers []string
	counts map[string]int
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		entries: make(map[string]*aggregate),
		byPaper: make(map[string][]string),
	}
}

// Add records the candidates extracted from one paper.
func (a *Aggregator) Add(paperID string, candidates []types.ConceptNode) {
	a.retract(paperID)

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.Frequency <= 0 {
			continue
		}
		entry, ok := a.entries[c.ID]
		if !ok {
			entry = &aggregate{first: c, counts: make(map[string]int)}
			a.entries[c.ID] = entry
			a.order = append(a.order, c.ID)
		}
		if _, seen := entry.counts[paperID]; !seen {
			entry.papers = append(entry.papers, paperID)
			ids = append(ids, c.ID)
		}
		entry.counts[paperID] += c.Frequency
	}

	if len(ids) > 0 {
		a.byPaper[paperID] = ids
	}
}

// retract removes every contribution previously recorded for paperID.
// Concepts left with no supporting paper are dropped.
func (a *Aggregator) retract(paperID string) {
	ids, ok := a.byPaper[paperID]
	if !ok {
		return
	}
	delete(a.byPaper, paperID)

	dropped := false
	for _, id := range ids {
		entry := a.entries[id]
		delete(entry.counts, paperID)
		entry.papers = removeString(entry.papers, paperID)
		if len(entry.papers) == 0 {
			delete(a.entries, id)
			dropped = true
		}
	}

	if dropped {
		kept := a.order[:0]
		for _, id := range a.order {
			if _, ok := a.entries[id]; ok {
				kept = append(kept, id)
			}
		}
		a.order = kept
	}
}

// Len returns the number of distinct concepts.
func (a *Aggregator) Len() int {
	return len(a.order)
}

// Concepts returns the corpus-level concepts in first-seen order.
func (a *Aggregator) Concepts() []types.ConceptNode {
	nodes := make([]types.ConceptNode, 0, len(a.order))
	for _, id := range a.order {
		entry := a.entries[id]
		node := entry.first
		node.Papers = append([]string(nil), entry.papers...)
		node.Frequency = 0
		for _, p := range entry.papers {
			node.Frequency += entry.counts[p]
		}
		if len(entry.first.Properties) > 0 {
			node.Properties = make(map[string]string, len(entry.first.Properties))
			for k, v := range entry.first.Properties {
				node.Properties[k] = v
			}
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// Summary holds counts from a corpus extraction run.
type Summary struct {
	Papers   int
	Empty    int
	Concepts int
}

// ExtractAll extracts and aggregates concepts from every paper. A repeated
// paper id replaces the earlier record, even when the later one yields no
// concepts; the summary counts distinct ids.
func ExtractAll(papers []types.Paper, cfg types.ExtractionConfig) ([]types.ConceptNode, Summary) {
	ext := New(cfg)
	agg := NewAggregator()

	// empty tracks, per distinct paper id, whether its latest record
	// yielded no concepts.
	empty := make(map[string]bool, len(papers))
	for _, p := range papers {
		candidates := ext.Extract(p)
		agg.Add(p.ID, candidates)
		empty[p.ID] = len(candidates) == 0
	}

	concepts := agg.Concepts()
	summary := Summary{Papers: len(empty), Concepts: len(concepts)}
	for _, e := range empty {
		if e {
			summary.Empty++
		}
	}
	return concepts, summary
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
