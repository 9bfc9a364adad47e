// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus loads paper records and keeps them available to the
// pipeline: Store is the in-memory record set a graph is built from, and
// Index is the persistent SQLite catalog with full-text search.
package corpus

import "github.com/pdiddy/concept-engine/pkg/types"

// Store is an in-memory set of papers keyed by id, kept in insertion order.
// It is not safe for concurrent writers.
type Store struct {
	order []string
	byID  map[string]types.Paper
}

// NewStore returns a store holding papers. Later papers with an id already
// present are dropped.
func NewStore(papers ...types.Paper) *Store {
	s := &Store{byID: make(map[string]types.Paper, len(papers))}
	for _, p := range papers {
		s.Add(p)
	}
	return s
}

// Add inserts a paper. Papers are immutable once loaded, so a paper whose id
// is already present is ignored. It reports whether the paper was added.
func (s *Store) Add(p types.Paper) bool {
	if p.ID == "" {
		return false
	}
	if _, ok := s.byID[p.ID]; ok {
		return false
	}
	s.byID[p.ID] = p
	s.order = append(s.order, p.ID)
	return true
}

// Get returns the paper with the given id.
func (s *Store) Get(id string) (types.Paper, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// Len returns the number of papers.
func (s *Store) Len() int { return len(s.order) }

// Papers returns every paper in insertion order.
func (s *Store) Papers() []types.Paper {
	out := make([]types.Paper, len(s.order))
	for i, id := range s.order {
		out[i] = s.byID[id]
	}
	return out
}
