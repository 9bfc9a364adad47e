// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the concept-engine pipeline.
// Implements: the paper record (Paper), the concept graph data model
// (ConceptNode, ConceptEdge, GraphMetadata, GraphPath), and per-stage
// configuration.
package types

import "strings"

// Paper holds the metadata of one ingested paper. A Paper is immutable once
// loaded; stages read it, never mutate it.
type Paper struct {
	// ID is the paper identifier (e.g. "pmid-31452104", "2301.07041").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year. Zero when unknown or unparseable.
	Year int `json:"year" yaml:"year"`

	// Journal is the publishing venue, if known.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// DOI is the digital object identifier, if known.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// PMID is the PubMed identifier, if known.
	PMID string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// Keywords lists author or indexer keywords.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Text returns the text concept extraction runs over: title, abstract, and
// keywords joined by spaces.
func (p Paper) Text() string {
	parts := make([]string, 0, 2+len(p.Keywords))
	parts = append(parts, p.Title, p.Abstract)
	parts = append(parts, p.Keywords...)
	return strings.Join(parts, " ")
}
