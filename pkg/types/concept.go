// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConceptType categorizes a concept extracted from paper text.
type ConceptType string

const (
	ConceptGeneric    ConceptType = "concept"
	ConceptMethod     ConceptType = "method"
	ConceptMaterial   ConceptType = "material"
	ConceptTheory     ConceptType = "theory"
	ConceptPhenomenon ConceptType = "phenomenon"
)

// DefaultRelation is the relation type of co-occurrence edges.
const DefaultRelation = "relates_to"

// ConceptNode is a normalized scientific phrase and the papers supporting it.
type ConceptNode struct {
	// ID is the normalized slug (e.g. "neural_network"). Unique per graph.
	ID string `json:"id" yaml:"id"`

	// Label is the phrase as it appeared in the text, lowercased.
	Label string `json:"label" yaml:"label"`

	// Type is the classifier's category for the phrase.
	Type ConceptType `json:"type" yaml:"type"`

	// Properties holds free-form annotations.
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`

	// Papers lists the contributing paper ids, deduplicated, in first-seen order.
	Papers []string `json:"papers" yaml:"papers"`

	// Frequency is the sum of the per-paper occurrence counts.
	Frequency int `json:"frequency" yaml:"frequency"`

	// Embedding is reserved for vector representations. Not used by the core.
	Embedding []float64 `json:"embedding,omitempty" yaml:"embedding,omitempty"`
}

// ConceptEdge is a weighted, directed co-occurrence relationship.
type ConceptEdge struct {
	Source   string `json:"source" yaml:"source"`
	Target   string `json:"target" yaml:"target"`
	Relation string `json:"relation" yaml:"relation"`

	// Weight is the shared-paper count over the smaller concept frequency, in (0,1].
	Weight float64 `json:"weight" yaml:"weight"`

	// Confidence is the shared-paper count over the larger concept frequency, in (0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Evidence lists the ids of papers in which both concepts occur.
	Evidence []string `json:"evidence" yaml:"evidence"`
}

// GraphMetadata summarizes a built knowledge graph.
type GraphMetadata struct {
	PaperCount   int       `json:"paper_count" yaml:"paper_count"`
	ConceptCount int       `json:"concept_count" yaml:"concept_count"`
	EdgeCount    int       `json:"edge_count" yaml:"edge_count"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

// GraphPath is an ordered chain of concepts with the edges connecting them.
// len(Edges) == len(Nodes)-1 and len(Nodes) >= 2.
type GraphPath struct {
	Nodes       []ConceptNode `json:"nodes" yaml:"nodes"`
	Edges       []ConceptEdge `json:"edges" yaml:"edges"`
	TotalWeight float64       `json:"total_weight" yaml:"total_weight"`

	// Novelty is the path's novelty score in [0,1].
	Novelty float64 `json:"novelty" yaml:"novelty"`
}

// Length returns the number of concepts on the path.
func (p GraphPath) Length() int {
	return len(p.Nodes)
}

// NodeIDs returns the concept ids along the path.
func (p GraphPath) NodeIDs() []string {
	ids := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		ids[i] = n.ID
	}
	return ids
}
