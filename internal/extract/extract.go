// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract identifies typed concept phrases within paper text and
// aggregates them across a corpus.
package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/concept-engine/pkg/types"
)

const (
	defaultMinPhraseFrequency = 2
	defaultMinPhraseLength    = 5
	minWindow                 = 2
	maxWindow                 = 3
)

// tokenPattern matches lowercase alphabetic words with inner hyphens.
var tokenPattern = regexp.MustCompile(`[a-z]+(?:-[a-z]+)*`)

// slugPattern matches characters removed from concept ids.
var slugPattern = regexp.MustCompile(`[^a-z0-9_]+`)

// classifiers is tested in order; the first match decides the type.
var classifiers = []struct {
	pattern *regexp.Regexp
	typ     types.ConceptType
}{
	{
		regexp.MustCompile(`\b(method|algorithm|technique|approach|model|analysis|learning|network|regression|classification|assay|sequencing|imaging|simulation|protocol)s?\b`),
		types.ConceptMethod,
	},
	{
		regexp.MustCompile(`\b(protein|cell|tissue|compound|molecule|material|drug|gene|enzyme|polymer|antibody|receptor|nanoparticle|substrate)s?\b`),
		types.ConceptMaterial,
	},
	{
		regexp.MustCompile(`\b(theory|hypothesis|principle|law|framework|mechanism|paradigm|postulate)s?\b`),
		types.ConceptTheory,
	},
	{
		regexp.MustCompile(`\b(effect|phenomenon|response|resistance|expression|folding|signaling|activation|inflammation|interaction|transition|degradation)s?\b`),
		types.ConceptPhenomenon,
	},
}

// Extractor turns paper text into concept candidates.
type Extractor struct {
	minFrequency int
	minLength    int
}

// New returns an Extractor. Zero config values use the defaults
// (frequency >= 2, length > 5).
func New(cfg types.ExtractionConfig) *Extractor {
	e := &Extractor{
		minFrequency: cfg.MinPhraseFrequency,
		minLength:    cfg.MinPhraseLength,
	}
	if e.minFrequency <= 0 {
		e.minFrequency = defaultMinPhraseFrequency
	}
	if e.minLength <= 0 {
		e.minLength = defaultMinPhraseLength
	}
	return e
}

// Extract returns one candidate per surviving phrase of the paper, ordered by
// first occurrence. Each candidate's Frequency is its in-paper count and its
// Papers list holds only this paper's id. Empty text yields nil.
func (e *Extractor) Extract(paper types.Paper) []types.ConceptNode {
	text := strings.ToLower(paper.Text())
	if strings.TrimSpace(text) == "" {
		return nil
	}

	tokens := tokenPattern.FindAllString(text, -1)
	counts, order := countPhrases(tokens)

	var candidates []types.ConceptNode
	byID := make(map[string]int)

	for _, phrase := range order {
		count := counts[phrase]
		if count < e.minFrequency || len(phrase) <= e.minLength {
			continue
		}
		id := Normalize(phrase)
		if id == "" {
			continue
		}
		// Phrases differing only in stripped characters share an id.
		if i, ok := byID[id]; ok {
			candidates[i].Frequency += count
			continue
		}
		byID[id] = len(candidates)
		candidates = append(candidates, types.ConceptNode{
			ID:        id,
			Label:     phrase,
			Type:      Classify(phrase),
			Papers:    []string{paper.ID},
			Frequency: count,
		})
	}

	return candidates
}

// countPhrases counts every contiguous 2- and 3-word window. order lists
// distinct phrases by the position of their first window.
func countPhrases(tokens []string) (map[string]int, []string) {
	counts := make(map[string]int)
	var order []string

	for i := range tokens {
		for n := minWindow; n <= maxWindow; n++ {
			if i+n > len(tokens) {
				break
			}
			phrase := strings.Join(tokens[i:i+n], " ")
			if counts[phrase] == 0 {
				order = append(order, phrase)
			}
			counts[phrase]++
		}
	}

	return counts, order
}

// Classify returns the type of the first classifier family matching phrase,
// or ConceptGeneric when none does.
func Classify(phrase string) types.ConceptType {
	lower := strings.ToLower(phrase)
	for _, c := range classifiers {
		if c.pattern.MatchString(lower) {
			return c.typ
		}
	}
	return types.ConceptGeneric
}

// Normalize converts a phrase to a stable concept id: lowercase, whitespace
// runs become underscores, and anything outside [a-z0-9_] is removed.
func Normalize(phrase string) string {
	joined := strings.Join(strings.Fields(strings.ToLower(phrase)), "_")
	return slugPattern.ReplaceAllString(joined, "")
}
