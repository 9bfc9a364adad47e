// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/concept-engine/pkg/types"
)

var (
	slugPattern = regexp.MustCompile(`[^a-z0-9]+`)
	yearPattern = regexp.MustCompile(`\b(1[5-9]|2[0-9])[0-9]{2}\b`)
)

// record is one paper as written in a metadata file. Each field accepts a
// canonical key and a legacy alternate; the canonical key wins when both
// are set. Fields are decoded loosely so that a field of the wrong shape
// falls back to its zero value instead of rejecting the record.
type record struct {
	ID        any `yaml:"id"`
	PaperID   any `yaml:"paper_id"`
	Title     any `yaml:"title"`
	Abstract  any `yaml:"abstract"`
	Summary   any `yaml:"summary"`
	Authors   any `yaml:"authors"`
	Year      any `yaml:"year"`
	PubYear   any `yaml:"publication_year"`
	Journal   any `yaml:"journal"`
	DOI       any `yaml:"doi"`
	PMID      any `yaml:"pmid"`
	Keywords  any `yaml:"keywords"`
	MeshTerms any `yaml:"mesh_terms"`
}

func (r record) paper(fallbackID string) types.Paper {
	p := types.Paper{
		ID:       firstNonEmpty(toScalar(r.ID), toScalar(r.PaperID)),
		Title:    toScalar(r.Title),
		Abstract: firstNonEmpty(toScalar(r.Abstract), toScalar(r.Summary)),
		Authors:  toList(r.Authors),
		Year:     parseYear(r.Year),
		Journal:  toScalar(r.Journal),
		DOI:      toScalar(r.DOI),
		PMID:     toScalar(r.PMID),
		Keywords: toList(r.Keywords),
	}
	if p.Year == 0 {
		p.Year = parseYear(r.PubYear)
	}
	if len(p.Keywords) == 0 {
		p.Keywords = toList(r.MeshTerms)
	}
	if p.ID == "" {
		p.ID = fallbackID
	}
	return p
}

// LoadFile parses a YAML or JSON metadata file holding either one paper
// record or a list of them. Records without an id are named after the file:
// "<slug>" for a single record, "<slug>-<n>" for the n-th list entry.
//
// A record that is not a mapping is left out and reported in bad; the rest
// of the file still loads. err is set only when the file as a whole cannot
// be read or parsed.
func LoadFile(path string) (papers []types.Paper, bad []error, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil, nil
	}

	slug := Slug(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	root := doc.Content[0]

	switch root.Kind {
	case yaml.MappingNode:
		p, err := decodeRecord(root, slug)
		if err != nil {
			return nil, []error{err}, nil
		}
		return []types.Paper{p}, nil, nil

	case yaml.SequenceNode:
		for i, item := range root.Content {
			p, err := decodeRecord(item, fmt.Sprintf("%s-%d", slug, i+1))
			if err != nil {
				bad = append(bad, fmt.Errorf("entry %d: %w", i+1, err))
				continue
			}
			papers = append(papers, p)
		}
		return papers, bad, nil

	default:
		return nil, nil, fmt.Errorf("decoding %s: expected a record or a list of records", path)
	}
}

func decodeRecord(node *yaml.Node, fallbackID string) (types.Paper, error) {
	if node.Kind != yaml.MappingNode {
		return types.Paper{}, fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	var r record
	if err := node.Decode(&r); err != nil {
		return types.Paper{}, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return r.paper(fallbackID), nil
}

// LoadSummary holds counts from a directory load.
type LoadSummary struct {
	Files      int
	Papers     int
	Duplicates int
	Failed     int

	// BadRecords counts records left out of otherwise readable files.
	BadRecords int
}

// LoadDir reads every metadata file in dir, in name order, into a new Store.
// A file that cannot be parsed is reported to w and counted as failed, and a
// record that cannot be decoded is reported and counted as bad; neither
// aborts the load.
func LoadDir(ctx context.Context, dir string, w io.Writer) (*Store, LoadSummary, error) {
	files, err := metadataFiles(dir)
	if err != nil {
		return nil, LoadSummary{}, err
	}

	store := NewStore()
	var summary LoadSummary

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return store, summary, err
		}
		summary.Files++

		papers, bad, err := LoadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", filepath.Base(path), err)
			summary.Failed++
			continue
		}
		for _, e := range bad {
			fmt.Fprintf(w, "bad record in %s: %v\n", filepath.Base(path), e)
		}
		summary.BadRecords += len(bad)
		for _, p := range papers {
			if store.Add(p) {
				summary.Papers++
			} else {
				fmt.Fprintf(w, "duplicate %s in %s\n", p.ID, filepath.Base(path))
				summary.Duplicates++
			}
		}
	}

	fmt.Fprintf(w, "\nloaded: %d papers from %d files, duplicates: %d, failed: %d, bad records: %d\n",
		summary.Papers, summary.Files, summary.Duplicates, summary.Failed, summary.BadRecords)
	return store, summary, nil
}

// metadataFiles lists the .yaml, .yml, and .json files in dir by name.
func metadataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading papers directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Slug lowercases s and collapses every run of characters outside [a-z0-9]
// into a single hyphen.
func Slug(s string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// parseYear accepts an integer or a string containing a four-digit year.
// Anything else yields 0.
func parseYear(v any) int {
	switch y := v.(type) {
	case int:
		return y
	case float64:
		return int(y)
	case string:
		y = strings.TrimSpace(y)
		if n, err := strconv.Atoi(y); err == nil {
			return n
		}
		if m := yearPattern.FindString(y); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	}
	return 0
}

// toList accepts a YAML list or a string separated by semicolons.
func toList(v any) []string {
	var raw []string
	switch x := v.(type) {
	case string:
		raw = strings.Split(x, ";")
	case []any:
		for _, item := range x {
			raw = append(raw, toScalar(item))
		}
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// toScalar renders a scalar value as a trimmed string. Lists and mappings
// yield "".
func toScalar(v any) string {
	switch x := v.(type) {
	case nil, []any, map[string]any, map[any]any:
		return ""
	case string:
		return strings.TrimSpace(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
