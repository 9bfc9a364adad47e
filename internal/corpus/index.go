// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/concept-engine/pkg/types"
)

const (
	dbFile            = "catalog.db"
	defaultMaxResults = 20
)

// ErrPaperNotFound is returned by Index.Get for unknown ids.
var ErrPaperNotFound = errors.New("paper not found")

// Index is the persistent paper catalog: a SQLite database with an FTS5
// index over title, abstract, and keywords. Ingest keeps it in step with
// the metadata files in the papers directory.
type Index struct {
	db         *sql.DB
	papersDir  string
	maxResults int
}

// OpenIndex opens or creates the catalog at cfg.IndexDir/catalog.db and
// creates the schema if it does not exist.
func OpenIndex(cfg types.CorpusConfig) (*Index, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	idx := &Index{
		db:         db,
		papersDir:  cfg.PapersDir,
		maxResults: maxResults,
	}

	if err := idx.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return idx, nil
}

// Close releases the database connection.
func (idx *Index) Close() error {
	return idx.db.Close()
}

func (idx *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT,
			abstract TEXT,
			authors TEXT,
			year INTEGER,
			journal TEXT,
			doi TEXT,
			pmid TEXT,
			keywords TEXT,
			source_file TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_source ON papers(source_file)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_year ON papers(year)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			source_file TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := idx.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := idx.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE papers_fts USING fts5(title, abstract, keywords, content=papers, content_rowid=rowid)`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, abstract, keywords)
				VALUES (new.rowid, new.title, new.abstract, new.keywords);
			END`,
			`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract, keywords)
				VALUES ('delete', old.rowid, old.title, old.abstract, old.keywords);
			END`,
			`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract, keywords)
				VALUES ('delete', old.rowid, old.title, old.abstract, old.keywords);
				INSERT INTO papers_fts(rowid, title, abstract, keywords)
				VALUES (new.rowid, new.title, new.abstract, new.keywords);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := idx.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a catalog indexing run. Counts are per
// metadata file.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
	Papers  int

	// BadRecords counts records left out of files that were indexed.
	BadRecords int
}

// Total returns the number of files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads the metadata files in the papers directory and loads their
// records into the catalog. Files whose modification time matches the last
// run are skipped; changed files have their previous records replaced.
// A file that fails to parse is reported and counted, never fatal.
func (idx *Index) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	files, err := metadataFiles(idx.papersDir)
	if err != nil {
		return IngestSummary{}, err
	}

	var summary IngestSummary

	for _, path := range files {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := filepath.Base(path)

		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = idx.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE source_file = ?`, name,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", name)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		papers, bad, err := LoadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		for _, e := range bad {
			fmt.Fprintf(w, "bad record in %s: %v\n", name, e)
		}

		if err := idx.ingestFile(ctx, name, papers, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		summary.Papers += len(papers)
		summary.BadRecords += len(bad)

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d papers)\n", name, len(papers))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d papers)\n", name, len(papers))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d, bad records: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed, summary.BadRecords)

	return summary, nil
}

func (idx *Index) ingestFile(ctx context.Context, sourceFile string, papers []types.Paper, modTime string) error {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Records the file no longer carries disappear with it.
	if _, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE source_file = ?`, sourceFile); err != nil {
		return fmt.Errorf("deleting old papers: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (id, title, abstract, authors, year, journal, doi, pmid, keywords, source_file)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, abstract=excluded.abstract, authors=excluded.authors,
			year=excluded.year, journal=excluded.journal, doi=excluded.doi,
			pmid=excluded.pmid, keywords=excluded.keywords, source_file=excluded.source_file`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range papers {
		authorsJSON, _ := json.Marshal(p.Authors)
		keywordsJSON, _ := json.Marshal(p.Keywords)
		_, err := stmt.ExecContext(ctx,
			p.ID, p.Title, p.Abstract, string(authorsJSON), p.Year,
			p.Journal, p.DOI, p.PMID, string(keywordsJSON), sourceFile,
		)
		if err != nil {
			return fmt.Errorf("inserting paper %s: %w", p.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (source_file, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(source_file) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		sourceFile, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

const paperColumns = `p.id, p.title, p.abstract, p.authors, p.year, p.journal, p.doi, p.pmid, p.keywords`

// Papers returns every cataloged paper in the order it was last written.
func (idx *Index) Papers(ctx context.Context) ([]types.Paper, error) {
	rows, err := idx.db.QueryContext(ctx,
		`SELECT `+paperColumns+`, 0 FROM papers p ORDER BY p.rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	results, err := scanResults(rows)
	if err != nil {
		return nil, err
	}
	papers := make([]types.Paper, len(results))
	for i, r := range results {
		papers[i] = r.Paper
	}
	return papers, nil
}

// Store loads the whole catalog into an in-memory Store.
func (idx *Index) Store(ctx context.Context) (*Store, error) {
	papers, err := idx.Papers(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(papers...), nil
}

// Get returns one paper by id.
func (idx *Index) Get(ctx context.Context, id string) (types.Paper, error) {
	rows, err := idx.db.QueryContext(ctx,
		`SELECT `+paperColumns+`, 0 FROM papers p WHERE p.id = ?`, id)
	if err != nil {
		return types.Paper{}, fmt.Errorf("looking up paper: %w", err)
	}
	defer rows.Close()

	results, err := scanResults(rows)
	if err != nil {
		return types.Paper{}, err
	}
	if len(results) == 0 {
		return types.Paper{}, fmt.Errorf("paper %s: %w", id, ErrPaperNotFound)
	}
	return results[0].Paper, nil
}

// Count returns the number of cataloged papers.
func (idx *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := idx.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

// SearchResult is a paper matched by a full-text query.
type SearchResult struct {
	types.Paper `yaml:",inline"`

	// Rank is the FTS5 bm25 rank; lower is more relevant.
	Rank float64 `json:"rank" yaml:"rank"`
}

// Search runs an FTS5 query over title, abstract, and keywords, best match
// first. A non-positive limit uses the configured maximum.
func (idx *Index) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = idx.maxResults
	}

	rows, err := idx.db.QueryContext(ctx,
		`SELECT `+paperColumns+`, papers_fts.rank
		FROM papers_fts
		JOIN papers p ON p.rowid = papers_fts.rowid
		WHERE papers_fts MATCH ?
		ORDER BY papers_fts.rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	var results []SearchResult
	for rows.Next() {
		var (
			r                                   SearchResult
			title, abstract, journal, doi, pmid sql.NullString
			authorsJSON, keywordsJSON           sql.NullString
			year                                sql.NullInt64
		)

		if err := rows.Scan(
			&r.ID, &title, &abstract, &authorsJSON, &year,
			&journal, &doi, &pmid, &keywordsJSON, &r.Rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		r.Title = title.String
		r.Abstract = abstract.String
		r.Year = int(year.Int64)
		r.Journal = journal.String
		r.DOI = doi.String
		r.PMID = pmid.String
		if authorsJSON.Valid {
			json.Unmarshal([]byte(authorsJSON.String), &r.Authors)
		}
		if keywordsJSON.Valid {
			json.Unmarshal([]byte(keywordsJSON.String), &r.Keywords)
		}

		results = append(results, r)
	}
	return results, rows.Err()
}
