package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/novelty"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/pipeline"
)

// runTimeLayout is fixed-width so stored start times sort as text.
const runTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY,
			source_id TEXT,
			year INTEGER NOT NULL,
			title TEXT,
			type TEXT,
			cited_by_count INTEGER NOT NULL DEFAULT 0,
			num_references INTEGER NOT NULL,
			document_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_documents_year ON documents(year);

		-- rowid mirrors documents.id
		CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			title,
			authors_text,
			concepts_text
		);

		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			years_json TEXT NOT NULL,
			graphs_json TEXT NOT NULL
		);

		-- score is NULL for documents that could not be evaluated
		CREATE TABLE IF NOT EXISTS scores (
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			document_id INTEGER NOT NULL,
			focal_year INTEGER NOT NULL,
			score REAL,
			pairs INTEGER NOT NULL,
			known INTEGER NOT NULL,
			PRIMARY KEY (run_id, focal_year, document_id)
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Keys are stored as the bit pattern of an int64 so bounds above 2^63 survive.
func sqlID(id uint64) int64   { return int64(id) }
func fromSQLID(v int64) uint64 { return uint64(v) }

// RebuildStats reports what a rebuild stored.
type RebuildStats struct {
	Documents int `json:"documents"`
	// Collapsed counts documents dropped because an earlier document already
	// holds their key (identifier collisions).
	Collapsed int `json:"collapsed"`
}

// RebuildFromJSONL clears the document tables and reloads them from the
// per-year JSONL files in docsDir. Stored runs are kept. When several
// documents share a key the first one read is kept.
func (d *DB) RebuildFromJSONL(docsDir string) (RebuildStats, error) {
	var stats RebuildStats
	docs, err := ReadAllDocs(docsDir)
	if err != nil {
		return RebuildStats{}, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return RebuildStats{}, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM documents"); err != nil {
		return RebuildStats{}, fmt.Errorf("clearing documents table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM documents_fts"); err != nil {
		return RebuildStats{}, fmt.Errorf("clearing documents_fts table: %w", err)
	}

	docStmt, err := tx.Prepare(`
		INSERT INTO documents (
			id, source_id, year, title, type,
			cited_by_count, num_references, document_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return RebuildStats{}, fmt.Errorf("preparing documents insert: %w", err)
	}
	defer docStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO documents_fts (rowid, title, authors_text, concepts_text)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return RebuildStats{}, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	seen := make(map[uint64]struct{}, len(docs))
	for _, doc := range docs {
		if _, dup := seen[doc.ID]; dup {
			stats.Collapsed++
			continue
		}
		seen[doc.ID] = struct{}{}

		data, err := json.Marshal(doc)
		if err != nil {
			return RebuildStats{}, fmt.Errorf("marshaling document %d: %w", doc.ID, err)
		}
		m := doc.Metadata
		_, err = docStmt.Exec(
			sqlID(doc.ID), nullableStringValue(m.SourceID), doc.Year, m.Title, m.Type,
			m.CitedByCount, len(doc.References), string(data),
		)
		if err != nil {
			return RebuildStats{}, fmt.Errorf("inserting document %d: %w", doc.ID, err)
		}

		concepts := strings.Join([]string{m.Concepts.Subfield, m.Concepts.Field, m.Concepts.Domain}, " ")
		_, err = ftsStmt.Exec(sqlID(doc.ID), m.Title, strings.Join(m.Authors, ", "), concepts)
		if err != nil {
			return RebuildStats{}, fmt.Errorf("inserting fts for %d: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return RebuildStats{}, fmt.Errorf("committing rebuild: %w", err)
	}
	stats.Documents = len(seen)
	return stats, nil
}

// GetDocument retrieves a document by canonical key. It returns nil, nil
// when the key is unknown.
func (d *DB) GetDocument(id uint64) (*document.Document, error) {
	var data string
	err := d.db.QueryRow(`SELECT document_json FROM documents WHERE id = ?`, sqlID(id)).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("getting document %d: %w", id, err)
	}
	return decodeDocument(data)
}

// Search performs a full-text search over titles, authors and concepts.
func (d *DB) Search(query string, limit int) ([]document.Document, error) {
	rows, err := d.db.Query(`
		SELECT document_json
		FROM documents
		WHERE id IN (SELECT rowid FROM documents_fts WHERE documents_fts MATCH ?)
		ORDER BY year, id
		LIMIT ?`, prepareFTSQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		doc, err := decodeDocument(data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func decodeDocument(data string) (*document.Document, error) {
	var doc document.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return &doc, nil
}

// Count returns the total number of documents.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&count)
	return count, err
}

// CountByYear returns the number of documents per publication year.
func (d *DB) CountByYear() (map[int]int, error) {
	rows, err := d.db.Query(`SELECT year, COUNT(*) FROM documents GROUP BY year`)
	if err != nil {
		return nil, fmt.Errorf("counting by year: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var year, n int
		if err := rows.Scan(&year, &n); err != nil {
			return nil, err
		}
		counts[year] = n
	}
	return counts, rows.Err()
}

// RunInfo describes a stored pipeline run.
type RunInfo struct {
	RunID     string                 `json:"run_id"`
	StartedAt time.Time              `json:"started_at"`
	Duration  time.Duration          `json:"duration"`
	Years     []pipeline.YearSummary `json:"years"`
}

// SaveRun stores a run and all of its records.
func (d *DB) SaveRun(res *pipeline.Result) error {
	yearsJSON, err := json.Marshal(res.Years)
	if err != nil {
		return fmt.Errorf("marshaling years: %w", err)
	}
	graphsJSON, err := json.Marshal(res.Graphs)
	if err != nil {
		return fmt.Errorf("marshaling graphs: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, started_at, duration_ms, years_json, graphs_json)
		VALUES (?, ?, ?, ?, ?)`,
		res.RunID, res.StartedAt.UTC().Format(runTimeLayout), res.Duration.Milliseconds(),
		string(yearsJSON), string(graphsJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", res.RunID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO scores (run_id, document_id, focal_year, score, pairs, known)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing scores insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range res.Records {
		score := sql.NullFloat64{}
		if rec.Score != nil {
			score = sql.NullFloat64{Float64: *rec.Score, Valid: true}
		}
		if _, err := stmt.Exec(res.RunID, sqlID(rec.DocumentID), rec.FocalYear, score, rec.Pairs, rec.Known); err != nil {
			return fmt.Errorf("inserting score for %d: %w", rec.DocumentID, err)
		}
	}

	return tx.Commit()
}

// ScoresForRun returns the records of a run ordered by (focal year, document).
func (d *DB) ScoresForRun(runID string) ([]novelty.Record, error) {
	rows, err := d.db.Query(`
		SELECT document_id, focal_year, score, pairs, known
		FROM scores
		WHERE run_id = ?
		ORDER BY focal_year, document_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing scores: %w", err)
	}
	defer rows.Close()

	var recs []novelty.Record
	for rows.Next() {
		var id int64
		var score sql.NullFloat64
		var rec novelty.Record
		if err := rows.Scan(&id, &rec.FocalYear, &score, &rec.Pairs, &rec.Known); err != nil {
			return nil, err
		}
		rec.DocumentID = fromSQLID(id)
		if score.Valid {
			v := score.Float64
			rec.Score = &v
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// LatestRun returns the most recently started run, or nil when none is stored.
func (d *DB) LatestRun() (*RunInfo, error) {
	var info RunInfo
	var startedAt, yearsJSON string
	var durationMS int64
	err := d.db.QueryRow(`
		SELECT run_id, started_at, duration_ms, years_json
		FROM runs
		ORDER BY started_at DESC
		LIMIT 1`).Scan(&info.RunID, &startedAt, &durationMS, &yearsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("getting latest run: %w", err)
	}

	if info.StartedAt, err = time.Parse(runTimeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("parsing run start: %w", err)
	}
	info.Duration = time.Duration(durationMS) * time.Millisecond
	if err := json.Unmarshal([]byte(yearsJSON), &info.Years); err != nil {
		return nil, fmt.Errorf("decoding run years: %w", err)
	}
	return &info, nil
}

func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery quotes queries containing FTS5 operators.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
