// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"regexp"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citetree/internal/tree"
	"github.com/pdiddy/citetree/pkg/types"
)

const (
	defaultSQLitePath = "citetree.db"
	defaultTable      = "citation_tree"
)

// tableNameRe limits table names to plain identifiers, since the name is
// interpolated into DDL.
var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteExporter writes citation trees to a local SQLite database. The
// destination is one wide table keyed by paper identifier, with serialized
// JSON columns for authors and references and an FTS5 index over titles.
type SQLiteExporter struct {
	db    *sql.DB
	table string
}

// NewSQLiteExporter opens (or creates) the database at cfg.Path.
func NewSQLiteExporter(cfg types.SQLiteConfig) (*SQLiteExporter, error) {
	path := cfg.Path
	if path == "" {
		path = defaultSQLitePath
	}
	table := cfg.Table
	if table == "" {
		table = defaultTable
	}
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("%w: invalid table name %q", ErrStorageUnavailable, table)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrStorageUnavailable, path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: opening %s: %v", ErrStorageUnavailable, path, err)
	}

	return &SQLiteExporter{db: db, table: table}, nil
}

// Close releases the database connection.
func (e *SQLiteExporter) Close() error {
	return e.db.Close()
}

// Export writes every paper of the tree into the destination table as an
// upsert, so re-running an export against the same tree is idempotent. With
// dropExisting the table is recreated first. Progress messages go to w.
func (e *SQLiteExporter) Export(ctx context.Context, t *tree.Tree, dropExisting bool, w io.Writer) error {
	if w == nil {
		w = io.Discard
	}

	if dropExisting {
		fmt.Fprintf(w, "dropping table %s\n", e.table)
		drops := []string{
			fmt.Sprintf(`DROP TABLE IF EXISTS %s_fts`, e.table),
			fmt.Sprintf(`DROP TABLE IF EXISTS %s`, e.table),
		}
		for _, stmt := range drops {
			if _, err := e.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%w: dropping table: %v", ErrExportFailed, err)
			}
		}
	}

	if err := e.createSchema(ctx); err != nil {
		return err
	}

	if err := e.insertPapers(ctx, t, w); err != nil {
		return err
	}

	fmt.Fprintf(w, "exported %d papers to %s\n", t.Size(), e.table)
	return nil
}

func (e *SQLiteExporter) createSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			paper_id TEXT PRIMARY KEY,
			title TEXT,
			year INTEGER,
			citation_count INTEGER,
			abstract TEXT,
			authors TEXT,
			depth INTEGER NOT NULL,
			"references" TEXT,
			root_title TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, e.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_depth ON %[1]s(depth)`, e.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_year ON %[1]s(year)`, e.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_citation_count ON %[1]s(citation_count)`, e.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_root_title ON %[1]s(root_title)`, e.table),
	}
	for _, stmt := range statements {
		if _, err := e.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: executing schema statement: %v", ErrExportFailed, err)
		}
	}

	// FTS5 virtual table over titles, with triggers for sync.
	var ftsExists int
	err := e.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, e.table+"_fts",
	).Scan(&ftsExists)
	if err != nil {
		return fmt.Errorf("%w: checking FTS table: %v", ErrExportFailed, err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			fmt.Sprintf(`CREATE VIRTUAL TABLE %[1]s_fts USING fts5(title, content=%[1]s, content_rowid=rowid)`, e.table),
			fmt.Sprintf(`CREATE TRIGGER %[1]s_ai AFTER INSERT ON %[1]s BEGIN
				INSERT INTO %[1]s_fts(rowid, title) VALUES (new.rowid, new.title);
			END`, e.table),
			fmt.Sprintf(`CREATE TRIGGER %[1]s_ad AFTER DELETE ON %[1]s BEGIN
				INSERT INTO %[1]s_fts(%[1]s_fts, rowid, title) VALUES('delete', old.rowid, old.title);
			END`, e.table),
			fmt.Sprintf(`CREATE TRIGGER %[1]s_au AFTER UPDATE ON %[1]s BEGIN
				INSERT INTO %[1]s_fts(%[1]s_fts, rowid, title) VALUES('delete', old.rowid, old.title);
				INSERT INTO %[1]s_fts(rowid, title) VALUES (new.rowid, new.title);
			END`, e.table),
		}
		for _, stmt := range ftsStatements {
			if _, err := e.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%w: creating FTS infrastructure: %v", ErrExportFailed, err)
			}
		}
	}

	return nil
}

func (e *SQLiteExporter) insertPapers(ctx context.Context, t *tree.Tree, w io.Writer) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", ErrExportFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (paper_id, title, year, citation_count, abstract, authors, depth, "references", root_title)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(paper_id) DO UPDATE SET
			title=excluded.title, year=excluded.year,
			citation_count=excluded.citation_count, abstract=excluded.abstract,
			authors=excluded.authors, depth=excluded.depth,
			"references"=excluded."references", root_title=excluded.root_title`, e.table))
	if err != nil {
		return fmt.Errorf("%w: preparing upsert: %v", ErrExportFailed, err)
	}
	defer stmt.Close()

	rootTitle := t.RootTitle()
	papers := t.All()
	fmt.Fprintf(w, "inserting %d papers...\n", len(papers))

	for _, p := range papers {
		authorsJSON, err := json.Marshal(p.Authors)
		if err != nil {
			return fmt.Errorf("%w: marshaling authors for %s: %v", ErrExportFailed, p.PaperID, err)
		}
		refsJSON, err := json.Marshal(p.References)
		if err != nil {
			return fmt.Errorf("%w: marshaling references for %s: %v", ErrExportFailed, p.PaperID, err)
		}

		_, err = stmt.ExecContext(ctx,
			p.PaperID, p.Title, nullableInt(p.Year), nullableInt(p.CitationCount),
			p.Abstract, string(authorsJSON), p.Depth, string(refsJSON), rootTitle,
		)
		if err != nil {
			return fmt.Errorf("%w: inserting %s: %v", ErrExportFailed, p.PaperID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing: %v", ErrExportFailed, err)
	}
	return nil
}

// nullableInt maps a missing optional field to SQL NULL.
func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
