// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pdiddy/citetree/internal/tree"
	"github.com/pdiddy/citetree/pkg/types"
)

// DBTX is the subset of pgx a Postgres export needs. *pgx.Conn, *pgxpool.Pool,
// and pgx.Tx all satisfy it, and mocks can stand in for tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresExporter writes citation trees to a PostgreSQL table: one wide row
// per paper with JSONB columns for authors and references, secondary indexes
// on the scalar columns, and a GIN full-text index over titles.
type PostgresExporter struct {
	db    DBTX
	table string
}

// NewPostgresExporter creates an exporter writing to table over db. An empty
// table name selects the default.
func NewPostgresExporter(db DBTX, table string) (*PostgresExporter, error) {
	if table == "" {
		table = defaultTable
	}
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("%w: invalid table name %q", ErrStorageUnavailable, table)
	}
	return &PostgresExporter{db: db, table: table}, nil
}

// Connect opens a single connection from cfg for a one-shot export. The
// caller owns the connection and must Close it.
func Connect(ctx context.Context, cfg types.PostgresConfig) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to postgres: %v", ErrStorageUnavailable, err)
	}
	return conn, nil
}

// Export writes every paper of the tree into the destination table as an
// upsert, so re-running an export against the same tree is idempotent. With
// dropExisting the table is recreated first. Progress messages go to w.
func (e *PostgresExporter) Export(ctx context.Context, t *tree.Tree, dropExisting bool, w io.Writer) error {
	if w == nil {
		w = io.Discard
	}

	if dropExisting {
		fmt.Fprintf(w, "dropping table %s\n", e.table)
		if _, err := e.db.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, e.table)); err != nil {
			return fmt.Errorf("%w: dropping table: %v", ErrExportFailed, err)
		}
	}

	if err := e.createSchema(ctx, w); err != nil {
		return err
	}

	rootTitle := t.RootTitle()
	papers := t.All()
	fmt.Fprintf(w, "inserting %d papers...\n", len(papers))

	upsert := fmt.Sprintf(
		`INSERT INTO %s (paper_id, title, year, citation_count, abstract, authors, depth, "references", root_title)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (paper_id) DO UPDATE SET
			title = EXCLUDED.title,
			year = EXCLUDED.year,
			citation_count = EXCLUDED.citation_count,
			abstract = EXCLUDED.abstract,
			authors = EXCLUDED.authors,
			depth = EXCLUDED.depth,
			"references" = EXCLUDED."references",
			root_title = EXCLUDED.root_title`, e.table)

	for _, p := range papers {
		authorsJSON, err := json.Marshal(p.Authors)
		if err != nil {
			return fmt.Errorf("%w: marshaling authors for %s: %v", ErrExportFailed, p.PaperID, err)
		}
		refsJSON, err := json.Marshal(p.References)
		if err != nil {
			return fmt.Errorf("%w: marshaling references for %s: %v", ErrExportFailed, p.PaperID, err)
		}

		_, err = e.db.Exec(ctx, upsert,
			p.PaperID, p.Title, nullableInt(p.Year), nullableInt(p.CitationCount),
			p.Abstract, authorsJSON, p.Depth, refsJSON, rootTitle,
		)
		if err != nil {
			return fmt.Errorf("%w: inserting %s: %v", ErrExportFailed, p.PaperID, err)
		}
	}

	fmt.Fprintf(w, "exported %d papers to %s\n", len(papers), e.table)
	return nil
}

func (e *PostgresExporter) createSchema(ctx context.Context, w io.Writer) error {
	fmt.Fprintln(w, "creating table and indexes...")

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			paper_id VARCHAR(255) PRIMARY KEY,
			title TEXT,
			year INTEGER,
			citation_count INTEGER,
			abstract TEXT,
			authors JSONB,
			depth INTEGER NOT NULL,
			"references" JSONB,
			root_title TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, e.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_depth ON %[1]s(depth)`, e.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_year ON %[1]s(year)`, e.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_citation_count ON %[1]s(citation_count)`, e.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_root_title ON %[1]s(root_title)`, e.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_title ON %[1]s USING gin(to_tsvector('english', title))`, e.table),
	}
	for _, stmt := range statements {
		if _, err := e.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: executing schema statement: %v", ErrExportFailed, err)
		}
	}
	return nil
}
