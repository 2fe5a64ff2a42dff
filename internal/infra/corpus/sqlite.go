package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
	"github.com/yanqian/semantic-faq/internal/infra/corpus/migrations"
)

// DefaultSQLitePath is used when no DSN is configured.
const DefaultSQLitePath = "data/faq.db"

// SQLiteSource stores the corpus in an embedded SQLite database.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLiteSource opens dsn, creating the parent directory and schema.
func OpenSQLiteSource(ctx context.Context, dsn string) (*SQLiteSource, error) {
	if dsn == "" {
		dsn = DefaultSQLitePath
	}
	if path := strings.SplitN(strings.TrimPrefix(dsn, "file:"), "?", 2)[0]; path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single connection keeps PRAGMA settings and serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, migrations.SQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply corpus schema: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) Read(ctx context.Context) (faq.Document, error) {
	var meta faq.Metadata
	err := s.db.QueryRowContext(ctx, `
		SELECT version, last_updated, total_questions
		FROM faq_metadata
		WHERE id = 1
	`).Scan(&meta.Version, &meta.LastUpdated, &meta.TotalQuestions)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return faq.Document{}, faq.ErrCorpusNotFound
		}
		return faq.Document{}, fmt.Errorf("read corpus metadata: %w", err)
	}

	categories, err := querySQLite(ctx, s.db, `
		SELECT key, name
		FROM faq_categories
		ORDER BY position
	`, func(rows *sql.Rows) (categoryRow, error) {
		var c categoryRow
		err := rows.Scan(&c.key, &c.name)
		return c, err
	})
	if err != nil {
		return faq.Document{}, fmt.Errorf("read corpus categories: %w", err)
	}
	entries, err := querySQLite(ctx, s.db, `
		SELECT e.category_key, e.question, e.answer
		FROM faq_entries e
		JOIN faq_categories c ON c.key = e.category_key
		ORDER BY c.position, e.position
	`, func(rows *sql.Rows) (entryRow, error) {
		var e entryRow
		err := rows.Scan(&e.categoryKey, &e.question, &e.answer)
		return e, err
	})
	if err != nil {
		return faq.Document{}, fmt.Errorf("read corpus entries: %w", err)
	}
	return assemble(categories, entries, meta)
}

// Write replaces the stored corpus in one transaction.
func (s *SQLiteSource) Write(ctx context.Context, doc faq.Document) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin corpus write: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM faq_entries`); err != nil {
		return fmt.Errorf("clear corpus entries: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM faq_categories`); err != nil {
		return fmt.Errorf("clear corpus categories: %w", err)
	}
	insertEntry, err := tx.PrepareContext(ctx, `
		INSERT INTO faq_entries (category_key, position, question, answer)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare entry insert: %w", err)
	}
	defer insertEntry.Close()

	for pos, cat := range doc.Categories {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO faq_categories (key, name, position)
			VALUES (?, ?, ?)
		`, cat.Key, cat.Name, pos); err != nil {
			return fmt.Errorf("insert category %q: %w", cat.Key, err)
		}
		for i, qa := range cat.Questions {
			if _, err = insertEntry.ExecContext(ctx, cat.Key, i, qa.Question, qa.Answer); err != nil {
				return fmt.Errorf("insert entry: %w", err)
			}
		}
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO faq_metadata (id, version, last_updated, total_questions)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET version = excluded.version,
		    last_updated = excluded.last_updated,
		    total_questions = excluded.total_questions
	`, doc.Metadata.Version, doc.Metadata.LastUpdated, doc.Metadata.TotalQuestions); err != nil {
		return fmt.Errorf("upsert corpus metadata: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit corpus write: %w", err)
	}
	return nil
}

func querySQLite[T any](ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

var _ faq.CorpusSource = (*SQLiteSource)(nil)
