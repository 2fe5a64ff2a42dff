package corpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
	"github.com/yanqian/semantic-faq/internal/infra/corpus/migrations"
)

// PostgresSource stores the corpus in relational tables so several
// instances can share one question bank.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates the schema when missing.
func NewPostgresSource(ctx context.Context, pool *pgxpool.Pool) (*PostgresSource, error) {
	if _, err := pool.Exec(ctx, migrations.Postgres); err != nil {
		return nil, fmt.Errorf("apply corpus schema: %w", err)
	}
	return &PostgresSource{pool: pool}, nil
}

func (s *PostgresSource) Read(ctx context.Context) (faq.Document, error) {
	var meta faq.Metadata
	err := s.pool.QueryRow(ctx, `
		SELECT version, last_updated, total_questions
		FROM faq_metadata
		WHERE id = 1
	`).Scan(&meta.Version, &meta.LastUpdated, &meta.TotalQuestions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return faq.Document{}, faq.ErrCorpusNotFound
		}
		return faq.Document{}, fmt.Errorf("read corpus metadata: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT key, name
		FROM faq_categories
		ORDER BY position
	`)
	if err != nil {
		return faq.Document{}, fmt.Errorf("read corpus categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (categoryRow, error) {
		var c categoryRow
		err := row.Scan(&c.key, &c.name)
		return c, err
	})
	if err != nil {
		return faq.Document{}, fmt.Errorf("scan corpus categories: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT e.category_key, e.question, e.answer
		FROM faq_entries e
		JOIN faq_categories c ON c.key = e.category_key
		ORDER BY c.position, e.position
	`)
	if err != nil {
		return faq.Document{}, fmt.Errorf("read corpus entries: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entryRow, error) {
		var e entryRow
		err := row.Scan(&e.categoryKey, &e.question, &e.answer)
		return e, err
	})
	if err != nil {
		return faq.Document{}, fmt.Errorf("scan corpus entries: %w", err)
	}
	return assemble(categories, entries, meta)
}

// Write replaces the stored corpus in one transaction.
func (s *PostgresSource) Write(ctx context.Context, doc faq.Document) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM faq_entries`); err != nil {
			return fmt.Errorf("clear corpus entries: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM faq_categories`); err != nil {
			return fmt.Errorf("clear corpus categories: %w", err)
		}

		var entries [][]any
		for pos, cat := range doc.Categories {
			if _, err := tx.Exec(ctx, `
				INSERT INTO faq_categories (key, name, position)
				VALUES ($1, $2, $3)
			`, cat.Key, cat.Name, pos); err != nil {
				return fmt.Errorf("insert category %q: %w", cat.Key, err)
			}
			for i, qa := range cat.Questions {
				entries = append(entries, []any{cat.Key, i, qa.Question, qa.Answer})
			}
		}
		if len(entries) > 0 {
			if _, err := tx.CopyFrom(ctx,
				pgx.Identifier{"faq_entries"},
				[]string{"category_key", "position", "question", "answer"},
				pgx.CopyFromRows(entries),
			); err != nil {
				return fmt.Errorf("copy corpus entries: %w", err)
			}
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO faq_metadata (id, version, last_updated, total_questions)
			VALUES (1, $1, $2, $3)
			ON CONFLICT (id) DO UPDATE
			SET version = EXCLUDED.version,
			    last_updated = EXCLUDED.last_updated,
			    total_questions = EXCLUDED.total_questions
		`, doc.Metadata.Version, doc.Metadata.LastUpdated, doc.Metadata.TotalQuestions); err != nil {
			return fmt.Errorf("upsert corpus metadata: %w", err)
		}
		return nil
	})
}

var _ faq.CorpusSource = (*PostgresSource)(nil)
