// Package storage writes scraped articles into uniquely-keyed SQL tables.
//
// Each operation opens its own connection and closes it before returning; nothing is
// pooled between operations.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/0x0BSoD/mnaScraper/internal/model"
)

// Postgres accepts at most 65535 bind parameters per statement.
const maxRowsPerStatement = 1000

// Column names as created by the original tables.
const (
	ColumnTitle   = "titulo"
	ColumnSummary = "resumo"
	ColumnTerm    = "termo"
	ColumnDate    = "data"
)

// Table describes one destination table.
type Table struct {
	Name       string
	Constraint string
	// Unique lists the columns of the uniqueness constraint; ColumnDate is always last.
	Unique []string

	HasTitle      bool
	TitleRequired bool
	HasTerm       bool
	TermRequired  bool
}

func (t Table) columns() []string {
	var cols []string
	if t.HasTitle {
		cols = append(cols, ColumnTitle)
	}
	cols = append(cols, ColumnSummary)
	if t.HasTerm {
		cols = append(cols, ColumnTerm)
	}
	return append(cols, ColumnDate)
}

func (t Table) values(a model.Article) []any {
	var vals []any
	if t.HasTitle {
		vals = append(vals, a.Title)
	}
	vals = append(vals, a.Summary)
	if t.HasTerm {
		vals = append(vals, a.Term)
	}
	return append(vals, a.PublishedAt)
}

type ArticleStorage struct {
	driver  string
	dsn     string
	table   Table
	dialect dialect
}

func NewArticleStorage(driver, dsn string, table Table) (*ArticleStorage, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return &ArticleStorage{
		driver:  driver,
		dsn:     dsn,
		table:   table,
		dialect: d,
	}, nil
}

func (s *ArticleStorage) Table() Table {
	return s.table
}

func (s *ArticleStorage) withDB(ctx context.Context, fn func(db *sqlx.DB) error) error {
	db, err := sqlx.ConnectContext(ctx, s.driver, s.dsn)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", s.driver, err)
	}
	defer db.Close()

	return fn(db)
}

// EnsureTable creates the table with its uniqueness constraint if it does not exist yet.
func (s *ArticleStorage) EnsureTable(ctx context.Context) error {
	err := s.withDB(ctx, func(db *sqlx.DB) error {
		_, err := db.ExecContext(ctx, s.createTableQuery())
		return err
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", s.table.Name, err)
	}

	slog.Info("table ready", "table", s.table.Name)
	return nil
}

func (s *ArticleStorage) createTableQuery() string {
	t := s.table

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", t.Name)
	fmt.Fprintf(&b, "    id %s,\n", s.dialect.identity)
	if t.HasTitle {
		fmt.Fprintf(&b, "    %s TEXT%s,\n", ColumnTitle, notNull(t.TitleRequired))
	}
	fmt.Fprintf(&b, "    %s TEXT,\n", ColumnSummary)
	if t.HasTerm {
		fmt.Fprintf(&b, "    %s TEXT%s,\n", ColumnTerm, notNull(t.TermRequired))
	}
	fmt.Fprintf(&b, "    %s DATE NOT NULL,\n", ColumnDate)
	fmt.Fprintf(&b, "    CONSTRAINT %s UNIQUE (%s)\n", t.Constraint, strings.Join(t.Unique, ", "))
	b.WriteString(")")

	return b.String()
}

func notNull(required bool) string {
	if required {
		return " NOT NULL"
	}
	return ""
}

// Store inserts articles, silently skipping rows that collide with the unique
// constraint. It returns the number of rows actually written.
func (s *ArticleStorage) Store(ctx context.Context, articles []model.Article) (int64, error) {
	if len(articles) == 0 {
		slog.Info("no articles to store", "table", s.table.Name)
		return 0, nil
	}

	var inserted int64
	err := s.withDB(ctx, func(db *sqlx.DB) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck

		for _, chunk := range lo.Chunk(articles, maxRowsPerStatement) {
			res, err := tx.ExecContext(ctx, tx.Rebind(s.insertQuery(len(chunk))), s.args(chunk)...)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			inserted += n
		}

		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", s.table.Name, err)
	}

	slog.Info("articles stored",
		"table", s.table.Name,
		"received", len(articles),
		"inserted", inserted,
		"skipped", int64(len(articles))-inserted,
	)
	return inserted, nil
}

func (s *ArticleStorage) insertQuery(rows int) string {
	cols := s.table.columns()
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s ON CONFLICT (%s) DO NOTHING",
		s.table.Name,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat(row+", ", rows), ", "),
		strings.Join(s.table.Unique, ", "),
	)
}

func (s *ArticleStorage) args(articles []model.Article) []any {
	return lo.FlatMap(articles, func(a model.Article, _ int) []any {
		return s.table.values(a)
	})
}
