// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the publication corpus, the category set, and
// the classifier training documents in a SQLite database.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rijwolshakya09/IR-Test/internal/classify"
	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

// Defaults installed on first open so a fresh database can classify
// before any data has been imported.
var (
	defaultCategories = []string{"politics", "business", "health"}

	seedTrainingDocuments = []types.TrainingDocument{
		{Text: "Government passes new policy on public health spending.", Category: "politics"},
		{Text: "Company reports record revenue and higher profit margins.", Category: "business"},
		{Text: "Researchers discover a new treatment for chronic disease.", Category: "health"},
	}
)

// Store manages the engine's SQLite database.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the SQLite database at path. It creates parent
// directories and the schema as needed, and seeds the default category
// set and training documents when the database is empty.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := s.seedDefaults(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding defaults: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS publications (
			link TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			authors TEXT NOT NULL DEFAULT '[]',
			published_date TEXT NOT NULL DEFAULT '',
			abstract TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			name TEXT PRIMARY KEY,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS training_documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			category TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_training_documents_category ON training_documents(category)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return nil
}

func (s *Store) seedDefaults() error {
	var categories int
	if err := s.db.Get(&categories, `SELECT count(*) FROM categories`); err != nil {
		return fmt.Errorf("counting categories: %w", err)
	}
	if categories == 0 {
		if err := s.ReplaceCategories(context.Background(), defaultCategories); err != nil {
			return err
		}
	}

	var documents int
	if err := s.db.Get(&documents, `SELECT count(*) FROM training_documents`); err != nil {
		return fmt.Errorf("counting training documents: %w", err)
	}
	if documents == 0 {
		if err := s.ReplaceTrainingDocuments(context.Background(), seedTrainingDocuments); err != nil {
			return err
		}
	}

	return nil
}

type publicationRow struct {
	Link          string `db:"link"`
	Title         string `db:"title"`
	Authors       string `db:"authors"`
	PublishedDate string `db:"published_date"`
	Abstract      string `db:"abstract"`
}

// Publications returns every stored publication in insertion order.
func (s *Store) Publications(ctx context.Context) ([]types.PublicationRecord, error) {
	var rows []publicationRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT link, title, authors, published_date, abstract FROM publications ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("loading publications: %w", err)
	}

	records := make([]types.PublicationRecord, 0, len(rows))
	for _, row := range rows {
		var authors []types.Author
		if row.Authors != "" {
			if err := json.Unmarshal([]byte(row.Authors), &authors); err != nil {
				return nil, fmt.Errorf("decoding authors for %s: %w", row.Link, err)
			}
		}
		records = append(records, types.PublicationRecord{
			Title:         row.Title,
			Link:          row.Link,
			Authors:       authors,
			PublishedDate: row.PublishedDate,
			Abstract:      row.Abstract,
		})
	}

	return records, nil
}

// TrainingDocuments returns the stored training set in insertion order.
func (s *Store) TrainingDocuments(ctx context.Context) ([]types.TrainingDocument, error) {
	var docs []types.TrainingDocument
	err := s.db.SelectContext(ctx, &docs,
		`SELECT text, category FROM training_documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loading training documents: %w", err)
	}
	return docs, nil
}

// Categories returns the category set in priority order.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.db.SelectContext(ctx, &categories,
		`SELECT name FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	return categories, nil
}

// ReplacePublications swaps the stored corpus for records in one
// transaction. Records sharing a link keep the last occurrence.
func (s *Store) ReplacePublications(ctx context.Context, records []types.PublicationRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM publications`); err != nil {
		return fmt.Errorf("clearing publications: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO publications (link, title, authors, published_date, abstract)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		authorsJSON, _ := json.Marshal(rec.Authors)
		_, err := stmt.ExecContext(ctx,
			rec.Link, rec.Title, string(authorsJSON), rec.PublishedDate, rec.Abstract)
		if err != nil {
			return fmt.Errorf("inserting publication %s: %w", rec.Link, err)
		}
	}

	return tx.Commit()
}

// ReplaceTrainingDocuments swaps the stored training set for docs in one
// transaction. Every document must carry a label from the stored
// category set.
func (s *Store) ReplaceTrainingDocuments(ctx context.Context, docs []types.TrainingDocument) error {
	categories, err := s.Categories(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c] = true
	}
	for i, d := range docs {
		if !known[d.Category] {
			return fmt.Errorf("%w: training document %d labeled %q", classify.ErrUnknownCategory, i+1, d.Category)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM training_documents`); err != nil {
		return fmt.Errorf("clearing training documents: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO training_documents (text, category) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx, d.Text, d.Category); err != nil {
			return fmt.Errorf("inserting training document: %w", err)
		}
	}

	return tx.Commit()
}

// ReplaceCategories swaps the category set for categories, preserving
// their order as the priority order. It refuses to drop a category that
// stored training documents still reference.
func (s *Store) ReplaceCategories(ctx context.Context, categories []string) error {
	if len(categories) == 0 {
		return fmt.Errorf("category set cannot be empty")
	}
	keeping := make(map[string]bool, len(categories))
	for _, c := range categories {
		keeping[c] = true
	}

	var referenced []string
	err := s.db.SelectContext(ctx, &referenced,
		`SELECT DISTINCT category FROM training_documents`)
	if err != nil {
		return fmt.Errorf("loading referenced categories: %w", err)
	}
	for _, c := range referenced {
		if !keeping[c] {
			return fmt.Errorf("category %q still has training documents", c)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("clearing categories: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO categories (name, position) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range categories {
		if _, err := stmt.ExecContext(ctx, c, i); err != nil {
			return fmt.Errorf("inserting category %s: %w", c, err)
		}
	}

	return tx.Commit()
}
