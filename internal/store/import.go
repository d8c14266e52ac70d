// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

// rawPublication mirrors one crawler JSON record before normalization.
// Older exports used a date key and plain author name lists, newer ones
// use published_date and author objects.
type rawPublication struct {
	Title         string          `json:"title"`
	Link          string          `json:"link"`
	Authors       json.RawMessage `json:"authors"`
	Date          string          `json:"date"`
	PublishedDate string          `json:"published_date"`
	Abstract      string          `json:"abstract"`
}

// ImportPublications replaces the stored corpus with the contents of a
// crawler JSON export. Records without a link are dropped. Returns the
// number of records imported.
func (s *Store) ImportPublications(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading publications file: %w", err)
	}

	var raw []rawPublication
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}

	records := make([]types.PublicationRecord, 0, len(raw))
	for _, r := range raw {
		link := strings.TrimSpace(r.Link)
		if link == "" {
			continue
		}
		date := r.Date
		if date == "" {
			date = r.PublishedDate
		}
		records = append(records, types.PublicationRecord{
			Title:         r.Title,
			Link:          link,
			Authors:       normalizeAuthors(r.Authors),
			PublishedDate: strings.TrimSpace(date),
			Abstract:      r.Abstract,
		})
	}

	if err := s.ReplacePublications(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// normalizeAuthors accepts the author shapes the crawlers have produced
// over time: a list of objects, a list of names, or a single name.
func normalizeAuthors(raw json.RawMessage) []types.Author {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}

	var objects []types.Author
	if err := json.Unmarshal(trimmed, &objects); err == nil {
		return objects
	}

	var names []string
	if err := json.Unmarshal(trimmed, &names); err == nil {
		authors := make([]types.Author, 0, len(names))
		for _, name := range names {
			if name = strings.TrimSpace(name); name != "" {
				authors = append(authors, types.Author{Name: name})
			}
		}
		return authors
	}

	var single string
	if err := json.Unmarshal(trimmed, &single); err == nil {
		if single = strings.TrimSpace(single); single != "" {
			return []types.Author{{Name: single}}
		}
	}

	return nil
}

// ImportTrainingCSV replaces the training set with the rows of a CSV
// file carrying text and category columns. Every label must belong to
// the stored category set. Returns the number of rows imported.
func (s *Store) ImportTrainingCSV(ctx context.Context, path string) (int, error) {
	rows, err := readCSV(path, "text", "category")
	if err != nil {
		return 0, err
	}

	docs := make([]types.TrainingDocument, 0, len(rows))
	for _, row := range rows {
		if row[0] == "" || row[1] == "" {
			continue
		}
		docs = append(docs, types.TrainingDocument{Text: row[0], Category: row[1]})
	}

	if err := s.ReplaceTrainingDocuments(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// ImportCategoriesCSV replaces the category set with the rows of a CSV
// file carrying a category column, in file order. Returns the number of
// categories imported.
func (s *Store) ImportCategoriesCSV(ctx context.Context, path string) (int, error) {
	rows, err := readCSV(path, "category")
	if err != nil {
		return 0, err
	}

	categories := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row[0] == "" || seen[row[0]] {
			continue
		}
		seen[row[0]] = true
		categories = append(categories, row[0])
	}

	if err := s.ReplaceCategories(ctx, categories); err != nil {
		return 0, err
	}
	return len(categories), nil
}

// readCSV reads a CSV file and projects each record onto the named
// header columns, trimmed. Column matching is case-insensitive.
func readCSV(path string, columns ...string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", path, err)
	}

	indexes := make([]int, len(columns))
	for i, want := range columns {
		indexes[i] = -1
		for j, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), want) {
				indexes[i] = j
				break
			}
		}
		if indexes[i] < 0 {
			return nil, fmt.Errorf("%s: header is missing a %s column", path, want)
		}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		row := make([]string, len(indexes))
		for i, j := range indexes {
			row[i] = strings.TrimSpace(record[j])
		}
		rows = append(rows, row)
	}

	return rows, nil
}
