// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search ranks the publication corpus against free-text queries.
// Scoring is cosine similarity between the query vector and each record's
// TF-IDF vector from the current index snapshot; ordering and pagination
// are pure functions of the inputs so identical calls rank identically.
package search

import (
	"sort"
	"strings"

	"github.com/rijwolshakya09/IR-Test/internal/index"
	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

// DefaultPageSize is used when a caller provides no usable page size.
const DefaultPageSize = 10

// Rank scores every indexed record against query and returns the matches
// in relevance order: score descending, with the sort key deciding exact
// score ties. Records with no term overlap are excluded. An empty or
// whitespace-only query returns every record with score zero, so the sort
// key governs the whole order (published date descending by default).
func Rank(ix *index.Index, query string, by types.SortBy, order types.SortOrder) []types.SearchResult {
	browse := strings.TrimSpace(query) == ""
	by, order = resolveSort(by, order, browse)

	results := score(ix, query, browse)
	sortResults(results, by, order)
	return results
}

// score computes cosine similarities, or lists the whole corpus for a browse.
func score(ix *index.Index, query string, browse bool) []types.SearchResult {
	if browse {
		all := make([]types.SearchResult, 0, ix.Len())
		for i := 0; i < ix.Len(); i++ {
			all = append(all, types.SearchResult{PublicationRecord: ix.Record(i)})
		}
		return all
	}

	qvec := ix.QueryVector(query)
	if len(qvec) == 0 {
		return nil
	}

	var results []types.SearchResult
	for i := 0; i < ix.Len(); i++ {
		s := qvec.Dot(ix.Vector(i))
		if s <= 0 {
			continue
		}
		results = append(results, types.SearchResult{
			PublicationRecord: ix.Record(i),
			Score:             s,
		})
	}
	return results
}

// resolveSort fills in the effective tie-break key and direction. Without
// an explicit key, ranked results tie-break on title ascending and browses
// order by date descending.
func resolveSort(by types.SortBy, order types.SortOrder, browse bool) (types.SortBy, types.SortOrder) {
	switch by {
	case types.SortByTitle, types.SortByDate:
	default:
		if browse {
			return types.SortByDate, types.SortDesc
		}
		return types.SortByTitle, types.SortAsc
	}

	if order != types.SortAsc && order != types.SortDesc {
		if by == types.SortByDate {
			order = types.SortDesc
		} else {
			order = types.SortAsc
		}
	}
	return by, order
}

// Resort returns a copy of results under a different tie-break key. Score
// stays the primary order, so reordering a cached relevance list is cheap
// and leaves the cached slice untouched.
func Resort(results []types.SearchResult, by types.SortBy, order types.SortOrder) []types.SearchResult {
	out := make([]types.SearchResult, len(results))
	copy(out, results)

	by, order = resolveSort(by, order, false)
	sortResults(out, by, order)
	return out
}

// sortResults orders by score descending; the key and direction apply only
// when two scores are exactly equal, and the record link settles anything
// left so the order is total.
func sortResults(results []types.SearchResult, by types.SortBy, order types.SortOrder) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}

		var ka, kb string
		if by == types.SortByDate {
			ka, kb = a.PublishedDate, b.PublishedDate
		} else {
			ka, kb = strings.ToLower(a.Title), strings.ToLower(b.Title)
		}
		if ka != kb {
			if order == types.SortDesc {
				return ka > kb
			}
			return ka < kb
		}
		return a.Link < b.Link
	})
}

// Paginate slices the full ranked list into one page. A non-positive page
// clamps to 1 and a non-positive size to defaultSize; pages past the end
// come back empty rather than failing. The page copies its rows so callers
// cannot disturb a cached list.
func Paginate(results []types.SearchResult, page, size, defaultSize int) types.SearchPage {
	if defaultSize < 1 {
		defaultSize = DefaultPageSize
	}
	if size < 1 {
		size = defaultSize
	}
	if page < 1 {
		page = 1
	}

	total := len(results)
	totalPages := (total + size - 1) / size

	rows := []types.SearchResult{}
	if start := (page - 1) * size; start < total {
		end := start + size
		if end > total {
			end = total
		}
		rows = append(rows, results[start:end]...)
	}

	return types.SearchPage{
		Results:    rows,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
	}
}
