// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SortBy selects the tie-break ordering for search results. Relevance
// (score descending) always comes first; the sort key orders documents
// whose scores are exactly equal, and the whole list for empty-query
// browsing where every score is zero.
type SortBy string

const (
	SortByRelevance SortBy = "relevance"
	SortByTitle     SortBy = "title"
	SortByDate      SortBy = "date"
)

// SortOrder is the direction applied to a SortBy key.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SearchResult is one ranked publication hit.
type SearchResult struct {
	PublicationRecord `yaml:",inline"`

	// Score is the cosine similarity between the query vector and the
	// document vector, in [0, 1]. Zero for every row of an empty-query
	// browse.
	Score float64 `json:"score" yaml:"score"`
}

// SearchPage is one page of ranked results plus paging metadata.
type SearchPage struct {
	// Results holds the hits for the requested page, best first. Never
	// nil; past-the-end pages yield an empty slice.
	Results []SearchResult `json:"results" yaml:"results"`

	// Total counts every matching document, not just this page.
	Total int `json:"total" yaml:"total"`

	// Page is the 1-based page number after clamping.
	Page int `json:"page" yaml:"page"`

	// Size is the page size after clamping.
	Size int `json:"size" yaml:"size"`

	// TotalPages is Total divided by Size, rounded up; zero when nothing
	// matched.
	TotalPages int `json:"total_pages" yaml:"total_pages"`

	// FromCache reports whether the ranked list was served from the query
	// cache (or an in-flight computation shared with another caller)
	// rather than computed for this call.
	FromCache bool `json:"from_cache" yaml:"from_cache"`
}
