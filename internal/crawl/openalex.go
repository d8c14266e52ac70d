// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

// openAlexBase is the OpenAlex Works endpoint. Declared as a var so tests
// can substitute an httptest server.
var openAlexBase = "https://api.openalex.org/works"

// startCursor begins cursor pagination; the API hands back the next one in
// meta.next_cursor.
const startCursor = "*"

// fetchPage requests one page of works and returns the cursor for the next.
// An empty cursor means the result set is exhausted.
func (c *Crawler) fetchPage(ctx context.Context, cursor string) ([]openAlexWork, string, error) {
	params := url.Values{
		"search":   {c.cfg.Query},
		"per-page": {strconv.Itoa(c.cfg.PerPage)},
		"cursor":   {cursor},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := c.retrier.Do(ctx, req)
	if err != nil {
		return nil, "", fmt.Errorf("OpenAlex request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("OpenAlex returned HTTP %d", resp.StatusCode)
	}

	var page openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, "", fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return page.Results, page.Meta.NextCursor, nil
}

// userAgent identifies the crawler. Adding a mailto joins the OpenAlex
// polite pool, which gets a faster, more consistent rate limit.
func (c *Crawler) userAgent() string {
	ua := "ir-engine/1.0"
	if c.cfg.Mailto != "" {
		ua += " (mailto:" + c.cfg.Mailto + ")"
	}
	return ua
}

// recordFromWork maps an OpenAlex work onto the import record shape. The
// link prefers the DOI, then the landing page, then the OpenAlex ID; works
// with none of the three come out link-less and the importer drops them.
func recordFromWork(w openAlexWork) types.PublicationRecord {
	link := w.DOI
	if link == "" {
		link = w.PrimaryLocation.LandingPageURL
	}
	if link == "" {
		link = w.ID
	}

	var authors []types.Author
	for _, authorship := range w.Authorships {
		name := strings.TrimSpace(authorship.Author.DisplayName)
		if name == "" {
			continue
		}
		authors = append(authors, types.Author{
			Name:    name,
			Profile: authorship.Author.ID,
		})
	}

	return types.PublicationRecord{
		Title:         w.Title,
		Link:          link,
		Authors:       authors,
		PublishedDate: w.PublicationDate,
		Abstract:      reconstructAbstract(w.AbstractInvertedIndex),
	}
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to a list of positions
// where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationDate       string               `json:"publication_date"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	PrimaryLocation       openAlexLocation     `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	LandingPageURL string `json:"landing_page_url"`
}
