// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rijwolshakya09/IR-Test/internal/httputil"
	"github.com/rijwolshakya09/IR-Test/internal/store"
	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

func init() {
	// Use a tiny base delay so the 429 test finishes quickly.
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testCrawler builds a Crawler with a short page delay against a fake
// endpoint.
func testCrawler(ts *httptest.Server, cfg types.CrawlConfig) *Crawler {
	if cfg.Delay == 0 {
		cfg.Delay = 1 * time.Millisecond
	}
	c := New(cfg, WithLogger(testLogger()), WithHTTPClient(ts.Client()))
	return c
}

// --- reconstructAbstract ---

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{"nil map", nil, ""},
		{"empty map", map[string][]int{}, ""},
		{"single word", map[string][]int{"hello": {0}}, "hello"},
		{
			name: "multi-word ordered",
			index: map[string][]int{
				"Tabular":   {0},
				"data":      {1},
				"needs":     {2},
				"attention": {3},
			},
			want: "Tabular data needs attention",
		},
		{
			name: "repeated word",
			index: map[string][]int{
				"the": {0, 4},
				"cat": {1},
				"sat": {2},
				"on":  {3},
				"mat": {5},
			},
			want: "the cat sat on the mat",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reconstructAbstract(tt.index)
			if got != tt.want {
				t.Errorf("reconstructAbstract() = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- recordFromWork ---

func TestRecordFromWorkLinkPreference(t *testing.T) {
	tests := []struct {
		name string
		work openAlexWork
		want string
	}{
		{
			name: "doi wins",
			work: openAlexWork{
				ID:              "https://openalex.org/W1",
				DOI:             "https://doi.org/10.1234/dl.1",
				PrimaryLocation: openAlexLocation{LandingPageURL: "https://example.org/dl1"},
			},
			want: "https://doi.org/10.1234/dl.1",
		},
		{
			name: "landing page when no doi",
			work: openAlexWork{
				ID:              "https://openalex.org/W2",
				PrimaryLocation: openAlexLocation{LandingPageURL: "https://example.org/graphs"},
			},
			want: "https://example.org/graphs",
		},
		{
			name: "openalex id as last resort",
			work: openAlexWork{ID: "https://openalex.org/W3"},
			want: "https://openalex.org/W3",
		},
		{
			name: "nothing at all",
			work: openAlexWork{Title: "orphan"},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recordFromWork(tt.work)
			if got.Link != tt.want {
				t.Errorf("Link = %q, want %q", got.Link, tt.want)
			}
		})
	}
}

func TestRecordFromWorkFields(t *testing.T) {
	w := openAlexWork{
		ID:              "https://openalex.org/W1",
		Title:           "Deep Learning for Tabular Data",
		DOI:             "https://doi.org/10.1234/dl.1",
		PublicationDate: "2023-03-14",
		Authorships: []openAlexAuthorship{
			{Author: openAlexAuthor{ID: "https://openalex.org/A1", DisplayName: "Grace Hopper"}},
			{Author: openAlexAuthor{ID: "https://openalex.org/A2", DisplayName: "  Alan Turing  "}},
			{Author: openAlexAuthor{ID: "https://openalex.org/A3", DisplayName: ""}},
		},
		AbstractInvertedIndex: map[string][]int{"Tabular": {0}, "data": {1}},
	}

	rec := recordFromWork(w)
	if rec.Title != "Deep Learning for Tabular Data" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.PublishedDate != "2023-03-14" {
		t.Errorf("PublishedDate = %q", rec.PublishedDate)
	}
	if rec.Abstract != "Tabular data" {
		t.Errorf("Abstract = %q", rec.Abstract)
	}
	// Nameless authorships are dropped, names are trimmed, profile carries
	// the author ID.
	if len(rec.Authors) != 2 {
		t.Fatalf("len(Authors) = %d, want 2", len(rec.Authors))
	}
	if rec.Authors[0].Name != "Grace Hopper" || rec.Authors[0].Profile != "https://openalex.org/A1" {
		t.Errorf("Authors[0] = %+v", rec.Authors[0])
	}
	if rec.Authors[1].Name != "Alan Turing" {
		t.Errorf("Authors[1].Name = %q, want trimmed", rec.Authors[1].Name)
	}
}

// --- Fetch pagination ---

const crawlPageOne = `{
  "meta": {"count": 3, "next_cursor": "cur2"},
  "results": [
    {
      "id": "https://openalex.org/W1",
      "title": "Deep Learning for Tabular Data",
      "doi": "https://doi.org/10.1234/dl.1",
      "publication_date": "2023-03-14",
      "authorships": [
        {"author": {"id": "https://openalex.org/A1", "display_name": "Grace Hopper"}}
      ],
      "abstract_inverted_index": {"Tabular": [0], "data": [1], "needs": [2], "attention": [3]},
      "primary_location": {"landing_page_url": "https://example.org/dl1"}
    },
    {
      "id": "https://openalex.org/W2",
      "title": "Streaming Graph Algorithms",
      "doi": "",
      "publication_date": "2022-11-02",
      "authorships": [{"author": {"id": "", "display_name": "Edsger Dijkstra"}}],
      "abstract_inverted_index": {},
      "primary_location": {"landing_page_url": "https://example.org/graphs"}
    }
  ]
}`

const crawlPageTwo = `{
  "meta": {"count": 3, "next_cursor": null},
  "results": [
    {
      "id": "https://openalex.org/W3",
      "title": "Causal Inference at Scale",
      "doi": "",
      "publication_date": "2024-01-20",
      "authorships": [],
      "abstract_inverted_index": {"Causal": [0], "graphs": [1]},
      "primary_location": {}
    }
  ]
}`

// pageRequest captures what the crawler sent for one page.
type pageRequest struct {
	cursor    string
	perPage   string
	search    string
	userAgent string
}

// pagedServer serves page bodies keyed by cursor and records each request.
// The crawler fetches sequentially, so no locking is needed.
func pagedServer(t *testing.T, pages map[string]string, got *[]pageRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		*got = append(*got, pageRequest{
			cursor:    q.Get("cursor"),
			perPage:   q.Get("per-page"),
			search:    q.Get("search"),
			userAgent: r.Header.Get("User-Agent"),
		})
		body, ok := pages[q.Get("cursor")]
		if !ok {
			t.Errorf("unexpected cursor %q", q.Get("cursor"))
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func swapBase(t *testing.T, url string) {
	t.Helper()
	old := openAlexBase
	openAlexBase = url
	t.Cleanup(func() { openAlexBase = old })
}

func TestFetchFollowsCursors(t *testing.T) {
	var reqs []pageRequest
	ts := pagedServer(t, map[string]string{"*": crawlPageOne, "cur2": crawlPageTwo}, &reqs)
	defer ts.Close()
	swapBase(t, ts.URL)

	c := testCrawler(ts, types.CrawlConfig{Query: "data science", PerPage: 2})
	records, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	if records[0].Link != "https://doi.org/10.1234/dl.1" {
		t.Errorf("records[0].Link = %q, want the DOI", records[0].Link)
	}
	if records[0].Abstract != "Tabular data needs attention" {
		t.Errorf("records[0].Abstract = %q", records[0].Abstract)
	}
	if records[1].Link != "https://example.org/graphs" {
		t.Errorf("records[1].Link = %q, want the landing page", records[1].Link)
	}
	if records[2].Link != "https://openalex.org/W3" {
		t.Errorf("records[2].Link = %q, want the OpenAlex ID", records[2].Link)
	}

	if len(reqs) != 2 {
		t.Fatalf("len(reqs) = %d, want 2", len(reqs))
	}
	if reqs[0].cursor != "*" || reqs[1].cursor != "cur2" {
		t.Errorf("cursors = [%q %q], want [* cur2]", reqs[0].cursor, reqs[1].cursor)
	}
	for i, r := range reqs {
		if r.search != "data science" {
			t.Errorf("reqs[%d].search = %q", i, r.search)
		}
		if r.perPage != "2" {
			t.Errorf("reqs[%d].perPage = %q, want 2", i, r.perPage)
		}
	}
}

func TestFetchStopsAtMaxRecords(t *testing.T) {
	var reqs []pageRequest
	ts := pagedServer(t, map[string]string{"*": crawlPageOne, "cur2": crawlPageTwo}, &reqs)
	defer ts.Close()
	swapBase(t, ts.URL)

	// Page one alone satisfies the cap, so no second request happens.
	c := testCrawler(ts, types.CrawlConfig{Query: "data science", MaxRecords: 2})
	records, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len(records) = %d, want 2", len(records))
	}
	if len(reqs) != 1 {
		t.Errorf("len(reqs) = %d, want 1", len(reqs))
	}
}

func TestFetchTruncatesMidPage(t *testing.T) {
	var reqs []pageRequest
	ts := pagedServer(t, map[string]string{"*": crawlPageOne}, &reqs)
	defer ts.Close()
	swapBase(t, ts.URL)

	c := testCrawler(ts, types.CrawlConfig{Query: "data science", MaxRecords: 1})
	records, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Title != "Deep Learning for Tabular Data" {
		t.Errorf("records[0].Title = %q", records[0].Title)
	}
}

func TestFetchStopsOnEmptyResults(t *testing.T) {
	var reqs []pageRequest
	empty := `{"meta": {"count": 0, "next_cursor": "more"}, "results": []}`
	ts := pagedServer(t, map[string]string{"*": empty}, &reqs)
	defer ts.Close()
	swapBase(t, ts.URL)

	c := testCrawler(ts, types.CrawlConfig{Query: "antichresis"})
	records, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
	if len(reqs) != 1 {
		t.Errorf("len(reqs) = %d, want 1", len(reqs))
	}
}

func TestFetchRequiresQuery(t *testing.T) {
	c := New(types.CrawlConfig{Query: "   "}, WithLogger(testLogger()))
	_, err := c.Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "query") {
		t.Errorf("expected query-required error, got: %v", err)
	}
}

// --- User-Agent / polite pool ---

func TestFetchUserAgent(t *testing.T) {
	var reqs []pageRequest
	ts := pagedServer(t, map[string]string{"*": crawlPageTwo}, &reqs)
	defer ts.Close()
	swapBase(t, ts.URL)

	c := testCrawler(ts, types.CrawlConfig{Query: "x", Mailto: "crawler@example.com"})
	if _, err := c.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := reqs[0].userAgent; got != "ir-engine/1.0 (mailto:crawler@example.com)" {
		t.Errorf("User-Agent = %q", got)
	}

	reqs = nil
	c = testCrawler(ts, types.CrawlConfig{Query: "x"})
	if _, err := c.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := reqs[0].userAgent; got != "ir-engine/1.0" {
		t.Errorf("User-Agent = %q, want no mailto", got)
	}
}

// --- Rate limiting ---

func TestFetchRetriesRateLimit(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, crawlPageTwo)
	}))
	defer ts.Close()
	swapBase(t, ts.URL)

	c := testCrawler(ts, types.CrawlConfig{Query: "x"})
	records, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("len(records) = %d, want 1", len(records))
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("calls = %d, want 2 (429 then 200)", n)
	}
}

// --- Error cases ---

func TestFetchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()
	swapBase(t, ts.URL)

	c := testCrawler(ts, types.CrawlConfig{Query: "x"})
	_, err := c.Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "HTTP 503") {
		t.Errorf("expected HTTP 503 error, got: %v", err)
	}
}

func TestFetchMalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{not valid json`)
	}))
	defer ts.Close()
	swapBase(t, ts.URL)

	c := testCrawler(ts, types.CrawlConfig{Query: "x"})
	_, err := c.Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Errorf("expected parse error, got: %v", err)
	}
}

func TestFetchCancelledDuringDelay(t *testing.T) {
	var reqs []pageRequest
	ts := pagedServer(t, map[string]string{"*": crawlPageOne, "cur2": crawlPageTwo}, &reqs)
	defer ts.Close()
	swapBase(t, ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := testCrawler(ts, types.CrawlConfig{Query: "x", Delay: 10 * time.Second})
	_, err := c.Fetch(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
	if len(reqs) != 1 {
		t.Errorf("len(reqs) = %d, want 1 (cancelled before page two)", len(reqs))
	}
}

// --- WriteFile ---

func TestWriteFile(t *testing.T) {
	records := []types.PublicationRecord{
		{
			Title:         "Deep Learning for Tabular Data",
			Link:          "https://doi.org/10.1234/dl.1",
			Authors:       []types.Author{{Name: "Grace Hopper", Profile: "https://openalex.org/A1"}},
			PublishedDate: "2023-03-14",
			Abstract:      "Tabular data needs attention",
		},
		{Title: "Causal Inference at Scale", Link: "https://openalex.org/W3", PublishedDate: "2024-01-20"},
	}

	path := filepath.Join(t.TempDir(), "publications.json")
	if err := WriteFile(path, records); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		t.Error("file should end with a newline")
	}

	var got []types.PublicationRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got) != 2 || got[0].Link != records[0].Link || got[1].Title != records[1].Title {
		t.Errorf("round-trip mismatch: %+v", got)
	}

	// The temp file must be gone after the rename.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file still present: %v", err)
	}
}

func TestWriteFileFeedsImporter(t *testing.T) {
	dir := t.TempDir()
	records := []types.PublicationRecord{
		{Title: "Deep Learning for Tabular Data", Link: "https://doi.org/10.1234/dl.1", Abstract: "tabular"},
		{Title: "Streaming Graph Algorithms", Link: "https://example.org/graphs", Abstract: "streams"},
	}
	path := filepath.Join(dir, "publications.json")
	if err := WriteFile(path, records); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := store.Open(filepath.Join(dir, "ir.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	n, err := s.ImportPublications(context.Background(), path)
	if err != nil {
		t.Fatalf("ImportPublications: %v", err)
	}
	if n != 2 {
		t.Errorf("imported = %d, want 2", n)
	}
	stored, err := s.Publications(context.Background())
	if err != nil {
		t.Fatalf("Publications: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("len(stored) = %d, want 2", len(stored))
	}
}
