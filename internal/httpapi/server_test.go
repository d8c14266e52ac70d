// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rijwolshakya09/IR-Test/internal/engine"
	"github.com/rijwolshakya09/IR-Test/internal/store"
	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

const samplePublicationsJSON = `[
  {"title": "Machine Learning Methods", "link": "https://example.org/p1",
   "authors": [{"name": "Ada Lovelace"}], "published_date": "2023-04-01",
   "abstract": "Machine learning algorithms learn patterns from data."},
  {"title": "Data Systems", "link": "https://example.org/p2",
   "published_date": "2024-06-10",
   "abstract": "Databases store rows; one machine can index them."},
  {"title": "Economic Markets", "link": "https://example.org/p3",
   "published_date": "2022-01-05",
   "abstract": "Trade and markets in emerging economies."}
]`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "ir.db"))
	require.NoError(t, err)

	e, err := engine.New(st, types.Config{DataDir: dir},
		engine.WithLogger(testLogger()), engine.WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })

	ts := httptest.NewServer(New(e, types.ServerConfig{}, WithLogger(testLogger())).Handler())
	t.Cleanup(ts.Close)
	return ts, e
}

func seedPublications(t *testing.T, e *engine.Engine) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "publications.json")
	require.NoError(t, os.WriteFile(path, []byte(samplePublicationsJSON), 0o644))
	_, err := e.ImportPublicationsFile(context.Background(), path)
	require.NoError(t, err)
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, ts *httptest.Server, path, body string, out any) int {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// --- search ---

func TestSearchEndpoint(t *testing.T) {
	ts, e := testServer(t)
	seedPublications(t, e)

	var page types.SearchPage
	status := getJSON(t, ts, "/search?query=machine", &page)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 2, page.Total)
	require.NotEmpty(t, page.Results)
	assert.Equal(t, "Machine Learning Methods", page.Results[0].Title)
	assert.Equal(t, "Ada Lovelace", page.Results[0].Authors[0].Name)
	assert.False(t, page.FromCache)

	// The identical query comes back from the cache.
	status = getJSON(t, ts, "/search?query=machine", &page)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, page.FromCache)
}

func TestSearchEndpointPagination(t *testing.T) {
	ts, e := testServer(t)
	seedPublications(t, e)

	var page types.SearchPage
	status := getJSON(t, ts, "/search?query=machine&page=2&size=1", &page)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 1, page.Size)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Results, 1)

	// Unparseable paging falls back to the defaults rather than erroring.
	status = getJSON(t, ts, "/search?query=machine&page=abc&size=-3", &page)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Size)
}

func TestSearchEndpointBrowse(t *testing.T) {
	ts, e := testServer(t)
	seedPublications(t, e)

	var page types.SearchPage
	status := getJSON(t, ts, "/search", &page)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, page.Total)
	require.NotEmpty(t, page.Results)
	assert.Equal(t, "Data Systems", page.Results[0].Title) // newest first

	status = getJSON(t, ts, "/search?sort_by=date&sort_order=asc", &page)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Economic Markets", page.Results[0].Title) // oldest first
}

// --- classify ---

func TestClassifyEndpoint(t *testing.T) {
	ts, _ := testServer(t)

	var trained struct {
		Message string                  `json:"message"`
		Results []types.TrainingSummary `json:"results"`
	}
	status := postJSON(t, ts, "/train-models", "", &trained)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Models trained successfully", trained.Message)
	assert.Len(t, trained.Results, 2)

	var result types.ClassificationResult
	status = postJSON(t, ts, "/classify",
		`{"text": "Government passes new policy on public spending."}`, &result)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "politics", result.PredictedCategory)
	assert.Equal(t, types.AlgorithmNaiveBayes, result.ModelUsed)
	assert.Greater(t, result.Confidence, 0.0)

	status = postJSON(t, ts, "/classify",
		`{"text": "Company reports record profit.", "model_type": "logistic_regression"}`, &result)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, types.AlgorithmLogisticRegression, result.ModelUsed)
}

func TestClassifyEndpointErrors(t *testing.T) {
	ts, _ := testServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantErr    string
	}{
		{"empty text", `{"text": "   "}`, http.StatusBadRequest, "required"},
		{"unknown model", `{"text": "hello", "model_type": "decision_tree"}`, http.StatusBadRequest, "unknown algorithm"},
		{"untrained model", `{"text": "hello"}`, http.StatusConflict, "not trained"},
		{"invalid body", `{not json`, http.StatusBadRequest, "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			status := postJSON(t, ts, "/classify", tt.body, &body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, body["error"], tt.wantErr)
		})
	}
}

// --- model info ---

func TestModelInfoEndpoint(t *testing.T) {
	ts, _ := testServer(t)

	var info types.ModelInfo
	status := getJSON(t, ts, "/model-info", &info)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, types.AlgorithmNaiveBayes, info.Algorithm)
	assert.False(t, info.IsTrained)

	require.Equal(t, http.StatusOK, postJSON(t, ts, "/train-models", "", nil))

	status = getJSON(t, ts, "/model-info?model_type=logistic_regression", &info)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, types.AlgorithmLogisticRegression, info.Algorithm)
	assert.True(t, info.IsTrained)
	assert.Equal(t, 3, info.DocumentCount)
	assert.Equal(t, []string{"politics", "business", "health"}, info.Categories)

	var body map[string]string
	status = getJSON(t, ts, "/model-info?model_type=decision_tree", &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "unknown algorithm")
}

// --- health and root ---

func TestHealthEndpoint(t *testing.T) {
	ts, e := testServer(t)
	seedPublications(t, e)

	var health struct {
		Status       string `json:"status"`
		Publications int    `json:"publications"`
		CacheEntries int    `json:"cache_entries"`
		DataDir      string `json:"data_dir"`
	}
	status := getJSON(t, ts, "/health", &health)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 3, health.Publications)
	assert.Equal(t, 0, health.CacheEntries)
	assert.NotEmpty(t, health.DataDir)
}

func TestRootEndpoint(t *testing.T) {
	ts, _ := testServer(t)

	var body map[string]string
	status := getJSON(t, ts, "/", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status = getJSON(t, ts, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := testServer(t)
	status := getJSON(t, ts, "/classify", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := testServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/search", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}