package types

import "time"

// SearchConfig holds settings for ranked search and the query cache.
type SearchConfig struct {
	// MinTokenLength is the shortest token kept when indexing documents
	// and processing queries (default 2).
	MinTokenLength int `json:"min_token_length" yaml:"min_token_length"`

	// CacheTTL is how long a cached result list stays fresh (default 60s).
	// Negative disables caching entirely.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// CacheMaxEntries bounds the number of cached queries (default 128).
	// The least recently used entry is evicted past the bound.
	CacheMaxEntries int `json:"cache_max_entries" yaml:"cache_max_entries"`

	// DefaultPageSize is used when a request omits the page size or asks
	// for a non-positive one (default 10).
	DefaultPageSize int `json:"default_page_size" yaml:"default_page_size"`
}

// ClassifyConfig holds settings for classifier training and prediction.
type ClassifyConfig struct {
	// MinTokenLength is the shortest token kept during classification
	// preprocessing (default 3).
	MinTokenLength int `json:"min_token_length" yaml:"min_token_length"`

	// LearningRate is the gradient-descent step size for the
	// discriminative model (default 0.5).
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`

	// Iterations is the number of full-batch gradient-descent passes for
	// the discriminative model (default 200).
	Iterations int `json:"iterations" yaml:"iterations"`

	// ExplainTerms is how many contributing terms a prediction reports
	// (default 5).
	ExplainTerms int `json:"explain_terms" yaml:"explain_terms"`

	// ModelDir is the directory trained model snapshots are saved to and
	// loaded from (default "<data-dir>/models").
	ModelDir string `json:"model_dir" yaml:"model_dir"`
}

// ServerConfig holds settings for the HTTP API server.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout bounds reading a request, header and body (default 10s).
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds writing a response (default 30s).
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// CrawlConfig holds settings for the OpenAlex corpus crawler.
type CrawlConfig struct {
	// Query is the search expression sent to the works endpoint.
	Query string `json:"query" yaml:"query"`

	// MaxRecords caps how many works a crawl collects (default 1000).
	MaxRecords int `json:"max_records" yaml:"max_records"`

	// PerPage is the page size requested per API call (default 200, the
	// OpenAlex maximum).
	PerPage int `json:"per_page" yaml:"per_page"`

	// Delay is the pause between page fetches (default 100ms).
	Delay time.Duration `json:"delay" yaml:"delay"`

	// Mailto joins the OpenAlex polite pool when set; it is sent in the
	// User-Agent header.
	Mailto string `json:"mailto" yaml:"mailto"`

	// Timeout bounds a single API call (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Config groups every engine setting.
type Config struct {
	// DataDir is the base directory for data files: the database, import
	// files, and model snapshots (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// DatabasePath is the SQLite database location
	// (default "<data-dir>/ir.db").
	DatabasePath string `json:"database_path" yaml:"database_path"`

	// WatchData controls whether the serve command watches the data
	// directory and reloads the corpus when import files change
	// (default true).
	WatchData bool `json:"watch_data" yaml:"watch_data"`

	Search   SearchConfig   `json:"search" yaml:"search"`
	Classify ClassifyConfig `json:"classify" yaml:"classify"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Crawl    CrawlConfig    `json:"crawl" yaml:"crawl"`
}
