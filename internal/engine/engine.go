// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine wires storage, indexing, ranked search, the query cache,
// and the classifiers behind one facade. Reads run lock-free against
// immutable snapshots; corpus reloads and training serialize on the
// engine's mutex and publish their results in one atomic step.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/rijwolshakya09/IR-Test/internal/cache"
	"github.com/rijwolshakya09/IR-Test/internal/classify"
	"github.com/rijwolshakya09/IR-Test/internal/index"
	"github.com/rijwolshakya09/IR-Test/internal/search"
	"github.com/rijwolshakya09/IR-Test/internal/store"
	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

// ErrEmptyText reports a classification request carrying no text.
var ErrEmptyText = errors.New("text is required for classification")

// Engine is the application facade over the corpus index, ranked search,
// the query cache, and the classifiers.
type Engine struct {
	cfg    types.Config
	store  *store.Store
	logger *slog.Logger

	mu      sync.Mutex // serializes corpus reloads and training
	builder *index.Builder
	corpus  index.Holder
	cache   *cache.Cache
	models  classify.Holder
	trainer *classify.Trainer

	poolSize int
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithPoolSize sets the index builder's worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		e.poolSize = size
		return nil
	}
}

// New creates an Engine over an opened store. The engine takes ownership
// of the store; Close releases both. No data is loaded yet: call
// ReloadCorpus and LoadModels to start serving.
func New(st *store.Store, cfg types.Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:    cfg,
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	minLen := cfg.Search.MinTokenLength
	if minLen < 1 {
		minLen = index.DefaultMinTokenLength
	}
	builderOpts := []index.Option{index.WithLogger(e.logger)}
	if e.poolSize > 0 {
		builderOpts = append(builderOpts, index.WithPoolSize(e.poolSize))
	}
	builder, err := index.NewBuilder(minLen, builderOpts...)
	if err != nil {
		return nil, err
	}
	e.builder = builder

	ttl := cfg.Search.CacheTTL
	if ttl == 0 {
		ttl = cache.DefaultTTL
	}
	e.cache = cache.New(ttl, cfg.Search.CacheMaxEntries)
	e.trainer = classify.NewTrainer(cfg.Classify, e.logger)

	return e, nil
}

// Close releases the index worker pool and the underlying store.
func (e *Engine) Close() error {
	e.builder.Release()
	return e.store.Close()
}

// ReloadCorpus rebuilds the corpus index from the store and swaps it in.
// The query cache is purged so no result can outlive the corpus it was
// computed from. Searches keep serving the old snapshot until the swap.
func (e *Engine) ReloadCorpus(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.store.Publications(ctx)
	if err != nil {
		return err
	}

	ix := e.builder.Build(records)
	e.corpus.Store(ix)
	e.cache.Purge()

	e.logger.Info("corpus reloaded", "publications", ix.Len())
	return nil
}

// LoadModels restores saved model snapshots from the model directory.
// Algorithms without a snapshot stay untrained; a corrupt snapshot is an
// error.
func (e *Engine) LoadModels() error {
	dir := e.cfg.Classify.ModelDir
	if dir == "" {
		return nil
	}

	for _, algorithm := range types.Algorithms() {
		m, err := classify.LoadYAML(classify.SnapshotPath(dir, algorithm))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("loading %s snapshot: %w", algorithm, err)
		}
		e.models.Store(m)
		e.logger.Info("model snapshot loaded",
			"algorithm", algorithm,
			"documents", m.DocCount)
	}
	return nil
}

// Search ranks the corpus against query and returns one result page.
// Non-empty queries go through the query cache; an empty query browses
// the whole corpus directly. A sort field other than relevance reorders
// the cached relevance list for this call only.
func (e *Engine) Search(ctx context.Context, query string, page, size int, by types.SortBy, order types.SortOrder) (types.SearchPage, error) {
	ix := e.corpus.Load()
	if ix == nil {
		return search.Paginate(nil, page, size, e.cfg.Search.DefaultPageSize), nil
	}

	if strings.TrimSpace(query) == "" {
		results := search.Rank(ix, query, by, order)
		return search.Paginate(results, page, size, e.cfg.Search.DefaultPageSize), nil
	}

	ranked, fromCache, err := e.cache.Get(ctx, query, func() ([]types.SearchResult, error) {
		return search.Rank(ix, query, types.SortByRelevance, ""), nil
	})
	if err != nil {
		return types.SearchPage{}, err
	}

	if by == types.SortByTitle || by == types.SortByDate {
		ranked = search.Resort(ranked, by, order)
	}

	result := search.Paginate(ranked, page, size, e.cfg.Search.DefaultPageSize)
	result.FromCache = fromCache
	return result, nil
}

// Classify predicts a category for text using the requested algorithm's
// current model. An empty algorithm defaults to naive_bayes.
func (e *Engine) Classify(text string, algorithm types.Algorithm) (types.ClassificationResult, error) {
	if strings.TrimSpace(text) == "" {
		return types.ClassificationResult{}, ErrEmptyText
	}
	algorithm, err := resolveAlgorithm(algorithm)
	if err != nil {
		return types.ClassificationResult{}, err
	}

	explain := e.cfg.Classify.ExplainTerms
	if explain == 0 {
		explain = classify.DefaultExplainTerms
	}
	return classify.Predict(e.models.Load(algorithm), text, explain)
}

// TrainModels trains every algorithm on the stored training set, then
// publishes the new models and writes their snapshots. Nothing is
// published unless every algorithm trains successfully; predictions keep
// using the previous models throughout.
func (e *Engine) TrainModels(ctx context.Context) ([]types.TrainingSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	docs, err := e.store.TrainingDocuments(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := e.store.Categories(ctx)
	if err != nil {
		return nil, err
	}

	algorithms := types.Algorithms()
	models := make([]*classify.Model, 0, len(algorithms))
	summaries := make([]types.TrainingSummary, 0, len(algorithms))
	for _, algorithm := range algorithms {
		m, summary, err := e.trainer.Train(docs, categories, algorithm)
		if err != nil {
			return nil, fmt.Errorf("training %s: %w", algorithm, err)
		}
		models = append(models, m)
		summaries = append(summaries, summary)
	}

	for _, m := range models {
		e.models.Store(m)
	}
	if err := e.saveModels(models); err != nil {
		return summaries, err
	}
	return summaries, nil
}

// saveModels writes model snapshots. The models are already published,
// so a failed write leaves the engine serving them from memory only.
func (e *Engine) saveModels(models []*classify.Model) error {
	dir := e.cfg.Classify.ModelDir
	if dir == "" {
		return nil
	}
	for _, m := range models {
		if err := m.SaveYAML(classify.SnapshotPath(dir, m.Algorithm)); err != nil {
			return fmt.Errorf("saving %s snapshot: %w", m.Algorithm, err)
		}
	}
	return nil
}

// ModelInfo reports the state of the requested algorithm's model.
func (e *Engine) ModelInfo(algorithm types.Algorithm) (types.ModelInfo, error) {
	algorithm, err := resolveAlgorithm(algorithm)
	if err != nil {
		return types.ModelInfo{}, err
	}
	return e.models.Load(algorithm).Info(algorithm), nil
}

// ImportPublicationsFile loads a crawler JSON export into the store and
// rebuilds the corpus index from it.
func (e *Engine) ImportPublicationsFile(ctx context.Context, path string) (int, error) {
	n, err := e.store.ImportPublications(ctx, path)
	if err != nil {
		return 0, err
	}
	if err := e.ReloadCorpus(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// ImportTrainingFile replaces the stored training set from a CSV file.
// Models keep serving their current snapshots until the next training
// run.
func (e *Engine) ImportTrainingFile(ctx context.Context, path string) (int, error) {
	return e.store.ImportTrainingCSV(ctx, path)
}

// ImportCategoriesFile replaces the stored category set from a CSV file.
func (e *Engine) ImportCategoriesFile(ctx context.Context, path string) (int, error) {
	return e.store.ImportCategoriesCSV(ctx, path)
}

// Stats describes the engine's current serving state.
type Stats struct {
	Publications int    `json:"publications"`
	CacheEntries int    `json:"cache_entries"`
	DataDir      string `json:"data_dir"`
}

// Stats reports the current corpus size and cache occupancy.
func (e *Engine) Stats() Stats {
	publications := 0
	if ix := e.corpus.Load(); ix != nil {
		publications = ix.Len()
	}
	return Stats{
		Publications: publications,
		CacheEntries: e.cache.Len(),
		DataDir:      e.cfg.DataDir,
	}
}

func resolveAlgorithm(algorithm types.Algorithm) (types.Algorithm, error) {
	if algorithm == "" {
		return types.AlgorithmNaiveBayes, nil
	}
	for _, a := range types.Algorithms() {
		if a == algorithm {
			return algorithm, nil
		}
	}
	return "", fmt.Errorf("%w: %q", classify.ErrUnknownAlgorithm, algorithm)
}
