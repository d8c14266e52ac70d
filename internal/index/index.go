// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds immutable TF-IDF snapshots of the publication corpus
// and publishes them atomically. Searches read whichever snapshot is current;
// a rebuild assembles its replacement off to the side and swaps it in one
// step, so readers never observe a partially built index.
package index

import (
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/rijwolshakya09/IR-Test/internal/vectorize"
	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

// DefaultMinTokenLength is the indexing token floor when none is
// configured. Classification preprocessing uses its own, longer floor.
const DefaultMinTokenLength = 2

// Index is one immutable corpus snapshot: the records, their unit-length
// TF-IDF vectors, and the vectorizer queries must go through so they are
// weighted against the same vocabulary.
type Index struct {
	records    []types.PublicationRecord
	vectors    []vectorize.Vector
	vectorizer *vectorize.Vectorizer
	builtAt    time.Time
}

// Len returns the number of indexed records.
func (ix *Index) Len() int { return len(ix.records) }

// Record returns the i-th record.
func (ix *Index) Record(i int) types.PublicationRecord { return ix.records[i] }

// Vector returns the i-th record's unit-length TF-IDF vector.
func (ix *Index) Vector(i int) vectorize.Vector { return ix.vectors[i] }

// QueryVector converts a query into a unit-length vector weighted against
// this snapshot's vocabulary. Terms the corpus has never seen are ignored.
func (ix *Index) QueryVector(query string) vectorize.Vector {
	return ix.vectorizer.Vectorize(query)
}

// VocabularySize returns the number of distinct corpus terms.
func (ix *Index) VocabularySize() int { return ix.vectorizer.Vocabulary().Len() }

// BuiltAt returns when the snapshot was assembled.
func (ix *Index) BuiltAt() time.Time { return ix.builtAt }

// SearchText returns the text indexed for a record: title, author names,
// and abstract.
func SearchText(rec types.PublicationRecord) string {
	var b strings.Builder
	b.WriteString(rec.Title)
	for _, a := range rec.Authors {
		b.WriteByte(' ')
		b.WriteString(a.Name)
	}
	b.WriteByte(' ')
	b.WriteString(rec.Abstract)
	return b.String()
}

// Builder assembles Index snapshots, spreading per-record tokenization and
// vectorization over a worker pool.
type Builder struct {
	minTokenLen int
	pool        *ants.Pool
	logger      *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithPoolSize sets the worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}
		if b.pool != nil {
			b.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		b.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates a builder keeping tokens of at least minTokenLen runes.
func NewBuilder(minTokenLen int, opts ...Option) (*Builder, error) {
	if minTokenLen < 1 {
		minTokenLen = 1
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		minTokenLen: minTokenLen,
		pool:        pool,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(b); optErr != nil {
			b.Release()
			return nil, optErr
		}
	}
	return b, nil
}

// Build assembles a new snapshot from records. The caller must not mutate
// records afterwards. Two passes run on the pool: tokenization, then TF-IDF
// weighting once the document frequencies are known.
func (b *Builder) Build(records []types.PublicationRecord) *Index {
	start := time.Now()

	tokenized := make([][]string, len(records))
	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			tokenized[i] = vectorize.Tokenize(SearchText(records[i]), b.minTokenLen)
		}
		if err := b.pool.Submit(task); err != nil {
			task() // pool unavailable: degrade to inline
		}
	}
	wg.Wait()

	vocab := vectorize.NewVocabulary(tokenized)
	vz := vectorize.NewVectorizer(vocab, b.minTokenLen)

	vectors := make([]vectorize.Vector, len(records))
	for i := range records {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			vectors[i] = vz.FromCounts(vectorize.TermCounts(tokenized[i]))
		}
		if err := b.pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	ix := &Index{
		records:    records,
		vectors:    vectors,
		vectorizer: vz,
		builtAt:    time.Now(),
	}
	b.logger.Info("corpus index built",
		"records", len(records),
		"vocabulary", vocab.Len(),
		"elapsed", time.Since(start))
	return ix
}

// Release frees the worker pool. The builder must not be used afterwards.
func (b *Builder) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}

// Holder publishes index snapshots. Readers Load the current snapshot
// lock-free; a rebuild Stores its replacement in one atomic step. The zero
// value holds no snapshot.
type Holder struct {
	ptr atomic.Pointer[Index]
}

// Load returns the current snapshot, or nil before the first Store.
func (h *Holder) Load() *Index { return h.ptr.Load() }

// Store publishes ix as the current snapshot.
func (h *Holder) Store(ix *Index) { h.ptr.Store(ix) }
