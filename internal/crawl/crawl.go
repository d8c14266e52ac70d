// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl collects publication records from the OpenAlex API.
//
// A crawl pages through the works endpoint with cursor pagination and
// converts each work into a types.PublicationRecord. WriteFile saves the
// result in the publications.json format the importer reads, so crawl
// output feeds the corpus directly.
package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rijwolshakya09/IR-Test/internal/httputil"
	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

const (
	defaultMaxRecords = 1000
	defaultPerPage    = 200
	defaultDelay      = 100 * time.Millisecond
	defaultTimeout    = 30 * time.Second
)

// Crawler fetches works matching a search query from OpenAlex.
type Crawler struct {
	cfg     types.CrawlConfig
	logger  *slog.Logger
	retrier *httputil.Retrier
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient substitutes the HTTP client, overriding the configured
// timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Crawler) {
		if client != nil {
			c.retrier.Client = client
		}
	}
}

// New creates a Crawler. Zero config fields fall back to the OpenAlex
// defaults: 1000 records, 200 per page, 100ms between pages, 30s per call.
func New(cfg types.CrawlConfig, opts ...Option) *Crawler {
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = defaultMaxRecords
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = defaultPerPage
	}
	if cfg.PerPage > defaultPerPage {
		// The API caps page size at 200.
		cfg.PerPage = defaultPerPage
	}
	if cfg.Delay <= 0 {
		cfg.Delay = defaultDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c := &Crawler{
		cfg:    cfg,
		logger: slog.Default(),
		retrier: &httputil.Retrier{
			Client: &http.Client{Timeout: cfg.Timeout},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.retrier.Logger = c.logger
	return c
}

// Fetch pages through the works endpoint until MaxRecords are collected,
// the result set is exhausted, or the context is cancelled. Rate-limit
// responses are retried with backoff before counting as failures.
func (c *Crawler) Fetch(ctx context.Context) ([]types.PublicationRecord, error) {
	if strings.TrimSpace(c.cfg.Query) == "" {
		return nil, fmt.Errorf("crawl query is required")
	}

	records := make([]types.PublicationRecord, 0, c.cfg.MaxRecords)
	cursor := startCursor
	for page := 1; len(records) < c.cfg.MaxRecords; page++ {
		works, next, err := c.fetchPage(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", page, err)
		}
		if len(works) == 0 {
			break
		}

		for _, w := range works {
			records = append(records, recordFromWork(w))
			if len(records) >= c.cfg.MaxRecords {
				break
			}
		}
		c.logger.Debug("crawled page",
			"page", page, "works", len(works), "collected", len(records))

		if next == "" || len(records) >= c.cfg.MaxRecords {
			break
		}
		cursor = next

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.Delay):
		}
	}

	c.logger.Info("crawl finished", "query", c.cfg.Query, "records", len(records))
	return records, nil
}

// WriteFile saves records to path in the publications.json import format.
// The file is written next to its destination and renamed into place so a
// watching importer never reads a half-written export.
func WriteFile(path string, records []types.PublicationRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding publications: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
