package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rijwolshakya09/IR-Test/internal/engine"
	"github.com/rijwolshakya09/IR-Test/internal/store"
	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

// engineConfig materializes the engine configuration. Flags win over
// config file and environment; unset knobs stay zero so each component
// applies its own default.
func engineConfig(cmd *cobra.Command) types.Config {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = viper.GetString("data_dir")
	}
	if dataDir == "" {
		dataDir = "data"
	}

	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = viper.GetString("database_path")
	}
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "ir.db")
	}

	modelDir := viper.GetString("classify.model_dir")
	if modelDir == "" {
		modelDir = filepath.Join(dataDir, "models")
	}

	cfg := types.Config{
		DataDir:      dataDir,
		DatabasePath: dbPath,
		WatchData:    true,
		Search: types.SearchConfig{
			MinTokenLength:  viper.GetInt("search.min_token_length"),
			CacheTTL:        viper.GetDuration("search.cache_ttl"),
			CacheMaxEntries: viper.GetInt("search.cache_max_entries"),
			DefaultPageSize: viper.GetInt("search.default_page_size"),
		},
		Classify: types.ClassifyConfig{
			MinTokenLength: viper.GetInt("classify.min_token_length"),
			LearningRate:   viper.GetFloat64("classify.learning_rate"),
			Iterations:     viper.GetInt("classify.iterations"),
			ExplainTerms:   viper.GetInt("classify.explain_terms"),
			ModelDir:       modelDir,
		},
		Server: types.ServerConfig{
			Addr:         viper.GetString("server.addr"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
		},
		Crawl: types.CrawlConfig{
			Query:      viper.GetString("crawl.query"),
			MaxRecords: viper.GetInt("crawl.max_records"),
			PerPage:    viper.GetInt("crawl.per_page"),
			Delay:      viper.GetDuration("crawl.delay"),
			Mailto:     viper.GetString("crawl.mailto"),
			Timeout:    viper.GetDuration("crawl.timeout"),
		},
	}
	if viper.IsSet("watch_data") {
		cfg.WatchData = viper.GetBool("watch_data")
	}
	return cfg
}

// openEngine opens the database and builds an engine over it. The caller
// owns the returned engine and must Close it.
func openEngine(cmd *cobra.Command, cfg types.Config) (*engine.Engine, error) {
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	e, err := engine.New(st, cfg, engine.WithLogger(cliLogger(cmd)))
	if err != nil {
		st.Close()
		return nil, err
	}
	return e, nil
}
