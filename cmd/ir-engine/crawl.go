// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rijwolshakya09/IR-Test/internal/crawl"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl OpenAlex and save a publications export",
	Long: `Crawl pages through the OpenAlex works endpoint for a search query and
saves the results as a publications.json file in the data directory.

A running 'serve' watching that directory picks the file up on its own;
otherwise pass --import to load it into the database here, or run
'ir-engine import publications' later. Set --mailto to join the OpenAlex
polite pool and get the friendlier rate limit.`,
	RunE: runCrawl,
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg := engineConfig(cmd)
	flags := cmd.Flags()

	// The query flag's default only applies when the config file has no
	// crawl.query of its own.
	if flags.Changed("query") || cfg.Crawl.Query == "" {
		cfg.Crawl.Query, _ = flags.GetString("query")
	}
	if flags.Changed("max-records") {
		cfg.Crawl.MaxRecords, _ = flags.GetInt("max-records")
	}
	if flags.Changed("per-page") {
		cfg.Crawl.PerPage, _ = flags.GetInt("per-page")
	}
	if flags.Changed("delay") {
		cfg.Crawl.Delay, _ = flags.GetDuration("delay")
	}
	if flags.Changed("mailto") {
		cfg.Crawl.Mailto, _ = flags.GetString("mailto")
	}

	out, _ := flags.GetString("out")
	if out == "" {
		out = filepath.Join(cfg.DataDir, "publications.json")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := crawl.New(cfg.Crawl, crawl.WithLogger(cliLogger(cmd)))
	fmt.Fprintf(os.Stdout, "Crawling OpenAlex for %q...\n", cfg.Crawl.Query)
	records, err := c.Fetch(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := crawl.WriteFile(out, records); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Saved %d record(s) to %s\n", len(records), out)

	if doImport, _ := flags.GetBool("import"); doImport {
		e, err := openEngine(cmd, cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.ImportPublicationsFile(ctx, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Imported %d publication(s) into %s\n", n, cfg.DatabasePath)
	}
	return nil
}

func init() {
	crawlCmd.Flags().String("query", "data science", "search query sent to OpenAlex")
	crawlCmd.Flags().Int("max-records", 0, "stop after this many records (default 1000)")
	crawlCmd.Flags().Int("per-page", 0, "records per API page, capped at 200")
	crawlCmd.Flags().Duration("delay", 0, "pause between page fetches (default 100ms)")
	crawlCmd.Flags().String("mailto", "", "contact email for the OpenAlex polite pool")
	crawlCmd.Flags().String("out", "", "output file (default <data-dir>/publications.json)")
	crawlCmd.Flags().Bool("import", false, "also import the export into the database")

	rootCmd.AddCommand(crawlCmd)
}
