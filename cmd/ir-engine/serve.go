// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rijwolshakya09/IR-Test/internal/httpapi"
	"github.com/rijwolshakya09/IR-Test/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve loads the publication corpus and any saved model snapshots, then
serves the search and classification API until interrupted.

While running, changes to publications.json, training_documents.csv, or
categories.csv in the data directory are imported automatically.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := engineConfig(cmd)
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if noWatch, _ := cmd.Flags().GetBool("no-watch"); noWatch {
		cfg.WatchData = false
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	e, err := openEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := e.ReloadCorpus(ctx); err != nil {
		return err
	}
	if err := e.LoadModels(); err != nil {
		return err
	}

	logger := cliLogger(cmd)
	if cfg.WatchData {
		w, err := watch.New(cfg.DataDir, e, watch.WithLogger(logger))
		if err != nil {
			return err
		}
		defer w.Close()
		go w.Run(ctx)
	}

	return httpapi.New(e, cfg.Server, httpapi.WithLogger(logger)).Start(ctx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	serveCmd.Flags().Bool("no-watch", false, "do not watch the data directory for changed import files")

	rootCmd.AddCommand(serveCmd)
}
