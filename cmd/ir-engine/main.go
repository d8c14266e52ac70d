// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ir-engine CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the ir-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "ir-engine",
	Short: "Search and classify academic publications",
	Long: `ir-engine indexes a crawled publication corpus for ranked TF-IDF search
and trains text classifiers over labeled training documents.

Each operation is a subcommand: serve runs the HTTP API, search and
classify run one-off queries, train fits the classification models, and
import loads crawler exports and training data into the database.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ir-engine.yaml or ~/.config/ir-engine/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "base directory for data files (default: data)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (default: <data-dir>/ir.db)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ir-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ir-engine"))
		}
	}

	viper.SetEnvPrefix("IR_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// cliLogger builds the logger engine-side packages report through.
func cliLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
