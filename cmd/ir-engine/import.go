// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import data files into the engine database",
	Long: `Import replaces database contents from files: the publication corpus from
a crawler JSON export, the classifier training set from CSV, or the
category set from CSV. Each import replaces its table wholesale.`,
}

// --- publications subcommand ---

var importPublicationsCmd = &cobra.Command{
	Use:   "publications <file>",
	Short: "Import a crawler JSON export of publications",
	Long: `Publications reads a JSON array of publication records and replaces the
stored corpus with it. Records without a link are skipped; duplicate
links keep the last record.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportPublications,
}

func runImportPublications(cmd *cobra.Command, args []string) error {
	cfg := engineConfig(cmd)
	e, err := openEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	n, err := e.ImportPublicationsFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Imported %d publication(s) from %s\n", n, args[0])
	return nil
}

// --- training subcommand ---

var importTrainingCmd = &cobra.Command{
	Use:   "training <file>",
	Short: "Import classifier training documents from CSV",
	Long: `Training reads a CSV file with text and category columns and replaces
the stored training set with it. Every label must be a known category.
Models keep their current parameters until the next training run.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportTraining,
}

func runImportTraining(cmd *cobra.Command, args []string) error {
	cfg := engineConfig(cmd)
	e, err := openEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	n, err := e.ImportTrainingFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Imported %d training document(s) from %s\n", n, args[0])
	fmt.Fprintln(os.Stdout, "Run 'ir-engine train' to retrain the models.")
	return nil
}

// --- categories subcommand ---

var importCategoriesCmd = &cobra.Command{
	Use:   "categories <file>",
	Short: "Import the category set from CSV",
	Long: `Categories reads a CSV file with a category column and replaces the
stored category set with it, preserving file order. Categories still
referenced by training documents cannot be dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportCategories,
}

func runImportCategories(cmd *cobra.Command, args []string) error {
	cfg := engineConfig(cmd)
	e, err := openEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	n, err := e.ImportCategoriesFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Imported %d categories from %s\n", n, args[0])
	return nil
}

func init() {
	importCmd.AddCommand(importPublicationsCmd)
	importCmd.AddCommand(importTrainingCmd)
	importCmd.AddCommand(importCategoriesCmd)

	rootCmd.AddCommand(importCmd)
}
