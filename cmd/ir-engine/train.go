package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the classification models from the stored training set",
	Long: `Train fits every classification model on the stored training documents
and saves a snapshot of each under the model directory. Serving processes
pick the snapshots up on their next start.`,
	RunE: runTrain,
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg := engineConfig(cmd)
	e, err := openEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	summaries, err := e.TrainModels(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	fmt.Fprintf(os.Stdout, "Trained %d model(s):\n\n", len(summaries))
	for _, s := range summaries {
		fmt.Fprintf(os.Stdout, "%-22s  %d documents   accuracy %.1f%%\n",
			s.Algorithm, s.DocumentCount, s.Accuracy*100)
	}
	if cfg.Classify.ModelDir != "" {
		fmt.Fprintf(os.Stdout, "\nSnapshots saved to %s\n", cfg.Classify.ModelDir)
	}
	return nil
}

// --- model-info subcommand ---

var modelInfoCmd = &cobra.Command{
	Use:   "model-info",
	Short: "Show the state of a classification model",
	RunE:  runModelInfo,
}

func runModelInfo(cmd *cobra.Command, args []string) error {
	cfg := engineConfig(cmd)
	e, err := openEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.LoadModels(); err != nil {
		return err
	}

	model, _ := cmd.Flags().GetString("model")
	info, err := e.ModelInfo(types.Algorithm(model))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	return formatModelInfo(info)
}

func formatModelInfo(info types.ModelInfo) error {
	trained := "no"
	if info.IsTrained {
		trained = "yes"
	}
	fmt.Fprintf(os.Stdout, "Model:       %s\n", info.Algorithm)
	fmt.Fprintf(os.Stdout, "Trained:     %s\n", trained)
	fmt.Fprintf(os.Stdout, "Documents:   %d\n", info.DocumentCount)
	if len(info.Categories) > 0 {
		fmt.Fprintf(os.Stdout, "Categories:  %v\n", info.Categories)
	}

	if len(info.TrainingStats) > 0 {
		names := make([]string, 0, len(info.TrainingStats))
		for name := range info.TrainingStats {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(os.Stdout, "\nDocuments per category:")
		for _, name := range names {
			fmt.Fprintf(os.Stdout, "  %-20s  %d\n", name, info.TrainingStats[name])
		}
	}
	return nil
}

func init() {
	trainCmd.Flags().Bool("json", false, "output the training summaries as JSON")

	modelInfoCmd.Flags().String("model", "", "model to inspect: naive_bayes or logistic_regression (default naive_bayes)")
	modelInfoCmd.Flags().Bool("json", false, "output the model info as JSON")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(modelInfoCmd)
}
