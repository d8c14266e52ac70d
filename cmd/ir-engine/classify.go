package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rijwolshakya09/IR-Test/internal/classify"
	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Classify a text into one of the trained categories",
	Long: `Classify runs a text through a trained classification model and reports
the predicted category with per-category probabilities and the terms that
contributed most. Text is taken from the arguments, or from a file with
--file.`,
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		text = string(data)
	}

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
	result, err := e.Classify(text, types.Algorithm(model))
	if errors.Is(err, classify.ErrModelNotTrained) {
		return fmt.Errorf("%w: run 'ir-engine train' first", err)
	}
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatClassifyOutput(result, jsonOutput)
}

func formatClassifyOutput(result types.ClassificationResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(os.Stdout, "Category:    %s\n", result.PredictedCategory)
	fmt.Fprintf(os.Stdout, "Confidence:  %.1f%%\n", result.Confidence*100)
	fmt.Fprintf(os.Stdout, "Model:       %s\n\n", result.ModelUsed)
	fmt.Fprintln(os.Stdout, result.Explanation)

	if len(result.TopTerms) > 0 {
		fmt.Fprintln(os.Stdout, "\nTop contributing terms:")
		for _, tw := range result.TopTerms {
			fmt.Fprintf(os.Stdout, "  %-20s  %.4f\n", tw.Term, tw.Weight)
		}
	}

	// Highest probability first; names break the rare exact tie.
	names := make([]string, 0, len(result.Probabilities))
	for name := range result.Probabilities {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := result.Probabilities[names[i]], result.Probabilities[names[j]]
		if pi != pj {
			return pi > pj
		}
		return names[i] < names[j]
	})
	fmt.Fprintln(os.Stdout, "\nProbabilities:")
	for _, name := range names {
		fmt.Fprintf(os.Stdout, "  %-20s  %.3f\n", name, result.Probabilities[name])
	}

	return nil
}

func init() {
	classifyCmd.Flags().String("model", "", "model to use: naive_bayes or logistic_regression (default naive_bayes)")
	classifyCmd.Flags().String("file", "", "read the text from a file instead of the arguments")
	classifyCmd.Flags().Bool("json", false, "output the full result as JSON")

	rootCmd.AddCommand(classifyCmd)
}
