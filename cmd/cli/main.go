package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"medibot/adapters/excel"
	"medibot/app"
	"medibot/domain/diagnosis"
	"medibot/domain/metrics"
	"medibot/internal"
	"medibot/internal/catalog"
	"medibot/internal/classifier"
	"medibot/internal/evaluation"
	"medibot/internal/features"
	"medibot/internal/report"
	"medibot/internal/session"
	"medibot/internal/tabular"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(os.Getenv("LOG_LEVEL")))

	rootCmd := &cobra.Command{
		Use:   "medibot-cli",
		Short: "Evaluate and query the symptom-profile diagnosis model",
	}

	rootCmd.AddCommand(
		newEvaluateCmd(),
		newPredictCmd(),
		newSweepCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newEvaluateCmd() *cobra.Command {
	defaults := evaluation.DefaultOptions()
	var (
		testFraction float64
		seed         int64
		delimiter    string
		format       string
		xlsxPath     string
	)

	cmd := &cobra.Command{
		Use:   "evaluate [dataset]",
		Short: "Split, train and score a labeled symptom dataset",
		Long: `Run the evaluation pipeline on a .csv, .txt or .xlsx dataset: stratified
train/test split, symptom-profile training and test-set scoring.

Example: medibot-cli evaluate data/dataset.csv --seed 42 --test-fraction 0.2 --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := excel.NewDataReader(args[0], delimiter).ReadTable()
			if err != nil {
				return err
			}

			result, err := app.NewEvaluationService(nil).Evaluate(cmd.Context(), app.EvaluationRequest{
				Dataset: args[0],
				Table:   table,
				Options: evaluation.Options{TestFraction: testFraction, Seed: seed, Delimiter: delimiter},
			})
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				if err := excel.NewReportWriter(result.Report).SaveAs(xlsxPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "report written to %s\n", xlsxPath)
			}
			return printReport(cmd.OutOrStdout(), result.Report, format)
		},
	}

	cmd.Flags().Float64Var(&testFraction, "test-fraction", defaults.TestFraction, "Fraction of each class held out for testing, in (0,1)")
	cmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Random seed for the stratified split")
	cmd.Flags().StringVar(&delimiter, "delimiter", defaults.Delimiter, "Column delimiter for text datasets")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or markdown")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also export the report as an xlsx workbook")

	return cmd
}

func newPredictCmd() *cobra.Command {
	var (
		top       int
		delimiter string
	)

	cmd := &cobra.Command{
		Use:   "predict [dataset] [symptom...]",
		Short: "Rank diagnoses for reported symptoms",
		Long: `Train profiles on the whole dataset and rank every diagnosis for the given
symptoms. A symptom may carry a severity as name:severity (1-5).

Example: medibot-cli predict data/dataset.csv fever:4 cough --top 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := excel.NewDataReader(args[0], delimiter).ReadTable()
			if err != nil {
				return err
			}
			m, err := features.Build(table)
			if err != nil {
				return err
			}
			model, err := classifier.Fit(m, nil)
			if err != nil {
				return err
			}

			svc := app.NewDiagnosisService(model, catalog.FromMatrix(m), nil, top)
			result, err := svc.Diagnose(cmd.Context(), session.FromItems(parseItems(args[1:])))
			if err != nil {
				return err
			}
			printDiagnosis(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 5, "Number of ranked diagnoses to show")
	cmd.Flags().StringVar(&delimiter, "delimiter", tabular.DefaultDelimiter, "Column delimiter for text datasets")

	return cmd
}

func newSweepCmd() *cobra.Command {
	defaults := evaluation.DefaultOptions()
	var (
		testFraction float64
		seed         int64
		delimiter    string
		seeds        int
		workers      int
	)

	cmd := &cobra.Command{
		Use:   "sweep [dataset]",
		Short: "Evaluate over consecutive seeds and summarize the spread",
		Long: `Run the evaluation pipeline for seeds seed..seed+N-1 in parallel and report
mean and standard deviation of accuracy, macro-F1 and top-3 recall.

Example: medibot-cli sweep data/dataset.csv --seeds 10 --workers 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := excel.NewDataReader(args[0], delimiter).ReadTable()
			if err != nil {
				return err
			}

			result, err := app.NewEvaluationService(nil).Sweep(cmd.Context(), app.SweepRequest{
				EvaluationRequest: app.EvaluationRequest{
					Dataset: args[0],
					Table:   table,
					Options: evaluation.Options{TestFraction: testFraction, Seed: seed, Delimiter: delimiter},
				},
				Seeds:   seeds,
				Workers: workers,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-6s %-9s %-9s %-9s\n", "seed", "accuracy", "macro_f1", "top3")
			for _, r := range result.Runs {
				fmt.Fprintf(out, "%-6d %-9.4f %-9.4f %-9.4f\n", r.Seed, r.Summary.Accuracy, r.Summary.MacroF1, r.Summary.Top3Recall)
			}
			fmt.Fprintf(out, "\naccuracy  %.4f ± %.4f\n", result.Accuracy.Mean, result.Accuracy.StdDev)
			fmt.Fprintf(out, "macro_f1  %.4f ± %.4f\n", result.MacroF1.Mean, result.MacroF1.StdDev)
			fmt.Fprintf(out, "top3      %.4f ± %.4f\n", result.Top3Recall.Mean, result.Top3Recall.StdDev)
			return nil
		},
	}

	cmd.Flags().Float64Var(&testFraction, "test-fraction", defaults.TestFraction, "Fraction of each class held out for testing, in (0,1)")
	cmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "First seed of the sweep")
	cmd.Flags().StringVar(&delimiter, "delimiter", defaults.Delimiter, "Column delimiter for text datasets")
	cmd.Flags().IntVar(&seeds, "seeds", 5, "Number of consecutive seeds")
	cmd.Flags().IntVar(&workers, "workers", 4, "Maximum concurrent runs")

	return cmd
}

// parseItems reads "name" or "name:severity" arguments
func parseItems(args []string) []diagnosis.Item {
	items := make([]diagnosis.Item, 0, len(args))
	for _, arg := range args {
		name, sev := arg, diagnosis.MinSeverity
		if i := strings.LastIndex(arg, ":"); i > 0 {
			var n int
			if _, err := fmt.Sscanf(arg[i+1:], "%d", &n); err == nil {
				name, sev = arg[:i], n
			}
		}
		items = append(items, diagnosis.Item{Name: name, Severity: sev})
	}
	return items
}

func printReport(out io.Writer, r *metrics.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "markdown", "md":
		_, err := io.WriteString(out, report.Markdown(r))
		return err
	case "text":
		s := r.Summary
		fmt.Fprintf(out, "Rows: %d train / %d test, %d classes, %d symptoms\n", s.TrainSize, s.TestSize, s.ClassCount, s.FeatureCount)
		fmt.Fprintf(out, "Accuracy:      %.4f  (95%% CI %.4f-%.4f)\n", s.Accuracy, s.AccuracyInterval.Lower, s.AccuracyInterval.Upper)
		fmt.Fprintf(out, "Macro-F1:      %.4f\n", s.MacroF1)
		fmt.Fprintf(out, "Top-%d recall:  %.4f\n", metrics.RecallK, s.Top3Recall)
		fmt.Fprintf(out, "ECE:           %.4f\n", s.ExpectedCalibrationError)
		if len(s.MissingProfiles) > 0 {
			fmt.Fprintf(out, "No profile:    %s\n", strings.Join(s.MissingProfiles, ", "))
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or markdown)", format)
	}
}

func printDiagnosis(out io.Writer, r *app.DiagnosisResult) {
	if r.Empty {
		fmt.Fprintln(out, "No symptoms given; every diagnosis scores 0.")
	} else if len(r.Recognized) < len(r.Items) {
		internal.DefaultLogger.Warn("%d of %d symptoms are not in the vocabulary", len(r.Items)-len(r.Recognized), len(r.Items))
	}

	fmt.Fprintln(out, "Ranking:")
	for i, s := range r.Ranking {
		fmt.Fprintf(out, "  %d. %-30s %.4f\n", i+1, s.Class, s.Score)
	}
	if len(r.Matches) > 0 {
		fmt.Fprintln(out, "Catalog matches:")
		for _, m := range r.Matches {
			fmt.Fprintf(out, "  %-30s %.4f\n", m.Disease, m.Score)
		}
	}
	a := r.Assessment
	fmt.Fprintf(out, "Risk: %s (%s) %s\n", a.Risk, a.Source, a.Summary)
	for _, rec := range a.Recommendations {
		fmt.Fprintf(out, "  - %s\n", rec)
	}
}
