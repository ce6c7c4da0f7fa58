package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"creditrisk/adapters/tabular"
	"creditrisk/app"
	"creditrisk/domain/core"
	"creditrisk/domain/metrics"
	"creditrisk/domain/table"
	"creditrisk/internal/container"
	"creditrisk/internal/logging"
	"creditrisk/internal/testkit"
	"creditrisk/internal/validation"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "validate <paths...>",
		Short: "Check data files for the required columns",
		Long: `Load each file and check it has the required columns
(credit_risk, age, income, credit_score). Files are processed concurrently.

Example: creditrisk validate data/*.csv --concurrency 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewDefault()
			newLoader := func() validation.Loader {
				return tabular.NewReader(tabular.DefaultReaderConfig(), logger)
			}
			batch := validation.NewBatchValidator(newLoader, validation.NewValidator(logger), concurrency)

			reports, err := batch.ValidateFiles(cmd.Context(), args, table.RequiredColumns)
			if err != nil {
				return err
			}

			failed := 0
			out := cmd.OutOrStdout()
			for _, r := range reports {
				switch {
				case r.Err != nil:
					failed++
					fmt.Fprintf(out, "FAIL  %s: %v\n", r.Path, r.Err)
				case !r.Valid:
					failed++
					fmt.Fprintf(out, "FAIL  %s: missing columns %s\n", r.Path, strings.Join(r.Missing, ", "))
				default:
					fmt.Fprintf(out, "OK    %s (%d rows, %d columns)\n", r.Path, r.Rows, r.Columns)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, len(reports))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", validation.DefaultConcurrency, "Files loaded in parallel")
	return cmd
}

func newPrepareCmd() *cobra.Command {
	var (
		strategy     string
		method       string
		clip         []string
		testFraction float64
		seed         int64
		outDir       string
		outFormat    string
		requireValid bool
		artifactName string
	)

	cmd := &cobra.Command{
		Use:   "prepare [path]",
		Short: "Run the full pipeline: load, validate, impute, clip and split",
		Long: `Run the data preparation pipeline on one file and record the run.
Flags override the environment configuration. Use --strategy none or
--clip "" to skip a cleaning step.

Example: creditrisk prepare data/applicants.csv --strategy mean --seed 7 --out build/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				path := ""
				if len(args) == 1 {
					path = args[0]
				}
				req := c.PrepareRequest(path)

				flags := cmd.Flags()
				if flags.Changed("strategy") {
					req.ImputeStrategy = noneToEmpty(strategy)
				}
				if flags.Changed("method") {
					req.OutlierMethod = noneToEmpty(method)
				}
				if flags.Changed("clip") {
					req.ClipColumns = clip
				}
				if flags.Changed("test-fraction") {
					req.TestFraction = testFraction
				}
				if flags.Changed("seed") {
					req.Seed = &seed
				}
				req.RequireValid = requireValid

				res, err := c.Pipeline.Prepare(cmd.Context(), req)
				if err != nil {
					return err
				}
				printPrepareResult(cmd, res)

				if res.Split != nil && outDir != "" {
					if err := writePartitions(cmd, res, outDir, outFormat); err != nil {
						return err
					}
				}
				if res.Split != nil && artifactName != "" {
					a, where, err := c.Artifacts.ExportRun(cmd.Context(), res.Record.ID, artifactName)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Artifact %s written to %s\n", a.ID, where)
				}
				if !res.Record.Valid {
					return fmt.Errorf("data failed validation")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "Imputation strategy: mean, median, mode or none (default from IMPUTE_STRATEGY)")
	cmd.Flags().StringVar(&method, "method", "", "Outlier method: iqr or none (default from OUTLIER_METHOD)")
	cmd.Flags().StringSliceVar(&clip, "clip", nil, "Columns to clip (default from CLIP_COLUMNS)")
	cmd.Flags().Float64Var(&testFraction, "test-fraction", 0.2, "Share of rows held out for testing")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the split")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write train and test partitions to")
	cmd.Flags().StringVar(&outFormat, "format", "csv", "Partition file format: csv or xlsx")
	cmd.Flags().BoolVar(&requireValid, "require-valid", false, "Abort when required columns are missing")
	cmd.Flags().StringVar(&artifactName, "export-artifact", "", "Save the run's column statistics as a named artifact")
	return cmd
}

func noneToEmpty(s string) string {
	if strings.EqualFold(s, "none") {
		return ""
	}
	return s
}

func printPrepareResult(cmd *cobra.Command, res *app.PrepareResult) {
	out := cmd.OutOrStdout()
	r := res.Record
	fmt.Fprintf(out, "Run %s: %s\n", r.ID, r.Status)
	fmt.Fprintf(out, "  rows=%d columns=%d valid=%t\n", r.Rows, r.Columns, r.Valid)
	if !r.Valid {
		fmt.Fprintf(out, "  missing columns: %s\n", strings.Join(r.MissingColumns, ", "))
		return
	}
	fmt.Fprintf(out, "  train=%d test=%d (test fraction %.2f, seed %d)\n", r.TrainRows, r.TestRows, r.TestFraction, r.Seed)
	fmt.Fprintf(out, "  fingerprint=%s\n", r.Fingerprint.Hash)
}

func writePartitions(cmd *cobra.Command, res *app.PrepareResult, dir, format string) error {
	ext := ".csv"
	if strings.EqualFold(format, "xlsx") {
		ext = ".xlsx"
	}
	parts := []struct {
		name string
		t    *table.Table
	}{
		{"train", res.Split.Train.Table()},
		{"test", res.Split.Test.Table()},
	}
	for _, p := range parts {
		path, part := filepath.Join(dir, p.name+ext), p.t
		if err := tabular.WriteFile(path, part); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d rows)\n", path, part.NumRows())
	}
	return nil
}

func newEvaluateCmd() *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "evaluate <predictions>",
		Short: "Compute classification metrics from a predictions file",
		Long: `Score a CSV with y_true, y_pred and y_proba columns. With --run the
metrics are stored on that run.

Example: creditrisk evaluate preds.csv --run 0190c1c2-...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id core.RunID
			if runID != "" {
				parsed, err := core.ParseRunID(runID)
				if err != nil {
					return err
				}
				id = parsed
			}

			return withContainer(cmd.Context(), func(c *container.Container) error {
				bundle, err := c.Evaluation.Evaluate(cmd.Context(), id, args[0])
				if err != nil {
					return err
				}
				printBundle(cmd, bundle)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID to attach the metrics to")
	return cmd
}

func printBundle(cmd *cobra.Command, b metrics.Bundle) {
	out := cmd.OutOrStdout()
	values := b.Map()
	for _, name := range metrics.Names() {
		fmt.Fprintf(out, "%-10s %.4f\n", name, values[name])
	}
	c := b.Confusion
	fmt.Fprintf(out, "confusion  tp=%d fp=%d tn=%d fn=%d\n", c.TP, c.FP, c.TN, c.FN)
}

func newGenerateCmd() *cobra.Command {
	var (
		rows        int
		seed        int64
		missingRate float64
		defaultRate float64
		predictions bool
	)

	cmd := &cobra.Command{
		Use:   "generate <path>",
		Short: "Write a synthetic credit applicant dataset",
		Long: `Generate a reproducible synthetic dataset with missing cells and income
outliers. The format follows the extension (.csv or .xlsx). With
--predictions a y_true, y_pred, y_proba file is written instead.

Example: creditrisk generate data/synthetic.csv --rows 5000 --seed 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultCreditConfig(seed)
			if cmd.Flags().Changed("missing-rate") {
				cfg.MissingRate = missingRate
			}
			if cmd.Flags().Changed("default-rate") {
				cfg.DefaultRate = defaultRate
			}
			if rows <= 0 {
				return fmt.Errorf("--rows must be positive")
			}
			if predictions && rows < 2 {
				return fmt.Errorf("predictions need at least 2 rows")
			}

			gen := testkit.NewCreditGenerator(cfg)
			var t *table.Table
			if predictions {
				t = gen.PredictionsTable(rows)
			} else {
				t = gen.Generate(rows)
			}
			if err := tabular.WriteFile(args[0], t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", t.NumRows(), args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 1000, "Number of rows")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Generator seed")
	cmd.Flags().Float64Var(&missingRate, "missing-rate", 0.05, "Per-cell missing rate of feature columns")
	cmd.Flags().Float64Var(&defaultRate, "default-rate", 0.3, "Base share of credit_risk=1 rows")
	cmd.Flags().BoolVar(&predictions, "predictions", false, "Write a predictions file instead of applicants")
	return cmd
}
