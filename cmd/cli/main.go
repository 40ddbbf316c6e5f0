package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"surveyml/adapters/excel"
	"surveyml/adapters/postgres"
	"surveyml/app"
	"surveyml/domain/survey"
	"surveyml/internal/config"
	"surveyml/internal/container"
	"surveyml/internal/migration"
	"surveyml/internal/report"
	"surveyml/internal/testkit"
)

func main() {
	var sourceKind string

	rootCmd := &cobra.Command{
		Use:   "surveyml",
		Short: "Train low-satisfaction classifiers on employee survey responses",
	}
	rootCmd.PersistentFlags().StringVar(&sourceKind, "source", "", "Survey source: excel, database or demo (default from config)")

	rootCmd.AddCommand(
		newTrainCmd(&sourceKind),
		newImportanceCmd(&sourceKind),
		newPredictCmd(&sourceKind),
		newInsightsCmd(&sourceKind),
		newDemoCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newContainer() (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg)
}

// train loads the chosen source and fits every model family on it
func train(ctx context.Context, c *container.Container, kind string) (*app.Artifacts, error) {
	src, err := c.Source(kind)
	if err != nil {
		return nil, err
	}
	ds, warnings, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", src.Name(), err)
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w.String())
	}
	return c.Pipeline.Train(ctx, ds)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(c *container.Container, a *app.Artifacts, asJSON bool) error {
	sum, err := c.Pipeline.Summary(a)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(sum)
	}
	importance, err := c.Pipeline.Importance(a, 0)
	if err != nil {
		return err
	}
	insights, err := c.Pipeline.Insights(a)
	if err != nil {
		return err
	}
	fmt.Print(report.Markdown(sum, importance, insights))
	return nil
}

func newTrainCmd(sourceKind *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train all model families and print the comparison report",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			a, err := train(cmd.Context(), c, *sourceKind)
			if err != nil {
				return err
			}
			return printReport(c, a, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func newImportanceCmd(sourceKind *string) *cobra.Command {
	var topN int
	var modelName string

	cmd := &cobra.Command{
		Use:   "importance",
		Short: "Train and print ranked feature importances",
		Long: `Train on the configured source and print each model's top features.

Example: surveyml importance --top-n 10 --model random_forest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			a, err := train(cmd.Context(), c, *sourceKind)
			if err != nil {
				return err
			}
			ranked, err := c.Pipeline.Importance(a, topN)
			if err != nil {
				return err
			}
			for _, mi := range ranked {
				if modelName != "" && string(mi.Model) != modelName {
					continue
				}
				fmt.Println(mi.Model.DisplayName())
				for _, f := range mi.Features {
					fmt.Printf("  %2d. %-24s %-7s %.4f\n", f.Rank, f.Term, f.Kind, f.Importance)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&topN, "top-n", 0, "Number of features per model (default from config)")
	cmd.Flags().StringVar(&modelName, "model", "", "Only print this model (decision_tree, random_forest, gradient_boosting)")
	return cmd
}

func newPredictCmd(sourceKind *string) *cobra.Command {
	var row int
	var comment string
	var scores map[string]string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Train, then classify a training row or a new response",
		Long: `Train on the configured source and classify one response.

Example: surveyml predict --row 3
Example: surveyml predict --score overall_satisfaction=2 --score recommend_score=3 --comment "残業が多い"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			a, err := train(cmd.Context(), c, *sourceKind)
			if err != nil {
				return err
			}

			var rec survey.Record
			if cmd.Flags().Changed("row") {
				if rec, err = a.Record(row); err != nil {
					return err
				}
			} else {
				rec = survey.Record{
					ID:       "cli",
					Scores:   make(map[string]interface{}, len(scores)),
					Comments: map[string]string{survey.FieldComment: comment},
				}
				for k, v := range scores {
					rec.Scores[strings.TrimSpace(k)] = v
				}
			}

			result, err := c.Pipeline.Predict(cmd.Context(), a, rec)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().IntVar(&row, "row", 0, "Classify this training row")
	cmd.Flags().StringVar(&comment, "comment", "", "Free-text comment of a new response")
	cmd.Flags().StringToStringVar(&scores, "score", nil, "Score of a new response as field=value (repeatable)")
	return cmd
}

func newInsightsCmd(sourceKind *string) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Train, then print comment insights for the low-satisfaction group as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			a, err := train(cmd.Context(), c, *sourceKind)
			if err != nil {
				return err
			}
			insights, err := c.Pipeline.Insights(a)
			if err != nil {
				return err
			}
			return printJSON(insights)
		},
	}
}

func newDemoCmd() *cobra.Command {
	var rows int
	var seed int64
	var out string
	var toDB bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate a synthetic survey and train on it, or write it out",
		RunE: func(cmd *cobra.Command, args []string) error {
			gc := testkit.DefaultSurveyConfig()
			gc.Respondents = rows
			gc.Seed = seed
			ds := testkit.NewSurveyDataGenerator(gc).Generate()

			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			switch {
			case out != "":
				if err := excel.WriteDataset(out, "Responses", ds); err != nil {
					return err
				}
				fmt.Printf("Wrote %d responses to %s\n", ds.Len(), out)
				return nil
			case toDB:
				db, err := c.Database(cmd.Context())
				if err != nil {
					return err
				}
				repo, err := postgres.NewSurveyRepository(db, c.Config.Source.SurveyTable)
				if err != nil {
					return err
				}
				if err := repo.Save(cmd.Context(), ds); err != nil {
					return err
				}
				fmt.Printf("Saved %d responses to %s\n", ds.Len(), c.Config.Source.SurveyTable)
				return nil
			}

			a, err := c.Pipeline.Train(cmd.Context(), ds)
			if err != nil {
				return err
			}
			return printReport(c, a, false)
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 150, "Number of respondents")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the generator")
	cmd.Flags().StringVar(&out, "out", "", "Write the survey to this .xlsx file instead of training")
	cmd.Flags().BoolVar(&toDB, "db", false, "Save the survey to the configured database instead of training")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the survey response table",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			if _, err := c.Database(cmd.Context()); err != nil {
				return err
			}
			table := c.Config.Source.SurveyTable
			fmt.Printf("Table %s is ready (migration %s)\n", table, migration.NewRunner(table).Version())
			return nil
		},
	}
}
