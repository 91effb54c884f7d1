// Command cli runs one analysis end to end from the shell: load a dataset,
// select a variable and test, and print the result with its verdict.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"hypolab/adapters/ingest/postgres"
	"hypolab/adapters/ingest/tabular"
	"hypolab/app"
	"hypolab/domain/analysis"
	"hypolab/domain/catalog"
	"hypolab/domain/dataset"
	"hypolab/internal"
	"hypolab/internal/session"
)

func main() {
	_ = godotenv.Load()

	var (
		file     = flag.String("file", "", "dataset file (CSV or xlsx)")
		table    = flag.String("table", "", "postgres table to read instead of a file (uses DATABASE_URL)")
		variable = flag.String("var", "", "variable to analyze")
		group    = flag.String("group", dataset.GroupNone, "grouping variable, if the test needs one")
		test     = flag.String("test", "", "test id or display name")
		alpha    = flag.Float64("alpha", 0.05, "significance threshold")
		asJSON   = flag.Bool("json", false, "print the outcome as JSON")
	)
	flag.Parse()

	if err := run(*file, *table, *variable, *group, *test, *alpha, *asJSON); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(file, table, variable, group, test string, alpha float64, asJSON bool) error {
	ds, err := loadDataset(file, table)
	if err != nil {
		return err
	}

	testID, err := catalog.Parse(test)
	if err != nil {
		return err
	}

	svc := app.NewAnalysisService(session.NewStore(), alpha, internal.NewDefaultLogger())
	sess := svc.CreateSession()
	if err := svc.LoadDataset(context.Background(), sess.ID(), ds); err != nil {
		return err
	}
	req := analysis.Request{Variable: variable, Group: group, Test: testID}
	if err := svc.Configure(sess.ID(), req); err != nil {
		return err
	}
	outcome, err := svc.Run(sess.ID())
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}
	printOutcome(outcome)
	return nil
}

func loadDataset(file, table string) (*dataset.Dataset, error) {
	switch {
	case file != "":
		t, err := tabular.NewReader(file).ReadTable()
		if err != nil {
			return nil, err
		}
		return t.Dataset(nil)
	case table != "":
		reader, err := postgres.NewReader(os.Getenv("DATABASE_URL"))
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return reader.ReadDataset(context.Background(), table, nil)
	default:
		return nil, fmt.Errorf("either -file or -table is required")
	}
}

func printOutcome(outcome *app.RunOutcome) {
	if !outcome.Validation.OK {
		fmt.Println("selection invalid:", outcome.Validation.Reason)
		return
	}
	if outcome.ExecutionError != "" {
		fmt.Println("test failed:", outcome.ExecutionError)
		return
	}

	r := outcome.Result
	fmt.Printf("statistic = %.6f\n", r.Statistic)
	fmt.Printf("p-value   = %.6f\n", r.PValue)
	fmt.Printf("n         = %d\n", r.SampleSize)
	if r.Table != nil {
		fmt.Println("contingency table:")
		fmt.Printf("  %v x %v\n", r.Table.RowLevels, r.Table.ColLevels)
		for i, row := range r.Table.Counts {
			fmt.Printf("  %s: %v\n", r.Table.RowLevels[i], row)
		}
	}
	if outcome.Verdict != nil {
		fmt.Println()
		fmt.Println(outcome.Verdict.Text)
		fmt.Printf("(p = %.4f vs alpha = %.2f)\n", outcome.Verdict.PValue, outcome.Verdict.Alpha)
	}
}
