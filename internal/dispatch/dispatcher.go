// Package dispatch routes a validated analysis request to the underlying
// statistical procedure and normalizes its heterogeneous output into one
// TestResult shape. Callers must validate first; the dispatcher only guards
// against data-level failures, which surface as *TestExecutionError.
package dispatch

import (
	"errors"
	"fmt"

	"hypolab/domain/analysis"
	"hypolab/domain/catalog"
	"hypolab/domain/dataset"
	"hypolab/internal/stats/procedures"
)

// TestExecutionError means the underlying procedure rejected the data
// (degenerate sample, too few groups, unparsable cells). The cause's message
// is surfaced verbatim to the user; recovery is changing the selection.
type TestExecutionError struct {
	TestID catalog.TestID
	Cause  error
}

func (e *TestExecutionError) Error() string {
	return fmt.Sprintf("test %s failed: %v", e.TestID, e.Cause)
}

func (e *TestExecutionError) Unwrap() error {
	return e.Cause
}

// IsTestExecutionError reports whether err is a data-level execution failure
func IsTestExecutionError(err error) bool {
	var t *TestExecutionError
	return errors.As(err, &t)
}

// Run executes the requested test against the dataset and returns a
// normalized TestResult. The testID -> procedure mapping is fixed and
// one-to-one; an id outside the catalog is a programmer error here because
// validation already gated it.
func Run(req analysis.Request, ds *dataset.Dataset) (*analysis.TestResult, error) {
	spec, err := catalog.Describe(req.Test)
	if err != nil {
		return nil, err
	}

	var (
		res   procedures.Result
		table *analysis.ContingencyTable
	)

	switch spec.ID {
	case catalog.TestShapiroWilk, catalog.TestJarqueBera, catalog.TestLilliefors,
		catalog.TestAndersonDarling, catalog.TestKolmogorovSmirnov:
		res, err = runSingle(spec.ID, req, ds)

	case catalog.TestTStudent:
		res, err = runTTest(req, ds)

	case catalog.TestANOVA:
		res, err = runANOVA(req, ds)

	case catalog.TestChiSquare:
		res, table, err = runChiSquare(req, ds)

	default:
		return nil, fmt.Errorf("no procedure mapped for test %q", spec.ID)
	}

	if err != nil {
		return nil, &TestExecutionError{TestID: spec.ID, Cause: err}
	}

	raw := map[string]interface{}{
		"test":      spec.DisplayName,
		"statistic": res.Statistic,
		"p_value":   res.PValue,
		"n":         res.N,
	}
	for k, v := range res.Detail {
		raw[k] = v
	}

	result, err := analysis.NewTestResult(spec.ID, res.PValue, res.Statistic, res.N, raw)
	if err != nil {
		return nil, err
	}
	result.Table = table
	return result, nil
}

// runSingle handles the five single-variable normality tests
func runSingle(id catalog.TestID, req analysis.Request, ds *dataset.Dataset) (procedures.Result, error) {
	col, ok := ds.Column(req.Variable)
	if !ok {
		return procedures.Result{}, fmt.Errorf("column %q not found", req.Variable)
	}
	sample, err := col.Numeric()
	if err != nil {
		return procedures.Result{}, err
	}

	switch id {
	case catalog.TestShapiroWilk:
		return procedures.ShapiroWilk(sample)
	case catalog.TestJarqueBera:
		return procedures.JarqueBera(sample)
	case catalog.TestLilliefors:
		return procedures.Lilliefors(sample)
	case catalog.TestAndersonDarling:
		return procedures.AndersonDarling(sample)
	default:
		return procedures.KolmogorovSmirnov(sample)
	}
}

// runTTest partitions the variable by group and hands the first two levels
// (in order of first appearance) to the two-sample procedure. A grouping
// variable with more than two levels is not an error: the extra levels are
// simply not part of the comparison, matching the two-sample contract.
func runTTest(req analysis.Request, ds *dataset.Dataset) (procedures.Result, error) {
	groups, levels, err := ds.GroupedNumeric(req.Variable, req.Group)
	if err != nil {
		return procedures.Result{}, err
	}
	if len(levels) < 2 {
		return procedures.Result{}, fmt.Errorf("grouping variable %q has %d level(s), need at least 2", req.Group, len(levels))
	}

	res, err := procedures.TwoSampleTTest(groups[levels[0]], groups[levels[1]])
	if err != nil {
		return procedures.Result{}, err
	}
	res.Detail["group1_level"] = levels[0]
	res.Detail["group2_level"] = levels[1]
	return res, nil
}

func runANOVA(req analysis.Request, ds *dataset.Dataset) (procedures.Result, error) {
	grouped, levels, err := ds.GroupedNumeric(req.Variable, req.Group)
	if err != nil {
		return procedures.Result{}, err
	}
	if len(levels) < 2 {
		return procedures.Result{}, fmt.Errorf("grouping variable %q has %d level(s), need at least 2", req.Group, len(levels))
	}

	groups := make([][]float64, len(levels))
	for i, level := range levels {
		groups[i] = grouped[level]
	}
	res, err := procedures.OneWayANOVA(groups)
	if err != nil {
		return procedures.Result{}, err
	}
	res.Detail["levels"] = levels
	return res, nil
}

func runChiSquare(req analysis.Request, ds *dataset.Dataset) (procedures.Result, *analysis.ContingencyTable, error) {
	pairs, err := ds.PairedLevels(req.Variable, req.Group)
	if err != nil {
		return procedures.Result{}, nil, err
	}

	table := crossTabulate(pairs)
	res, err := procedures.ChiSquareIndependence(table.Counts)
	if err != nil {
		return procedures.Result{}, nil, err
	}
	return res, &table, nil
}

// crossTabulate builds the contingency table of variable x group counts,
// levels in first-appearance order on both axes.
func crossTabulate(pairs [][2]string) analysis.ContingencyTable {
	rowIdx := make(map[string]int)
	colIdx := make(map[string]int)
	rowLevels := []string{}
	colLevels := []string{}

	for _, p := range pairs {
		if _, ok := rowIdx[p[0]]; !ok {
			rowIdx[p[0]] = len(rowLevels)
			rowLevels = append(rowLevels, p[0])
		}
		if _, ok := colIdx[p[1]]; !ok {
			colIdx[p[1]] = len(colLevels)
			colLevels = append(colLevels, p[1])
		}
	}

	counts := make([][]int, len(rowLevels))
	for i := range counts {
		counts[i] = make([]int, len(colLevels))
	}
	for _, p := range pairs {
		counts[rowIdx[p[0]]][colIdx[p[1]]]++
	}

	return analysis.ContingencyTable{
		RowLevels: rowLevels,
		ColLevels: colLevels,
		Counts:    counts,
	}
}
