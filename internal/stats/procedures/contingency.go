package procedures

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquareIndependence tests the independence of two qualitative variables
// from their contingency table of observed counts.
func ChiSquareIndependence(counts [][]int) (Result, error) {
	const proc = "Chi-cuadrado"
	rows := len(counts)
	if rows == 0 {
		return Result{}, execErrorf(proc, "empty contingency table")
	}
	cols := len(counts[0])

	df := (rows - 1) * (cols - 1)
	if df < 1 {
		return Result{}, execErrorf(proc, "contingency table is degenerate (%dx%d, 0 degrees of freedom)", rows, cols)
	}

	rowTotals := make([]float64, rows)
	colTotals := make([]float64, cols)
	total := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := float64(counts[i][j])
			rowTotals[i] += v
			colTotals[j] += v
			total += v
		}
	}
	if total == 0 {
		return Result{}, execErrorf(proc, "contingency table has no observations")
	}

	chi2 := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			expected := rowTotals[i] * colTotals[j] / total
			if expected > 0 {
				diff := float64(counts[i][j]) - expected
				chi2 += diff * diff / expected
			}
		}
	}

	p := distuv.ChiSquared{K: float64(df)}.Survival(chi2)

	// Cramer's V as a standardized effect size alongside the raw statistic
	minDim := math.Min(float64(rows-1), float64(cols-1))
	cramerV := math.Sqrt(chi2 / (total * minDim))

	return Result{
		Statistic: chi2,
		PValue:    clampPValue(p),
		N:         int(total),
		Detail: map[string]interface{}{
			"chi2":      chi2,
			"df":        df,
			"rows":      rows,
			"cols":      cols,
			"cramer_v":  cramerV,
			"row_total": rowTotals,
			"col_total": colTotals,
		},
	}, nil
}
