package procedures

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TwoSampleTTest compares the means of two groups with Student's pooled
// two-sample t-test, two-tailed.
func TwoSampleTTest(group1, group2 []float64) (Result, error) {
	const proc = "t-Student"
	n1 := len(group1)
	n2 := len(group2)
	if n1 < 2 || n2 < 2 {
		return Result{}, execErrorf(proc, "each group needs at least 2 observations, got %d and %d", n1, n2)
	}

	mean1 := stat.Mean(group1, nil)
	mean2 := stat.Mean(group2, nil)
	var1 := stat.Variance(group1, nil)
	var2 := stat.Variance(group2, nil)

	f1 := float64(n1)
	f2 := float64(n2)
	df := f1 + f2 - 2
	pooled := ((f1-1)*var1 + (f2-1)*var2) / df
	if pooled == 0 {
		return Result{}, execErrorf(proc, "both groups have zero variance")
	}

	t := (mean1 - mean2) / math.Sqrt(pooled*(1/f1+1/f2))
	p := 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(math.Abs(t))

	return Result{
		Statistic: t,
		PValue:    clampPValue(p),
		N:         n1 + n2,
		Detail: map[string]interface{}{
			"t":           t,
			"df":          df,
			"group1_n":    n1,
			"group2_n":    n2,
			"group1_mean": mean1,
			"group2_mean": mean2,
		},
	}, nil
}

// OneWayANOVA compares the means of two or more groups with the one-way F
// test.
func OneWayANOVA(groups [][]float64) (Result, error) {
	const proc = "ANOVA"
	k := len(groups)
	if k < 2 {
		return Result{}, execErrorf(proc, "needs at least 2 groups, got %d", k)
	}

	total := 0
	grandSum := 0.0
	for _, g := range groups {
		if len(g) == 0 {
			return Result{}, execErrorf(proc, "a group has no observations")
		}
		total += len(g)
		for _, v := range g {
			grandSum += v
		}
	}
	if total <= k {
		return Result{}, execErrorf(proc, "needs more observations (%d) than groups (%d)", total, k)
	}
	grandMean := grandSum / float64(total)

	ssBetween := 0.0
	ssWithin := 0.0
	for _, g := range groups {
		m := stat.Mean(g, nil)
		ssBetween += float64(len(g)) * (m - grandMean) * (m - grandMean)
		for _, v := range g {
			ssWithin += (v - m) * (v - m)
		}
	}

	dfBetween := float64(k - 1)
	dfWithin := float64(total - k)
	msWithin := ssWithin / dfWithin
	if msWithin == 0 {
		return Result{}, execErrorf(proc, "zero within-group variance")
	}

	f := (ssBetween / dfBetween) / msWithin
	p := distuv.F{D1: dfBetween, D2: dfWithin}.Survival(f)

	return Result{
		Statistic: f,
		PValue:    clampPValue(p),
		N:         total,
		Detail: map[string]interface{}{
			"f":          f,
			"df_between": dfBetween,
			"df_within":  dfWithin,
			"ss_between": ssBetween,
			"ss_within":  ssWithin,
			"groups":     k,
		},
	}, nil
}
