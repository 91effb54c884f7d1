package procedures

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

// normScores returns the n normal quantiles Phi^-1((i+0.5)/n), the most
// normal-looking sample of size n there is. Every normality test should be
// comfortably unable to reject on it.
func normScores(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = distuv.UnitNormal.Quantile((float64(i) + 0.5) / float64(n))
	}
	return out
}

// logSkewed returns a deterministic, extremely right-skewed sample
func logSkewed(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Exp(5 * float64(i) / float64(n-1))
	}
	return out
}

func constantSample(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func assertPValueRange(t *testing.T, p float64) {
	t.Helper()
	if p < 0 || p > 1 {
		t.Fatalf("p-value %v outside [0, 1]", p)
	}
}

func TestShapiroWilk(t *testing.T) {
	t.Run("normal scores are not rejected", func(t *testing.T) {
		res, err := ShapiroWilk(normScores(50))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertPValueRange(t, res.PValue)
		if res.Statistic <= 0.9 || res.Statistic > 1 {
			t.Errorf("W = %v, want close to 1 for normal scores", res.Statistic)
		}
		if res.PValue <= 0.05 {
			t.Errorf("p = %v, want > 0.05 for normal scores", res.PValue)
		}
		if res.N != 50 {
			t.Errorf("N = %d, want 50", res.N)
		}
	})

	t.Run("skewed sample is rejected", func(t *testing.T) {
		res, err := ShapiroWilk(logSkewed(50))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.PValue >= 0.01 {
			t.Errorf("p = %v, want < 0.01 for a log-scale sample", res.PValue)
		}
	})

	t.Run("too few observations", func(t *testing.T) {
		_, err := ShapiroWilk([]float64{1, 2})
		if err == nil {
			t.Fatal("expected error for n=2")
		}
	})

	t.Run("zero variance", func(t *testing.T) {
		_, err := ShapiroWilk(constantSample(10, 3.5))
		if err == nil {
			t.Fatal("expected error for constant sample")
		}
	})
}

func TestJarqueBera(t *testing.T) {
	t.Run("symmetric sample has near-zero skewness", func(t *testing.T) {
		res, err := JarqueBera(normScores(100))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertPValueRange(t, res.PValue)
		skew := res.Detail["skewness"].(float64)
		if math.Abs(skew) > 1e-6 {
			t.Errorf("skewness = %v, want ~0 for a symmetric sample", skew)
		}
		if res.PValue <= 0.05 {
			t.Errorf("p = %v, want > 0.05 for normal scores", res.PValue)
		}
	})

	t.Run("skewed sample is rejected", func(t *testing.T) {
		res, err := JarqueBera(logSkewed(100))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.PValue >= 0.01 {
			t.Errorf("p = %v, want < 0.01", res.PValue)
		}
		if res.Detail["skewness"].(float64) <= 0 {
			t.Error("expected positive skewness for a right-skewed sample")
		}
	})

	t.Run("too few observations", func(t *testing.T) {
		if _, err := JarqueBera([]float64{1, 2, 3}); err == nil {
			t.Fatal("expected error for n=3")
		}
	})

	t.Run("zero variance", func(t *testing.T) {
		if _, err := JarqueBera(constantSample(20, 1)); err == nil {
			t.Fatal("expected error for constant sample")
		}
	})
}

func TestLilliefors(t *testing.T) {
	t.Run("normal scores are not rejected", func(t *testing.T) {
		res, err := Lilliefors(normScores(50))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertPValueRange(t, res.PValue)
		if res.PValue <= 0.05 {
			t.Errorf("p = %v, want > 0.05 for normal scores", res.PValue)
		}
	})

	t.Run("skewed sample is rejected", func(t *testing.T) {
		res, err := Lilliefors(logSkewed(50))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.PValue >= 0.01 {
			t.Errorf("p = %v, want < 0.01", res.PValue)
		}
	})

	t.Run("large sample uses the rescaled statistic", func(t *testing.T) {
		res, err := Lilliefors(logSkewed(200))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertPValueRange(t, res.PValue)
		if res.PValue >= 0.01 {
			t.Errorf("p = %v, want < 0.01 at n=200", res.PValue)
		}
	})

	t.Run("too few observations", func(t *testing.T) {
		if _, err := Lilliefors([]float64{1, 2, 3, 4}); err == nil {
			t.Fatal("expected error for n=4")
		}
	})
}

func TestAndersonDarling(t *testing.T) {
	t.Run("normal scores are not rejected", func(t *testing.T) {
		res, err := AndersonDarling(normScores(50))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertPValueRange(t, res.PValue)
		if res.PValue <= 0.05 {
			t.Errorf("p = %v, want > 0.05 for normal scores", res.PValue)
		}
		if res.Statistic < 0 {
			t.Errorf("A2 = %v, want >= 0", res.Statistic)
		}
	})

	t.Run("skewed sample is rejected", func(t *testing.T) {
		res, err := AndersonDarling(logSkewed(50))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.PValue >= 0.01 {
			t.Errorf("p = %v, want < 0.01", res.PValue)
		}
	})

	t.Run("too few observations", func(t *testing.T) {
		if _, err := AndersonDarling(normScores(7)); err == nil {
			t.Fatal("expected error for n=7")
		}
	})

	t.Run("zero variance", func(t *testing.T) {
		if _, err := AndersonDarling(constantSample(10, 0)); err == nil {
			t.Fatal("expected error for constant sample")
		}
	})
}

func TestKolmogorovSmirnov(t *testing.T) {
	t.Run("normal scores are not rejected", func(t *testing.T) {
		res, err := KolmogorovSmirnov(normScores(50))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertPValueRange(t, res.PValue)
		if res.PValue <= 0.05 {
			t.Errorf("p = %v, want > 0.05 for normal scores", res.PValue)
		}
	})

	t.Run("skewed sample is rejected", func(t *testing.T) {
		res, err := KolmogorovSmirnov(logSkewed(100))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.PValue >= 0.05 {
			t.Errorf("p = %v, want < 0.05", res.PValue)
		}
	})

	t.Run("is more conservative than Lilliefors", func(t *testing.T) {
		// Same statistic, but KS uses the uncorrected reference distribution,
		// so its p-value should never be smaller.
		sample := logSkewed(50)
		ks, err := KolmogorovSmirnov(sample)
		if err != nil {
			t.Fatalf("ks: %v", err)
		}
		lf, err := Lilliefors(sample)
		if err != nil {
			t.Fatalf("lilliefors: %v", err)
		}
		if ks.Statistic != lf.Statistic {
			t.Errorf("statistics differ: ks=%v lilliefors=%v", ks.Statistic, lf.Statistic)
		}
		if ks.PValue < lf.PValue {
			t.Errorf("ks p=%v smaller than lilliefors p=%v", ks.PValue, lf.PValue)
		}
	})

	t.Run("too few observations", func(t *testing.T) {
		if _, err := KolmogorovSmirnov([]float64{1, 2}); err == nil {
			t.Fatal("expected error for n=2")
		}
	})
}

func TestTwoSampleTTest(t *testing.T) {
	t.Run("clearly separated means are rejected", func(t *testing.T) {
		res, err := TwoSampleTTest(
			[]float64{1, 2, 3, 4, 5},
			[]float64{10, 11, 12, 13, 14},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertPValueRange(t, res.PValue)
		if res.PValue >= 0.001 {
			t.Errorf("p = %v, want < 0.001 for means 3 vs 12", res.PValue)
		}
		if res.Statistic >= 0 {
			t.Errorf("t = %v, want negative (group1 mean below group2)", res.Statistic)
		}
		if res.N != 10 {
			t.Errorf("N = %d, want 10", res.N)
		}
		if df := res.Detail["df"].(float64); df != 8 {
			t.Errorf("df = %v, want 8", df)
		}
	})

	t.Run("identical groups give t=0 and p=1", func(t *testing.T) {
		res, err := TwoSampleTTest(
			[]float64{1, 2, 3, 4, 5},
			[]float64{1, 2, 3, 4, 5},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(res.Statistic) > 1e-12 {
			t.Errorf("t = %v, want 0", res.Statistic)
		}
		if res.PValue < 0.999 {
			t.Errorf("p = %v, want ~1", res.PValue)
		}
	})

	t.Run("group too small", func(t *testing.T) {
		if _, err := TwoSampleTTest([]float64{1}, []float64{1, 2, 3}); err == nil {
			t.Fatal("expected error for a one-observation group")
		}
	})

	t.Run("zero pooled variance", func(t *testing.T) {
		if _, err := TwoSampleTTest([]float64{2, 2, 2}, []float64{5, 5, 5}); err == nil {
			t.Fatal("expected error for two constant groups")
		}
	})
}

func TestOneWayANOVA(t *testing.T) {
	t.Run("separated group means are rejected", func(t *testing.T) {
		res, err := OneWayANOVA([][]float64{
			{1, 2, 3},
			{2, 3, 4},
			{10, 11, 12},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertPValueRange(t, res.PValue)
		if res.PValue >= 0.01 {
			t.Errorf("p = %v, want < 0.01", res.PValue)
		}
		if res.Detail["df_between"].(float64) != 2 {
			t.Errorf("df_between = %v, want 2", res.Detail["df_between"])
		}
		if res.Detail["df_within"].(float64) != 6 {
			t.Errorf("df_within = %v, want 6", res.Detail["df_within"])
		}
		if res.N != 9 {
			t.Errorf("N = %d, want 9", res.N)
		}
	})

	t.Run("identical groups give F=0 and p=1", func(t *testing.T) {
		res, err := OneWayANOVA([][]float64{
			{1, 2, 3},
			{1, 2, 3},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(res.Statistic) > 1e-12 {
			t.Errorf("F = %v, want 0", res.Statistic)
		}
		if res.PValue < 0.999 {
			t.Errorf("p = %v, want ~1", res.PValue)
		}
	})

	t.Run("needs at least two groups", func(t *testing.T) {
		if _, err := OneWayANOVA([][]float64{{1, 2, 3}}); err == nil {
			t.Fatal("expected error for a single group")
		}
	})

	t.Run("empty group", func(t *testing.T) {
		if _, err := OneWayANOVA([][]float64{{1, 2}, {}}); err == nil {
			t.Fatal("expected error for an empty group")
		}
	})

	t.Run("zero within-group variance", func(t *testing.T) {
		if _, err := OneWayANOVA([][]float64{{1, 1}, {2, 2}}); err == nil {
			t.Fatal("expected error for zero within-group variance")
		}
	})
}

func TestChiSquareIndependence(t *testing.T) {
	t.Run("strong association is rejected", func(t *testing.T) {
		res, err := ChiSquareIndependence([][]int{
			{50, 5},
			{5, 50},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertPValueRange(t, res.PValue)
		if res.PValue >= 0.001 {
			t.Errorf("p = %v, want < 0.001 for a near-diagonal table", res.PValue)
		}
		if res.Detail["df"].(int) != 1 {
			t.Errorf("df = %v, want 1", res.Detail["df"])
		}
		if res.N != 110 {
			t.Errorf("N = %d, want 110", res.N)
		}
	})

	t.Run("proportional table gives chi2=0 and p=1", func(t *testing.T) {
		res, err := ChiSquareIndependence([][]int{
			{20, 20},
			{10, 10},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(res.Statistic) > 1e-12 {
			t.Errorf("chi2 = %v, want 0", res.Statistic)
		}
		if res.PValue < 0.999 {
			t.Errorf("p = %v, want ~1", res.PValue)
		}
		if v := res.Detail["cramer_v"].(float64); v > 1e-6 {
			t.Errorf("cramer_v = %v, want 0", v)
		}
	})

	t.Run("degenerate table", func(t *testing.T) {
		_, err := ChiSquareIndependence([][]int{{7}})
		if err == nil {
			t.Fatal("expected error for a 1x1 table")
		}
		if !strings.Contains(err.Error(), "degenerate") {
			t.Errorf("error %q should mention the degenerate table", err)
		}
	})

	t.Run("empty table", func(t *testing.T) {
		if _, err := ChiSquareIndependence(nil); err == nil {
			t.Fatal("expected error for an empty table")
		}
	})

	t.Run("all-zero counts", func(t *testing.T) {
		if _, err := ChiSquareIndependence([][]int{{0, 0}, {0, 0}}); err == nil {
			t.Fatal("expected error for a table with no observations")
		}
	})
}

func TestExecutionErrorMessage(t *testing.T) {
	_, err := ShapiroWilk([]float64{1})
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecutionError, got %T", err)
	}
	if execErr.Procedure != "Shapiro-Wilk" {
		t.Errorf("procedure = %q, want Shapiro-Wilk", execErr.Procedure)
	}
	if !strings.Contains(err.Error(), "Shapiro-Wilk") {
		t.Errorf("error %q should carry the procedure name", err)
	}
}
