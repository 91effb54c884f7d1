package procedures

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ShapiroWilk tests a quantitative sample for normality using the W
// statistic with Royston's AS R94 weights and p-value normalization,
// valid for 3 <= n <= 5000.
func ShapiroWilk(sample []float64) (Result, error) {
	const proc = "Shapiro-Wilk"
	n := len(sample)
	if n < 3 {
		return Result{}, execErrorf(proc, "requires at least 3 observations, got %d", n)
	}
	if n > 5000 {
		return Result{}, execErrorf(proc, "supports at most 5000 observations, got %d", n)
	}

	x := sortedCopy(sample)
	if x[0] == x[n-1] {
		return Result{}, execErrorf(proc, "sample has zero variance")
	}

	w := shapiroW(x)
	p := shapiroPValue(w, n)

	return Result{
		Statistic: w,
		PValue:    clampPValue(p),
		N:         n,
		Detail: map[string]interface{}{
			"w": w,
		},
	}, nil
}

// shapiroW computes the W statistic from the sorted sample
func shapiroW(x []float64) float64 {
	n := len(x)
	norm := distuv.UnitNormal

	// Expected values of normal order statistics (Blom approximation)
	m := make([]float64, n)
	ssm := 0.0
	for i := 0; i < n; i++ {
		m[i] = norm.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
		ssm += m[i] * m[i]
	}

	a := make([]float64, n)
	u := 1.0 / math.Sqrt(float64(n))

	switch {
	case n == 3:
		a[0] = -math.Sqrt(0.5)
		a[2] = math.Sqrt(0.5)
	case n <= 5:
		an := m[n-1]/math.Sqrt(ssm) +
			u*(0.221157+u*(-0.147981+u*(-2.071190+u*(4.434685+u*(-2.706056)))))
		phi := (ssm - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
		a[n-1] = an
		a[0] = -an
		for i := 1; i < n-1; i++ {
			a[i] = m[i] / math.Sqrt(phi)
		}
	default:
		an := m[n-1]/math.Sqrt(ssm) +
			u*(0.221157+u*(-0.147981+u*(-2.071190+u*(4.434685+u*(-2.706056)))))
		an1 := m[n-2]/math.Sqrt(ssm) +
			u*(0.042981+u*(-0.293762+u*(-1.752461+u*(5.682633+u*(-3.582633)))))
		phi := (ssm - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
		a[n-1] = an
		a[n-2] = an1
		a[0] = -an
		a[1] = -an1
		for i := 2; i < n-2; i++ {
			a[i] = m[i] / math.Sqrt(phi)
		}
	}

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	num := 0.0
	den := 0.0
	for i, v := range x {
		num += a[i] * v
		den += (v - mean) * (v - mean)
	}
	return (num * num) / den
}

// shapiroPValue maps W to a p-value via Royston's normalizing transforms
func shapiroPValue(w float64, n int) float64 {
	switch {
	case n == 3:
		// Exact for n = 3
		p := (6.0 / math.Pi) * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return clampPValue(p)
	case n <= 11:
		fn := float64(n)
		gamma := -2.273 + 0.459*fn
		if gamma <= math.Log(1-w) {
			return 0
		}
		lw := -math.Log(gamma - math.Log(1-w))
		mu := 0.5440 - 0.39978*fn + 0.025054*fn*fn - 0.0006714*fn*fn*fn
		sigma := math.Exp(1.3822 - 0.77857*fn + 0.062767*fn*fn - 0.0020322*fn*fn*fn)
		z := (lw - mu) / sigma
		return distuv.UnitNormal.Survival(z)
	default:
		ln := math.Log(float64(n))
		lw := math.Log(1 - w)
		mu := -1.5861 - 0.31082*ln - 0.083751*ln*ln + 0.0038915*ln*ln*ln
		sigma := math.Exp(-0.4803 - 0.082676*ln + 0.0030302*ln*ln)
		z := (lw - mu) / sigma
		return distuv.UnitNormal.Survival(z)
	}
}
