package procedures

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// JarqueBera tests normality through the sample's skewness and excess
// kurtosis. JB = n/6 * (S^2 + K^2/4), asymptotically chi-squared with 2
// degrees of freedom.
func JarqueBera(sample []float64) (Result, error) {
	const proc = "Jarque-Bera"
	n := len(sample)
	if n < 4 {
		return Result{}, execErrorf(proc, "requires at least 4 observations, got %d", n)
	}

	mean, sd := fitMoments(sample)
	if sd == 0 {
		return Result{}, execErrorf(proc, "sample has zero variance")
	}

	// Population moments, as the classical JB statistic uses
	m2 := centralMoment(sample, mean, 2)
	m3 := centralMoment(sample, mean, 3)
	m4 := centralMoment(sample, mean, 4)

	skew := m3 / math.Pow(m2, 1.5)
	exKurt := m4/(m2*m2) - 3.0

	jb := (float64(n) / 6.0) * (skew*skew + (exKurt*exKurt)/4.0)
	p := distuv.ChiSquared{K: 2}.Survival(jb)

	return Result{
		Statistic: jb,
		PValue:    clampPValue(p),
		N:         n,
		Detail: map[string]interface{}{
			"skewness":        skew,
			"excess_kurtosis": exKurt,
		},
	}, nil
}

// Lilliefors is the Kolmogorov-Smirnov normality statistic corrected for the
// fact that the reference normal's mean and standard deviation are estimated
// from the sample. The p-value uses the Dallal-Wilkinson approximation, which
// is sharpest below 0.1 and clamped elsewhere.
func Lilliefors(sample []float64) (Result, error) {
	const proc = "Lilliefors"
	n := len(sample)
	if n < 5 {
		return Result{}, execErrorf(proc, "requires at least 5 observations, got %d", n)
	}

	d, err := ksFittedStatistic(proc, sample)
	if err != nil {
		return Result{}, err
	}

	// Dallal-Wilkinson (1986)
	nd := float64(n)
	dd := d
	if n > 100 {
		dd = d * math.Pow(nd/100.0, 0.49)
		nd = 100
	}
	p := math.Exp(-7.01256*dd*dd*(nd+2.78019) +
		2.99587*dd*math.Sqrt(nd+2.78019) -
		0.122119 + 0.974598/math.Sqrt(nd) + 1.67997/nd)

	return Result{
		Statistic: d,
		PValue:    clampPValue(p),
		N:         n,
		Detail: map[string]interface{}{
			"d": d,
		},
	}, nil
}

// AndersonDarling tests normality with the A^2 statistic, which weights the
// distribution tails more heavily than Kolmogorov-Smirnov-type statistics.
// Uses the small-sample correction and the D'Agostino-Stephens p-value
// formula for the both-parameters-estimated case.
func AndersonDarling(sample []float64) (Result, error) {
	const proc = "Anderson-Darling"
	n := len(sample)
	if n < 8 {
		return Result{}, execErrorf(proc, "requires at least 8 observations, got %d", n)
	}

	mean, sd := fitMoments(sample)
	if sd == 0 {
		return Result{}, execErrorf(proc, "sample has zero variance")
	}

	x := sortedCopy(sample)
	norm := distuv.UnitNormal
	fn := float64(n)

	// Clamp CDF values away from 0 and 1 so the logs stay finite
	const eps = 1e-15
	z := make([]float64, n)
	for i, v := range x {
		c := norm.CDF((v - mean) / sd)
		if c < eps {
			c = eps
		}
		if c > 1-eps {
			c = 1 - eps
		}
		z[i] = c
	}

	a2 := -fn
	for i := 0; i < n; i++ {
		a2 -= (2.0*float64(i+1) - 1.0) / fn * (math.Log(z[i]) + math.Log(1-z[n-1-i]))
	}

	// Small-sample correction for estimated parameters
	aStar := a2 * (1 + 0.75/fn + 2.25/(fn*fn))

	var p float64
	switch {
	case aStar >= 0.6:
		p = math.Exp(1.2937 - 5.709*aStar + 0.0186*aStar*aStar)
	case aStar >= 0.34:
		p = math.Exp(0.9177 - 4.279*aStar - 1.38*aStar*aStar)
	case aStar >= 0.2:
		p = 1 - math.Exp(-8.318+42.796*aStar-59.938*aStar*aStar)
	default:
		p = 1 - math.Exp(-13.436+101.14*aStar-223.73*aStar*aStar)
	}

	return Result{
		Statistic: a2,
		PValue:    clampPValue(p),
		N:         n,
		Detail: map[string]interface{}{
			"a2":           a2,
			"a2_corrected": aStar,
		},
	}, nil
}

// KolmogorovSmirnov compares the empirical distribution against a normal
// distribution whose mean and standard deviation are estimated from the same
// sample, then applies the standard (independent-reference) Kolmogorov
// p-value. Estimating the reference from the sample makes the test
// conservative; that behavior is intentional here, with Lilliefors as the
// corrected variant in the same catalog.
func KolmogorovSmirnov(sample []float64) (Result, error) {
	const proc = "Kolmogorov-Smirnov"
	n := len(sample)
	if n < 3 {
		return Result{}, execErrorf(proc, "requires at least 3 observations, got %d", n)
	}

	d, err := ksFittedStatistic(proc, sample)
	if err != nil {
		return Result{}, err
	}

	// Stephens' scaling of the asymptotic Kolmogorov distribution
	sn := math.Sqrt(float64(n))
	lambda := (sn + 0.12 + 0.11/sn) * d
	p := kolmogorovSurvival(lambda)

	return Result{
		Statistic: d,
		PValue:    clampPValue(p),
		N:         n,
		Detail: map[string]interface{}{
			"d": d,
		},
	}, nil
}

// ksFittedStatistic computes the KS distance between the empirical CDF and a
// normal fitted to the sample's own mean and standard deviation.
func ksFittedStatistic(proc string, sample []float64) (float64, error) {
	mean, sd := fitMoments(sample)
	if sd == 0 {
		return 0, execErrorf(proc, "sample has zero variance")
	}

	x := sortedCopy(sample)
	n := float64(len(x))
	norm := distuv.UnitNormal

	d := 0.0
	for i, v := range x {
		f := norm.CDF((v - mean) / sd)
		dPlus := (float64(i)+1)/n - f
		dMinus := f - float64(i)/n
		if dPlus > d {
			d = dPlus
		}
		if dMinus > d {
			d = dMinus
		}
	}
	return d, nil
}

// kolmogorovSurvival evaluates the asymptotic Kolmogorov tail probability
// 2 * sum_{j>=1} (-1)^{j-1} exp(-2 j^2 lambda^2)
func kolmogorovSurvival(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}
	sum := 0.0
	sign := 1.0
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(-2.0*float64(j*j)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}
	return clampPValue(2 * sum)
}
