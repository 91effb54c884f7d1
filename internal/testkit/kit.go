// Package testkit generates deterministic synthetic datasets for tests:
// normal and skewed samples, grouped scores, and paired categorical columns.
package testkit

import (
	"math"
	"math/rand"
	"strconv"

	"hypolab/domain/dataset"
)

// NormalSample draws n values from N(mean, sd) with a fixed seed so tests
// see the same sample every run.
func NormalSample(n int, mean, sd float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + sd*rng.NormFloat64()
	}
	return out
}

// SkewedSample draws n values from an exponential-like distribution, heavily
// right-skewed so normality tests have something to reject.
func SkewedSample(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.ExpFloat64() * rng.ExpFloat64() * 10
	}
	return out
}

// FormatSample renders a float sample as raw dataset cells
func FormatSample(sample []float64) []string {
	out := make([]string, len(sample))
	for i, v := range sample {
		out[i] = strconv.FormatFloat(v, 'f', 6, 64)
	}
	return out
}

// QuantColumn builds a quantitative column from a float sample
func QuantColumn(name string, sample []float64) dataset.Column {
	return dataset.Column{Name: name, Type: dataset.TypeQuantitative, Raw: FormatSample(sample)}
}

// QualColumn builds a qualitative column from raw level labels
func QualColumn(name string, levels []string) dataset.Column {
	return dataset.Column{Name: name, Type: dataset.TypeQualitative, Raw: levels}
}

// GroupedScores builds a dataset with a quantitative "score" column and a
// qualitative "group" column. Each entry in means defines one group level
// ("g1", "g2", ...) of size n with the given mean and unit spread.
func GroupedScores(n int, means []float64, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))

	var scores []string
	var groups []string
	for g, mean := range means {
		label := "g" + strconv.Itoa(g+1)
		for i := 0; i < n; i++ {
			v := mean + rng.NormFloat64()
			scores = append(scores, strconv.FormatFloat(v, 'f', 6, 64))
			groups = append(groups, label)
		}
	}

	ds, err := dataset.New([]dataset.Column{
		{Name: "score", Type: dataset.TypeQuantitative, Raw: scores},
		{Name: "group", Type: dataset.TypeQualitative, Raw: groups},
	})
	if err != nil {
		panic(err)
	}
	return ds
}

// CategoricalPair builds a dataset with two qualitative columns. When
// associated is true the second column tracks the first, giving chi-square a
// dependence to find; otherwise levels are drawn independently.
func CategoricalPair(n int, aLevels, bLevels []string, associated bool, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))

	a := make([]string, n)
	b := make([]string, n)
	for i := 0; i < n; i++ {
		ai := rng.Intn(len(aLevels))
		a[i] = aLevels[ai]
		if associated && rng.Float64() < 0.8 {
			b[i] = bLevels[ai%len(bLevels)]
		} else {
			b[i] = bLevels[rng.Intn(len(bLevels))]
		}
	}

	ds, err := dataset.New([]dataset.Column{
		{Name: "a", Type: dataset.TypeQualitative, Raw: a},
		{Name: "b", Type: dataset.TypeQualitative, Raw: b},
	})
	if err != nil {
		panic(err)
	}
	return ds
}

// UniformSample draws n values uniformly over [lo, hi)
func UniformSample(n int, lo, hi float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*rng.Float64()
	}
	return out
}

// Linspace returns n evenly spaced values from lo to hi inclusive. Useful
// when a test needs a sample with no randomness at all.
func Linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// RoundTo truncates a float to the given number of decimals. Keeps fixture
// expectations readable in test tables.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
