// Package procedures implements the underlying statistical procedures the
// dispatcher routes to. Each procedure returns a Result with the statistic,
// the p-value and a Detail map preserving the full output for display, or an
// *ExecutionError when the input is degenerate for that procedure.
package procedures

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Result is the uniform output shape of every procedure
type Result struct {
	Statistic float64                `json:"statistic"`
	PValue    float64                `json:"p_value"`
	N         int                    `json:"n"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
}

// ExecutionError means the procedure rejected its input (too few
// observations, zero variance, degenerate table). The message is surfaced
// verbatim to the user; it is not a bug.
type ExecutionError struct {
	Procedure string
	Message   string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Procedure, e.Message)
}

func execErrorf(procedure, format string, args ...interface{}) *ExecutionError {
	return &ExecutionError{Procedure: procedure, Message: fmt.Sprintf(format, args...)}
}

// sortedCopy returns the sample sorted ascending without mutating the input
func sortedCopy(sample []float64) []float64 {
	x := make([]float64, len(sample))
	copy(x, sample)
	sort.Float64s(x)
	return x
}

// fitMoments returns the sample mean and the sample (n-1) standard deviation
func fitMoments(sample []float64) (mean, sd float64) {
	mean = stat.Mean(sample, nil)
	sd = stat.StdDev(sample, nil)
	return mean, sd
}

// centralMoment computes the k-th central moment with the population (1/n)
// denominator, which is what the moment-based normality statistics use.
func centralMoment(sample []float64, mean float64, k int) float64 {
	if len(sample) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range sample {
		sum += math.Pow(v-mean, float64(k))
	}
	return sum / float64(len(sample))
}

func clampPValue(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
