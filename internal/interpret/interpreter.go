// Package interpret turns a test's p-value into a verdict under a
// significance threshold. Everything here is pure and deterministic: the
// verdict is recomputed on every render, never stored.
package interpret

import (
	"fmt"

	"hypolab/domain/analysis"
	"hypolab/domain/catalog"
)

// DefaultAlpha is the significance threshold used when none is configured
const DefaultAlpha = 0.05

// verdictTexts holds the two fixed strings per test: index 0 is the
// fail-to-reject reading, index 1 the rejection. Exactly one of them is shown
// for any p-value; failing to reject requires strictly p > alpha, so the
// boundary p == alpha rejects.
var verdictTexts = map[catalog.TestID][2]string{
	catalog.TestShapiroWilk: {
		"Shapiro-Wilk fails to reject normality: the sample is compatible with a normal distribution.",
		"Shapiro-Wilk rejects normality: the sample departs significantly from a normal distribution.",
	},
	catalog.TestJarqueBera: {
		"Jarque-Bera fails to reject normality: skewness and kurtosis are compatible with a normal distribution.",
		"Jarque-Bera rejects normality: skewness or kurtosis depart significantly from a normal distribution.",
	},
	catalog.TestLilliefors: {
		"Lilliefors fails to reject normality: the sample is compatible with a normal distribution.",
		"Lilliefors rejects normality: the sample departs significantly from a normal distribution.",
	},
	catalog.TestAndersonDarling: {
		"Anderson-Darling fails to reject normality: the sample is compatible with a normal distribution.",
		"Anderson-Darling rejects normality: the sample departs significantly from a normal distribution, particularly in the tails.",
	},
	catalog.TestKolmogorovSmirnov: {
		"Kolmogorov-Smirnov fails to reject normality: the sample is compatible with the fitted normal distribution.",
		"Kolmogorov-Smirnov rejects normality: the sample departs significantly from the fitted normal distribution.",
	},
	catalog.TestTStudent: {
		"t-Student fails to reject equal means: no significant difference between the two group means.",
		"t-Student rejects equal means: the two group means differ significantly.",
	},
	catalog.TestANOVA: {
		"ANOVA fails to reject equal means: no significant differences among the group means.",
		"ANOVA rejects equal means: at least one group mean differs significantly from the others.",
	},
	catalog.TestChiSquare: {
		"Chi-cuadrado fails to reject independence: no significant association between the two variables.",
		"Chi-cuadrado rejects independence: the two variables are significantly associated.",
	},
}

// Interpret maps (testID, pValue, alpha) to the test's verdict string.
// pValue > alpha reads as failing to reject H0; otherwise H0 is rejected.
// The catalog stays authoritative for which ids exist; a test without a
// tailored phrasing falls back to its catalog null hypothesis.
func Interpret(testID catalog.TestID, pValue, alpha float64) (string, error) {
	spec, err := catalog.Describe(testID)
	if err != nil {
		return "", err
	}
	if texts, ok := verdictTexts[testID]; ok {
		if pValue > alpha {
			return texts[0], nil
		}
		return texts[1], nil
	}
	if pValue > alpha {
		return fmt.Sprintf("%s fails to reject the null hypothesis that %s.", spec.DisplayName, spec.NullHypothesis), nil
	}
	return fmt.Sprintf("%s rejects the null hypothesis that %s.", spec.DisplayName, spec.NullHypothesis), nil
}

// Verdict builds the full display-time verdict for a result
func Verdict(result *analysis.TestResult, alpha float64) (analysis.Verdict, error) {
	text, err := Interpret(result.TestID, result.PValue, alpha)
	if err != nil {
		return analysis.Verdict{}, err
	}
	return analysis.Verdict{
		TestID:   result.TestID,
		PValue:   result.PValue,
		Alpha:    alpha,
		RejectH0: result.PValue <= alpha,
		Text:     text,
	}, nil
}
