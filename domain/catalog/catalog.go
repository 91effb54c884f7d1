package catalog

import (
	"hypolab/domain/core"
	"hypolab/domain/dataset"
)

// TestID identifies one of the supported hypothesis tests
type TestID string

const (
	TestShapiroWilk       TestID = "shapiro_wilk"
	TestJarqueBera        TestID = "jarque_bera"
	TestLilliefors        TestID = "lilliefors"
	TestAndersonDarling   TestID = "anderson_darling"
	TestKolmogorovSmirnov TestID = "kolmogorov_smirnov"
	TestTStudent          TestID = "t_student"
	TestANOVA             TestID = "anova"
	TestChiSquare         TestID = "chi_square"
)

// Arity describes how many variable roles a test requires
type Arity string

const (
	// AritySingle tests a single variable on its own
	AritySingle Arity = "single"
	// ArityTwoPlusGroups tests a variable partitioned by a grouping variable
	// with at least two levels
	ArityTwoPlusGroups Arity = "two_plus_groups"
)

// ChartFamily tells the plotting layer which chart fits a test's diagnostics.
// It is exposed as data so the mapping lives here, not in plotting code.
type ChartFamily string

const (
	ChartHistogram      ChartFamily = "histogram"
	ChartGroupedBoxplot ChartFamily = "grouped_boxplot"
	ChartBar            ChartFamily = "bar"
)

// TestSpec describes one catalog entry: what the test is called, what shape
// of input it needs, and the hypothesis it challenges. Description and
// NullHypothesis are markdown; the UI renders them as helper text.
type TestSpec struct {
	ID             TestID          `json:"id"`
	DisplayName    string          `json:"display_name"`
	Arity          Arity           `json:"arity"`
	VariableType   dataset.VarType `json:"variable_type"`
	Description    string          `json:"description"`
	NullHypothesis string          `json:"null_hypothesis"`
	ChartFamily    ChartFamily     `json:"chart_family"`
}

// RequiresGroup reports whether the test needs a grouping variable
func (s TestSpec) RequiresGroup() bool {
	return s.Arity == ArityTwoPlusGroups
}

// specs is the closed registry, in display order. Built once, never mutated.
var specs = []TestSpec{
	{
		ID:             TestShapiroWilk,
		DisplayName:    "Shapiro-Wilk",
		Arity:          AritySingle,
		VariableType:   dataset.TypeQuantitative,
		Description:    "Tests whether a quantitative sample comes from a normal distribution using the **W** statistic. Well suited to small and medium samples.",
		NullHypothesis: "the sample is normally distributed",
		ChartFamily:    ChartHistogram,
	},
	{
		ID:             TestJarqueBera,
		DisplayName:    "Jarque-Bera",
		Arity:          AritySingle,
		VariableType:   dataset.TypeQuantitative,
		Description:    "Tests normality through the sample's **skewness and kurtosis**; sensitive to asymmetry and heavy tails.",
		NullHypothesis: "the sample is normally distributed",
		ChartFamily:    ChartHistogram,
	},
	{
		ID:             TestLilliefors,
		DisplayName:    "Lilliefors",
		Arity:          AritySingle,
		VariableType:   dataset.TypeQuantitative,
		Description:    "Kolmogorov-Smirnov-type normality test **corrected for estimated parameters**: mean and standard deviation come from the sample itself.",
		NullHypothesis: "the sample is normally distributed",
		ChartFamily:    ChartHistogram,
	},
	{
		ID:             TestAndersonDarling,
		DisplayName:    "Anderson-Darling",
		Arity:          AritySingle,
		VariableType:   dataset.TypeQuantitative,
		Description:    "Normality test that weights the **tails of the distribution** more heavily than Kolmogorov-Smirnov-type tests.",
		NullHypothesis: "the sample is normally distributed",
		ChartFamily:    ChartHistogram,
	},
	{
		ID:             TestKolmogorovSmirnov,
		DisplayName:    "Kolmogorov-Smirnov",
		Arity:          AritySingle,
		VariableType:   dataset.TypeQuantitative,
		Description:    "Compares the empirical distribution against a normal distribution whose mean and standard deviation are **estimated from the same sample**. Without that correction the test is conservative; see Lilliefors for the corrected variant.",
		NullHypothesis: "the sample is normally distributed",
		ChartFamily:    ChartHistogram,
	},
	{
		ID:             TestTStudent,
		DisplayName:    "t-Student",
		Arity:          ArityTwoPlusGroups,
		VariableType:   dataset.TypeQuantitative,
		Description:    "Compares the **means of two groups** of a quantitative variable. The grouping variable is expected to have exactly two levels.",
		NullHypothesis: "the group means are equal",
		ChartFamily:    ChartGroupedBoxplot,
	},
	{
		ID:             TestANOVA,
		DisplayName:    "ANOVA",
		Arity:          ArityTwoPlusGroups,
		VariableType:   dataset.TypeQuantitative,
		Description:    "One-way analysis of variance: compares the **means across two or more groups** of a quantitative variable.",
		NullHypothesis: "all group means are equal",
		ChartFamily:    ChartGroupedBoxplot,
	},
	{
		ID:             TestChiSquare,
		DisplayName:    "Chi-cuadrado",
		Arity:          ArityTwoPlusGroups,
		VariableType:   dataset.TypeQualitative,
		Description:    "Tests the **independence of two qualitative variables** from their cross-tabulation (contingency table).",
		NullHypothesis: "the two variables are independent",
		ChartFamily:    ChartBar,
	},
}

// index is derived from specs at init; the registry itself stays a slice so
// All preserves display order.
var index = func() map[TestID]TestSpec {
	m := make(map[TestID]TestSpec, len(specs))
	for _, s := range specs {
		m[s.ID] = s
	}
	return m
}()

// Describe returns the spec for a test id, or ErrUnknownTest for an id
// outside the closed set of eight.
func Describe(id TestID) (TestSpec, error) {
	spec, ok := index[id]
	if !ok {
		return TestSpec{}, core.NewUnknownTestError(string(id))
	}
	return spec, nil
}

// All returns the catalog entries in display order
func All() []TestSpec {
	out := make([]TestSpec, len(specs))
	copy(out, specs)
	return out
}

// Parse converts a raw string into a TestID, accepting both ids and display
// names so the CLI and the UI can share one entry point.
func Parse(s string) (TestID, error) {
	if _, ok := index[TestID(s)]; ok {
		return TestID(s), nil
	}
	for _, spec := range specs {
		if spec.DisplayName == s {
			return spec.ID, nil
		}
	}
	return "", core.NewUnknownTestError(s)
}
