// Package validate gates analysis requests before any computation runs.
// Dispatch is only ever attempted on an OK verdict; everything here is
// side-effect-free and never returns an error.
package validate

import (
	"hypolab/domain/analysis"
	"hypolab/domain/catalog"
	"hypolab/domain/dataset"
)

// Validate checks a (test, variable, group) request against the catalog and
// the dataset. Checks run in order: the test is known, the variable column
// exists, a grouped test has a real grouping column, and the variable's
// declared type matches what the test requires. The type check rejects
// mismatches (e.g. Chi-cuadrado on a quantitative variable) before the
// procedure can fail unpredictably on them.
func Validate(req analysis.Request, ds *dataset.Dataset) analysis.ValidationResult {
	if ds == nil {
		return analysis.Invalid("no dataset loaded")
	}

	spec, err := catalog.Describe(req.Test)
	if err != nil {
		return analysis.Invalidf("unknown test %q", string(req.Test))
	}

	if req.Variable == "" {
		return analysis.Invalid("no variable selected")
	}
	varCol, ok := ds.Column(req.Variable)
	if !ok {
		return analysis.Invalidf("variable %q is not a column of the dataset", req.Variable)
	}

	if spec.RequiresGroup() {
		if req.Group == "" || req.Group == dataset.GroupNone {
			return analysis.Invalidf("%s requires a grouping variable", spec.DisplayName)
		}
		if !ds.HasColumn(req.Group) {
			return analysis.Invalidf("grouping variable %q is not a column of the dataset", req.Group)
		}
		if req.Group == req.Variable && spec.ID != catalog.TestChiSquare {
			return analysis.Invalid("variable and grouping variable must differ")
		}
	}

	if varCol.Type != spec.VariableType {
		return analysis.Invalidf("%s requires a %s variable, but %q is declared %s",
			spec.DisplayName, spec.VariableType, req.Variable, varCol.Type)
	}

	return analysis.Valid()
}
