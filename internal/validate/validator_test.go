package validate

import (
	"strings"
	"testing"

	"hypolab/domain/analysis"
	"hypolab/domain/catalog"
	"hypolab/domain/dataset"
)

func fixtureDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New([]dataset.Column{
		{Name: "score", Type: dataset.TypeQuantitative, Raw: []string{"1", "2", "3", "4"}},
		{Name: "group", Type: dataset.TypeQualitative, Raw: []string{"a", "a", "b", "b"}},
		{Name: "city", Type: dataset.TypeQualitative, Raw: []string{"x", "y", "x", "y"}},
	})
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	return ds
}

func TestValidate(t *testing.T) {
	ds := fixtureDataset(t)

	cases := []struct {
		name   string
		req    analysis.Request
		ok     bool
		reason string
	}{
		{
			name: "single test on quantitative variable",
			req:  analysis.Request{Variable: "score", Group: dataset.GroupNone, Test: catalog.TestShapiroWilk},
			ok:   true,
		},
		{
			name: "grouped test with valid group",
			req:  analysis.Request{Variable: "score", Group: "group", Test: catalog.TestTStudent},
			ok:   true,
		},
		{
			name: "chi-square on two qualitative columns",
			req:  analysis.Request{Variable: "city", Group: "group", Test: catalog.TestChiSquare},
			ok:   true,
		},
		{
			name: "chi-square accepts variable equal to group",
			req:  analysis.Request{Variable: "city", Group: "city", Test: catalog.TestChiSquare},
			ok:   true,
		},
		{
			name:   "unknown test",
			req:    analysis.Request{Variable: "score", Group: dataset.GroupNone, Test: "mann_whitney"},
			reason: "unknown test",
		},
		{
			name:   "no variable selected",
			req:    analysis.Request{Variable: "", Group: dataset.GroupNone, Test: catalog.TestShapiroWilk},
			reason: "no variable selected",
		},
		{
			name:   "variable not in dataset",
			req:    analysis.Request{Variable: "height", Group: dataset.GroupNone, Test: catalog.TestShapiroWilk},
			reason: "not a column",
		},
		{
			name:   "grouped test without group",
			req:    analysis.Request{Variable: "score", Group: dataset.GroupNone, Test: catalog.TestANOVA},
			reason: "requires a grouping variable",
		},
		{
			name:   "group not in dataset",
			req:    analysis.Request{Variable: "score", Group: "region", Test: catalog.TestANOVA},
			reason: "not a column",
		},
		{
			name:   "variable equals group",
			req:    analysis.Request{Variable: "score", Group: "score", Test: catalog.TestTStudent},
			reason: "must differ",
		},
		{
			name:   "normality test on qualitative variable",
			req:    analysis.Request{Variable: "city", Group: dataset.GroupNone, Test: catalog.TestLilliefors},
			reason: "requires a quantitative variable",
		},
		{
			name:   "chi-square on quantitative variable",
			req:    analysis.Request{Variable: "score", Group: "group", Test: catalog.TestChiSquare},
			reason: "requires a qualitative variable",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Validate(c.req, ds)
			if got.OK != c.ok {
				t.Fatalf("OK = %v, want %v (reason %q)", got.OK, c.ok, got.Reason)
			}
			if !c.ok && !strings.Contains(got.Reason, c.reason) {
				t.Errorf("reason %q does not contain %q", got.Reason, c.reason)
			}
		})
	}

	t.Run("nil dataset", func(t *testing.T) {
		got := Validate(analysis.Request{Variable: "score", Test: catalog.TestShapiroWilk}, nil)
		if got.OK {
			t.Fatal("expected invalid on nil dataset")
		}
	})
}
