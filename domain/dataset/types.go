package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"hypolab/domain/core"
)

// VarType is the declared semantic type of a column. It is supplied by the
// user at load time, not inferred, and the validator holds tests to it.
type VarType string

const (
	TypeQuantitative VarType = "quantitative"
	TypeQualitative  VarType = "qualitative"
)

// GroupNone is the sentinel meaning "no grouping variable selected".
const GroupNone = "None"

// ParseVarType converts a user-supplied type string into a VarType
func ParseVarType(s string) (VarType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quantitative", "numeric", "cuantitativa":
		return TypeQuantitative, nil
	case "qualitative", "categorical", "cualitativa":
		return TypeQualitative, nil
	default:
		return "", fmt.Errorf("unknown variable type %q", s)
	}
}

// Column is one variable of the dataset. Raw holds the cell values in row
// order; the empty string marks a missing value.
type Column struct {
	Name string   `json:"name"`
	Type VarType  `json:"type"`
	Raw  []string `json:"raw"`
}

// MissingCount returns the number of missing cells
func (c Column) MissingCount() int {
	n := 0
	for _, v := range c.Raw {
		if v == "" {
			n++
		}
	}
	return n
}

// Numeric parses the non-missing cells as float64 in row order.
// A non-numeric cell in a column used quantitatively is a data error,
// not a missing value, so it fails rather than being dropped silently.
func (c Column) Numeric() ([]float64, error) {
	out := make([]float64, 0, len(c.Raw))
	for i, v := range c.Raw {
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q row %d value %q", core.ErrNotNumeric, c.Name, i+1, v)
		}
		out = append(out, f)
	}
	return out, nil
}

// Levels returns the distinct non-missing values in first-appearance order
func (c Column) Levels() []string {
	seen := make(map[string]bool)
	levels := []string{}
	for _, v := range c.Raw {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		levels = append(levels, v)
	}
	return levels
}

// Dataset is an immutable column-oriented view over uploaded tabular data.
// It is built once per upload and never mutated; a new upload supersedes it.
type Dataset struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New builds a Dataset, validating that column names are unique and all
// columns have the same row count.
func New(columns []Column) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("dataset must have at least one column")
	}
	index := make(map[string]int, len(columns))
	rows := len(columns[0].Raw)
	for i, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("column %d has empty name", i)
		}
		if _, dup := index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		if len(col.Raw) != rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, len(col.Raw), rows)
		}
		index[col.Name] = i
	}
	return &Dataset{columns: columns, index: index, rows: rows}, nil
}

// Column returns the named column
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// HasColumn reports whether the dataset contains the named column
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Names returns the column names in dataset order
func (d *Dataset) Names() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.Name
	}
	return names
}

// Columns returns all columns in dataset order
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// Rows returns the row count
func (d *Dataset) Rows() int {
	return d.rows
}

// GroupedNumeric partitions the variable column's numeric values by the group
// column's levels. Rows where either cell is missing are dropped. The returned
// level slice preserves first-appearance order so downstream procedures see a
// stable partition.
func (d *Dataset) GroupedNumeric(varName, groupName string) (map[string][]float64, []string, error) {
	varCol, ok := d.Column(varName)
	if !ok {
		return nil, nil, core.NewNotFoundError("column", varName)
	}
	groupCol, ok := d.Column(groupName)
	if !ok {
		return nil, nil, core.NewNotFoundError("column", groupName)
	}

	groups := make(map[string][]float64)
	levels := []string{}
	for i := 0; i < d.rows; i++ {
		g := groupCol.Raw[i]
		v := varCol.Raw[i]
		if g == "" || v == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: column %q row %d value %q", core.ErrNotNumeric, varName, i+1, v)
		}
		if _, seen := groups[g]; !seen {
			levels = append(levels, g)
		}
		groups[g] = append(groups[g], f)
	}
	return groups, levels, nil
}

// PairedLevels returns row-aligned (variable, group) level pairs for two
// qualitative columns, dropping rows where either cell is missing.
func (d *Dataset) PairedLevels(varName, groupName string) ([][2]string, error) {
	varCol, ok := d.Column(varName)
	if !ok {
		return nil, core.NewNotFoundError("column", varName)
	}
	groupCol, ok := d.Column(groupName)
	if !ok {
		return nil, core.NewNotFoundError("column", groupName)
	}

	pairs := make([][2]string, 0, d.rows)
	for i := 0; i < d.rows; i++ {
		v := varCol.Raw[i]
		g := groupCol.Raw[i]
		if v == "" || g == "" {
			continue
		}
		pairs = append(pairs, [2]string{v, g})
	}
	return pairs, nil
}
