package analysis

import (
	"fmt"

	"hypolab/domain/catalog"
	"hypolab/domain/core"
)

// Request is one (variable, group, test) selection against the loaded
// dataset. Group is the GroupNone sentinel when no grouping variable applies.
type Request struct {
	Variable string         `json:"variable"`
	Group    string         `json:"group"`
	Test     catalog.TestID `json:"test"`
}

// ValidationResult is the validator's verdict on a Request. OK guards
// dispatch: a request is only ever executed after OK is true.
type ValidationResult struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Valid returns the passing verdict
func Valid() ValidationResult {
	return ValidationResult{OK: true}
}

// Invalid returns a failing verdict with a user-facing reason
func Invalid(reason string) ValidationResult {
	return ValidationResult{OK: false, Reason: reason}
}

// Invalidf returns a failing verdict with a formatted reason
func Invalidf(format string, args ...interface{}) ValidationResult {
	return Invalid(fmt.Sprintf(format, args...))
}

// ContingencyTable is the cross-tabulation built for the chi-square test.
// RowLevels index the variable, ColLevels the group, Counts[i][j] the cell.
type ContingencyTable struct {
	RowLevels []string `json:"row_levels"`
	ColLevels []string `json:"col_levels"`
	Counts    [][]int  `json:"counts"`
}

// Total returns the grand total of the table
func (t ContingencyTable) Total() int {
	total := 0
	for _, row := range t.Counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// TestResult is the normalized outcome of one executed test.
// INVARIANTS:
// - PValue always present, in [0.0, 1.0]
// - SampleSize > 0
// - Raw preserves the procedure's full output for verbatim display
// Immutable after creation; a new run supersedes it, never mutates it.
type TestResult struct {
	RunID      core.RunID             `json:"run_id"`
	TestID     catalog.TestID         `json:"test_id"`
	PValue     float64                `json:"p_value"`
	Statistic  float64                `json:"statistic"`
	SampleSize int                    `json:"sample_size"`
	Table      *ContingencyTable      `json:"table,omitempty"`
	Raw        map[string]interface{} `json:"raw"`
	ComputedAt core.Timestamp         `json:"computed_at"`
}

// NewTestResult creates a test result with invariant validation
func NewTestResult(testID catalog.TestID, pValue, statistic float64, sampleSize int, raw map[string]interface{}) (*TestResult, error) {
	if sampleSize <= 0 {
		return nil, fmt.Errorf("sample size must be > 0, got %d", sampleSize)
	}
	if pValue < 0.0 || pValue > 1.0 {
		return nil, fmt.Errorf("p-value must be in [0.0, 1.0], got %f", pValue)
	}
	return &TestResult{
		RunID:      core.RunID(core.NewID()),
		TestID:     testID,
		PValue:     pValue,
		Statistic:  statistic,
		SampleSize: sampleSize,
		Raw:        raw,
		ComputedAt: core.Now(),
	}, nil
}

// Verdict is the display-time reading of a TestResult against a threshold.
// It is derived on every render and never stored, so it always reflects the
// latest result and alpha.
type Verdict struct {
	TestID   catalog.TestID `json:"test_id"`
	PValue   float64        `json:"p_value"`
	Alpha    float64        `json:"alpha"`
	RejectH0 bool           `json:"reject_h0"`
	Text     string         `json:"text"`
}

// FlowState is the whole-session state machine governing when dispatch is
// legal. Transitions: load (Idle->Loaded), select (->Configured, discarding
// any prior result), run (Configured->Evaluated on validator OK).
type FlowState string

const (
	StateIdle       FlowState = "idle"
	StateLoaded     FlowState = "loaded"
	StateConfigured FlowState = "configured"
	StateEvaluated  FlowState = "evaluated"
)
