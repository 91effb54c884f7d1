// Package session holds the per-session analysis state machine:
// Idle -> Loaded -> Configured -> Evaluated. Each session is fully isolated;
// the only process-wide state anywhere in the core is the read-only catalog.
package session

import (
	"sync"

	"hypolab/domain/analysis"
	"hypolab/domain/core"
	"hypolab/domain/dataset"
	"hypolab/internal/describe"
)

// Session is one user's analysis state. All mutating methods enforce the
// legal transitions; illegal ones return a domain error instead of changing
// state.
type Session struct {
	mu sync.RWMutex

	id        core.SessionID
	state     analysis.FlowState
	ds        *dataset.Dataset
	profile   []describe.ColumnSummary
	request   analysis.Request
	result    *analysis.TestResult
	createdAt core.Timestamp
}

// New creates an Idle session
func New() *Session {
	return &Session{
		id:        core.SessionID(core.NewID()),
		state:     analysis.StateIdle,
		createdAt: core.Now(),
	}
}

// ID returns the session identifier
func (s *Session) ID() core.SessionID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// State returns the current flow state
func (s *Session) State() analysis.FlowState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dataset returns the loaded dataset, or nil when Idle
func (s *Session) Dataset() *dataset.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

// Profile returns the per-column summaries computed at load time
func (s *Session) Profile() []describe.ColumnSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Request returns the current selection
func (s *Session) Request() analysis.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.request
}

// LoadDataset installs a dataset and its profile, entering Loaded. Any prior
// selection and result are discarded: a new dataset invalidates both.
func (s *Session) LoadDataset(ds *dataset.Dataset, profile []describe.ColumnSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
	s.profile = profile
	s.request = analysis.Request{}
	s.result = nil
	s.state = analysis.StateLoaded
}

// Configure records a selection, entering Configured and discarding any
// prior result. Selection changes never trigger a run on their own.
func (s *Session) Configure(req analysis.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == analysis.StateIdle {
		return core.ErrDatasetNotLoaded
	}
	s.request = req
	s.result = nil
	s.state = analysis.StateConfigured
	return nil
}

// BeginRun returns the pieces a run needs, or an error when the session is
// not in a runnable state. The caller validates and dispatches, then commits
// with CompleteRun; a failed or invalid run leaves the state untouched.
func (s *Session) BeginRun() (analysis.Request, *dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.state {
	case analysis.StateIdle:
		return analysis.Request{}, nil, core.ErrDatasetNotLoaded
	case analysis.StateLoaded:
		return analysis.Request{}, nil, core.ErrNotConfigured
	}
	return s.request, s.ds, nil
}

// CompleteRun installs a fresh result, entering Evaluated. The previous
// result is superseded, not mutated.
func (s *Session) CompleteRun(result *analysis.TestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.state = analysis.StateEvaluated
}

// LastResult returns the last computed result for re-rendering (the refresh
// event). It never recomputes; refreshing without a result is an error.
func (s *Session) LastResult() (*analysis.TestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != analysis.StateEvaluated || s.result == nil {
		return nil, core.ErrNoResult
	}
	return s.result, nil
}
