package app

import (
	"context"

	"hypolab/domain/analysis"
	"hypolab/domain/catalog"
	"hypolab/domain/core"
	"hypolab/domain/dataset"
	"hypolab/internal"
	"hypolab/internal/describe"
	"hypolab/internal/dispatch"
	"hypolab/internal/interpret"
	"hypolab/internal/session"
	"hypolab/internal/validate"
)

// AnalysisService orchestrates the analysis flow: validate -> dispatch ->
// interpret, over session-scoped state. It is the single entry point both
// servers and the CLI share.
type AnalysisService struct {
	store *session.Store
	alpha float64
	log   *internal.Logger
}

// NewAnalysisService creates the service with a significance threshold
func NewAnalysisService(store *session.Store, alpha float64, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		store: store,
		alpha: alpha,
		log:   logger.Named("analysis"),
	}
}

// RunOutcome is what one run (or refresh) event produces for display.
// Exactly one of three shapes comes back: a validation failure (Validation
// not OK, nothing else set), an execution failure (ExecutionError set), or a
// result with its display-time verdict.
type RunOutcome struct {
	Validation     analysis.ValidationResult `json:"validation"`
	Result         *analysis.TestResult      `json:"result,omitempty"`
	Verdict        *analysis.Verdict         `json:"verdict,omitempty"`
	ExecutionError string                    `json:"execution_error,omitempty"`
}

// Alpha returns the configured significance threshold
func (s *AnalysisService) Alpha() float64 {
	return s.alpha
}

// Catalog returns the test catalog in display order
func (s *AnalysisService) Catalog() []catalog.TestSpec {
	return catalog.All()
}

// CreateSession starts a new Idle session
func (s *AnalysisService) CreateSession() *session.Session {
	sess := s.store.Create()
	s.log.Info("session %s created", sess.ID())
	return sess
}

// Session looks up an existing session
func (s *AnalysisService) Session(id core.SessionID) (*session.Session, error) {
	return s.store.Get(id)
}

// LoadDataset installs a dataset into the session and profiles every column
// concurrently so later renders are lookups, not computations.
func (s *AnalysisService) LoadDataset(ctx context.Context, id core.SessionID, ds *dataset.Dataset) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	profile, err := describe.Dataset(ctx, ds)
	if err != nil {
		return err
	}
	sess.LoadDataset(ds, profile)
	s.log.Info("session %s loaded dataset (%d columns, %d rows)", id, len(ds.Names()), ds.Rows())
	return nil
}

// Configure records a selection change. No run happens here; re-evaluation
// always requires an explicit run event.
func (s *AnalysisService) Configure(id core.SessionID, req analysis.Request) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	return sess.Configure(req)
}

// Run executes the session's current selection. Validation failures block
// dispatch entirely and leave the session in Configured; execution failures
// are converted to a user-visible message at this boundary.
func (s *AnalysisService) Run(id core.SessionID) (*RunOutcome, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	req, ds, err := sess.BeginRun()
	if err != nil {
		return nil, err
	}

	if verdict := validate.Validate(req, ds); !verdict.OK {
		s.log.Debug("session %s run blocked: %s", id, verdict.Reason)
		return &RunOutcome{Validation: verdict}, nil
	}

	result, err := dispatch.Run(req, ds)
	if err != nil {
		if dispatch.IsTestExecutionError(err) {
			s.log.Warn("session %s test execution failed: %v", id, err)
			return &RunOutcome{
				Validation:     analysis.Valid(),
				ExecutionError: err.Error(),
			}, nil
		}
		return nil, err
	}

	sess.CompleteRun(result)
	s.log.Info("session %s evaluated %s: p=%.4f n=%d", id, result.TestID, result.PValue, result.SampleSize)
	return s.render(result)
}

// Refresh re-renders the last result without recomputation. The verdict is
// still derived fresh, so a changed alpha is reflected immediately.
func (s *AnalysisService) Refresh(id core.SessionID) (*RunOutcome, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	result, err := sess.LastResult()
	if err != nil {
		return nil, err
	}
	return s.render(result)
}

func (s *AnalysisService) render(result *analysis.TestResult) (*RunOutcome, error) {
	verdict, err := interpret.Verdict(result, s.alpha)
	if err != nil {
		return nil, err
	}
	return &RunOutcome{
		Validation: analysis.Valid(),
		Result:     result,
		Verdict:    &verdict,
	}, nil
}
