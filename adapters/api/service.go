// Package api exposes the analysis flow as a headless JSON API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hypolab/app"
	"hypolab/domain/analysis"
	"hypolab/domain/catalog"
	"hypolab/domain/core"
	"hypolab/domain/dataset"
	"hypolab/internal"
	apperrors "hypolab/internal/errors"
)

// Service is the JSON API over the shared analysis service
type Service struct {
	router *chi.Mux
	svc    *app.AnalysisService
	log    *internal.Logger
}

// NewService wires the routes
func NewService(svc *app.AnalysisService, logger *internal.Logger) *Service {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Service{
		router: chi.NewRouter(),
		svc:    svc,
		log:    logger.Named("api"),
	}
	s.setupRoutes()
	return s
}

// Router returns the HTTP handler
func (s *Service) Router() http.Handler {
	return s.router
}

func (s *Service) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/catalog", s.handleCatalog)
	s.router.Post("/sessions", s.handleCreateSession)
	s.router.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.handleSessionState)
		r.Post("/dataset", s.handleLoadDataset)
		r.Put("/selection", s.handleSelection)
		r.Post("/run", s.handleRun)
		r.Post("/refresh", s.handleRefresh)
	})
}

// handleCatalog serves the test catalog for selectors and helper text
func (s *Service) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tests": s.svc.Catalog(),
		"alpha": s.svc.Alpha(),
	})
}

func (s *Service) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.svc.CreateSession()
	writeJSON(w, http.StatusCreated, map[string]string{
		"session_id": sess.ID().String(),
		"state":      string(sess.State()),
	})
}

func (s *Service) handleSessionState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Session(sessionID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	view := map[string]interface{}{
		"session_id": sess.ID().String(),
		"state":      string(sess.State()),
		"selection":  sess.Request(),
	}
	if ds := sess.Dataset(); ds != nil {
		view["columns"] = ds.Names()
		view["rows"] = ds.Rows()
		view["profile"] = sess.Profile()
	}
	writeJSON(w, http.StatusOK, view)
}

// columnPayload is one uploaded column: values in row order, "" for missing
type columnPayload struct {
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Values []string `json:"values"`
}

type datasetPayload struct {
	Columns []columnPayload `json:"columns"`
}

func (s *Service) handleLoadDataset(w http.ResponseWriter, r *http.Request) {
	var payload datasetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	columns := make([]dataset.Column, len(payload.Columns))
	for i, c := range payload.Columns {
		varType, err := dataset.ParseVarType(c.Type)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		columns[i] = dataset.Column{Name: c.Name, Type: varType, Raw: c.Values}
	}

	ds, err := dataset.New(columns)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := s.svc.LoadDataset(r.Context(), sessionID(r), ds); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": string(analysis.StateLoaded)})
}

type selectionPayload struct {
	Variable string `json:"variable"`
	Group    string `json:"group"`
	Test     string `json:"test"`
}

func (s *Service) handleSelection(w http.ResponseWriter, r *http.Request) {
	var payload selectionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if payload.Group == "" {
		payload.Group = dataset.GroupNone
	}

	req := analysis.Request{
		Variable: payload.Variable,
		Group:    payload.Group,
		Test:     catalog.TestID(payload.Test),
	}
	if err := s.svc.Configure(sessionID(r), req); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": string(analysis.StateConfigured)})
}

func (s *Service) handleRun(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.svc.Run(sessionID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Service) handleRefresh(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.svc.Refresh(sessionID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func sessionID(r *http.Request) core.SessionID {
	return core.SessionID(chi.URLParam(r, "id"))
}

// writeError maps domain errors onto HTTP statuses
func (s *Service) writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsNotFoundError(err):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, core.ErrDatasetNotLoaded),
		errors.Is(err, core.ErrNotConfigured),
		errors.Is(err, core.ErrNoResult):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case apperrors.GetCode(err) == apperrors.CodeIngest:
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		s.log.Error("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
