package ui

import (
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"hypolab/adapters/ingest/tabular"
	"hypolab/app"
	"hypolab/domain/analysis"
	"hypolab/domain/catalog"
	"hypolab/domain/core"
	"hypolab/domain/dataset"
	"hypolab/internal/describe"
)

const sessionCookie = "hypolab_session"

// sessionMiddleware scopes every request to a session via cookie, creating
// one on first visit. Nothing persists beyond the session.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err == nil {
			if _, lookupErr := s.svc.Session(core.SessionID(id)); lookupErr == nil {
				c.Set("session_id", core.SessionID(id))
				c.Next()
				return
			}
		}
		sess := s.svc.CreateSession()
		c.SetCookie(sessionCookie, sess.ID().String(), 0, "/", "", false, true)
		c.Set("session_id", sess.ID())
		c.Next()
	}
}

func currentSession(c *gin.Context) core.SessionID {
	return c.MustGet("session_id").(core.SessionID)
}

// catalogEntry is one test in the selector, with its helper text rendered
type catalogEntry struct {
	ID            string
	DisplayName   string
	RequiresGroup bool
	VariableType  string
	Description   template.HTML
}

// pageModel is everything the index template renders
type pageModel struct {
	State      string
	Columns    []columnView
	Rows       int
	Catalog    []catalogEntry
	Selection  analysis.Request
	GroupNone  string
	Alpha      float64
	Profile    []describe.ColumnSummary
	Outcome    *app.RunOutcome
	GroupBoxes []describe.GroupBox
	Error      string
}

type columnView struct {
	Name string
	Type string
}

func (s *Server) buildModel(c *gin.Context, outcome *app.RunOutcome, errMsg string) (*pageModel, error) {
	sess, err := s.svc.Session(currentSession(c))
	if err != nil {
		return nil, err
	}

	model := &pageModel{
		State:     string(sess.State()),
		Selection: sess.Request(),
		GroupNone: dataset.GroupNone,
		Alpha:     s.svc.Alpha(),
		Outcome:   outcome,
		Error:     errMsg,
	}
	for _, spec := range s.svc.Catalog() {
		model.Catalog = append(model.Catalog, catalogEntry{
			ID:            string(spec.ID),
			DisplayName:   spec.DisplayName,
			RequiresGroup: spec.RequiresGroup(),
			VariableType:  string(spec.VariableType),
			Description:   renderMarkdown(spec.Description),
		})
	}

	ds := sess.Dataset()
	if ds == nil {
		return model, nil
	}
	model.Rows = ds.Rows()
	model.Profile = sess.Profile()
	for _, col := range ds.Columns() {
		model.Columns = append(model.Columns, columnView{Name: col.Name, Type: string(col.Type)})
	}

	// Grouped selections also get per-level boxplot data for the chart
	req := sess.Request()
	if req.Variable != "" && req.Group != "" && req.Group != dataset.GroupNone && req.Test != catalog.TestChiSquare {
		if boxes, err := describe.GroupedBoxes(ds, req.Variable, req.Group); err == nil {
			model.GroupBoxes = boxes
		}
	}
	return model, nil
}

func (s *Server) renderIndex(c *gin.Context, outcome *app.RunOutcome, errMsg string) {
	model, err := s.buildModel(c, outcome, errMsg)
	if err != nil {
		c.String(http.StatusInternalServerError, "session error: %v", err)
		return
	}
	c.HTML(http.StatusOK, "index.html", model)
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderIndex(c, nil, "")
}

// handleUpload ingests a CSV or xlsx file and loads it into the session.
// Column types come from type_<column> form fields when present; otherwise
// the inferred suggestion applies.
func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("dataset")
	if err != nil {
		s.renderIndex(c, nil, "no file uploaded")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		s.renderIndex(c, nil, "failed to read upload")
		return
	}
	defer f.Close()

	var table *tabular.Table
	if strings.ToLower(filepath.Ext(fileHeader.Filename)) == ".csv" {
		table, err = tabular.ParseCSV(f)
	} else {
		table, err = tabular.ParseExcel(f)
	}
	if err != nil {
		s.renderIndex(c, nil, err.Error())
		return
	}

	declared := make(map[string]dataset.VarType)
	for _, name := range table.Headers {
		if raw := c.PostForm("type_" + name); raw != "" {
			if t, parseErr := dataset.ParseVarType(raw); parseErr == nil {
				declared[name] = t
			}
		}
	}

	ds, err := table.Dataset(declared)
	if err != nil {
		s.renderIndex(c, nil, err.Error())
		return
	}
	if err := s.svc.LoadDataset(c.Request.Context(), currentSession(c), ds); err != nil {
		s.renderIndex(c, nil, err.Error())
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// handleSelect records the variable/group/test selection. Selecting never
// runs anything; the run button does.
func (s *Server) handleSelect(c *gin.Context) {
	group := c.PostForm("group")
	if group == "" {
		group = dataset.GroupNone
	}
	req := analysis.Request{
		Variable: c.PostForm("variable"),
		Group:    group,
		Test:     catalog.TestID(c.PostForm("test")),
	}
	if err := s.svc.Configure(currentSession(c), req); err != nil {
		s.renderIndex(c, nil, err.Error())
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleRun(c *gin.Context) {
	outcome, err := s.svc.Run(currentSession(c))
	if err != nil {
		s.renderIndex(c, nil, err.Error())
		return
	}
	s.renderIndex(c, outcome, "")
}

// handleRefresh re-renders the last result without recomputing it
func (s *Server) handleRefresh(c *gin.Context) {
	outcome, err := s.svc.Refresh(currentSession(c))
	if err != nil {
		s.renderIndex(c, nil, err.Error())
		return
	}
	s.renderIndex(c, outcome, "")
}

// handleState exposes the session as JSON for the front-end charts
func (s *Server) handleState(c *gin.Context) {
	sess, err := s.svc.Session(currentSession(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	view := gin.H{
		"state":     sess.State(),
		"selection": sess.Request(),
	}
	if ds := sess.Dataset(); ds != nil {
		view["columns"] = ds.Names()
		view["rows"] = ds.Rows()
		view["profile"] = sess.Profile()
	}
	c.JSON(http.StatusOK, view)
}
