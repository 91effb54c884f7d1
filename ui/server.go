// Package ui serves the browser front end: dataset upload, variable and test
// selection, and the rendered result with its verdict.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"github.com/gin-gonic/gin"

	"hypolab/app"
	"hypolab/internal"
)

// Server is the gin web server for the analysis UI
type Server struct {
	router    *gin.Engine
	svc       *app.AnalysisService
	templates *template.Template
	log       *internal.Logger
}

// NewServer creates the server; Initialize must be called before Run
func NewServer(svc *app.AnalysisService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Server{
		router: gin.Default(),
		svc:    svc,
		log:    logger.Named("ui"),
	}
}

// Initialize parses the embedded templates and wires routes
func (s *Server) Initialize(embeddedFiles embed.FS) error {
	funcMap := template.FuncMap{
		"pct":   func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
		"f4":    func(v float64) string { return fmt.Sprintf("%.4f", v) },
		"f2":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"upper": strings.ToUpper,
	}

	templatesFS, err := fs.Sub(embeddedFiles, "ui/templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}
	s.templates, err = template.New("").Funcs(funcMap).ParseFS(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	s.router.SetHTMLTemplate(s.templates)

	s.setupRoutes()
	return nil
}

func (s *Server) setupRoutes() {
	s.router.Use(s.sessionMiddleware())

	s.router.GET("/", s.handleIndex)
	s.router.POST("/upload", s.handleUpload)
	s.router.POST("/select", s.handleSelect)
	s.router.POST("/run", s.handleRun)
	s.router.POST("/refresh", s.handleRefresh)
	s.router.GET("/state", s.handleState)
}

// Run starts the HTTP server
func (s *Server) Run(port string) error {
	s.log.Info("ui listening on :%s", port)
	return s.router.Run(":" + port)
}
