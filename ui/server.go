package ui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal/insights"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/ports"
)

// Server is the JSON surface the dashboard consumer reads. It never touches
// the transformation core; it only queries the persisted tables, with the
// clean-to-staging fallback handled by the store.
type Server struct {
	router *gin.Engine
	reader ports.AdmissionsReader
	log    *internal.Logger
}

// NewServer creates the dashboard API server
func NewServer(reader ports.AdmissionsReader, ginMode string, log *internal.Logger) *Server {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}
	if log == nil {
		log = internal.DefaultLogger
	}

	s := &Server{
		router: gin.New(),
		reader: reader,
		log:    log,
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	api := s.router.Group("/api")
	{
		api.GET("/admissions", s.handleAdmissions)
		api.GET("/insights", s.handleInsights)
	}
}

// Run starts the HTTP server on the given port
func (s *Server) Run(port string) error {
	s.log.Info("[Server] dashboard API listening on :%s", port)
	return s.router.Run(":" + port)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleAdmissions serves admission rows with optional year/state filters.
// The response names the table the rows came from so consumers can tell when
// the staging fallback was taken.
func (s *Server) handleAdmissions(c *gin.Context) {
	rows, source, err := s.reader.QueryAdmissions(c.Request.Context())
	if err != nil {
		s.log.Error("[Server] admissions query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query admissions"})
		return
	}

	rows = filterRows(rows, "year", c.Query("year"))
	rows = filterRows(rows, "state", c.Query("state"))

	c.JSON(http.StatusOK, gin.H{
		"source": source,
		"count":  len(rows),
		"rows":   rows,
	})
}

// handleInsights serves the generated insight lines as markdown and HTML
func (s *Server) handleInsights(c *gin.Context) {
	rows, source, err := s.reader.QueryAdmissions(c.Request.Context())
	if err != nil {
		s.log.Error("[Server] insights query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query admissions"})
		return
	}

	md := insights.Generate(rows)
	c.JSON(http.StatusOK, gin.H{
		"source":   source,
		"markdown": md,
		"html":     string(markdown.ToHTML([]byte(md), nil, nil)),
	})
}

// filterRows keeps rows whose column's string form equals the wanted value;
// an empty filter keeps everything
func filterRows(rows []map[string]interface{}, column, wanted string) []map[string]interface{} {
	if wanted == "" {
		return rows
	}
	filtered := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		if stringify(row[column]) == wanted {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
