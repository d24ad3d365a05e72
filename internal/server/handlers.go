package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abunai/impact/internal/engine"
	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/report"
	"github.com/abunai/impact/internal/runner"
	"github.com/abunai/impact/internal/store"
)

const (
	connectionTestMessage = "Connection test from inside Abunai successful!"
	titleTimeLayout       = "02.01.2006 at 15:04:05"
)

// AnalysisRequest is the body of POST /abunai/run.
type AnalysisRequest struct {
	ModelPath   string           `json:"modelPath"`
	Assumptions []*ir.Assumption `json:"assumptions"`
}

// AnalysisResponse is the reply of POST /abunai/run.
type AnalysisResponse struct {
	OutputLog   string           `json:"outputLog"`
	Assumptions []*ir.Assumption `json:"assumptions"`
}

func (s *Server) handleTest(c *gin.Context) {
	s.logger.Info("connection test", "client", c.ClientIP())
	c.String(http.StatusOK, connectionTestMessage)
}

// handleSetModel stores every multipart part of the upload as
// <casestudies>/CaseStudy-<name>/<name>/<part name>.
func (s *Server) handleSetModel(c *gin.Context) {
	info, err := os.Stat(s.caseStudies)
	if err != nil || !info.IsDir() {
		s.logger.Error("case studies directory missing", "dir", s.caseStudies)
		c.String(http.StatusInternalServerError, "Analysis cannot locate 'casestudies' directory.")
		return
	}

	name := strings.TrimSpace(c.Param("modelName"))
	if name == "" {
		c.String(http.StatusBadRequest, "No model name provided.")
		return
	}
	if !validPathElement(name) {
		c.String(http.StatusBadRequest, fmt.Sprintf("Invalid model name %q.", name))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("Invalid multipart body: %v", err))
		return
	}

	parts := make([]string, 0, len(form.File)+len(form.Value))
	for part := range form.File {
		parts = append(parts, part)
	}
	for part := range form.Value {
		parts = append(parts, part)
	}
	for _, part := range parts {
		if !validPathElement(part) {
			c.String(http.StatusBadRequest, fmt.Sprintf("Invalid part name %q.", part))
			return
		}
	}

	dir := modelDir(s.caseStudies, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("create model directory", "dir", dir, "error", err)
		c.String(http.StatusInternalServerError, "Could not create model directory.")
		return
	}

	for part, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		target := filepath.Join(dir, part)
		if err := c.SaveUploadedFile(headers[0], target); err != nil {
			s.logger.Error("save model part", "part", part, "error", err)
			c.String(http.StatusInternalServerError, fmt.Sprintf("Could not save part %q.", part))
			return
		}
	}
	for part, values := range form.Value {
		if len(values) == 0 {
			continue
		}
		target := filepath.Join(dir, part)
		if err := os.WriteFile(target, []byte(values[0]), 0o644); err != nil {
			s.logger.Error("save model part", "part", part, "error", err)
			c.String(http.StatusInternalServerError, fmt.Sprintf("Could not save part %q.", part))
			return
		}
	}

	s.logger.Info("model stored", "model", name, "parts", len(parts), "dir", dir)
	c.String(http.StatusOK, "Success!")
}

func (s *Server) handleRun(c *gin.Context) {
	var req AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	name := modelName(req.ModelPath)
	if name == "" || !validPathElement(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not determine model name from the specified model path."})
		return
	}

	path, err := resolveModel(modelDir(s.caseStudies, name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assumptions := req.Assumptions
	if assumptions == nil {
		assumptions = []*ir.Assumption{}
	}
	if slices.Contains(assumptions, nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Assumption list contains an empty entry."})
		return
	}

	title := fmt.Sprintf("Analysis of model '%s' on %s", name, s.clock().Format(titleTimeLayout))
	out, err := s.runner.Run(c.Request.Context(), runner.Request{
		ModelPath:   path,
		Assumptions: assumptions,
		Report:      report.Options{Title: title, NewLinePerElement: true},
	})
	if err != nil {
		status := http.StatusInternalServerError
		if engine.IsCancelled(err) {
			status = http.StatusServiceUnavailable
		}
		s.logger.Error("analysis failed", "model", name, "error", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	s.logger.Info("analysis finished",
		"model", name,
		"run_id", out.Result.RunID,
		"sources", len(out.Result.Sources),
		"violations", len(out.Result.Violations))

	c.JSON(http.StatusOK, AnalysisResponse{
		OutputLog:   out.Report,
		Assumptions: assumptions,
	})
}

func (s *Server) handleListRuns(c *gin.Context) {
	runs, err := s.store.ListRuns(c.Request.Context())
	if err != nil {
		s.logger.Error("list runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	id := c.Param("id")
	rec, err := s.store.ReadRun(c.Request.Context(), id)
	if errors.Is(err, store.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("run %q not found", id)})
		return
	}
	if err != nil {
		s.logger.Error("read run", "run_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read run"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func modelDir(caseStudies, name string) string {
	return filepath.Join(caseStudies, "CaseStudy-"+name, name)
}

// modelName returns the last segment of a slash or backslash separated path.
func modelName(path string) string {
	path = strings.TrimRight(strings.TrimSpace(path), `/\`)
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	return path
}

func validPathElement(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.Contains(name, "\x00")
}

// resolveModel picks the architecture description inside an uploaded model
// directory: the first YAML or JSON file by name, else the directory itself
// when it holds a CUE package.
func resolveModel(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("no model uploaded at %s", filepath.ToSlash(dir))
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	hasCUE := false
	for _, n := range names {
		switch strings.ToLower(filepath.Ext(n)) {
		case ".yaml", ".yml", ".json":
			return filepath.Join(dir, n), nil
		case ".cue":
			hasCUE = true
		}
	}
	if hasCUE {
		return dir, nil
	}
	return "", fmt.Errorf("no architecture description found in %s", filepath.ToSlash(dir))
}
