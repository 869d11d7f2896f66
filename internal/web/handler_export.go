package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

func (s *Server) handleExportMeasurement(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid measurement id"})
		return
	}

	result, err := s.service.Export(r.Context(), []int64{id}, "")
	if err != nil {
		s.writeError(w, err)
		return
	}

	// The document is served as HTML; the .pdf name is what the external
	// renderer will produce from it.
	htmlName := strings.TrimSuffix(result.Filename, ".pdf") + ".html"
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", htmlName))
	if _, err := w.Write(result.HTML); err != nil {
		s.logger.Error("failed to write export response", "measurement_id", id, "error", err)
	}
}

type exportRequest struct {
	IDs   []int64 `json:"ids"`
	Title string  `json:"title"`
}

func (s *Server) handleExportToFile(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.IDs) == 0 {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ids is required"})
		return
	}

	path, result, err := s.service.ExportToFile(r.Context(), req.IDs, req.Title)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{
		"path":     path,
		"filename": result.Filename,
	})
}
