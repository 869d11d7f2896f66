package web

import (
	"encoding/json"
	"net/http"

	"windowlog/internal/service"
)

type createMeasurementRequest struct {
	Name           string      `json:"name"`
	Width          json.Number `json:"width"`
	Height         json.Number `json:"height"`
	HandlePosition string      `json:"handle_position"`
	OpeningType    string      `json:"opening_type"`
	Notes          string      `json:"notes"`
}

func (s *Server) handleCreateMeasurement(w http.ResponseWriter, r *http.Request) {
	var req createMeasurementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	m, err := s.service.CreateMeasurement(r.Context(), service.CreateInput{
		Name:           req.Name,
		Width:          req.Width.String(),
		Height:         req.Height.String(),
		HandlePosition: req.HandlePosition,
		OpeningType:    req.OpeningType,
		Notes:          req.Notes,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toMeasurementJSON(m))
}

func (s *Server) handleListMeasurements(w http.ResponseWriter, r *http.Request) {
	measurements, err := s.service.ListMeasurements(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMeasurementListJSON(measurements))
}

func (s *Server) handleGetMeasurement(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid measurement id"})
		return
	}

	m, err := s.service.GetMeasurement(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := toMeasurementJSON(&m.Measurement)
	for _, p := range m.Photos {
		resp.Photos = append(resp.Photos, toPhotoJSON(p))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type updateMeasurementRequest struct {
	Name           *string      `json:"name"`
	Width          *json.Number `json:"width"`
	Height         *json.Number `json:"height"`
	HandlePosition *string      `json:"handle_position"`
	OpeningType    *string      `json:"opening_type"`
	Notes          *string      `json:"notes"`
}

func (s *Server) handleUpdateMeasurement(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid measurement id"})
		return
	}

	var req updateMeasurementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	in := service.UpdateInput{
		Name:           req.Name,
		HandlePosition: req.HandlePosition,
		OpeningType:    req.OpeningType,
		Notes:          req.Notes,
	}
	if req.Width != nil {
		width := req.Width.String()
		in.Width = &width
	}
	if req.Height != nil {
		height := req.Height.String()
		in.Height = &height
	}

	m, err := s.service.UpdateMeasurement(r.Context(), id, in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMeasurementJSON(m))
}

func (s *Server) handleDeleteMeasurement(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid measurement id"})
		return
	}

	if err := s.service.DeleteMeasurement(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	measurements, err := s.service.SearchMeasurements(r.Context(), term)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMeasurementListJSON(measurements))
}
