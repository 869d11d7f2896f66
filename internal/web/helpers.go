package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"windowlog/internal/domain"
	"windowlog/internal/service"
)

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain failure kinds onto HTTP statuses. Validation
// failures carry the full field→message map so the client can show every
// error at once.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verr.Fields})
	case errors.Is(err, domain.ErrValidation):
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, domain.ErrPhotoLimit), errors.Is(err, domain.ErrConstraint):
		s.writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrProcessing):
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		s.logger.Error("internal error", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

type measurementJSON struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	Width          int          `json:"width"`
	Height         int          `json:"height"`
	HandlePosition string       `json:"handle_position"`
	OpeningType    string       `json:"opening_type"`
	Notes          string       `json:"notes,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Photos         []*photoJSON `json:"photos,omitempty"`
}

type photoJSON struct {
	ID            int64     `json:"id"`
	MeasurementID int64     `json:"measurement_id"`
	OrderIndex    int       `json:"order_index"`
	CreatedAt     time.Time `json:"created_at"`
}

func toMeasurementJSON(m *domain.Measurement) *measurementJSON {
	return &measurementJSON{
		ID:             m.ID,
		Name:           m.Name,
		Width:          m.Width,
		Height:         m.Height,
		HandlePosition: string(m.HandlePosition),
		OpeningType:    string(m.OpeningType),
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toPhotoJSON(p *domain.Photo) *photoJSON {
	return &photoJSON{
		ID:            p.ID,
		MeasurementID: p.MeasurementID,
		OrderIndex:    p.OrderIndex,
		CreatedAt:     p.CreatedAt,
	}
}

func toMeasurementListJSON(ms []*domain.Measurement) []*measurementJSON {
	out := make([]*measurementJSON, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMeasurementJSON(m))
	}
	return out
}
