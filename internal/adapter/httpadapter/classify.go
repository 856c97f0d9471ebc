package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/couchcryptid/bikelane-risk/internal/tree"
)

const maxClassifyBody = 1 << 20

type classifyRequest struct {
	Features map[string]float64 `json:"features"`
}

type classifyResponse struct {
	RiskLevel string `json:"risk_level"`
	ModelID   string `json:"model_id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleClassify predicts the risk level of one hour described by named
// features, e.g. {"features": {"precipitation": 1.2, ...}}.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxClassifyBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.classifyFailed(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if len(req.Features) == 0 {
		s.classifyFailed(w, http.StatusBadRequest, errors.New("features are required"))
		return
	}

	level, err := s.classifier.PredictNamed(req.Features)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, tree.ErrMissingFeature) {
			status = http.StatusBadRequest
		}
		s.classifyFailed(w, status, err)
		return
	}

	s.metrics.ClassifyRequests.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, classifyResponse{RiskLevel: level, ModelID: s.modelID})
}

func (s *Server) classifyFailed(w http.ResponseWriter, status int, err error) {
	outcome := "error"
	if status == http.StatusBadRequest {
		outcome = "bad_request"
	} else {
		s.logger.Error("classify failed", "error", err)
	}
	s.metrics.ClassifyRequests.WithLabelValues(outcome).Inc()
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
