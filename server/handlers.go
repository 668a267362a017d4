package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/benoitkugler/icondup/batch"
	"github.com/benoitkugler/icondup/report"
	"github.com/benoitkugler/icondup/svgnorm"
	"github.com/benoitkugler/icondup/svgraster"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type compareRequest struct {
	SVG   string `json:"svg"`
	Limit int    `json:"limit"`
}

type compareResponse struct {
	RunID     string         `json:"run_id"`
	Results   []report.Entry `json:"results"`
	Total     int            `json:"total"`
	ElapsedMS int64          `json:"elapsed_ms"`
}

type progressResponse struct {
	Running bool `json:"running"`
	batch.Progress
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SVG) == "" {
		s.respondError(w, http.StatusBadRequest, "svg is required")
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.config.Report.Limit
	}

	runID := uuid.New().String()
	candidates := s.catalog.Candidates()
	s.logger.Debug("compare request", zap.String("run_id", runID), zap.Int("candidates", len(candidates)))

	start := time.Now()
	scores, err := s.orchestrator.Run(r.Context(), req.SVG, candidates)
	if err != nil {
		var de *svgraster.DecodeError
		switch {
		case errors.Is(err, batch.ErrRunning):
			s.respondError(w, http.StatusConflict, "a comparison is already running")
		case errors.Is(err, batch.ErrSuperseded):
			s.respondError(w, http.StatusConflict, "comparison was reset")
		case errors.Is(err, svgnorm.ErrInvalidMarkup), errors.As(err, &de):
			s.respondError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("comparison failed", zap.String("run_id", runID), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.respondJSON(w, http.StatusOK, compareResponse{
		RunID:     runID,
		Results:   report.Rank(scores, s.config.Report.Thresholds, limit),
		Total:     len(scores),
		ElapsedMS: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, progressResponse{
		Running:  s.orchestrator.Running(),
		Progress: s.orchestrator.Progress(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.orchestrator.Reset()
	s.logger.Debug("comparison reset")
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleIcons(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]int{"count": len(s.catalog.Candidates())})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
