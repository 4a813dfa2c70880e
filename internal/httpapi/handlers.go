// Package httpapi is the REST control plane: session creation, status and
// progress, the evaluation trigger, feedback retrieval, and question
// catalog browsing. The live interview itself runs over the WebSocket
// endpoint mounted next to these routes.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"ai-interview-service/internal/models"
	"ai-interview-service/internal/observability/logging"
	"ai-interview-service/internal/service/evaluation"
	"ai-interview-service/internal/service/questionbank"
	"ai-interview-service/internal/service/session"
)

// Evaluator runs the post-interview pipeline for one session.
type Evaluator interface {
	Run(ctx context.Context, sessionID string) (models.FeedbackReport, error)
}

// Handlers carries the REST endpoint implementations.
type Handlers struct {
	store    *session.Store
	bank     *questionbank.Bank
	pipeline Evaluator
	logger   zerolog.Logger
}

// NewHandlers wires the REST surface to its collaborators.
func NewHandlers(store *session.Store, bank *questionbank.Bank, pipeline Evaluator) *Handlers {
	return &Handlers{
		store:    store,
		bank:     bank,
		pipeline: pipeline,
		logger:   logging.WithComponent("httpapi"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// StartInterview handles POST /api/v1/interviews/start.
func (h *Handlers) StartInterview(w http.ResponseWriter, r *http.Request) {
	var cfg models.InterviewConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.store.Create(r.Context(), cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id":     sess.ID,
		"status":         sess.Status,
		"phase":          sess.Phase,
		"question_count": len(sess.Questions),
		"ws_url":         "/ws/interview/" + sess.ID,
	})
}

// ListInterviews handles GET /api/v1/interviews.
func (h *Handlers) ListInterviews(w http.ResponseWriter, _ *http.Request) {
	summaries := h.store.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"interviews": summaries,
		"count":      len(summaries),
	})
}

// Status handles GET /api/v1/interviews/{sessionID}/status.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	payload := map[string]any{
		"session_id":       sess.ID,
		"status":           sess.Status,
		"phase":            sess.Phase,
		"current_question": sess.Cursor,
		"total_questions":  len(sess.Questions),
		"progress_percent": progressPercent(sess),
		"created_at":       sess.CreatedAt.Format(time.RFC3339),
	}
	if !sess.CompletedAt.IsZero() {
		payload["completed_at"] = sess.CompletedAt.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, payload)
}

// progressPercent maps lifecycle state to a coarse completion percentage
// for client progress bars.
func progressPercent(sess models.Session) int {
	switch sess.Status {
	case models.StatusCreated:
		return 0
	case models.StatusInProgress:
		if len(sess.Questions) == 0 {
			return 10
		}
		return 10 + (80*sess.Cursor)/len(sess.Questions)
	case models.StatusCompleted:
		return 90
	case models.StatusEvaluating:
		return 95
	case models.StatusEvaluated:
		return 100
	default:
		return 0
	}
}

// Evaluate handles POST /api/v1/interviews/{sessionID}/evaluate. The
// pipeline runs in the background; the response only acknowledges the start.
func (h *Handlers) Evaluate(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := h.store.Get(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if sess.Status != models.StatusCompleted {
		writeError(w, http.StatusBadRequest, "interview must be completed before evaluation, status is "+string(sess.Status))
		return
	}

	go func() {
		// Detached from the request: evaluation outlives the HTTP call.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := h.pipeline.Run(ctx, sessionID); err != nil && !errors.Is(err, evaluation.ErrNotReady) {
			h.logger.Error().Err(err).Str("sessionId", sessionID).Msg("Background evaluation failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"session_id": sessionID,
		"status":     string(models.StatusEvaluating),
	})
}

// Feedback handles GET /api/v1/interviews/{sessionID}/feedback.
func (h *Handlers) Feedback(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := h.store.Get(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	if report, ok := h.store.Feedback(sessionID); ok {
		writeJSON(w, http.StatusOK, report)
		return
	}
	if sess.Status == models.StatusEvaluating {
		writeJSON(w, http.StatusOK, map[string]string{
			"session_id": sessionID,
			"status":     string(models.StatusEvaluating),
			"message":    "evaluation in progress, check back shortly",
		})
		return
	}
	writeError(w, http.StatusNotFound, "no feedback available for this session")
}

// Companies handles GET /api/v1/questions/companies.
func (h *Handlers) Companies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"companies": h.bank.Companies()})
}

// Positions handles GET /api/v1/questions/positions with an optional
// company filter.
func (h *Handlers) Positions(w http.ResponseWriter, r *http.Request) {
	company := r.URL.Query().Get("company")
	positions := h.bank.Positions()
	if company != "" {
		positions = h.bank.PositionsForCompany(company)
	}
	writeJSON(w, http.StatusOK, map[string]any{"positions": positions})
}

// QuestionStats handles GET /api/v1/questions/stats.
func (h *Handlers) QuestionStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"total":     h.bank.Size(),
		"companies": h.bank.Stats(),
	})
}
