package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dayblock/dayblock/internal/engine"
	"github.com/dayblock/dayblock/internal/models"
	"github.com/dayblock/dayblock/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// ProgressHandler serves daily and weekly progress endpoints
type ProgressHandler struct {
	engine *engine.Engine
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(e *engine.Engine) *ProgressHandler {
	return &ProgressHandler{engine: e}
}

// RegisterRoutes registers progress routes on the given router.
// The router should already carry the /progress prefix.
func (h *ProgressHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetProgress).Methods("GET")
	r.HandleFunc("", h.SetFeedback).Methods("PATCH")
	r.HandleFunc("/weekly", h.GetWeekly).Methods("GET")
}

// FeedbackRequest carries the user-editable fields of a day's progress
type FeedbackRequest struct {
	Rating        *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	SummaryViewed *bool   `json:"summary_viewed,omitempty"`
}

// GetProgress recomputes and returns the aggregate for a date
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	progress, err := h.engine.DailyProgress(r.Context(), date)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, progress)
}

// SetFeedback stores rating, notes and the summary-viewed flag for a date
func (h *ProgressHandler) SetFeedback(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", validationErrors.Error())
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	if err := h.engine.SetDayFeedback(r.Context(), date, req.Rating, req.Notes, req.SummaryViewed); err != nil {
		respondEngineError(w, err)
		return
	}

	progress, err := h.engine.DailyProgress(r.Context(), date)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

// GetWeekly rolls up the calendar week containing the date
func (h *ProgressHandler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	stats, err := h.engine.WeeklyStats(r.Context(), date)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"week_of": models.DateKey(date),
		"stats":   stats,
	})
}
