package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dayblock/dayblock/internal/engine"
	"github.com/dayblock/dayblock/internal/store"
)

// respondJSON sends a JSON success envelope
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage keeps error messages short enough to not leak internals
func sanitizeErrorMessage(message string) string {
	if len(message) > 200 {
		return message[:200] + "..."
	}
	return message
}

// respondJSONError sends an error JSON envelope
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondEngineError maps engine sentinel errors to HTTP statuses; anything
// unmatched is treated as a request validation problem
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondJSONError(w, http.StatusNotFound, "Not Found", "Resource not found")
	case errors.Is(err, engine.ErrInvalidTransition):
		respondJSONError(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, engine.ErrStoreUnavailable):
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Storage is temporarily unavailable")
	case errors.Is(err, engine.ErrEngineStopped):
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Engine is shutting down")
	case errors.Is(err, engine.ErrPermissionDenied):
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Notification permission denied")
	default:
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	}
}

// parseDateParam reads an optional ?date=YYYY-MM-DD query parameter,
// defaulting to today
func parseDateParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Now(), nil
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, errors.New("invalid date, expected YYYY-MM-DD")
	}
	return date, nil
}
