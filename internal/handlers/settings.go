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

// SettingsHandler serves the scheduling configuration endpoints
type SettingsHandler struct {
	engine *engine.Engine
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(e *engine.Engine) *SettingsHandler {
	return &SettingsHandler{engine: e}
}

// RegisterRoutes registers settings routes on the given router.
// The router should already carry the /settings prefix.
func (h *SettingsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetSettings).Methods("GET")
	r.HandleFunc("", h.UpdateSettings).Methods("PATCH")
	r.HandleFunc("/notifications/enable", h.EnableNotifications).Methods("POST")
	r.HandleFunc("/notifications/reschedule", h.Reschedule).Methods("POST")
}

// UpdateSettingsRequest is a partial update of the scheduling configuration
type UpdateSettingsRequest struct {
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
	DailyReminderTime    *string `json:"daily_reminder_time,omitempty" validate:"omitempty,clock_time"`
	NotificationSound    *string `json:"notification_sound,omitempty" validate:"omitempty,max=100"`
	AutoResetEnabled     *bool   `json:"auto_reset_enabled,omitempty"`
	AutoResetBehavior    *string `json:"auto_reset_behavior,omitempty" validate:"omitempty,reset_behavior"`
}

// GetSettings returns the current scheduling configuration
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.engine.Settings(r.Context())
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// UpdateSettings applies a partial settings update
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
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

	cfg, err := h.engine.Settings(r.Context())
	if err != nil {
		respondEngineError(w, err)
		return
	}

	if req.NotificationsEnabled != nil {
		cfg.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.DailyReminderTime != nil {
		cfg.DailyReminderTime = *req.DailyReminderTime
	}
	if req.NotificationSound != nil {
		cfg.NotificationSound = *req.NotificationSound
	}
	if req.AutoResetEnabled != nil {
		cfg.AutoResetEnabled = *req.AutoResetEnabled
	}
	if req.AutoResetBehavior != nil {
		cfg.AutoResetBehavior = models.AutoResetBehavior(*req.AutoResetBehavior)
	}

	if err := h.engine.UpdateSettings(r.Context(), cfg); err != nil {
		respondEngineError(w, err)
		return
	}

	updated, err := h.engine.Settings(r.Context())
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// EnableNotifications requests platform permission and turns notifications on
func (h *SettingsHandler) EnableNotifications(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.EnableNotifications(r.Context()); err != nil {
		respondEngineError(w, err)
		return
	}

	cfg, err := h.engine.Settings(r.Context())
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// Reschedule forces a full notification reconciliation pass
func (h *SettingsHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.RescheduleAll(r.Context()); err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "rescheduled"})
}
