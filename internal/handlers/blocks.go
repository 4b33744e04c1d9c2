package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dayblock/dayblock/internal/engine"
	"github.com/dayblock/dayblock/internal/models"
	"github.com/dayblock/dayblock/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	// MaxTitleLength is the maximum length for block titles
	MaxTitleLength = 200
	// MaxNotesLength is the maximum length for block notes
	MaxNotesLength = 2000
)

// BlockHandler serves the time-block CRUD and lifecycle endpoints
type BlockHandler struct {
	engine *engine.Engine
}

// NewBlockHandler creates a new block handler
func NewBlockHandler(e *engine.Engine) *BlockHandler {
	return &BlockHandler{engine: e}
}

// RegisterRoutes registers block routes on the given router.
// The router should already carry the /blocks prefix.
func (h *BlockHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListBlocks).Methods("GET")
	r.HandleFunc("", h.CreateBlock).Methods("POST")
	r.HandleFunc("/{id}", h.GetBlock).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateBlock).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteBlock).Methods("DELETE")
	r.HandleFunc("/{id}/start", h.transition((*engine.Engine).StartBlock)).Methods("POST")
	r.HandleFunc("/{id}/complete", h.transition((*engine.Engine).CompleteBlock)).Methods("POST")
	r.HandleFunc("/{id}/skip", h.transition((*engine.Engine).SkipBlock)).Methods("POST")
	r.HandleFunc("/{id}/reset", h.transition((*engine.Engine).ResetBlockStatus)).Methods("POST")
}

// CreateBlockRequest represents a create block request
type CreateBlockRequest struct {
	Title     string    `json:"title" validate:"required,max=200"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Notes     string    `json:"notes" validate:"max=2000"`
	Category  string    `json:"category" validate:"max=100"`
	Icon      string    `json:"icon" validate:"max=50"`
}

// UpdateBlockRequest represents a partial block update
type UpdateBlockRequest struct {
	Title     *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Notes     *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Category  *string    `json:"category,omitempty" validate:"omitempty,max=100"`
	Icon      *string    `json:"icon,omitempty" validate:"omitempty,max=50"`
}

// ListBlocks returns the blocks for a date with their display status
func (h *BlockHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	views, err := h.engine.BlocksForDate(r.Context(), date)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"date":   models.DateKey(date),
		"blocks": views,
	})
}

// CreateBlock creates a new time block
func (h *BlockHandler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	var req CreateBlockRequest
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

	block := &models.TimeBlock{
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     validation.SanitizeText(req.Notes),
		Category:  validation.SanitizeText(req.Category),
		Icon:      req.Icon,
	}
	if err := h.engine.CreateBlock(r.Context(), block); err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, block)
}

// GetBlock returns a single block
func (h *BlockHandler) GetBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := blockID(w, r)
	if !ok {
		return
	}

	block, err := h.engine.Block(r.Context(), id)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, block)
}

// UpdateBlock applies a partial update to a block
func (h *BlockHandler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := blockID(w, r)
	if !ok {
		return
	}

	var req UpdateBlockRequest
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

	block, err := h.engine.Block(r.Context(), id)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	if req.Title != nil {
		block.Title = *req.Title
	}
	if req.StartTime != nil {
		block.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		block.EndTime = *req.EndTime
	}
	if req.Notes != nil {
		block.Notes = validation.SanitizeText(*req.Notes)
	}
	if req.Category != nil {
		block.Category = validation.SanitizeText(*req.Category)
	}
	if req.Icon != nil {
		block.Icon = *req.Icon
	}

	if err := h.engine.UpdateBlock(r.Context(), block); err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, block)
}

// DeleteBlock removes a block
func (h *BlockHandler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := blockID(w, r)
	if !ok {
		return
	}

	if err := h.engine.DeleteBlock(r.Context(), id); err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"id": id.String()})
}

// transition adapts an engine status-change method into a handler
func (h *BlockHandler) transition(op func(*engine.Engine, context.Context, uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := blockID(w, r)
		if !ok {
			return
		}

		if err := op(h.engine, r.Context(), id); err != nil {
			respondEngineError(w, err)
			return
		}

		block, err := h.engine.Block(r.Context(), id)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, block)
	}
}

func blockID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid block ID")
		return uuid.Nil, false
	}
	return id, true
}
