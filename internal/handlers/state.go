package handlers

import (
	"net/http"

	"github.com/dayblock/dayblock/internal/engine"
)

// StateHandler exposes the engine's in-memory snapshot, the read the
// presentation layer polls instead of re-deriving anything itself
type StateHandler struct {
	engine *engine.Engine
}

// NewStateHandler creates a new state handler
func NewStateHandler(e *engine.Engine) *StateHandler {
	return &StateHandler{engine: e}
}

// GetState returns the current snapshot
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}
