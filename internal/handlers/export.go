package handlers

import (
	"net/http"
	"time"

	"github.com/dayblock/dayblock/internal/engine"
	"github.com/dayblock/dayblock/internal/export"
)

// ExportHandler serves the full-data JSON export
type ExportHandler struct {
	engine *engine.Engine
}

// NewExportHandler creates a new export handler
func NewExportHandler(e *engine.Engine) *ExportHandler {
	return &ExportHandler{engine: e}
}

// Export streams the export document. The payload is written directly rather
// than through the success envelope so the file round-trips as-is.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	blocks, progress, cfg, err := h.engine.ExportData(r.Context())
	if err != nil {
		respondEngineError(w, err)
		return
	}

	doc := export.Build(blocks, progress, cfg, time.Now())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="dayblock-export.json"`)
	if err := doc.WriteJSON(w); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to write export")
	}
}
