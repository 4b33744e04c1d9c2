package handlers

import (
	"net/http"

	"github.com/dayblock/dayblock/internal/engine"
	"github.com/dayblock/dayblock/internal/services/insight"
	"go.uber.org/zap"
)

// InsightHandler serves the generated weekly summary. The primary provider is
// optional; when it is absent or fails, the rule-based fallback answers.
type InsightHandler struct {
	engine   *engine.Engine
	primary  insight.Provider
	fallback insight.Provider
	logger   *zap.Logger
}

// NewInsightHandler creates a new insight handler. primary may be nil.
func NewInsightHandler(e *engine.Engine, primary insight.Provider, logger *zap.Logger) *InsightHandler {
	return &InsightHandler{
		engine:   e,
		primary:  primary,
		fallback: insight.NewRuleProvider(),
		logger:   logger,
	}
}

// WeeklyInsight generates the insight for the week containing ?date
func (h *InsightHandler) WeeklyInsight(w http.ResponseWriter, r *http.Request) {
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
	days, err := h.engine.WeekProgress(r.Context(), date)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	provider := h.primary
	if provider == nil {
		provider = h.fallback
	}

	result, err := provider.WeeklyInsight(r.Context(), stats, days)
	if err != nil {
		h.logger.Warn("insight_provider_failed", zap.Error(err))
		result, err = h.fallback.WeeklyInsight(r.Context(), stats, days)
		if err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to generate insight")
			return
		}
	}

	respondJSON(w, http.StatusOK, result)
}
