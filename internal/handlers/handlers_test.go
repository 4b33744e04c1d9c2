package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dayblock/dayblock/internal/engine"
	"github.com/dayblock/dayblock/internal/export"
	"github.com/dayblock/dayblock/internal/models"
	"github.com/dayblock/dayblock/internal/notify"
	"github.com/dayblock/dayblock/internal/store"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func newTestServer(t *testing.T) (*mux.Router, *engine.Engine) {
	t.Helper()

	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := zap.NewNop()
	eng := engine.New(
		store.NewBlockRepository(st),
		store.NewProgressRepository(st),
		store.NewSettingsRepository(st),
		notify.NewLogNotifier(logger),
		logger,
		engine.WithPermissionGranted(true),
		engine.WithRefreshInterval(time.Hour),
	)
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("start engine: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = eng.Shutdown(ctx)
	})

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	NewBlockHandler(eng).RegisterRoutes(api.PathPrefix("/blocks").Subrouter())
	NewProgressHandler(eng).RegisterRoutes(api.PathPrefix("/progress").Subrouter())
	NewSettingsHandler(eng).RegisterRoutes(api.PathPrefix("/settings").Subrouter())
	api.HandleFunc("/insights/weekly", NewInsightHandler(eng, nil, logger).WeeklyInsight).Methods("GET")
	api.HandleFunc("/export", NewExportHandler(eng).Export).Methods("GET")
	api.HandleFunc("/state", NewStateHandler(eng).GetState).Methods("GET")
	router.HandleFunc("/healthz", NewHealthChecker(st).HealthCheck).Methods("GET")

	return router, eng
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json" && len(w.Body.Bytes()) > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func createTestBlock(t *testing.T, router *mux.Router, start, end time.Time) models.TimeBlock {
	t.Helper()

	w, env := doJSON(t, router, "POST", "/api/v1/blocks", map[string]any{
		"title":      "Deep work",
		"start_time": start,
		"end_time":   end,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create block: status = %d, body = %s", w.Code, w.Body.String())
	}

	var block models.TimeBlock
	if err := json.Unmarshal(env.Data, &block); err != nil {
		t.Fatalf("decode block: %v", err)
	}
	return block
}

func TestCreateAndListBlocks(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer(t)
	start := time.Now().Add(2 * time.Hour)
	block := createTestBlock(t, router, start, start.Add(time.Hour))

	if block.Status != models.BlockStatusNotStarted {
		t.Errorf("status = %q, want not_started", block.Status)
	}

	w, env := doJSON(t, router, "GET", "/api/v1/blocks?date="+models.DateKey(start), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d", w.Code)
	}

	var listed struct {
		Date   string             `json:"date"`
		Blocks []engine.BlockView `json:"blocks"`
	}
	if err := json.Unmarshal(env.Data, &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Blocks) != 1 {
		t.Fatalf("listed %d blocks, want 1", len(listed.Blocks))
	}
	if listed.Blocks[0].DisplayStatus != models.DisplayUpcoming {
		t.Errorf("display status = %q, want upcoming", listed.Blocks[0].DisplayStatus)
	}
}

func TestCreateBlockValidation(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer(t)
	now := time.Now()

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing title", body: map[string]any{"start_time": now, "end_time": now.Add(time.Hour)}},
		{name: "end before start", body: map[string]any{"title": "x", "start_time": now.Add(time.Hour), "end_time": now}},
		{name: "missing times", body: map[string]any{"title": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, router, "POST", "/api/v1/blocks", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if env.Success {
				t.Error("success should be false")
			}
		})
	}
}

func TestBlockTransitions(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer(t)
	start := time.Now().Add(time.Hour)
	block := createTestBlock(t, router, start, start.Add(time.Hour))

	w, env := doJSON(t, router, "POST", fmt.Sprintf("/api/v1/blocks/%s/complete", block.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete: status = %d, body = %s", w.Code, w.Body.String())
	}
	var updated models.TimeBlock
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Status != models.BlockStatusCompleted {
		t.Errorf("status = %q, want completed", updated.Status)
	}

	// starting a completed block conflicts
	w, _ = doJSON(t, router, "POST", fmt.Sprintf("/api/v1/blocks/%s/start", block.ID), nil)
	if w.Code != http.StatusConflict {
		t.Errorf("start after complete: status = %d, want 409", w.Code)
	}

	// reset returns it to not_started
	w, env = doJSON(t, router, "POST", fmt.Sprintf("/api/v1/blocks/%s/reset", block.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reset: status = %d", w.Code)
	}
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Status != models.BlockStatusNotStarted {
		t.Errorf("status after reset = %q, want not_started", updated.Status)
	}
}

func TestBlockNotFoundAndBadID(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer(t)

	w, _ := doJSON(t, router, "GET", "/api/v1/blocks/0d9ff40b-0f61-4bd9-bb49-d31c8b2f1f9b", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", w.Code)
	}

	w, _ = doJSON(t, router, "GET", "/api/v1/blocks/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", w.Code)
	}
}

func TestUpdateAndDeleteBlock(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer(t)
	start := time.Now().Add(time.Hour)
	block := createTestBlock(t, router, start, start.Add(time.Hour))

	w, env := doJSON(t, router, "PATCH", "/api/v1/blocks/"+block.ID.String(), map[string]any{
		"title": "Renamed",
		"notes": "updated notes",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %s", w.Code, w.Body.String())
	}
	var updated models.TimeBlock
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Title != "Renamed" || updated.Notes != "updated notes" {
		t.Errorf("update not applied: %+v", updated)
	}

	w, _ = doJSON(t, router, "DELETE", "/api/v1/blocks/"+block.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", w.Code)
	}
	w, _ = doJSON(t, router, "GET", "/api/v1/blocks/"+block.ID.String(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", w.Code)
	}
}

func TestProgressEndpoints(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer(t)
	start := time.Now().Add(time.Hour)
	block := createTestBlock(t, router, start, start.Add(time.Hour))

	if w, _ := doJSON(t, router, "POST", fmt.Sprintf("/api/v1/blocks/%s/complete", block.ID), nil); w.Code != http.StatusOK {
		t.Fatalf("complete: status = %d", w.Code)
	}

	day := models.DateKey(start)
	w, env := doJSON(t, router, "GET", "/api/v1/progress?date="+day, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("progress: status = %d", w.Code)
	}
	var progress models.DailyProgress
	if err := json.Unmarshal(env.Data, &progress); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if progress.CompletedBlocks != 1 || progress.TotalBlocks != 1 {
		t.Errorf("progress = %d/%d, want 1/1", progress.CompletedBlocks, progress.TotalBlocks)
	}

	// feedback round-trip
	w, env = doJSON(t, router, "PATCH", "/api/v1/progress?date="+day, map[string]any{"rating": 4, "notes": "ok"})
	if w.Code != http.StatusOK {
		t.Fatalf("feedback: status = %d, body = %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(env.Data, &progress); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if progress.Rating == nil || *progress.Rating != 4 {
		t.Error("rating not stored")
	}

	// out-of-range rating rejected
	if w, _ := doJSON(t, router, "PATCH", "/api/v1/progress", map[string]any{"rating": 9}); w.Code != http.StatusBadRequest {
		t.Errorf("rating 9: status = %d, want 400", w.Code)
	}

	// weekly rollup
	w, env = doJSON(t, router, "GET", "/api/v1/progress/weekly?date="+day, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("weekly: status = %d", w.Code)
	}
	var weekly struct {
		Stats models.WeeklyStats `json:"stats"`
	}
	if err := json.Unmarshal(env.Data, &weekly); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if weekly.Stats.TotalCompleted != 1 {
		t.Errorf("weekly completed = %d, want 1", weekly.Stats.TotalCompleted)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer(t)

	w, env := doJSON(t, router, "GET", "/api/v1/settings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get settings: status = %d", w.Code)
	}
	var cfg models.SchedulingConfig
	if err := json.Unmarshal(env.Data, &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.DailyReminderTime != models.DefaultReminderTime {
		t.Errorf("reminder = %q, want default", cfg.DailyReminderTime)
	}

	// invalid clock time rejected
	if w, _ := doJSON(t, router, "PATCH", "/api/v1/settings", map[string]any{"daily_reminder_time": "25:99"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad reminder: status = %d, want 400", w.Code)
	}
	// invalid behavior rejected
	if w, _ := doJSON(t, router, "PATCH", "/api/v1/settings", map[string]any{"auto_reset_behavior": "nuke"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad behavior: status = %d, want 400", w.Code)
	}

	w, env = doJSON(t, router, "PATCH", "/api/v1/settings", map[string]any{
		"notifications_enabled": true,
		"daily_reminder_time":   "09:30",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch settings: status = %d, body = %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(env.Data, &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !cfg.NotificationsEnabled || cfg.DailyReminderTime != "09:30" {
		t.Errorf("settings not applied: %+v", cfg)
	}

	if w, _ := doJSON(t, router, "POST", "/api/v1/settings/notifications/reschedule", nil); w.Code != http.StatusOK {
		t.Errorf("reschedule: status = %d, want 200", w.Code)
	}
	if w, _ := doJSON(t, router, "POST", "/api/v1/settings/notifications/enable", nil); w.Code != http.StatusOK {
		t.Errorf("enable: status = %d, want 200", w.Code)
	}
}

func TestWeeklyInsightEndpoint(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer(t)
	start := time.Now().Add(time.Hour)
	block := createTestBlock(t, router, start, start.Add(time.Hour))
	if w, _ := doJSON(t, router, "POST", fmt.Sprintf("/api/v1/blocks/%s/complete", block.ID), nil); w.Code != http.StatusOK {
		t.Fatalf("complete: status = %d", w.Code)
	}

	w, env := doJSON(t, router, "GET", "/api/v1/insights/weekly?date="+models.DateKey(start), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("insight: status = %d", w.Code)
	}
	var result struct {
		Summary string `json:"summary"`
		Source  string `json:"source"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Summary == "" {
		t.Error("empty insight summary")
	}
	if result.Source != "rules" {
		t.Errorf("source = %q, want rules (no primary provider configured)", result.Source)
	}
}

func TestExportEndpoint(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer(t)
	start := time.Now().Add(time.Hour)
	createTestBlock(t, router, start, start.Add(time.Hour))

	req := httptest.NewRequest("GET", "/api/v1/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("export: status = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("missing Content-Disposition header")
	}

	var doc export.Document
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(doc.TimeBlocks) != 1 {
		t.Errorf("exported %d blocks, want 1", len(doc.TimeBlocks))
	}
	if doc.ExportInfo.Version != export.FormatVersion {
		t.Errorf("version = %q, want %q", doc.ExportInfo.Version, export.FormatVersion)
	}
}

func TestStateEndpoint(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer(t)
	start := time.Now().Add(time.Hour)
	createTestBlock(t, router, start, start.Add(time.Hour))

	w, env := doJSON(t, router, "GET", "/api/v1/state", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("state: status = %d", w.Code)
	}
	var state engine.State
	if err := json.Unmarshal(env.Data, &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(state.Blocks) != 1 {
		t.Errorf("state has %d blocks, want 1", len(state.Blocks))
	}
	if state.RefreshedAt.IsZero() {
		t.Error("state missing refresh timestamp")
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router, _ := newTestServer(t)

	w, _ := doJSON(t, router, "GET", "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health: status = %d, want 200", w.Code)
	}

	w, _ = doJSON(t, router, "GET", "/healthz?mode=extended", nil)
	if w.Code != http.StatusOK {
		t.Errorf("extended health: status = %d, want 200", w.Code)
	}
}
