package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dayblock/dayblock/internal/models"
	"github.com/google/uuid"
)

func sampleData() ([]*models.TimeBlock, []*models.DailyProgress) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	blocks := []*models.TimeBlock{
		{
			ID:        uuid.New(),
			Title:     "Deep work",
			StartTime: day.Add(9 * time.Hour),
			EndTime:   day.Add(10 * time.Hour),
			Status:    models.BlockStatusCompleted,
		},
		{
			ID:        uuid.New(),
			Title:     "Email",
			StartTime: day.Add(10 * time.Hour),
			EndTime:   day.Add(11 * time.Hour),
			Status:    models.BlockStatusSkipped,
		},
		{
			ID:        uuid.New(),
			Title:     "Review",
			StartTime: day.Add(14 * time.Hour),
			EndTime:   day.Add(15 * time.Hour),
			Status:    models.BlockStatusNotStarted,
		},
	}

	progress := []*models.DailyProgress{
		{
			Date:                 day,
			TotalBlocks:          3,
			CompletedBlocks:      1,
			SkippedBlocks:        1,
			CompletionPercentage: 1.0 / 3.0,
			PerformanceLevel:     models.PerformancePoor,
		},
		// a row that exists but tracked nothing
		{Date: day.AddDate(0, 0, 1)},
	}

	return blocks, progress
}

func TestBuildStatistics(t *testing.T) {
	t.Parallel()

	blocks, progress := sampleData()
	now := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)

	doc := Build(blocks, progress, models.DefaultSchedulingConfig(), now)

	if doc.ExportInfo.Version != FormatVersion {
		t.Errorf("version = %q, want %q", doc.ExportInfo.Version, FormatVersion)
	}
	if _, err := time.Parse(time.RFC3339, doc.ExportInfo.ExportedAt); err != nil {
		t.Errorf("exported_at is not valid RFC3339: %q", doc.ExportInfo.ExportedAt)
	}

	stats := doc.Statistics
	if stats.TotalBlocks != 3 || stats.CompletedBlocks != 1 || stats.SkippedBlocks != 1 {
		t.Errorf("block stats = %d/%d/%d, want 3/1/1", stats.TotalBlocks, stats.CompletedBlocks, stats.SkippedBlocks)
	}
	if stats.TrackedDays != 1 {
		t.Errorf("TrackedDays = %d, want 1 (empty rows do not count)", stats.TrackedDays)
	}
	want := 1.0 / 3.0
	if diff := stats.OverallCompletion - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("OverallCompletion = %v, want %v", stats.OverallCompletion, want)
	}
	if stats.BestDay != "2026-03-02" {
		t.Errorf("BestDay = %q, want 2026-03-02", stats.BestDay)
	}
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	doc := Build(nil, nil, models.DefaultSchedulingConfig(), time.Now())
	if doc.Statistics != (Statistics{}) {
		t.Errorf("statistics = %+v, want zero value", doc.Statistics)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	t.Parallel()

	blocks, progress := sampleData()
	doc := Build(blocks, progress, models.DefaultSchedulingConfig(), time.Now())

	var buf bytes.Buffer
	if err := doc.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded Document
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.TimeBlocks) != 3 {
		t.Errorf("decoded %d blocks, want 3", len(decoded.TimeBlocks))
	}
	if len(decoded.DailyProgress) != 2 {
		t.Errorf("decoded %d progress rows, want 2", len(decoded.DailyProgress))
	}
	if decoded.Settings.DailyReminderTime != models.DefaultReminderTime {
		t.Errorf("settings reminder = %q, want default", decoded.Settings.DailyReminderTime)
	}

	// pretty-printed output
	out := buf.String()
	if !strings.Contains(out, "\n") || !strings.Contains(out, "  ") {
		t.Error("output should be indented with newlines")
	}

	// the top-level keys are the published document format
	for _, key := range []string{`"exportInfo"`, `"timeBlocks"`, `"dailyProgress"`, `"settings"`, `"statistics"`} {
		if !strings.Contains(out, key) {
			t.Errorf("output missing top-level key %s", key)
		}
	}
}
