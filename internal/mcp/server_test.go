package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/mapty/internal/form"
	"github.com/claude/mapty/internal/models"
	"github.com/claude/mapty/internal/storage"
	"github.com/claude/mapty/internal/store"
	"github.com/claude/mapty/internal/view"
	"github.com/mark3labs/mcp-go/mcp"
)

func newTestHandlers(opts Options) (*handlers, *storage.Memory) {
	kv := storage.NewMemory()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	at := time.Date(2024, time.April, 3, 7, 0, 0, 0, time.UTC)
	sub := &form.Submitter{
		Factory: models.NewFactory(&models.SequenceGenerator{}, func() time.Time { return at }),
		Store:   store.New(kv, "", log),
	}
	return newHandlers(sub, opts, log), kv
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the first TextContent text from a CallToolResult.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no TextContent in tool result")
	return ""
}

func mustLog(t *testing.T, h *handlers, args map[string]any) {
	t.Helper()
	result, err := h.logWorkout(context.Background(), callRequest("log_workout", args))
	if err != nil {
		t.Fatalf("log_workout: %v", err)
	}
	if result.IsError {
		t.Fatalf("log_workout failed: %s", resultText(t, result))
	}
}

// TestNewRegistersServer verifies the server builds with its tools and resources.
func TestNewRegistersServer(t *testing.T) {
	h, _ := newTestHandlers(Options{})
	if s := New(h.sub, Options{}, "test", h.log); s == nil {
		t.Fatal("New returned nil")
	}
}

// TestLogWorkout verifies a running workout is recorded, persisted and
// returned with its derived pace.
func TestLogWorkout(t *testing.T) {
	h, kv := newTestHandlers(Options{})
	result, err := h.logWorkout(context.Background(), callRequest("log_workout", map[string]any{
		"type": "running", "lat": 48.85, "lng": 2.35, "distance": 5.0, "duration": 25.0, "cadence": 180.0,
	}))
	if err != nil {
		t.Fatalf("log_workout: %v", err)
	}
	if result.IsError {
		t.Fatalf("log_workout failed: %s", resultText(t, result))
	}

	var resp struct {
		Workout view.Entry `json:"workout"`
		Popup   view.Popup `json:"popup"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Workout.ID != "w-1" || resp.Workout.Details[2].Value != "5.0" {
		t.Errorf("workout = %+v", resp.Workout)
	}
	if resp.Popup.Class != "running-popup" {
		t.Errorf("popup class = %q", resp.Popup.Class)
	}
	if _, ok, _ := kv.Get(context.Background(), store.DefaultKey); !ok {
		t.Error("workout not persisted")
	}
}

// TestLogWorkoutInvalid verifies validation failures come back as tool errors
// naming the field.
func TestLogWorkoutInvalid(t *testing.T) {
	h, _ := newTestHandlers(Options{})
	cases := map[string]struct {
		args  map[string]any
		field string
	}{
		"negative distance": {map[string]any{"type": "running", "lat": 1.0, "lng": 2.0, "distance": -5.0, "duration": 25.0, "cadence": 180.0}, "distanceKm"},
		"missing cadence":   {map[string]any{"type": "running", "lat": 1.0, "lng": 2.0, "distance": 5.0, "duration": 25.0}, "cadence"},
		"cadence on ride":   {map[string]any{"type": "cycling", "lat": 1.0, "lng": 2.0, "distance": 5.0, "duration": 25.0, "cadence": 90.0}, "elevationGain"},
		"unknown type":      {map[string]any{"type": "rowing", "lat": 1.0, "lng": 2.0, "distance": 5.0, "duration": 25.0}, "type"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			result, err := h.logWorkout(context.Background(), callRequest("log_workout", tc.args))
			if err != nil {
				t.Fatalf("log_workout: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected tool error")
			}
			if text := resultText(t, result); !strings.Contains(text, tc.field) {
				t.Errorf("error %q does not name %s", text, tc.field)
			}
		})
	}
	if h.store.Len() != 0 {
		t.Errorf("store len = %d, want 0", h.store.Len())
	}
}

// TestListWorkoutsSorted verifies insertion order by default and sorting on request.
func TestListWorkoutsSorted(t *testing.T) {
	h, _ := newTestHandlers(Options{})
	mustLog(t, h, map[string]any{"type": "running", "lat": 1.0, "lng": 2.0, "distance": 10.0, "duration": 50.0, "cadence": 170.0})
	mustLog(t, h, map[string]any{"type": "cycling", "lat": 1.0, "lng": 2.0, "distance": 3.0, "duration": 12.0, "elevation": 20.0})

	list := func(args map[string]any) []view.Entry {
		t.Helper()
		result, err := h.listWorkouts(context.Background(), callRequest("list_workouts", args))
		if err != nil || result.IsError {
			t.Fatalf("list_workouts: %v", err)
		}
		var entries []view.Entry
		if err := json.Unmarshal([]byte(resultText(t, result)), &entries); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return entries
	}

	if got := list(nil); len(got) != 2 || got[0].ID != "w-1" {
		t.Errorf("default order = %+v", got)
	}
	if got := list(map[string]any{"sort": "distance"}); len(got) != 2 || got[0].ID != "w-2" {
		t.Errorf("distance order = %+v", got)
	}

	result, err := h.listWorkouts(context.Background(), callRequest("list_workouts", map[string]any{"sort": "calories"}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected tool error for unknown sort field")
	}
}

// TestFindWorkout verifies the focus request and the not-found error.
func TestFindWorkout(t *testing.T) {
	h, _ := newTestHandlers(Options{Zoom: 15})
	mustLog(t, h, map[string]any{"type": "running", "lat": 48.85, "lng": 2.35, "distance": 5.0, "duration": 25.0, "cadence": 180.0})

	result, err := h.findWorkout(context.Background(), callRequest("find_workout", map[string]any{"id": "w-1"}))
	if err != nil || result.IsError {
		t.Fatalf("find_workout: %v", err)
	}
	var resp struct {
		Focus view.Focus `json:"focus"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Focus.Lat != 48.85 || resp.Focus.Lng != 2.35 || resp.Focus.Zoom != 15 || !resp.Focus.Animate {
		t.Errorf("focus = %+v", resp.Focus)
	}

	result, err = h.findWorkout(context.Background(), callRequest("find_workout", map[string]any{"id": "nope"}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected tool error for unknown id")
	}
}

// TestResetWorkoutsPIN verifies the PIN gate and that a reset clears memory and storage.
func TestResetWorkoutsPIN(t *testing.T) {
	h, kv := newTestHandlers(Options{PIN: "1234"})
	mustLog(t, h, map[string]any{"type": "running", "lat": 1.0, "lng": 2.0, "distance": 5.0, "duration": 25.0, "cadence": 180.0})

	result, err := h.resetWorkouts(context.Background(), callRequest("reset_workouts", map[string]any{"pin": "0000"}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Fatal("expected wrong PIN to be rejected")
	}
	if h.store.Len() != 1 {
		t.Errorf("store len = %d after rejected reset, want 1", h.store.Len())
	}

	result, err = h.resetWorkouts(context.Background(), callRequest("reset_workouts", map[string]any{"pin": "1234"}))
	if err != nil || result.IsError {
		t.Fatalf("reset_workouts: %v", err)
	}
	if h.store.Len() != 0 {
		t.Errorf("store len = %d, want 0", h.store.Len())
	}
	if _, ok, _ := kv.Get(context.Background(), store.DefaultKey); ok {
		t.Error("snapshot still stored after reset")
	}
}

// TestResources verifies the snapshot and summary resources.
func TestResources(t *testing.T) {
	h, _ := newTestHandlers(Options{})
	mustLog(t, h, map[string]any{"type": "running", "lat": 1.0, "lng": 2.0, "distance": 5.0, "duration": 25.0, "cadence": 180.0})
	mustLog(t, h, map[string]any{"type": "running", "lat": 1.0, "lng": 2.0, "distance": 10.0, "duration": 70.0, "cadence": 170.0})
	mustLog(t, h, map[string]any{"type": "cycling", "lat": 1.0, "lng": 2.0, "distance": 20.0, "duration": 60.0, "elevation": 150.0})

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "mapty://snapshot"
	contents, err := h.snapshot(context.Background(), req)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	got, _, err := models.DecodeSnapshot(text)
	if err != nil || len(got) != 3 {
		t.Fatalf("snapshot decodes to %d workouts, err %v", len(got), err)
	}

	req.Params.URI = "mapty://summary"
	contents, err = h.summary(context.Background(), req)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	var sum Summary
	if err := json.Unmarshal([]byte(contents[0].(mcp.TextResourceContents).Text), &sum); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	run := sum.ByType[models.KindRunning]
	if sum.Total != 3 || run.Count != 2 || run.DistanceKm != 15 || run.AvgMetric != 6 || run.MetricUnit != "min/km" {
		t.Errorf("summary = %+v", sum)
	}
	if ride := sum.ByType[models.KindCycling]; ride.AvgMetric != 20 {
		t.Errorf("cycling avg speed = %v, want 20", ride.AvgMetric)
	}
}
