package mcp

import (
	"context"
	"crypto/subtle"
	"errors"
	"math"

	"github.com/claude/mapty/internal/models"
	"github.com/claude/mapty/internal/store"
	"github.com/claude/mapty/internal/view"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolLogWorkout = mcp.NewTool("log_workout",
	mcp.WithDescription("Record a workout at a map position. Running needs cadence (steps/min), cycling needs elevation (m). Pace or speed is derived."),
	mcp.WithString("type", mcp.Required(), mcp.Description("Workout type"), mcp.Enum("running", "cycling")),
	mcp.WithNumber("lat", mcp.Required(), mcp.Description("Latitude of the clicked map point")),
	mcp.WithNumber("lng", mcp.Required(), mcp.Description("Longitude of the clicked map point")),
	mcp.WithNumber("distance", mcp.Required(), mcp.Description("Distance in km")),
	mcp.WithNumber("duration", mcp.Required(), mcp.Description("Duration in minutes")),
	mcp.WithNumber("cadence", mcp.Description("Cadence in steps/min (running)")),
	mcp.WithNumber("elevation", mcp.Description("Elevation gain in m (cycling)")),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List recorded workouts as shown in the sidebar. Newest is last unless a sort field is given."),
	mcp.WithString("sort", mcp.Description("Ascending sort field. Defaults to insertion order."),
		mcp.Enum(store.SortDate, store.SortDistance, store.SortDuration, store.SortMetric)),
)

var toolFindWorkout = mcp.NewTool("find_workout",
	mcp.WithDescription("Look up a workout by id and return it with the map focus that selecting it produces."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
)

var toolResetWorkouts = mcp.NewTool("reset_workouts",
	mcp.WithDescription("Delete every workout, in memory and in storage."),
	mcp.WithString("pin", mcp.Description("Reset PIN, when one is configured")),
)

// --- Tool handlers ---

func (h *handlers) logWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type parameter is required"), nil
	}

	in := models.Input{
		Type: kind,
		Coords: models.Coordinates{
			Lat: req.GetFloat("lat", math.NaN()),
			Lng: req.GetFloat("lng", math.NaN()),
		},
		DistanceKm:  req.GetFloat("distance", math.NaN()),
		DurationMin: req.GetFloat("duration", math.NaN()),
	}
	switch models.Kind(kind) {
	case models.KindRunning:
		in.Extra = req.GetFloat("cadence", math.NaN())
	case models.KindCycling:
		in.Extra = req.GetFloat("elevation", math.NaN())
	}

	w, err := h.sub.Record(ctx, in)
	if err != nil {
		if errors.Is(err, models.ErrInvalidWorkoutInput) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		h.log.Error("mcp log_workout", "error", err)
		return mcp.NewToolResultError("save failed: " + err.Error()), nil
	}
	h.log.Info("workout logged", "id", w.ID(), "type", w.Kind())

	result, err := mcp.NewToolResultJSON(map[string]any{
		"workout": view.NewEntry(w),
		"popup":   view.NewPopup(w),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listWorkouts(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workouts := h.store.All()
	if field := req.GetString("sort", ""); field != "" {
		var err error
		workouts, err = h.store.Sorted(field)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	entries := make([]view.Entry, 0, len(workouts))
	for _, w := range workouts {
		entries = append(entries, view.NewEntry(w))
	}

	result, err := mcp.NewToolResultJSON(entries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) findWorkout(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	w, err := h.store.FindByID(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"workout": view.NewEntry(w),
		"focus":   view.NewFocus(w, h.opts.Zoom),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) resetWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.opts.PIN != "" {
		pin := req.GetString("pin", "")
		if subtle.ConstantTimeCompare([]byte(pin), []byte(h.opts.PIN)) != 1 {
			h.log.Warn("mcp reset_workouts: wrong PIN")
			return mcp.NewToolResultError("invalid PIN"), nil
		}
	}

	n := h.store.Len()
	if err := h.store.Reset(ctx); err != nil {
		h.log.Error("mcp reset_workouts", "error", err)
		return mcp.NewToolResultError("reset failed: " + err.Error()), nil
	}
	h.log.Info("workouts reset", "removed", n)

	result, err := mcp.NewToolResultJSON(map[string]any{"removed": n})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
