package mcp

import (
	"log/slog"

	"github.com/claude/mapty/internal/form"
	"github.com/claude/mapty/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Options tunes the MCP server.
type Options struct {
	// Zoom is the map zoom reported by find_workout. Zero uses view.DefaultZoom.
	Zoom int
	// PIN, when set, must be passed to reset_workouts.
	PIN string
}

// New creates an MCP server with all tools and resources registered.
func New(sub *form.Submitter, opts Options, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Mapty", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Mapty workout log. Record running and cycling workouts at a map position, list them, focus one on the map, or clear the log."),
	)

	h := newHandlers(sub, opts, log)

	s.AddTools(
		server.ServerTool{Tool: toolLogWorkout, Handler: h.logWorkout},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolFindWorkout, Handler: h.findWorkout},
		server.ServerTool{Tool: toolResetWorkouts, Handler: h.resetWorkouts},
	)

	s.AddResources(
		server.ServerResource{Resource: resSnapshot, Handler: h.snapshot},
		server.ServerResource{Resource: resSummary, Handler: h.summary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	sub   *form.Submitter
	store *store.Store
	opts  Options
	log   *slog.Logger
}

func newHandlers(sub *form.Submitter, opts Options, log *slog.Logger) *handlers {
	return &handlers{sub: sub, store: sub.Store, opts: opts, log: log}
}

// --- Resource definitions ---

var resSnapshot = mcp.NewResource(
	"mapty://snapshot",
	"Workout Snapshot",
	mcp.WithResourceDescription("The whole workout log in its persisted JSON form, oldest first"),
	mcp.WithMIMEType("application/json"),
)

var resSummary = mcp.NewResource(
	"mapty://summary",
	"Workout Summary",
	mcp.WithResourceDescription("Workout counts and distance, duration and average pace or speed per type"),
	mcp.WithMIMEType("application/json"),
)
