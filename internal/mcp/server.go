// Package mcp exposes the workout store to MCP clients: read tools over
// templates, sessions, and history, plus summary resources.
package mcp

import (
	"log/slog"

	"github.com/damiensprinkle/liftlog/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(svc *workout.Service, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog workout tracker. Query workout templates, the active session, and completion history. All data belongs to a single local user."),
	)

	h := &handlers{svc: svc, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
		server.ServerTool{Tool: toolGetMonthHistory, Handler: h.getMonthHistory},
		server.ServerTool{Tool: toolGetActiveSession, Handler: h.getActiveSession},
		server.ServerTool{Tool: toolExportWorkout, Handler: h.exportWorkout},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resWorkoutCatalog, Handler: h.workoutCatalog},
		server.ServerResource{Resource: resRecentHistory, Handler: h.recentHistory},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	svc *workout.Service
	log *slog.Logger
}

// --- Resource definitions ---

var resWorkoutCatalog = mcp.NewResource(
	"liftlog://workout_catalog",
	"Workout Catalog",
	mcp.WithResourceDescription("All workout templates with their exercises, planned sets, and color tags"),
	mcp.WithMIMEType("application/json"),
)

var resRecentHistory = mcp.NewResource(
	"liftlog://recent_history",
	"Recent History",
	mcp.WithResourceDescription("Completed workouts from the current and previous calendar month with their totals"),
	mcp.WithMIMEType("application/json"),
)
