package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/damiensprinkle/liftlog/internal/workout"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// parseMonth accepts YYYY-MM and defaults to the current month.
func parseMonth(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01", s)
}

// resolveWorkout finds a template by UUID or, failing that, by
// case-insensitive name.
func resolveWorkout(ctx context.Context, svc *workout.Service, ref string) (models.Workout, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return svc.LoadWorkout(ctx, id)
	}
	workouts, err := svc.LoadWorkouts(ctx)
	if err != nil {
		return models.Workout{}, err
	}
	for _, w := range workouts {
		if strings.EqualFold(w.Name, ref) {
			return w, nil
		}
	}
	return models.Workout{}, fmt.Errorf("no workout named %q", ref)
}

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List all workout templates: name, color tag, and created/updated timestamps."),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout template with its full exercise list and planned sets. While this workout's session is active, the sets reflect the in-progress values."),
	mcp.WithString("workout", mcp.Required(), mcp.Description("Workout UUID or name (name match is case-insensitive)")),
)

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("Get all completion records for one workout template, newest first. Each record carries totals (weight lifted, reps, cardio time, distance) and the exercise snapshot."),
	mcp.WithString("workout", mcp.Required(), mcp.Description("Workout UUID or name")),
)

var toolGetMonthHistory = mcp.NewTool("get_month_history",
	mcp.WithDescription("Get every workout completed in one calendar month, newest first."),
	mcp.WithString("month", mcp.Description("Month as YYYY-MM. Defaults to the current month.")),
)

var toolGetActiveSession = mcp.NewTool("get_active_session",
	mcp.WithDescription("Get the currently running workout session, if any, with its elapsed time as HH:MM:SS."),
)

var toolExportWorkout = mcp.NewTool("export_workout",
	mcp.WithDescription("Render a workout template as a shareable JSON document that another LiftLog instance can import."),
	mcp.WithString("workout", mcp.Required(), mcp.Description("Workout UUID or name")),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workouts, err := h.svc.LoadWorkouts(ctx)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("workout")
	if err != nil {
		return mcp.NewToolResultError("workout parameter is required"), nil
	}

	w, err := resolveWorkout(ctx, h.svc, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	details, err := h.svc.LoadWorkoutDetails(ctx, w.ID)
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"workout":   w,
		"exercises": details,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("workout")
	if err != nil {
		return mcp.NewToolResultError("workout parameter is required"), nil
	}

	w, err := resolveWorkout(ctx, h.svc, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	records, err := h.svc.HistoryForWorkout(ctx, w.ID)
	if err != nil {
		h.log.Error("mcp get_workout_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getMonthHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	monthOf, err := parseMonth(req.GetString("month", ""))
	if err != nil {
		return mcp.NewToolResultError("month must be YYYY-MM"), nil
	}

	records, err := h.svc.HistoryForMonth(ctx, monthOf)
	if err != nil {
		h.log.Error("mcp get_month_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getActiveSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, elapsed, active, err := h.svc.ActiveSession(ctx)
	if err != nil {
		h.log.Error("mcp get_active_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if !active {
		result, err := mcp.NewToolResultJSON(map[string]any{"active": false})
		if err != nil {
			return mcp.NewToolResultError("serialization failed"), nil
		}
		return result, nil
	}

	w, err := h.svc.LoadWorkout(ctx, session.WorkoutID)
	if err != nil {
		h.log.Error("mcp get_active_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"active":  true,
		"workout": w,
		"session": session,
		"elapsed": workout.FormatElapsed(elapsed),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) exportWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("workout")
	if err != nil {
		return mcp.NewToolResultError("workout parameter is required"), nil
	}

	w, err := resolveWorkout(ctx, h.svc, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := h.svc.ExportWorkout(ctx, w.ID)
	if err != nil {
		h.log.Error("mcp export_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(doc)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
