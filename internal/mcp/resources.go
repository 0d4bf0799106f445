package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) workoutCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workouts, err := h.svc.LoadWorkouts(ctx)
	if err != nil {
		return nil, err
	}

	catalog := make([]map[string]any, 0, len(workouts))
	for _, w := range workouts {
		details, err := h.svc.LoadWorkoutDetails(ctx, w.ID)
		if err != nil {
			h.log.Warn("workout_catalog: details load failed", "workout", w.ID, "error", err)
			continue
		}
		catalog = append(catalog, map[string]any{
			"workout":   w,
			"exercises": details,
		})
	}

	data, err := json.Marshal(catalog)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) recentHistory(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	now := time.Now()
	// Anchor on the first of the month so the -1 month step cannot
	// normalize past February.
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	current, err := h.svc.HistoryForMonth(ctx, now)
	if err != nil {
		return nil, err
	}
	previous, err := h.svc.HistoryForMonth(ctx, firstOfMonth.AddDate(0, -1, 0))
	if err != nil {
		h.log.Warn("recent_history: previous month load failed", "error", err)
	}

	data, err := json.Marshal(append(current, previous...))
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
