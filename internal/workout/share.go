package workout

import (
	"context"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/damiensprinkle/liftlog/internal/share"
	"github.com/damiensprinkle/liftlog/internal/storage"
	"github.com/google/uuid"
)

// ImportDocument stores a shared workout document as a new template. Every
// exercise and set gets a fresh identity, and a name collision is resolved by
// appending -copy, -copy2, … until a free name is found.
func (s *Service) ImportDocument(ctx context.Context, doc share.Document) (models.Workout, error) {
	name, err := storage.FreeName(ctx, doc.WorkoutName, s.repo.TitleExists)
	if err != nil {
		return models.Workout{}, err
	}

	color := ""
	if doc.WorkoutColor != nil {
		color = *doc.WorkoutColor
	}

	w, err := s.repo.CreateOrFindWorkout(ctx, name, color)
	if err != nil {
		return models.Workout{}, err
	}
	if err := s.repo.UpdateWorkoutDetails(ctx, w.ID, share.ToDetails(doc)); err != nil {
		return models.Workout{}, err
	}
	return w, nil
}

// ExportWorkout renders a template as a shareable document.
func (s *Service) ExportWorkout(ctx context.Context, workoutID uuid.UUID) (share.Document, error) {
	w, err := s.repo.FetchWorkout(ctx, workoutID)
	if err != nil {
		return share.Document{}, err
	}
	details, err := s.repo.FetchWorkoutDetails(ctx, workoutID)
	if err != nil {
		return share.Document{}, err
	}
	return share.Export(w, details, s.now()), nil
}
