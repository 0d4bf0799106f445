package workout

import (
	"context"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/google/uuid"
)

// Heavy operations — duplicate, delete, save-history — run on their own
// goroutine so an interactive caller is never blocked. Each runs as a single
// store transaction against the single-writer connection, which serializes
// its commit with any other pending writes; completion or failure is
// reported through the sink. In-flight operations are not cancellable: they
// run to completion or fail atomically.

func (s *Service) async(op string, fn func(context.Context) error) {
	go func() {
		err := fn(context.Background())
		if err != nil {
			s.log.Error("background operation failed", "op", op, "error", err)
		}
		s.sink.Report(op, err)
	}()
}

// DuplicateWorkoutAsync deep-copies a template in the background.
func (s *Service) DuplicateWorkoutAsync(id uuid.UUID) {
	s.async("duplicate_workout", func(ctx context.Context) error {
		_, err := s.repo.DuplicateWorkout(ctx, id)
		return err
	})
}

// DeleteWorkoutAsync removes a template and its cascade in the background.
func (s *Service) DeleteWorkoutAsync(id uuid.UUID) {
	s.async("delete_workout", func(ctx context.Context) error {
		return s.repo.DeleteWorkout(ctx, id)
	})
}

// CompleteSessionAsync folds a finished session into history in the
// background. History is saved before the temporary staging is purged, so a
// failed save leaves the staging data intact for retry.
func (s *Service) CompleteSessionAsync(workoutID uuid.UUID, elapsedFormatted string, details []models.ExerciseDetail) {
	s.async("complete_session", func(ctx context.Context) error {
		_, err := s.CompleteSession(ctx, workoutID, elapsedFormatted, details)
		return err
	})
}
