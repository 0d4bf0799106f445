package workout

import (
	"context"
	"time"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/damiensprinkle/liftlog/internal/storage"
	"github.com/google/uuid"
)

// Repository is the persistence surface the service needs. *storage.DB is the
// production implementation; *MemoryRepository backs tests and ephemeral use.
type Repository interface {
	CreateOrFindWorkout(ctx context.Context, title, color string) (models.Workout, error)
	AddExerciseDetail(ctx context.Context, workoutTitle string, d models.ExerciseDetail) error
	FetchWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error)
	FetchAllWorkouts(ctx context.Context) ([]models.Workout, error)
	FetchWorkoutDetails(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseDetail, error)
	UpdateWorkoutDetails(ctx context.Context, workoutID uuid.UUID, details []models.ExerciseDetail) error
	DeleteWorkout(ctx context.Context, id uuid.UUID) error
	DuplicateWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error)
	UpdateTitle(ctx context.Context, id uuid.UUID, newTitle string) error
	UpdateColor(ctx context.Context, id uuid.UUID, color string) error
	TitleExists(ctx context.Context, title string) (bool, error)
	WorkoutColors(ctx context.Context) (map[uuid.UUID]string, error)

	SaveOrUpdateTemporarySets(ctx context.Context, workoutID, exerciseID uuid.UUID, exerciseName string, orderIndex int, sets []models.Set) error
	LoadTemporaryDetails(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseDetail, error)
	DeleteAllTemporary(ctx context.Context) error

	StartSession(ctx context.Context, workoutID uuid.UUID) (models.Session, error)
	StopSession(ctx context.Context, workoutID uuid.UUID) error
	ActiveWorkoutID(ctx context.Context) (*uuid.UUID, error)
	SessionForWorkout(ctx context.Context, workoutID uuid.UUID) (models.Session, error)
	Sessions(ctx context.Context) ([]models.Session, error)

	SaveHistory(ctx context.Context, h models.History) (models.History, error)
	HistoryForMonth(ctx context.Context, monthOf time.Time) ([]models.History, error)
	HistoryForWorkout(ctx context.Context, workoutID uuid.UUID) ([]models.History, error)
	DeleteHistory(ctx context.Context, id uuid.UUID) error
}

// Compile-time check: the production store satisfies Repository.
var _ Repository = (*storage.DB)(nil)
