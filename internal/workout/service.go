// Package workout is the orchestration layer over the store: template saves
// with validation, the session state machine, temporary-edit staging, and
// folding completed sessions into history.
package workout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/damiensprinkle/liftlog/internal/reconcile"
	"github.com/google/uuid"
)

// Service composes the template store, temporary session store, session
// manager, and history store into the operations a caller needs.
type Service struct {
	repo Repository
	sink *Sink
	log  *slog.Logger
	now  func() time.Time
}

// New creates a Service. Store-layer failures from background operations are
// reported to sink.
func New(repo Repository, sink *Sink, log *slog.Logger) *Service {
	return &Service{repo: repo, sink: sink, log: log, now: time.Now}
}

// SaveWorkout validates and persists a template. Validation order is fixed
// for deterministic error reporting: empty title first, then missing
// exercises, then (for new workouts, or a rename) title uniqueness. The
// detail list is re-sequenced to dense indices before the merge.
func (s *Service) SaveWorkout(ctx context.Context, title string, isUpdate bool, workoutID uuid.UUID, details []models.ExerciseDetail) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if len(details) == 0 {
		return ErrNoExerciseDetails
	}

	if isUpdate {
		w, err := s.repo.FetchWorkout(ctx, workoutID)
		if err != nil {
			return err
		}
		if w.Name != title {
			taken, err := s.repo.TitleExists(ctx, title)
			if err != nil {
				return err
			}
			if taken {
				return ErrTitleExists
			}
			if err := s.repo.UpdateTitle(ctx, workoutID, title); err != nil {
				return err
			}
		}
	} else {
		taken, err := s.repo.TitleExists(ctx, title)
		if err != nil {
			return err
		}
		if taken {
			return ErrTitleExists
		}
		w, err := s.repo.CreateOrFindWorkout(ctx, title, "")
		if err != nil {
			return err
		}
		workoutID = w.ID
	}

	return s.repo.UpdateWorkoutDetails(ctx, workoutID, Resequence(details))
}

// LoadWorkouts returns all templates.
func (s *Service) LoadWorkouts(ctx context.Context) ([]models.Workout, error) {
	return s.repo.FetchAllWorkouts(ctx)
}

// LoadWorkout returns one template row.
func (s *Service) LoadWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error) {
	return s.repo.FetchWorkout(ctx, id)
}

// LoadWorkoutDetails returns the workout's exercise details. While the
// workout's session is active, staged temporary edits are merged onto the
// committed sets by set identity, so the caller sees in-progress values
// without the template having been touched.
func (s *Service) LoadWorkoutDetails(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseDetail, error) {
	details, err := s.repo.FetchWorkoutDetails(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	active, err := s.repo.ActiveWorkoutID(ctx)
	if err != nil {
		return nil, err
	}
	if active == nil || *active != workoutID {
		return details, nil
	}

	temp, err := s.repo.LoadTemporaryDetails(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	byExercise := make(map[uuid.UUID]models.ExerciseDetail, len(temp))
	for _, t := range temp {
		byExercise[t.ExerciseID] = t
	}

	for i := range details {
		t, ok := byExercise[details[i].ExerciseID]
		if !ok {
			continue
		}
		details[i].Sets = reconcile.Merge(details[i].Sets, t.Sets,
			func(st models.Set) uuid.UUID { return st.ID },
			func(existing, incoming models.Set) models.Set {
				existing.SetIndex = incoming.SetIndex
				existing.Reps = incoming.Reps
				existing.Weight = incoming.Weight
				existing.TimeSec = incoming.TimeSec
				existing.Distance = incoming.Distance
				existing.IsCompleted = incoming.IsCompleted
				return existing
			},
			func(incoming models.Set) models.Set { return incoming },
		)
	}
	return details, nil
}

// LoadWorkoutColors returns every workout's color tag keyed by id.
func (s *Service) LoadWorkoutColors(ctx context.Context) (map[uuid.UUID]string, error) {
	return s.repo.WorkoutColors(ctx)
}

// UpdateTitle renames a workout after validating the new title.
func (s *Service) UpdateTitle(ctx context.Context, id uuid.UUID, newTitle string) error {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return ErrEmptyTitle
	}
	w, err := s.repo.FetchWorkout(ctx, id)
	if err != nil {
		return err
	}
	if w.Name == newTitle {
		return nil
	}
	taken, err := s.repo.TitleExists(ctx, newTitle)
	if err != nil {
		return err
	}
	if taken {
		return ErrTitleExists
	}
	return s.repo.UpdateTitle(ctx, id, newTitle)
}

// UpdateColor sets the workout's color tag.
func (s *Service) UpdateColor(ctx context.Context, id uuid.UUID, color string) error {
	return s.repo.UpdateColor(ctx, id, color)
}

// DeleteWorkout removes a template and everything it owns.
func (s *Service) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteWorkout(ctx, id)
}

// DuplicateWorkout deep-copies a template under a "-copy" name.
func (s *Service) DuplicateWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error) {
	return s.repo.DuplicateWorkout(ctx, id)
}

// StartSession begins a timed session for the workout. At most one session
// may be active across the whole store: starting workout B while workout A's
// session runs returns ErrSessionActive, and A is left untouched. Starting
// the workout that is already active returns its current session.
func (s *Service) StartSession(ctx context.Context, workoutID uuid.UUID) (models.Session, error) {
	active, err := s.repo.ActiveWorkoutID(ctx)
	if err != nil {
		return models.Session{}, err
	}
	if active != nil {
		if *active == workoutID {
			return s.repo.SessionForWorkout(ctx, workoutID)
		}
		return models.Session{}, fmt.Errorf("workout %s: %w", *active, ErrSessionActive)
	}
	return s.repo.StartSession(ctx, workoutID)
}

// StopSession ends the workout's active session. No-op when none is active.
func (s *Service) StopSession(ctx context.Context, workoutID uuid.UUID) error {
	return s.repo.StopSession(ctx, workoutID)
}

// ActiveWorkoutID returns the workout holding the active session, or nil.
func (s *Service) ActiveWorkoutID(ctx context.Context) (*uuid.UUID, error) {
	return s.repo.ActiveWorkoutID(ctx)
}

// ActiveSession returns the active session and its elapsed time, or ok=false
// when nothing is running. Elapsed is recomputed from the stored start time,
// so it survives restarts without drift.
func (s *Service) ActiveSession(ctx context.Context) (models.Session, time.Duration, bool, error) {
	active, err := s.repo.ActiveWorkoutID(ctx)
	if err != nil || active == nil {
		return models.Session{}, 0, false, err
	}
	session, err := s.repo.SessionForWorkout(ctx, *active)
	if err != nil {
		return models.Session{}, 0, false, err
	}
	return session, session.Elapsed(s.now()), true, nil
}

// Sessions returns every session row.
func (s *Service) Sessions(ctx context.Context) ([]models.Session, error) {
	return s.repo.Sessions(ctx)
}

// SaveSetsDuringSession stages in-progress set edits for one exercise of the
// active session. Safe to call on every field edit: repeat calls with
// unchanged identities update in place. Set indices are re-sequenced dense
// before the merge.
func (s *Service) SaveSetsDuringSession(ctx context.Context, workoutID, exerciseID uuid.UUID, exerciseName string, orderIndex int, sets []models.Set) error {
	for i := range sets {
		sets[i].SetIndex = i
	}
	return s.repo.SaveOrUpdateTemporarySets(ctx, workoutID, exerciseID, exerciseName, orderIndex, sets)
}

// CompleteSession folds a finished session into history: aggregates are
// computed from the final detail list, the history snapshot is saved, the
// session stopped, and only then is the temporary staging purged. If the
// history save fails the temporary data is preserved so a retry is possible.
func (s *Service) CompleteSession(ctx context.Context, workoutID uuid.UUID, elapsedFormatted string, details []models.ExerciseDetail) (models.History, error) {
	agg := Aggregate(details)

	h := models.History{
		WorkoutID:         workoutID,
		WorkoutDate:       s.now().UTC(),
		TotalWeightLifted: agg.TotalWeightLifted,
		RepsCompleted:     agg.RepsCompleted,
		TimeToComplete:    elapsedFormatted,
		TotalDistance:     agg.TotalDistance,
		CardioTimeSec:     agg.CardioTimeSec,
		Details:           Resequence(details),
	}

	saved, err := s.repo.SaveHistory(ctx, h)
	if err != nil {
		return models.History{}, fmt.Errorf("saving history: %w", err)
	}

	if err := s.repo.StopSession(ctx, workoutID); err != nil {
		return models.History{}, err
	}

	// Best-effort cleanup: failing to purge staging data is not user-fatal.
	if err := s.repo.DeleteAllTemporary(ctx); err != nil {
		s.log.Warn("temporary purge failed", "error", err)
	}
	return saved, nil
}

// CancelSession stops the workout's session and discards all staged edits
// without writing history.
func (s *Service) CancelSession(ctx context.Context, workoutID uuid.UUID) error {
	if err := s.repo.StopSession(ctx, workoutID); err != nil {
		return err
	}
	if err := s.repo.DeleteAllTemporary(ctx); err != nil {
		s.log.Warn("temporary purge failed", "error", err)
	}
	return nil
}

// HistoryForMonth returns the records completed in monthOf's calendar month.
func (s *Service) HistoryForMonth(ctx context.Context, monthOf time.Time) ([]models.History, error) {
	return s.repo.HistoryForMonth(ctx, monthOf)
}

// HistoryForWorkout returns one template's completion records.
func (s *Service) HistoryForWorkout(ctx context.Context, workoutID uuid.UUID) ([]models.History, error) {
	return s.repo.HistoryForWorkout(ctx, workoutID)
}

// DeleteHistory removes one history record.
func (s *Service) DeleteHistory(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteHistory(ctx, id)
}
