package workout

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/damiensprinkle/liftlog/internal/reconcile"
	"github.com/damiensprinkle/liftlog/internal/storage"
	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository with the same semantics as the
// SQLite store: case-insensitive name uniqueness, identity-keyed merges, and
// cascade deletes. It backs tests and ephemeral runs.
type MemoryRepository struct {
	mu        sync.RWMutex
	workouts  map[uuid.UUID]models.Workout
	details   map[uuid.UUID][]models.ExerciseDetail // by workout id
	temporary map[uuid.UUID][]models.ExerciseDetail // by workout id
	sessions  map[uuid.UUID]models.Session          // by workout id
	history   map[uuid.UUID]models.History
	now       func() time.Time
}

// NewMemoryRepository returns an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		workouts:  make(map[uuid.UUID]models.Workout),
		details:   make(map[uuid.UUID][]models.ExerciseDetail),
		temporary: make(map[uuid.UUID][]models.ExerciseDetail),
		sessions:  make(map[uuid.UUID]models.Session),
		history:   make(map[uuid.UUID]models.History),
		now:       time.Now,
	}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) CreateOrFindWorkout(ctx context.Context, title, color string) (models.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.workouts {
		if w.Name == title {
			return w, nil
		}
	}
	for _, w := range r.workouts {
		if strings.EqualFold(w.Name, title) {
			return models.Workout{}, fmt.Errorf("workout name %q already taken", title)
		}
	}
	now := r.now().UTC()
	w := models.Workout{ID: uuid.New(), Name: title, Color: color, CreatedAt: now, UpdatedAt: now}
	r.workouts[w.ID] = w
	return w, nil
}

func (r *MemoryRepository) AddExerciseDetail(ctx context.Context, workoutTitle string, d models.ExerciseDetail) error {
	w, err := r.CreateOrFindWorkout(ctx, workoutTitle, "")
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.ExerciseID == uuid.Nil {
		d.ExerciseID = uuid.New()
	}
	r.details[w.ID] = append(r.details[w.ID], cloneDetail(d))
	return nil
}

func (r *MemoryRepository) FetchWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workouts[id]
	if !ok {
		return models.Workout{}, fmt.Errorf("workout %s: %w", id, storage.ErrNotFound)
	}
	return w, nil
}

func (r *MemoryRepository) FetchAllWorkouts(ctx context.Context) ([]models.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Workout, 0, len(r.workouts))
	for _, w := range r.workouts {
		out = append(out, w)
	}
	return out, nil
}

func (r *MemoryRepository) FetchWorkoutDetails(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedClones(r.details[workoutID]), nil
}

func (r *MemoryRepository) UpdateWorkoutDetails(ctx context.Context, workoutID uuid.UUID, details []models.ExerciseDetail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[workoutID]; !ok {
		return fmt.Errorf("workout %s: %w", workoutID, storage.ErrNotFound)
	}

	merged := reconcile.Merge(r.details[workoutID], details,
		func(d models.ExerciseDetail) uuid.UUID { return d.ExerciseID },
		func(existing, incoming models.ExerciseDetail) models.ExerciseDetail {
			existing.Name = incoming.Name
			existing.OrderIndex = incoming.OrderIndex
			existing.Quantifier = incoming.Quantifier
			existing.Measurement = incoming.Measurement
			existing.Sets = mergeSetRows(existing.Sets, incoming.Sets)
			return existing
		},
		func(incoming models.ExerciseDetail) models.ExerciseDetail {
			d := cloneDetail(incoming)
			if d.ID == uuid.Nil {
				d.ID = uuid.New()
			}
			if d.ExerciseID == uuid.Nil {
				d.ExerciseID = uuid.New()
			}
			for i := range d.Sets {
				if d.Sets[i].ID == uuid.Nil {
					d.Sets[i].ID = uuid.New()
				}
			}
			return d
		},
	)
	r.details[workoutID] = merged

	w := r.workouts[workoutID]
	w.UpdatedAt = r.now().UTC()
	r.workouts[workoutID] = w
	return nil
}

func (r *MemoryRepository) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[id]; !ok {
		return fmt.Errorf("workout %s: %w", id, storage.ErrNotFound)
	}
	delete(r.workouts, id)
	delete(r.details, id)
	delete(r.temporary, id)
	delete(r.sessions, id)
	for hid, h := range r.history {
		if h.WorkoutID == id {
			delete(r.history, hid)
		}
	}
	return nil
}

func (r *MemoryRepository) DuplicateWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error) {
	src, err := r.FetchWorkout(ctx, id)
	if err != nil {
		return models.Workout{}, err
	}
	name, err := storage.FreeName(ctx, src.Name, r.TitleExists)
	if err != nil {
		return models.Workout{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	dup := models.Workout{ID: uuid.New(), Name: name, Color: src.Color, CreatedAt: now, UpdatedAt: now}
	r.workouts[dup.ID] = dup

	var details []models.ExerciseDetail
	for _, d := range r.details[id] {
		c := cloneDetail(d)
		c.ID = uuid.New()
		c.ExerciseID = uuid.New()
		for i := range c.Sets {
			c.Sets[i].ID = uuid.New()
		}
		details = append(details, c)
	}
	r.details[dup.ID] = details
	return dup, nil
}

func (r *MemoryRepository) UpdateTitle(ctx context.Context, id uuid.UUID, newTitle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return fmt.Errorf("workout %s: %w", id, storage.ErrNotFound)
	}
	if w.Name == newTitle {
		return nil
	}
	w.Name = newTitle
	w.UpdatedAt = r.now().UTC()
	r.workouts[id] = w
	return nil
}

func (r *MemoryRepository) UpdateColor(ctx context.Context, id uuid.UUID, color string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return fmt.Errorf("workout %s: %w", id, storage.ErrNotFound)
	}
	w.Color = color
	w.UpdatedAt = r.now().UTC()
	r.workouts[id] = w
	return nil
}

func (r *MemoryRepository) TitleExists(ctx context.Context, title string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.workouts {
		if strings.EqualFold(w.Name, title) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) WorkoutColors(ctx context.Context) (map[uuid.UUID]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	colors := make(map[uuid.UUID]string, len(r.workouts))
	for id, w := range r.workouts {
		colors[id] = w.Color
	}
	return colors, nil
}

func (r *MemoryRepository) SaveOrUpdateTemporarySets(ctx context.Context, workoutID, exerciseID uuid.UUID, exerciseName string, orderIndex int, sets []models.Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[workoutID]; !ok {
		return fmt.Errorf("workout %s: %w", workoutID, storage.ErrNotFound)
	}

	staged := r.temporary[workoutID]
	idx := -1
	for i, d := range staged {
		if d.ExerciseID == exerciseID {
			idx = i
			break
		}
	}
	if idx < 0 {
		staged = append(staged, models.ExerciseDetail{
			ID:         uuid.New(),
			ExerciseID: exerciseID,
			Name:       exerciseName,
			OrderIndex: orderIndex,
		})
		idx = len(staged) - 1
	}
	staged[idx].Name = exerciseName
	staged[idx].OrderIndex = orderIndex
	staged[idx].Sets = mergeSetRows(staged[idx].Sets, sets)
	r.temporary[workoutID] = staged
	return nil
}

func (r *MemoryRepository) LoadTemporaryDetails(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedClones(r.temporary[workoutID]), nil
}

func (r *MemoryRepository) DeleteAllTemporary(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.temporary = make(map[uuid.UUID][]models.ExerciseDetail)
	return nil
}

func (r *MemoryRepository) StartSession(ctx context.Context, workoutID uuid.UUID) (models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[workoutID]; !ok {
		return models.Session{}, fmt.Errorf("workout %s: %w", workoutID, storage.ErrNotFound)
	}
	s := models.Session{ID: uuid.New(), WorkoutID: workoutID, IsActive: true, StartTime: r.now().UTC()}
	r.sessions[workoutID] = s
	return s, nil
}

func (r *MemoryRepository) StopSession(ctx context.Context, workoutID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[workoutID]
	if !ok || !s.IsActive {
		return nil
	}
	end := r.now().UTC()
	s.IsActive = false
	s.EndTime = &end
	r.sessions[workoutID] = s
	return nil
}

func (r *MemoryRepository) ActiveWorkoutID(ctx context.Context) (*uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, s := range r.sessions {
		if s.IsActive {
			active := id
			return &active, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) SessionForWorkout(ctx context.Context, workoutID uuid.UUID) (models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[workoutID]
	if !ok {
		return models.Session{}, fmt.Errorf("session for workout %s: %w", workoutID, storage.ErrNotFound)
	}
	return s, nil
}

func (r *MemoryRepository) Sessions(ctx context.Context) ([]models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (r *MemoryRepository) SaveHistory(ctx context.Context, h models.History) (models.History, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	snapshot := make([]models.ExerciseDetail, 0, len(h.Details))
	for _, d := range h.Details {
		c := cloneDetail(d)
		c.ID = uuid.New()
		for i := range c.Sets {
			c.Sets[i].ID = uuid.New()
		}
		snapshot = append(snapshot, c)
	}
	h.Details = snapshot
	r.history[h.ID] = h
	return h, nil
}

func (r *MemoryRepository) HistoryForMonth(ctx context.Context, monthOf time.Time) ([]models.History, error) {
	start := time.Date(monthOf.Year(), monthOf.Month(), 1, 0, 0, 0, 0, monthOf.Location())
	end := start.AddDate(0, 1, 0)

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.History
	for _, h := range r.history {
		if !h.WorkoutDate.Before(start.UTC()) && h.WorkoutDate.Before(end.UTC()) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].WorkoutDate.After(out[b].WorkoutDate) })
	return out, nil
}

func (r *MemoryRepository) HistoryForWorkout(ctx context.Context, workoutID uuid.UUID) ([]models.History, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.History
	for _, h := range r.history {
		if h.WorkoutID == workoutID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].WorkoutDate.After(out[b].WorkoutDate) })
	return out, nil
}

func (r *MemoryRepository) DeleteHistory(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.history[id]; !ok {
		return fmt.Errorf("history %s: %w", id, storage.ErrNotFound)
	}
	delete(r.history, id)
	return nil
}

func mergeSetRows(existing, incoming []models.Set) []models.Set {
	merged := reconcile.Merge(existing, incoming,
		func(s models.Set) uuid.UUID { return s.ID },
		func(ex, in models.Set) models.Set {
			ex.SetIndex = in.SetIndex
			ex.Reps = in.Reps
			ex.Weight = in.Weight
			ex.TimeSec = in.TimeSec
			ex.Distance = in.Distance
			ex.IsCompleted = in.IsCompleted
			return ex
		},
		func(in models.Set) models.Set {
			if in.ID == uuid.Nil {
				in.ID = uuid.New()
			}
			return in
		},
	)
	sort.SliceStable(merged, func(a, b int) bool { return merged[a].SetIndex < merged[b].SetIndex })
	return merged
}

func cloneDetail(d models.ExerciseDetail) models.ExerciseDetail {
	sets := make([]models.Set, len(d.Sets))
	copy(sets, d.Sets)
	d.Sets = sets
	return d
}

func sortedClones(details []models.ExerciseDetail) []models.ExerciseDetail {
	out := make([]models.ExerciseDetail, 0, len(details))
	for _, d := range details {
		out = append(out, cloneDetail(d))
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].OrderIndex < out[b].OrderIndex })
	for i := range out {
		sort.SliceStable(out[i].Sets, func(a, b int) bool { return out[i].Sets[a].SetIndex < out[i].Sets[b].SetIndex })
	}
	return out
}
