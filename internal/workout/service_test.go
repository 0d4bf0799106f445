package workout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/google/uuid"
)

func newTestService() (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, NewSink(), log), repo
}

func legDayDetails() []models.ExerciseDetail {
	return []models.ExerciseDetail{
		{
			ExerciseID:  uuid.New(),
			Name:        "Squat",
			Quantifier:  models.QuantifierReps,
			Measurement: models.MeasurementWeight,
			Sets:        []models.Set{{ID: uuid.New(), Reps: 5, Weight: 135}},
		},
	}
}

func TestSaveWorkoutValidationOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Seed a workout so the duplicate-title check could fire.
	if err := svc.SaveWorkout(ctx, "Leg Day", false, uuid.Nil, legDayDetails()); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	tests := []struct {
		name    string
		title   string
		details []models.ExerciseDetail
		wantErr error
	}{
		{name: "empty title", title: "   ", details: legDayDetails(), wantErr: ErrEmptyTitle},
		{name: "empty title beats missing details", title: "", wantErr: ErrEmptyTitle},
		{name: "no details", title: "Push Day", wantErr: ErrNoExerciseDetails},
		{name: "duplicate title", title: "Leg Day", details: legDayDetails(), wantErr: ErrTitleExists},
		{name: "duplicate title different case", title: "LEG DAY", details: legDayDetails(), wantErr: ErrTitleExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SaveWorkout(ctx, tt.title, false, uuid.Nil, tt.details)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SaveWorkout = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveWorkoutTitleExistsAfterSave(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.SaveWorkout(ctx, "Leg Day", false, uuid.Nil, legDayDetails()); err != nil {
		t.Fatalf("save: %v", err)
	}

	taken, err := svc.repo.TitleExists(ctx, "leg day")
	if err != nil {
		t.Fatalf("TitleExists: %v", err)
	}
	if !taken {
		t.Error("titleExists(\"leg day\") = false after save, want true (case-insensitive)")
	}

	workouts, err := svc.LoadWorkouts(ctx)
	if err != nil {
		t.Fatalf("LoadWorkouts: %v", err)
	}
	if err := svc.DeleteWorkout(ctx, workouts[0].ID); err != nil {
		t.Fatalf("DeleteWorkout: %v", err)
	}

	taken, err = svc.repo.TitleExists(ctx, "Leg Day")
	if err != nil {
		t.Fatalf("TitleExists: %v", err)
	}
	if taken {
		t.Error("titleExists true after delete, want false")
	}
}

func TestSaveWorkoutUpdateMergesByExerciseIdentity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	details := []models.ExerciseDetail{
		{ExerciseID: uuid.New(), Name: "Squat", Quantifier: models.QuantifierReps, Measurement: models.MeasurementWeight,
			Sets: []models.Set{{ID: uuid.New(), Reps: 5, Weight: 135}}},
		{ExerciseID: uuid.New(), Name: "Lunge", Quantifier: models.QuantifierReps, Measurement: models.MeasurementWeight,
			Sets: []models.Set{{ID: uuid.New(), Reps: 8, Weight: 40}}},
	}
	if err := svc.SaveWorkout(ctx, "Leg Day", false, uuid.Nil, details); err != nil {
		t.Fatalf("save: %v", err)
	}
	w := mustWorkout(t, svc, "Leg Day")

	// Rename squat, drop lunge, add a new exercise.
	edited := []models.ExerciseDetail{
		{ExerciseID: details[0].ExerciseID, Name: "Front Squat", Quantifier: models.QuantifierReps, Measurement: models.MeasurementWeight,
			Sets: details[0].Sets},
		{ExerciseID: uuid.New(), Name: "Leg Press", Quantifier: models.QuantifierReps, Measurement: models.MeasurementWeight,
			Sets: []models.Set{{ID: uuid.New(), Reps: 10, Weight: 200}}},
	}
	if err := svc.SaveWorkout(ctx, "Leg Day", true, w.ID, edited); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.LoadWorkoutDetails(ctx, w.ID)
	if err != nil {
		t.Fatalf("LoadWorkoutDetails: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("details = %d, want 2", len(got))
	}
	if got[0].Name != "Front Squat" || got[0].ExerciseID != details[0].ExerciseID {
		t.Errorf("first detail = %q (%s), want renamed Squat with stable exercise id", got[0].Name, got[0].ExerciseID)
	}
	if got[1].Name != "Leg Press" {
		t.Errorf("second detail = %q, want %q", got[1].Name, "Leg Press")
	}
	for i, d := range got {
		if d.OrderIndex != i {
			t.Errorf("detail[%d].OrderIndex = %d, want %d", i, d.OrderIndex, i)
		}
	}
}

func TestSaveWorkoutUpdateIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	details := legDayDetails()
	if err := svc.SaveWorkout(ctx, "Leg Day", false, uuid.Nil, details); err != nil {
		t.Fatalf("save: %v", err)
	}
	w := mustWorkout(t, svc, "Leg Day")

	first, err := svc.LoadWorkoutDetails(ctx, w.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := svc.SaveWorkout(ctx, "Leg Day", true, w.ID, first); err != nil {
		t.Fatalf("resave: %v", err)
	}
	second, err := svc.LoadWorkoutDetails(ctx, w.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	if len(second) != len(first) {
		t.Fatalf("details after resave = %d, want %d", len(second), len(first))
	}
	if second[0].ID != first[0].ID || second[0].Sets[0].ID != first[0].Sets[0].ID {
		t.Error("resave with identical input regenerated row identities")
	}
}

func TestSessionSingleActiveInvariant(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.SaveWorkout(ctx, "A", false, uuid.Nil, legDayDetails()); err != nil {
		t.Fatalf("save A: %v", err)
	}
	if err := svc.SaveWorkout(ctx, "B", false, uuid.Nil, legDayDetails()); err != nil {
		t.Fatalf("save B: %v", err)
	}
	a := mustWorkout(t, svc, "A")
	b := mustWorkout(t, svc, "B")

	if _, err := svc.StartSession(ctx, a.ID); err != nil {
		t.Fatalf("start A: %v", err)
	}

	active, err := svc.ActiveWorkoutID(ctx)
	if err != nil {
		t.Fatalf("ActiveWorkoutID: %v", err)
	}
	if active == nil || *active != a.ID {
		t.Fatalf("active = %v, want %s", active, a.ID)
	}

	if _, err := svc.StartSession(ctx, b.ID); !errors.Is(err, ErrSessionActive) {
		t.Errorf("start B while A active = %v, want ErrSessionActive", err)
	}

	// Starting the already-active workout again returns the same session.
	s1, err := svc.repo.SessionForWorkout(ctx, a.ID)
	if err != nil {
		t.Fatalf("SessionForWorkout: %v", err)
	}
	s2, err := svc.StartSession(ctx, a.ID)
	if err != nil {
		t.Fatalf("restart A: %v", err)
	}
	if s1.ID != s2.ID {
		t.Error("restarting the active workout replaced its session")
	}

	if err := svc.StopSession(ctx, a.ID); err != nil {
		t.Fatalf("stop A: %v", err)
	}
	active, err = svc.ActiveWorkoutID(ctx)
	if err != nil {
		t.Fatalf("ActiveWorkoutID: %v", err)
	}
	if active != nil {
		t.Errorf("active after stop = %v, want nil", active)
	}

	// Stop with nothing active is a no-op, not an error.
	if err := svc.StopSession(ctx, a.ID); err != nil {
		t.Errorf("second stop = %v, want nil", err)
	}
}

func TestAggregate(t *testing.T) {
	details := []models.ExerciseDetail{
		{Sets: []models.Set{
			{Reps: 0, Weight: 50},
			{Reps: 3, Weight: 10},
		}},
	}

	got := Aggregate(details)
	if got.TotalWeightLifted != 80 {
		t.Errorf("totalWeightLifted = %v, want 80", got.TotalWeightLifted)
	}
	if got.RepsCompleted != 3 {
		t.Errorf("repsCompleted = %d, want 3", got.RepsCompleted)
	}
}

func TestAggregateCardio(t *testing.T) {
	details := []models.ExerciseDetail{
		{Sets: []models.Set{
			{TimeSec: 600, Distance: 2.5},
			{TimeSec: 300, Distance: 1.0},
		}},
	}

	got := Aggregate(details)
	if got.CardioTimeSec != 900 {
		t.Errorf("cardioTimeSec = %d, want 900", got.CardioTimeSec)
	}
	if got.TotalDistance != 3.5 {
		t.Errorf("totalDistance = %v, want 3.5", got.TotalDistance)
	}
}

func TestCompleteSessionWritesHistoryThenPurges(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if err := svc.SaveWorkout(ctx, "Leg Day", false, uuid.Nil, legDayDetails()); err != nil {
		t.Fatalf("save: %v", err)
	}
	w := mustWorkout(t, svc, "Leg Day")
	details, err := svc.LoadWorkoutDetails(ctx, w.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, err := svc.StartSession(ctx, w.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	err = svc.SaveSetsDuringSession(ctx, w.ID, details[0].ExerciseID, details[0].Name, 0,
		[]models.Set{{ID: details[0].Sets[0].ID, Reps: 5, Weight: 140, IsCompleted: true}})
	if err != nil {
		t.Fatalf("stage sets: %v", err)
	}

	final, err := svc.LoadWorkoutDetails(ctx, w.ID)
	if err != nil {
		t.Fatalf("load merged: %v", err)
	}
	if final[0].Sets[0].Weight != 140 {
		t.Fatalf("staged weight not visible: %v", final[0].Sets[0].Weight)
	}

	h, err := svc.CompleteSession(ctx, w.ID, "00:45:00", final)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if h.TotalWeightLifted != 700 {
		t.Errorf("totalWeightLifted = %v, want 700", h.TotalWeightLifted)
	}
	if h.TimeToComplete != "00:45:00" {
		t.Errorf("timeToComplete = %q", h.TimeToComplete)
	}

	active, err := svc.ActiveWorkoutID(ctx)
	if err != nil || active != nil {
		t.Errorf("session still active after complete: %v, %v", active, err)
	}
	temp, err := repo.LoadTemporaryDetails(ctx, w.ID)
	if err != nil || len(temp) != 0 {
		t.Errorf("temporary details survive completion: %d, %v", len(temp), err)
	}

	// The template itself was not modified by the staged edits.
	tmpl, err := repo.FetchWorkoutDetails(ctx, w.ID)
	if err != nil {
		t.Fatalf("fetch template: %v", err)
	}
	if tmpl[0].Sets[0].Weight != 135 {
		t.Errorf("template weight = %v after completion, want untouched 135", tmpl[0].Sets[0].Weight)
	}
}

// failingHistoryRepo forces SaveHistory to fail so the preservation-on-error
// path can be observed.
type failingHistoryRepo struct {
	Repository
}

func (r *failingHistoryRepo) SaveHistory(ctx context.Context, h models.History) (models.History, error) {
	return models.History{}, errors.New("disk full")
}

func TestCompleteSessionPreservesTemporaryOnHistoryFailure(t *testing.T) {
	mem := NewMemoryRepository()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(&failingHistoryRepo{Repository: mem}, NewSink(), log)
	ctx := context.Background()

	if err := svc.SaveWorkout(ctx, "Leg Day", false, uuid.Nil, legDayDetails()); err != nil {
		t.Fatalf("save: %v", err)
	}
	w := mustWorkout(t, svc, "Leg Day")
	if _, err := svc.StartSession(ctx, w.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	err := svc.SaveSetsDuringSession(ctx, w.ID, uuid.New(), "Squat", 0,
		[]models.Set{{ID: uuid.New(), Reps: 5, Weight: 140}})
	if err != nil {
		t.Fatalf("stage: %v", err)
	}

	if _, err := svc.CompleteSession(ctx, w.ID, "00:10:00", legDayDetails()); err == nil {
		t.Fatal("complete succeeded despite history failure")
	}

	temp, err := mem.LoadTemporaryDetails(ctx, w.ID)
	if err != nil {
		t.Fatalf("load temp: %v", err)
	}
	if len(temp) == 0 {
		t.Error("temporary data purged despite failed history save; retry impossible")
	}
	active, err := svc.ActiveWorkoutID(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active == nil {
		t.Error("session stopped despite failed history save")
	}
}

func TestSaveSetsDuringSessionIdempotent(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if err := svc.SaveWorkout(ctx, "Leg Day", false, uuid.Nil, legDayDetails()); err != nil {
		t.Fatalf("save: %v", err)
	}
	w := mustWorkout(t, svc, "Leg Day")
	exerciseID := uuid.New()
	sets := []models.Set{
		{ID: uuid.New(), Reps: 5, Weight: 135},
		{ID: uuid.New(), Reps: 5, Weight: 135},
	}

	for i := 0; i < 3; i++ {
		if err := svc.SaveSetsDuringSession(ctx, w.ID, exerciseID, "Squat", 0, sets); err != nil {
			t.Fatalf("stage %d: %v", i, err)
		}
	}

	temp, err := repo.LoadTemporaryDetails(ctx, w.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(temp) != 1 {
		t.Fatalf("temporary details = %d, want 1", len(temp))
	}
	if len(temp[0].Sets) != 2 {
		t.Errorf("temporary sets = %d after repeat staging, want 2", len(temp[0].Sets))
	}
}

func TestMoveExercise(t *testing.T) {
	details := []models.ExerciseDetail{
		{ExerciseID: uuid.New(), Name: "a", OrderIndex: 0},
		{ExerciseID: uuid.New(), Name: "b", OrderIndex: 1},
		{ExerciseID: uuid.New(), Name: "c", OrderIndex: 2},
	}

	got := MoveExercise(details, 2, 0)

	wantNames := []string{"c", "a", "b"}
	for i, d := range got {
		if d.Name != wantNames[i] {
			t.Errorf("got[%d] = %q, want %q", i, d.Name, wantNames[i])
		}
		if d.OrderIndex != i {
			t.Errorf("got[%d].OrderIndex = %d, want %d", i, d.OrderIndex, i)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{61 * time.Second, "00:01:01"},
		{45 * time.Minute, "00:45:00"},
		{2*time.Hour + 3*time.Minute + 4*time.Second, "02:03:04"},
		{-time.Second, "00:00:00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.d); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestDeleteWorkoutCascades(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if err := svc.SaveWorkout(ctx, "Leg Day", false, uuid.Nil, legDayDetails()); err != nil {
		t.Fatalf("save: %v", err)
	}
	w := mustWorkout(t, svc, "Leg Day")
	if _, err := svc.StartSession(ctx, w.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.SaveSetsDuringSession(ctx, w.ID, uuid.New(), "Squat", 0, []models.Set{{ID: uuid.New()}}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	if err := svc.DeleteWorkout(ctx, w.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := repo.FetchWorkout(ctx, w.ID); err == nil {
		t.Error("workout still fetchable after delete")
	}
	details, _ := repo.FetchWorkoutDetails(ctx, w.ID)
	if len(details) != 0 {
		t.Errorf("%d orphan details after delete", len(details))
	}
	temp, _ := repo.LoadTemporaryDetails(ctx, w.ID)
	if len(temp) != 0 {
		t.Errorf("%d orphan temporary details after delete", len(temp))
	}
	sessions, _ := repo.Sessions(ctx)
	if len(sessions) != 0 {
		t.Errorf("%d orphan sessions after delete", len(sessions))
	}
}

func TestDuplicateWorkoutNaming(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.SaveWorkout(ctx, "Leg Day", false, uuid.Nil, legDayDetails()); err != nil {
		t.Fatalf("save: %v", err)
	}
	w := mustWorkout(t, svc, "Leg Day")

	first, err := svc.DuplicateWorkout(ctx, w.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if first.Name != "Leg Day-copy" {
		t.Errorf("first duplicate = %q, want %q", first.Name, "Leg Day-copy")
	}

	second, err := svc.DuplicateWorkout(ctx, w.ID)
	if err != nil {
		t.Fatalf("second duplicate: %v", err)
	}
	if second.Name != "Leg Day-copy2" {
		t.Errorf("second duplicate = %q, want %q", second.Name, "Leg Day-copy2")
	}
}

func mustWorkout(t *testing.T, svc *Service, name string) models.Workout {
	t.Helper()
	workouts, err := svc.LoadWorkouts(context.Background())
	if err != nil {
		t.Fatalf("LoadWorkouts: %v", err)
	}
	for _, w := range workouts {
		if w.Name == name {
			return w
		}
	}
	t.Fatalf("workout %q not found", name)
	return models.Workout{}
}
