package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/google/uuid"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedWorkout(t *testing.T, db *DB, title string) (models.Workout, []models.ExerciseDetail) {
	t.Helper()
	ctx := context.Background()
	w, err := db.CreateOrFindWorkout(ctx, title, "#00ff00")
	if err != nil {
		t.Fatalf("create workout: %v", err)
	}
	details := []models.ExerciseDetail{
		{ExerciseID: uuid.New(), Name: "Squat", OrderIndex: 0,
			Quantifier: models.QuantifierReps, Measurement: models.MeasurementWeight,
			Sets: []models.Set{
				{ID: uuid.New(), SetIndex: 0, Reps: 5, Weight: 135},
				{ID: uuid.New(), SetIndex: 1, Reps: 5, Weight: 135},
			}},
	}
	if err := db.UpdateWorkoutDetails(ctx, w.ID, details); err != nil {
		t.Fatalf("update details: %v", err)
	}
	return w, details
}

func TestCreateOrFindWorkout(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	w1, err := db.CreateOrFindWorkout(ctx, "Leg Day", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	w2, err := db.CreateOrFindWorkout(ctx, "Leg Day", "")
	if err != nil {
		t.Fatalf("re-create: %v", err)
	}
	if w1.ID != w2.ID {
		t.Error("second create with same title minted a new workout")
	}

	// Lookup is case-sensitive but the uniqueness index is not, so a
	// different casing of a taken name cannot be inserted.
	if _, err := db.CreateOrFindWorkout(ctx, "LEG DAY", ""); err == nil {
		t.Error("expected uniqueness violation for LEG DAY")
	}

	taken, err := db.TitleExists(ctx, "leg day")
	if err != nil {
		t.Fatalf("TitleExists: %v", err)
	}
	if !taken {
		t.Error("TitleExists is not case-insensitive")
	}
}

func TestFetchWorkoutNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.FetchWorkout(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := db.DeleteWorkout(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete err = %v, want ErrNotFound", err)
	}
}

func TestUpdateWorkoutDetailsMerge(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	w, details := seedWorkout(t, db, "Leg Day")

	stored, err := db.FetchWorkoutDetails(ctx, w.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(stored) != 1 || len(stored[0].Sets) != 2 {
		t.Fatalf("stored = %d details / %d sets, want 1/2", len(stored), len(stored[0].Sets))
	}
	firstRowID := stored[0].ID
	firstSetID := stored[0].Sets[0].ID

	// Edit one set, drop the other, add an exercise.
	edited := []models.ExerciseDetail{
		{ExerciseID: details[0].ExerciseID, Name: "Squat", OrderIndex: 0,
			Quantifier: models.QuantifierReps, Measurement: models.MeasurementWeight,
			Sets: []models.Set{{ID: firstSetID, SetIndex: 0, Reps: 3, Weight: 155}}},
		{ExerciseID: uuid.New(), Name: "Lunge", OrderIndex: 1,
			Quantifier: models.QuantifierReps, Measurement: models.MeasurementWeight,
			Sets: []models.Set{{ID: uuid.New(), SetIndex: 0, Reps: 8, Weight: 40}}},
	}
	if err := db.UpdateWorkoutDetails(ctx, w.ID, edited); err != nil {
		t.Fatalf("merge: %v", err)
	}

	after, err := db.FetchWorkoutDetails(ctx, w.ID)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if len(after) != 2 {
		t.Fatalf("details = %d, want 2", len(after))
	}
	if after[0].ID != firstRowID {
		t.Error("matched detail lost its row identity in the merge")
	}
	if len(after[0].Sets) != 1 || after[0].Sets[0].ID != firstSetID {
		t.Fatalf("sets = %+v, want the single surviving set", after[0].Sets)
	}
	if after[0].Sets[0].Weight != 155 || after[0].Sets[0].Reps != 3 {
		t.Errorf("set = %+v, want updated reps/weight", after[0].Sets[0])
	}
	if after[1].Name != "Lunge" {
		t.Errorf("second detail = %q, want Lunge", after[1].Name)
	}
}

func TestDeleteWorkoutCascades(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	w, details := seedWorkout(t, db, "Leg Day")

	if _, err := db.StartSession(ctx, w.ID); err != nil {
		t.Fatalf("start session: %v", err)
	}
	err := db.SaveOrUpdateTemporarySets(ctx, w.ID, details[0].ExerciseID, "Squat", 0,
		[]models.Set{{ID: uuid.New(), Reps: 5, Weight: 140}})
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := db.SaveHistory(ctx, models.History{
		WorkoutID: w.ID, WorkoutDate: time.Now().UTC(), TimeToComplete: "00:30:00",
		Details: details,
	}); err != nil {
		t.Fatalf("history: %v", err)
	}

	if err := db.DeleteWorkout(ctx, w.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := db.FetchWorkout(ctx, w.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("fetch after delete = %v, want ErrNotFound", err)
	}
	remaining, err := db.FetchWorkoutDetails(ctx, w.ID)
	if err != nil {
		t.Fatalf("fetch details: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("%d orphan details after delete", len(remaining))
	}
	temp, err := db.LoadTemporaryDetails(ctx, w.ID)
	if err != nil {
		t.Fatalf("load temp: %v", err)
	}
	if len(temp) != 0 {
		t.Errorf("%d orphan temporary details after delete", len(temp))
	}
	sessions, err := db.Sessions(ctx)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("%d orphan sessions after delete", len(sessions))
	}
	records, err := db.HistoryForWorkout(ctx, w.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("%d orphan history records after delete", len(records))
	}
}

func TestStartSessionReplacesRow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	w, _ := seedWorkout(t, db, "Leg Day")

	s1, err := db.StartSession(ctx, w.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !s1.IsActive {
		t.Error("started session not active")
	}

	if err := db.StopSession(ctx, w.ID); err != nil {
		t.Fatalf("stop: %v", err)
	}
	stopped, err := db.SessionForWorkout(ctx, w.ID)
	if err != nil {
		t.Fatalf("fetch session: %v", err)
	}
	if stopped.IsActive {
		t.Error("session still active after stop")
	}
	if stopped.EndTime == nil {
		t.Error("stopped session has no end time")
	}

	// Restarting replaces the stored row, one session per workout.
	s2, err := db.StartSession(ctx, w.ID)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if s2.ID == s1.ID {
		t.Error("restart reused the old session row")
	}
	all, err := db.Sessions(ctx)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("sessions = %d, want 1", len(all))
	}

	active, err := db.ActiveWorkoutID(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active == nil || *active != w.ID {
		t.Errorf("active = %v, want %s", active, w.ID)
	}
}

func TestTemporaryStagingUpsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	w, details := seedWorkout(t, db, "Leg Day")
	exID := details[0].ExerciseID

	set := models.Set{ID: uuid.New(), SetIndex: 0, Reps: 5, Weight: 140}
	for i := 0; i < 3; i++ {
		set.Weight += 5
		err := db.SaveOrUpdateTemporarySets(ctx, w.ID, exID, "Squat", 0, []models.Set{set})
		if err != nil {
			t.Fatalf("stage %d: %v", i, err)
		}
	}

	temp, err := db.LoadTemporaryDetails(ctx, w.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(temp) != 1 {
		t.Fatalf("temp details = %d, want 1 (upsert by exercise)", len(temp))
	}
	if len(temp[0].Sets) != 1 {
		t.Fatalf("temp sets = %d, want 1", len(temp[0].Sets))
	}
	if temp[0].Sets[0].Weight != 155 {
		t.Errorf("weight = %v, want last staged 155", temp[0].Sets[0].Weight)
	}

	if err := db.DeleteAllTemporary(ctx); err != nil {
		t.Fatalf("purge: %v", err)
	}
	temp, err = db.LoadTemporaryDetails(ctx, w.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(temp) != 0 {
		t.Errorf("%d temp details after purge", len(temp))
	}
}

func TestHistoryMonthWindow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	w, details := seedWorkout(t, db, "Leg Day")

	dates := []time.Time{
		time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 22, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		if _, err := db.SaveHistory(ctx, models.History{
			WorkoutID: w.ID, WorkoutDate: d, TimeToComplete: "00:30:00", Details: details,
		}); err != nil {
			t.Fatalf("save history %v: %v", d, err)
		}
	}

	march, err := db.HistoryForMonth(ctx, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("month query: %v", err)
	}
	if len(march) != 2 {
		t.Fatalf("march records = %d, want 2", len(march))
	}
	// Newest first.
	if !march[0].WorkoutDate.After(march[1].WorkoutDate) {
		t.Error("records not ordered newest first")
	}
	// Snapshot details survive the round trip.
	if len(march[0].Details) != 1 || len(march[0].Details[0].Sets) != 2 {
		t.Errorf("snapshot = %+v, want 1 detail with 2 sets", march[0].Details)
	}

	byWorkout, err := db.HistoryForWorkout(ctx, w.ID)
	if err != nil {
		t.Fatalf("workout query: %v", err)
	}
	if len(byWorkout) != 3 {
		t.Errorf("workout records = %d, want 3", len(byWorkout))
	}

	if err := db.DeleteHistory(ctx, march[0].ID); err != nil {
		t.Fatalf("delete history: %v", err)
	}
	if err := db.DeleteHistory(ctx, march[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("re-delete = %v, want ErrNotFound", err)
	}
}

func TestHistorySnapshotIndependentOfTemplate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	w, details := seedWorkout(t, db, "Leg Day")

	saved, err := db.SaveHistory(ctx, models.History{
		WorkoutID: w.ID, WorkoutDate: time.Now().UTC(), TimeToComplete: "00:30:00",
		Details: details,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the template afterwards must not touch the snapshot.
	if err := db.UpdateWorkoutDetails(ctx, w.ID, []models.ExerciseDetail{
		{ExerciseID: uuid.New(), Name: "Deadlift", OrderIndex: 0,
			Quantifier: models.QuantifierReps, Measurement: models.MeasurementWeight,
			Sets: []models.Set{{ID: uuid.New(), Reps: 1, Weight: 300}}},
	}); err != nil {
		t.Fatalf("rewrite template: %v", err)
	}

	records, err := db.HistoryForWorkout(ctx, w.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if records[0].ID != saved.ID {
		t.Fatalf("unexpected record %s", records[0].ID)
	}
	if records[0].Details[0].Name != "Squat" {
		t.Errorf("snapshot name = %q, want original Squat", records[0].Details[0].Name)
	}
}

func TestDuplicateWorkoutDeepCopy(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	w, details := seedWorkout(t, db, "Leg Day")

	dup, err := db.DuplicateWorkout(ctx, w.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.Name != "Leg Day-copy" {
		t.Errorf("name = %q, want Leg Day-copy", dup.Name)
	}
	if dup.Color != w.Color {
		t.Errorf("color = %q, want %q", dup.Color, w.Color)
	}

	copies, err := db.FetchWorkoutDetails(ctx, dup.ID)
	if err != nil {
		t.Fatalf("fetch copy: %v", err)
	}
	if len(copies) != 1 || len(copies[0].Sets) != 2 {
		t.Fatalf("copy = %d details / %d sets, want 1/2", len(copies), len(copies[0].Sets))
	}
	if copies[0].ExerciseID == details[0].ExerciseID {
		t.Error("copy shares exercise identity with the source")
	}
	if copies[0].Sets[0].ID == details[0].Sets[0].ID {
		t.Error("copy shares set identity with the source")
	}

	second, err := db.DuplicateWorkout(ctx, w.ID)
	if err != nil {
		t.Fatalf("second duplicate: %v", err)
	}
	if second.Name != "Leg Day-copy2" {
		t.Errorf("second name = %q, want Leg Day-copy2", second.Name)
	}
}

func TestFreeName(t *testing.T) {
	taken := map[string]bool{"a": true, "a-copy": true, "a-copy2": true}
	exists := func(_ context.Context, name string) (bool, error) {
		return taken[name], nil
	}

	got, err := FreeName(context.Background(), "a", exists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a-copy3" {
		t.Errorf("FreeName = %q, want a-copy3", got)
	}

	got, err = FreeName(context.Background(), "b", exists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "b" {
		t.Errorf("FreeName = %q, want b untouched", got)
	}
}
