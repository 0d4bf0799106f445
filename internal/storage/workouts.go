package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/damiensprinkle/liftlog/internal/reconcile"
	"github.com/google/uuid"
)

// CreateOrFindWorkout finds a workout by exact (case-sensitive) name, creating
// it if absent. The case-insensitive uniqueness index still rejects a name
// that collides with an existing one in a different case.
func (db *DB) CreateOrFindWorkout(ctx context.Context, title, color string) (models.Workout, error) {
	var w models.Workout
	err := db.sql.QueryRowContext(ctx,
		`SELECT id, name, color, created_at, updated_at FROM workouts WHERE name = ?`,
		title).Scan(&w.ID, &w.Name, &w.Color, &w.CreatedAt, &w.UpdatedAt)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Workout{}, fmt.Errorf("querying workout by name: %w", err)
	}

	now := time.Now().UTC()
	w = models.Workout{ID: uuid.New(), Name: title, Color: color, CreatedAt: now, UpdatedAt: now}
	_, err = db.sql.ExecContext(ctx,
		`INSERT INTO workouts (id, name, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		w.ID, w.Name, w.Color, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return models.Workout{}, fmt.Errorf("inserting workout: %w", err)
	}
	return w, nil
}

// AddExerciseDetail finds or creates the named workout and appends a new
// exercise detail with the given sets.
func (db *DB) AddExerciseDetail(ctx context.Context, workoutTitle string, d models.ExerciseDetail) error {
	w, err := db.CreateOrFindWorkout(ctx, workoutTitle, "")
	if err != nil {
		return err
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return insertDetail(ctx, tx, "workout_id", w.ID, d)
	})
}

// FetchWorkout returns the workout row for id, or ErrNotFound.
func (db *DB) FetchWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error) {
	var w models.Workout
	err := db.sql.QueryRowContext(ctx,
		`SELECT id, name, color, created_at, updated_at FROM workouts WHERE id = ?`,
		id).Scan(&w.ID, &w.Name, &w.Color, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Workout{}, fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Workout{}, fmt.Errorf("querying workout: %w", err)
	}
	return w, nil
}

// FetchAllWorkouts returns every workout template. No ordering is promised;
// callers sort.
func (db *DB) FetchAllWorkouts(ctx context.Context) ([]models.Workout, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, name, color, created_at, updated_at FROM workouts`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var workouts []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.Name, &w.Color, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// FetchWorkoutDetails returns the workout's exercise details ordered by order
// index, with sets ordered by set index.
func (db *DB) FetchWorkoutDetails(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseDetail, error) {
	return fetchDetails(ctx, db.sql, "workout_id", workoutID)
}

// DeleteWorkout removes the workout and cascades to its details, sets,
// temporary details, sessions, and history. ErrNotFound if id is unmatched;
// the caller decides whether that is fatal.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	res, err := db.sql.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateTitle renames a workout. Uniqueness is re-validated only when the
// title actually changes.
func (db *DB) UpdateTitle(ctx context.Context, id uuid.UUID, newTitle string) error {
	w, err := db.FetchWorkout(ctx, id)
	if err != nil {
		return err
	}
	if w.Name == newTitle {
		return nil
	}
	_, err = db.sql.ExecContext(ctx,
		`UPDATE workouts SET name = ?, updated_at = ? WHERE id = ?`,
		newTitle, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating workout title: %w", err)
	}
	return nil
}

// UpdateColor sets the workout's color tag.
func (db *DB) UpdateColor(ctx context.Context, id uuid.UUID, color string) error {
	res, err := db.sql.ExecContext(ctx,
		`UPDATE workouts SET color = ?, updated_at = ? WHERE id = ?`,
		color, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating workout color: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	return nil
}

// TitleExists reports whether a workout with the given title exists,
// case-insensitively.
func (db *DB) TitleExists(ctx context.Context, title string) (bool, error) {
	var count int
	err := db.sql.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workouts WHERE lower(name) = lower(?)`,
		title).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking title: %w", err)
	}
	return count > 0, nil
}

// WorkoutColors returns the color tag for every workout, keyed by id.
func (db *DB) WorkoutColors(ctx context.Context) (map[uuid.UUID]string, error) {
	rows, err := db.sql.QueryContext(ctx, `SELECT id, color FROM workouts`)
	if err != nil {
		return nil, fmt.Errorf("querying workout colors: %w", err)
	}
	defer rows.Close()

	colors := make(map[uuid.UUID]string)
	for rows.Next() {
		var id uuid.UUID
		var color string
		if err := rows.Scan(&id, &color); err != nil {
			return nil, fmt.Errorf("scanning workout color: %w", err)
		}
		colors[id] = color
	}
	return colors, rows.Err()
}

// UpdateWorkoutDetails applies the caller-supplied detail list onto the
// workout's stored details in one transaction. Details are matched by stable
// exercise id: matched rows keep their storage identity and get their fields
// and sets overwritten, new ones are inserted, and details absent from the
// incoming list are deleted along with their sets.
func (db *DB) UpdateWorkoutDetails(ctx context.Context, workoutID uuid.UUID, details []models.ExerciseDetail) error {
	existing, err := db.FetchWorkoutDetails(ctx, workoutID)
	if err != nil {
		return err
	}

	plan := reconcile.Diff(existing, details, func(d models.ExerciseDetail) uuid.UUID { return d.ExerciseID })

	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, u := range plan.Updates {
			_, err := tx.ExecContext(ctx,
				`UPDATE exercise_details SET name = ?, order_index = ?, quantifier = ?, measurement = ? WHERE id = ?`,
				u.Incoming.Name, u.Incoming.OrderIndex,
				string(u.Incoming.Quantifier), string(u.Incoming.Measurement), u.Existing.ID)
			if err != nil {
				return fmt.Errorf("updating exercise detail: %w", err)
			}
			if err := mergeSets(ctx, tx, templateSets, u.Existing.ID, u.Existing.Sets, u.Incoming.Sets); err != nil {
				return err
			}
		}
		for _, d := range plan.Creates {
			if err := insertDetail(ctx, tx, "workout_id", workoutID, d); err != nil {
				return err
			}
		}
		for _, d := range plan.Deletes {
			if _, err := tx.ExecContext(ctx, `DELETE FROM exercise_details WHERE id = ?`, d.ID); err != nil {
				return fmt.Errorf("deleting exercise detail: %w", err)
			}
		}
		_, err := tx.ExecContext(ctx, `UPDATE workouts SET updated_at = ? WHERE id = ?`, time.Now().UTC(), workoutID)
		return err
	})
}

// DuplicateWorkout deep-copies a workout under a free "-copy" name: details
// and sets get fresh identities so the copy never aliases the original.
func (db *DB) DuplicateWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error) {
	src, err := db.FetchWorkout(ctx, id)
	if err != nil {
		return models.Workout{}, err
	}
	details, err := db.FetchWorkoutDetails(ctx, id)
	if err != nil {
		return models.Workout{}, err
	}

	name, err := FreeName(ctx, src.Name, db.TitleExists)
	if err != nil {
		return models.Workout{}, err
	}

	now := time.Now().UTC()
	dup := models.Workout{ID: uuid.New(), Name: name, Color: src.Color, CreatedAt: now, UpdatedAt: now}

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO workouts (id, name, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			dup.ID, dup.Name, dup.Color, dup.CreatedAt, dup.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting workout copy: %w", err)
		}
		for _, d := range details {
			d.ID = uuid.New()
			d.ExerciseID = uuid.New()
			for i := range d.Sets {
				d.Sets[i].ID = uuid.New()
			}
			if err := insertDetail(ctx, tx, "workout_id", dup.ID, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Workout{}, err
	}
	return dup, nil
}

// FreeName returns base if no workout holds it, otherwise base-copy,
// base-copy2, base-copy3, … until a free name is found.
func FreeName(ctx context.Context, base string, exists func(context.Context, string) (bool, error)) (string, error) {
	taken, err := exists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for n := 1; ; n++ {
		candidate := base + "-copy"
		if n > 1 {
			candidate = fmt.Sprintf("%s-copy%d", base, n)
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}
