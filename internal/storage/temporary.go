package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/google/uuid"
)

// SaveOrUpdateTemporarySets stages in-progress set edits for one exercise of
// an active session. The temporary detail is found or created by exercise
// identity under the workout, then the supplied set list is merged onto its
// stored sets. Called on every field edit, so repeat calls with the same
// identities update in place rather than duplicating rows.
func (db *DB) SaveOrUpdateTemporarySets(ctx context.Context, workoutID, exerciseID uuid.UUID, exerciseName string, orderIndex int, sets []models.Set) error {
	if _, err := db.FetchWorkout(ctx, workoutID); err != nil {
		return err
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		var detailID uuid.UUID
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM temporary_exercise_details WHERE workout_id = ? AND exercise_id = ?`,
			workoutID, exerciseID).Scan(&detailID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			detailID = uuid.New()
			_, err = tx.ExecContext(ctx,
				`INSERT INTO temporary_exercise_details (id, workout_id, exercise_id, name, order_index)
				 VALUES (?, ?, ?, ?, ?)`,
				detailID, workoutID, exerciseID, exerciseName, orderIndex)
			if err != nil {
				return fmt.Errorf("inserting temporary detail: %w", err)
			}
		case err != nil:
			return fmt.Errorf("querying temporary detail: %w", err)
		default:
			_, err = tx.ExecContext(ctx,
				`UPDATE temporary_exercise_details SET name = ?, order_index = ? WHERE id = ?`,
				exerciseName, orderIndex, detailID)
			if err != nil {
				return fmt.Errorf("updating temporary detail: %w", err)
			}
		}

		existing, err := fetchSets(ctx, tx, tempSets, detailID)
		if err != nil {
			return err
		}
		return mergeSets(ctx, tx, tempSets, detailID, existing, sets)
	})
}

// LoadTemporaryDetails returns the staged details for a workout ordered by
// order index, each with its sets ordered by set index.
func (db *DB) LoadTemporaryDetails(ctx context.Context, workoutID uuid.UUID) ([]models.ExerciseDetail, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, exercise_id, name, order_index
		 FROM temporary_exercise_details
		 WHERE workout_id = ?
		 ORDER BY order_index ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying temporary details: %w", err)
	}
	defer rows.Close()

	var details []models.ExerciseDetail
	for rows.Next() {
		var d models.ExerciseDetail
		if err := rows.Scan(&d.ID, &d.ExerciseID, &d.Name, &d.OrderIndex); err != nil {
			return nil, fmt.Errorf("scanning temporary detail: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range details {
		sets, err := fetchSets(ctx, db.sql, tempSets, details[i].ID)
		if err != nil {
			return nil, err
		}
		details[i].Sets = sets
	}
	return details, nil
}

// DeleteAllTemporary bulk-deletes every temporary detail regardless of
// workout. Runs on session cancel or complete; failure here is non-fatal
// cleanup, the caller logs and continues.
func (db *DB) DeleteAllTemporary(ctx context.Context) error {
	if _, err := db.sql.ExecContext(ctx, `DELETE FROM temporary_exercise_details`); err != nil {
		return fmt.Errorf("deleting temporary details: %w", err)
	}
	return nil
}
