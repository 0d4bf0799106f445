package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/google/uuid"
)

// SaveHistory appends a completed-session record together with its snapshot
// of exercise/set detail. Snapshot rows get fresh identities so they are
// independent copies: later template edits never reach into history.
func (db *DB) SaveHistory(ctx context.Context, h models.History) (models.History, error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO history (id, workout_id, workout_date, total_weight_lifted, reps_completed,
			 time_to_complete, total_distance, cardio_time_sec)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			h.ID, h.WorkoutID, h.WorkoutDate, h.TotalWeightLifted, h.RepsCompleted,
			h.TimeToComplete, h.TotalDistance, h.CardioTimeSec)
		if err != nil {
			return fmt.Errorf("inserting history: %w", err)
		}
		for _, d := range h.Details {
			d.ID = uuid.New()
			for i := range d.Sets {
				d.Sets[i].ID = uuid.New()
			}
			if err := insertDetail(ctx, tx, "history_id", h.ID, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.History{}, err
	}
	return h, nil
}

// HistoryForMonth returns the history records whose workout date falls in the
// calendar month of monthOf, newest first, each with its snapshot details.
func (db *DB) HistoryForMonth(ctx context.Context, monthOf time.Time) ([]models.History, error) {
	start := time.Date(monthOf.Year(), monthOf.Month(), 1, 0, 0, 0, 0, monthOf.Location())
	end := start.AddDate(0, 1, 0)
	return db.queryHistory(ctx,
		`SELECT id, workout_id, workout_date, total_weight_lifted, reps_completed,
		 time_to_complete, total_distance, cardio_time_sec
		 FROM history
		 WHERE workout_date >= ? AND workout_date < ?
		 ORDER BY workout_date DESC`,
		start.UTC(), end.UTC())
}

// HistoryForWorkout returns the workout's history records, newest first.
func (db *DB) HistoryForWorkout(ctx context.Context, workoutID uuid.UUID) ([]models.History, error) {
	return db.queryHistory(ctx,
		`SELECT id, workout_id, workout_date, total_weight_lifted, reps_completed,
		 time_to_complete, total_distance, cardio_time_sec
		 FROM history
		 WHERE workout_id = ?
		 ORDER BY workout_date DESC`,
		workoutID)
}

// DeleteHistory removes a single history record and its snapshot.
func (db *DB) DeleteHistory(ctx context.Context, id uuid.UUID) error {
	res, err := db.sql.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting history: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("history %s: %w", id, ErrNotFound)
	}
	return nil
}

func (db *DB) queryHistory(ctx context.Context, query string, args ...any) ([]models.History, error) {
	rows, err := db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []models.History
	for rows.Next() {
		var h models.History
		if err := rows.Scan(&h.ID, &h.WorkoutID, &h.WorkoutDate, &h.TotalWeightLifted,
			&h.RepsCompleted, &h.TimeToComplete, &h.TotalDistance, &h.CardioTimeSec); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		records = append(records, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		details, err := fetchDetails(ctx, db.sql, "history_id", records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Details = details
	}
	return records, nil
}
