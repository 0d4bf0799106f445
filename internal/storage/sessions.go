package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/google/uuid"
)

// StartSession creates an active session for the workout, replacing any prior
// session row for that workout. Callers are expected to have checked
// ActiveWorkoutID first; this method does not enforce the global
// single-active invariant itself.
func (db *DB) StartSession(ctx context.Context, workoutID uuid.UUID) (models.Session, error) {
	if _, err := db.FetchWorkout(ctx, workoutID); err != nil {
		return models.Session{}, err
	}

	s := models.Session{
		ID:        uuid.New(),
		WorkoutID: workoutID,
		IsActive:  true,
		StartTime: time.Now().UTC(),
	}
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE workout_id = ?`, workoutID); err != nil {
			return fmt.Errorf("replacing prior session: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (id, workout_id, is_active, start_time) VALUES (?, ?, 1, ?)`,
			s.ID, s.WorkoutID, s.StartTime)
		if err != nil {
			return fmt.Errorf("inserting session: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Session{}, err
	}
	return s, nil
}

// StopSession deactivates the workout's session and records the end time.
// No-op when no active session exists for the workout.
func (db *DB) StopSession(ctx context.Context, workoutID uuid.UUID) error {
	_, err := db.sql.ExecContext(ctx,
		`UPDATE sessions SET is_active = 0, end_time = ? WHERE workout_id = ? AND is_active = 1`,
		time.Now().UTC(), workoutID)
	if err != nil {
		return fmt.Errorf("stopping session: %w", err)
	}
	return nil
}

// ActiveWorkoutID returns the id of the workout with an active session, or
// nil when none is active. At most one active session should exist; finding
// more is a data-integrity problem that gets logged, and the first one wins.
func (db *DB) ActiveWorkoutID(ctx context.Context) (*uuid.UUID, error) {
	rows, err := db.sql.QueryContext(ctx, `SELECT workout_id FROM sessions WHERE is_active = 1`)
	if err != nil {
		return nil, fmt.Errorf("querying active sessions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning active session: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > 1 {
		db.log.Warn("multiple active sessions found", "count", len(ids))
	}
	return &ids[0], nil
}

// SessionForWorkout returns the workout's session row, or ErrNotFound when
// the workout has never been started.
func (db *DB) SessionForWorkout(ctx context.Context, workoutID uuid.UUID) (models.Session, error) {
	var s models.Session
	var endTime sql.NullTime
	err := db.sql.QueryRowContext(ctx,
		`SELECT id, workout_id, is_active, start_time, end_time FROM sessions WHERE workout_id = ?`,
		workoutID).Scan(&s.ID, &s.WorkoutID, &s.IsActive, &s.StartTime, &endTime)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, fmt.Errorf("session for workout %s: %w", workoutID, ErrNotFound)
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("querying session: %w", err)
	}
	if endTime.Valid {
		s.EndTime = &endTime.Time
	}
	return s, nil
}

// Sessions returns every session row.
func (db *DB) Sessions(ctx context.Context) ([]models.Session, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, workout_id, is_active, start_time, end_time FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		var endTime sql.NullTime
		if err := rows.Scan(&s.ID, &s.WorkoutID, &s.IsActive, &s.StartTime, &endTime); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if endTime.Valid {
			s.EndTime = &endTime.Time
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
