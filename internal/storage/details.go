package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/damiensprinkle/liftlog/internal/reconcile"
	"github.com/google/uuid"
)

// setTable describes where a detail's sets live. Template/history sets and
// temporary session sets share the same shape in different tables.
type setTable struct {
	name     string
	ownerCol string
}

var (
	templateSets = setTable{name: "sets", ownerCol: "detail_id"}
	tempSets     = setTable{name: "temporary_sets", ownerCol: "temp_detail_id"}
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// fetchDetails loads the exercise details owned by ownerCol=ownerID, ordered
// by order index, each with its sets ordered by set index.
func fetchDetails(ctx context.Context, q querier, ownerCol string, ownerID uuid.UUID) ([]models.ExerciseDetail, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, exercise_id, name, order_index, quantifier, measurement
		 FROM exercise_details
		 WHERE `+ownerCol+` = ?
		 ORDER BY order_index ASC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise details: %w", err)
	}
	defer rows.Close()

	var details []models.ExerciseDetail
	for rows.Next() {
		var d models.ExerciseDetail
		var quantifier, measurement string
		if err := rows.Scan(&d.ID, &d.ExerciseID, &d.Name, &d.OrderIndex, &quantifier, &measurement); err != nil {
			return nil, fmt.Errorf("scanning exercise detail: %w", err)
		}
		d.Quantifier = models.Quantifier(quantifier)
		d.Measurement = models.Measurement(measurement)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range details {
		sets, err := fetchSets(ctx, q, templateSets, details[i].ID)
		if err != nil {
			return nil, err
		}
		details[i].Sets = sets
	}
	return details, nil
}

func fetchSets(ctx context.Context, q querier, table setTable, detailID uuid.UUID) ([]models.Set, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, set_index, reps, weight, time_sec, distance, is_completed
		 FROM `+table.name+`
		 WHERE `+table.ownerCol+` = ?
		 ORDER BY set_index ASC`,
		detailID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	var sets []models.Set
	for rows.Next() {
		var s models.Set
		if err := rows.Scan(&s.ID, &s.SetIndex, &s.Reps, &s.Weight, &s.TimeSec, &s.Distance, &s.IsCompleted); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

// insertDetail inserts a detail row owned by ownerCol=ownerID together with
// its sets. A zero detail or exercise id is minted here.
func insertDetail(ctx context.Context, tx *sql.Tx, ownerCol string, ownerID uuid.UUID, d models.ExerciseDetail) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.ExerciseID == uuid.Nil {
		d.ExerciseID = uuid.New()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO exercise_details (id, exercise_id, `+ownerCol+`, name, order_index, quantifier, measurement)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.ExerciseID, ownerID, d.Name, d.OrderIndex, string(d.Quantifier), string(d.Measurement))
	if err != nil {
		return fmt.Errorf("inserting exercise detail: %w", err)
	}
	for _, s := range d.Sets {
		if err := insertSet(ctx, tx, templateSets, d.ID, s); err != nil {
			return err
		}
	}
	return nil
}

func insertSet(ctx context.Context, tx *sql.Tx, table setTable, detailID uuid.UUID, s models.Set) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO `+table.name+` (id, `+table.ownerCol+`, set_index, reps, weight, time_sec, distance, is_completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, detailID, s.SetIndex, s.Reps, s.Weight, s.TimeSec, s.Distance, s.IsCompleted)
	if err != nil {
		return fmt.Errorf("inserting set: %w", err)
	}
	return nil
}

// mergeSets applies the incoming authoritative set list onto the detail's
// stored sets: matched rows are updated in place, new rows inserted, rows
// missing from incoming deleted.
func mergeSets(ctx context.Context, tx *sql.Tx, table setTable, detailID uuid.UUID, existing, incoming []models.Set) error {
	plan := reconcile.Diff(existing, incoming, func(s models.Set) uuid.UUID { return s.ID })

	for _, u := range plan.Updates {
		_, err := tx.ExecContext(ctx,
			`UPDATE `+table.name+`
			 SET set_index = ?, reps = ?, weight = ?, time_sec = ?, distance = ?, is_completed = ?
			 WHERE id = ?`,
			u.Incoming.SetIndex, u.Incoming.Reps, u.Incoming.Weight, u.Incoming.TimeSec,
			u.Incoming.Distance, u.Incoming.IsCompleted, u.Existing.ID)
		if err != nil {
			return fmt.Errorf("updating set: %w", err)
		}
	}
	for _, s := range plan.Creates {
		if err := insertSet(ctx, tx, table, detailID, s); err != nil {
			return err
		}
	}
	for _, s := range plan.Deletes {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table.name+` WHERE id = ?`, s.ID); err != nil {
			return fmt.Errorf("deleting set: %w", err)
		}
	}
	return nil
}
