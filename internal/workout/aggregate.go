package workout

import (
	"fmt"
	"time"

	"github.com/damiensprinkle/liftlog/internal/models"
)

// Totals are the derived aggregates written into a history record.
type Totals struct {
	TotalWeightLifted float64
	RepsCompleted     int
	CardioTimeSec     int
	TotalDistance     float64
}

// Aggregate computes the completion totals over every set of every detail.
// A set with zero reps still counts its weight once.
func Aggregate(details []models.ExerciseDetail) Totals {
	var t Totals
	for _, d := range details {
		for _, set := range d.Sets {
			reps := set.Reps
			if reps < 1 {
				reps = 1
			}
			t.TotalWeightLifted += set.Weight * float64(reps)
			t.RepsCompleted += set.Reps
			t.CardioTimeSec += set.TimeSec
			t.TotalDistance += set.Distance
		}
	}
	return t
}

// FormatElapsed renders a duration as HH:MM:SS for display and for the
// workoutTimeToComplete history field.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// Resequence returns the detail list with dense 0..N-1 order indices in slice
// order, and each detail's sets with dense set indices. Merge operations
// treat incoming indices as authoritative, so callers re-sequence before
// invoking them.
func Resequence(details []models.ExerciseDetail) []models.ExerciseDetail {
	out := make([]models.ExerciseDetail, len(details))
	for i, d := range details {
		d.OrderIndex = i
		sets := make([]models.Set, len(d.Sets))
		for j, st := range d.Sets {
			st.SetIndex = j
			sets[j] = st
		}
		d.Sets = sets
		out[i] = d
	}
	return out
}

// MoveExercise moves the detail at from to position to and re-sequences the
// result to a dense index range. Out-of-range positions leave the list
// unchanged apart from re-sequencing.
func MoveExercise(details []models.ExerciseDetail, from, to int) []models.ExerciseDetail {
	if from < 0 || from >= len(details) || to < 0 || to >= len(details) || from == to {
		return Resequence(details)
	}
	out := make([]models.ExerciseDetail, 0, len(details))
	out = append(out, details[:from]...)
	out = append(out, details[from+1:]...)
	out = append(out[:to], append([]models.ExerciseDetail{details[from]}, out[to:]...)...)
	return Resequence(out)
}
