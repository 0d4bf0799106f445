package models

import (
	"time"

	"github.com/google/uuid"
)

// Quantifier declares what a set counts: repetitions or distance covered.
type Quantifier string

const (
	QuantifierReps     Quantifier = "Reps"
	QuantifierDistance Quantifier = "Distance"
)

// Measurement declares what a set measures against: weight moved or time spent.
type Measurement string

const (
	MeasurementWeight Measurement = "Weight"
	MeasurementTime   Measurement = "Time"
)

// ParseQuantifier returns the Quantifier for s, defaulting to Reps for
// anything unrecognized.
func ParseQuantifier(s string) Quantifier {
	if Quantifier(s) == QuantifierDistance {
		return QuantifierDistance
	}
	return QuantifierReps
}

// ParseMeasurement returns the Measurement for s, defaulting to Weight for
// anything unrecognized.
func ParseMeasurement(s string) Measurement {
	if Measurement(s) == MeasurementTime {
		return MeasurementTime
	}
	return MeasurementWeight
}

// Workout is a saved, reusable template: a named and colored collection of
// exercises. The exercises themselves are fetched separately by workout ID.
type Workout struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ExerciseDetail is one exercise within a workout, history record, or active
// session: a name, its position, the pair of enums that decide which set
// fields are meaningful, and the ordered sets.
//
// ID is the storage row identity and may be regenerated when a detail is
// recreated. ExerciseID is the stable client-side identity used to match
// details across edits and merges; it must survive re-saves.
type ExerciseDetail struct {
	ID          uuid.UUID   `json:"id"`
	ExerciseID  uuid.UUID   `json:"exerciseId"`
	Name        string      `json:"name"`
	OrderIndex  int         `json:"orderIndex"`
	Quantifier  Quantifier  `json:"quantifier"`
	Measurement Measurement `json:"measurement"`
	Sets        []Set       `json:"sets"`
}

// Set is one measured effort. All four value fields are always carried; only
// the pair implied by the owning detail's quantifier/measurement is
// meaningful, the others are ignored by business logic.
type Set struct {
	ID          uuid.UUID `json:"id"`
	SetIndex    int       `json:"setIndex"`
	Reps        int       `json:"reps"`
	Weight      float64   `json:"weight"`
	TimeSec     int       `json:"time"`
	Distance    float64   `json:"distance"`
	IsCompleted bool      `json:"isCompleted"`
}

// SeededSet returns a new set row appended after prev, copying prev's values
// as a convenience seed. A nil prev yields a zero set.
func SeededSet(prev *Set, index int) Set {
	s := Set{ID: uuid.New(), SetIndex: index}
	if prev != nil {
		s.Reps = prev.Reps
		s.Weight = prev.Weight
		s.TimeSec = prev.TimeSec
		s.Distance = prev.Distance
	}
	return s
}

// Session is one timed execution of a workout template. A workout has at most
// one session row at a time; starting a new one replaces the previous row.
type Session struct {
	ID        uuid.UUID  `json:"id"`
	WorkoutID uuid.UUID  `json:"workoutId"`
	IsActive  bool       `json:"isActive"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// Elapsed returns the time spent in the session so far. For an active session
// this is recomputed from the stored start time, never from a running
// counter, so it survives process restarts without drift.
func (s Session) Elapsed(now time.Time) time.Duration {
	if !s.IsActive && s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}

// History is the immutable record of one completed session: the aggregate
// totals plus a snapshot of the exercise/set detail as it stood at
// completion. The snapshot rows are independent copies, so later template
// edits never alter history.
type History struct {
	ID                uuid.UUID        `json:"id"`
	WorkoutID         uuid.UUID        `json:"workoutId"`
	WorkoutDate       time.Time        `json:"workoutDate"`
	TotalWeightLifted float64          `json:"totalWeightLifted"`
	RepsCompleted     int              `json:"repsCompleted"`
	TimeToComplete    string           `json:"workoutTimeToComplete"`
	TotalDistance     float64          `json:"totalDistance"`
	CardioTimeSec     int              `json:"timeDoingCardio"`
	Details           []ExerciseDetail `json:"details,omitempty"`
}
