// Package share implements the shareable workout document: a versioned JSON
// representation of one template that can be exported, handed around, and
// imported with fresh identities.
package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/google/uuid"
)

// DocumentVersion is written into every exported document.
const DocumentVersion = "1"

// ErrInvalidDocument is returned for documents that cannot be imported at
// all: unparseable JSON or a missing workout name.
var ErrInvalidDocument = errors.New("invalid workout document")

// Document is one shareable workout.
type Document struct {
	Version      string     `json:"version"`
	WorkoutName  string     `json:"workoutName"`
	WorkoutColor *string    `json:"workoutColor"`
	ExportDate   time.Time  `json:"exportDate"`
	Exercises    []Exercise `json:"exercises"`
}

// Exercise is one exercise entry in a document.
type Exercise struct {
	Name        string  `json:"name"`
	OrderIndex  FlexInt `json:"orderIndex"`
	Quantifier  string  `json:"quantifier"`
	Measurement string  `json:"measurement"`
	Sets        []Set   `json:"sets"`
}

// Set is one set entry in a document.
type Set struct {
	SetIndex FlexInt   `json:"setIndex"`
	Reps     FlexInt   `json:"reps"`
	Weight   FlexFloat `json:"weight"`
	Time     FlexInt   `json:"time"`
	Distance FlexFloat `json:"distance"`
}

// FlexInt decodes like an int but tolerates missing, string-typed, or
// unparseable values, defaulting them to 0.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = 0
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			*f = FlexInt(n)
		}
	}
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// FlexFloat decodes like a float but tolerates missing, string-typed, or
// unparseable values, defaulting them to 0.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = 0
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = FlexFloat(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*f = FlexFloat(v)
		}
	}
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

// Parse decodes and validates a document.
func Parse(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.WorkoutName == "" {
		return Document{}, fmt.Errorf("%w: missing workoutName", ErrInvalidDocument)
	}
	return doc, nil
}

// Export renders a workout and its details as a shareable document.
func Export(w models.Workout, details []models.ExerciseDetail, exportedAt time.Time) Document {
	doc := Document{
		Version:     DocumentVersion,
		WorkoutName: w.Name,
		ExportDate:  exportedAt.UTC(),
	}
	if w.Color != "" {
		color := w.Color
		doc.WorkoutColor = &color
	}
	for _, d := range details {
		ex := Exercise{
			Name:        d.Name,
			OrderIndex:  FlexInt(d.OrderIndex),
			Quantifier:  string(d.Quantifier),
			Measurement: string(d.Measurement),
		}
		for _, st := range d.Sets {
			ex.Sets = append(ex.Sets, Set{
				SetIndex: FlexInt(st.SetIndex),
				Reps:     FlexInt(st.Reps),
				Weight:   FlexFloat(st.Weight),
				Time:     FlexInt(st.TimeSec),
				Distance: FlexFloat(st.Distance),
			})
		}
		doc.Exercises = append(doc.Exercises, ex)
	}
	return doc
}

// ToDetails converts a document's exercises into detail rows ready to attach
// to a workout. Every exercise and set is assigned a fresh identity —
// identities from the source document are never reused, so an import can
// never collide with existing data. Unrecognized quantifier/measurement
// values fall back to Reps/Weight.
func ToDetails(doc Document) []models.ExerciseDetail {
	exercises := make([]Exercise, len(doc.Exercises))
	copy(exercises, doc.Exercises)
	sort.SliceStable(exercises, func(a, b int) bool { return exercises[a].OrderIndex < exercises[b].OrderIndex })

	details := make([]models.ExerciseDetail, 0, len(exercises))
	for i, ex := range exercises {
		d := models.ExerciseDetail{
			ID:          uuid.New(),
			ExerciseID:  uuid.New(),
			Name:        ex.Name,
			OrderIndex:  i,
			Quantifier:  models.ParseQuantifier(ex.Quantifier),
			Measurement: models.ParseMeasurement(ex.Measurement),
		}
		sets := make([]Set, len(ex.Sets))
		copy(sets, ex.Sets)
		sort.SliceStable(sets, func(a, b int) bool { return sets[a].SetIndex < sets[b].SetIndex })
		for j, st := range sets {
			d.Sets = append(d.Sets, models.Set{
				ID:       uuid.New(),
				SetIndex: j,
				Reps:     int(st.Reps),
				Weight:   float64(st.Weight),
				TimeSec:  int(st.Time),
				Distance: float64(st.Distance),
			})
		}
		details = append(details, d)
	}
	return details
}
