package upload

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/damiensprinkle/liftlog/internal/share"
	"github.com/google/uuid"
)

func testDocument() share.Document {
	return share.Document{
		Version:     share.DocumentVersion,
		WorkoutName: "Leg Day",
		Exercises: []share.Exercise{
			{Name: "Squat", Quantifier: "Reps", Measurement: "Weight",
				Sets: []share.Set{{Reps: 5, Weight: 135}}},
		},
	}
}

// TestPushDocument verifies the happy path: document delivered with the API
// key, created workout decoded from the response.
func TestPushDocument(t *testing.T) {
	created := models.Workout{ID: uuid.New(), Name: "Leg Day"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/workouts/import" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "secret" {
			t.Errorf("api key = %q, want secret", r.Header.Get("X-API-Key"))
		}
		var doc share.Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if doc.WorkoutName != "Leg Day" {
			t.Errorf("workoutName = %q", doc.WorkoutName)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	got, err := c.PushDocument(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("workout id = %s, want %s", got.ID, created.ID)
	}
}

// TestPushDocumentRetriesServerErrors verifies that 5xx responses are
// retried and a later success wins.
func TestPushDocumentRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Workout{ID: uuid.New(), Name: "Leg Day"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	if _, err := c.PushDocument(context.Background(), testDocument()); err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

// TestPushDocumentDoesNotRetryClientErrors verifies that a 4xx response
// fails immediately.
func TestPushDocumentDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "wrong")
	_, err := c.PushDocument(context.Background(), testDocument())
	if err == nil {
		t.Fatal("expected error for 403")
	}
	if !strings.Contains(err.Error(), "status 403") {
		t.Errorf("error = %v, want status 403 mention", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", calls)
	}
}
