package workout

import "errors"

// User-input validation errors. These are returned as typed results to the
// immediate caller and never reported to the error sink.
var (
	ErrEmptyTitle        = errors.New("workout title is empty")
	ErrNoExerciseDetails = errors.New("workout has no exercises")
	ErrTitleExists       = errors.New("workout title already exists")
)

// ErrSessionActive is returned when starting a session while another
// workout's session is active. The active session is never auto-cancelled.
var ErrSessionActive = errors.New("another session is already active")
