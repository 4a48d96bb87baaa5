package domain

import "errors"

// Sentinel errors surfaced by the repository layer so that usecases can tell
// benign replays apart from real failures.
var (
	// ErrDuplicateTurn is returned when an insert collides with the storage
	// uniqueness constraint on (interview_id, question_id).
	ErrDuplicateTurn = errors.New("turn with this question_id already exists for interview")

	// ErrAnswerExists is returned when an answer write targets a turn that
	// already carries answer text.
	ErrAnswerExists = errors.New("turn already has an answer attached")
)
