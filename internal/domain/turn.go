package domain

import "context"

// Per-turn status values. A turn is created NEW with question text, moves to
// ANSWERED when the candidate's recording is attached, and to TRANSCRIBED
// once the answer text has been extracted.
const (
	TurnStatusNew         = "NEW"
	TurnStatusAnswered    = "ANSWERED"
	TurnStatusTranscribed = "TRANSCRIBED"
)

// QuestionAnswer is one turn in the interview transcript. QuestionID is a
// 1-based sequence number, unique within an interview and assigned exactly
// once at creation.
type QuestionAnswer struct {
	ID                 int64    `json:"id"`
	UserID             int64    `json:"user_id"`
	InterviewID        int64    `json:"interview_id"`
	QuestionID         int      `json:"question_id"`
	QuestionText       string   `json:"question_text"`
	Status             string   `json:"status"`
	AnswerText         *string  `json:"answer_text"`
	AudioRecordingPath *string  `json:"audio_recording_path"`
	RecordingPaths     []string `json:"recording_paths"`
	AIAnswer           *string  `json:"ai_answer"`
	AIRemark           *string  `json:"ai_remark"`
	CandidateScore     *float64 `json:"candidate_score"`
	CandidateGrade     *string  `json:"candidate_grade"`
}

// Answered reports whether an answer has been attached to this turn.
// Subsequent answer writes must be rejected, never silently overwritten.
func (qa *QuestionAnswer) Answered() bool {
	return qa.Status == TurnStatusAnswered || qa.Status == TurnStatusTranscribed
}

// Scorable reports whether the turn can enter the evaluation phase: both
// question and answer text must be present.
func (qa *QuestionAnswer) Scorable() bool {
	return qa.QuestionText != "" && qa.AnswerText != nil && *qa.AnswerText != ""
}

type TurnRepository interface {
	// Create inserts a new turn. The storage layer enforces uniqueness on
	// (interview_id, question_id); a duplicate insert returns ErrDuplicateTurn.
	Create(ctx context.Context, turn *QuestionAnswer) error
	GetByInterviewAndQuestion(ctx context.Context, interviewID int64, questionID int) (*QuestionAnswer, error)
	// ListByInterviewID returns all turns ordered by question_id ascending.
	ListByInterviewID(ctx context.Context, interviewID int64) ([]QuestionAnswer, error)
	// AttachAnswer writes answer text and the TRANSCRIBED status, and only
	// succeeds if no answer is present yet.
	AttachAnswer(ctx context.Context, turnID int64, answerText string) error
	MarkAnswered(ctx context.Context, turnID int64) error
	// SetEvaluation writes the ideal answer, remark, score and grade for one
	// turn at the scoring step.
	SetEvaluation(ctx context.Context, turnID int64, aiAnswer, aiRemark string, score float64, grade string) error
}

type TranscriptionUsecase interface {
	// ProcessAnswer transcribes the recorded answer for one turn, attaches
	// the text, and advances the interview. Replays for an already
	// transcribed turn are a no-op.
	ProcessAnswer(ctx context.Context, interviewID int64, questionID int) error
}

type ScoringUsecase interface {
	// MeasurePerformance grades every answered turn, aggregates the result
	// and finalizes the interview.
	MeasurePerformance(ctx context.Context, interviewID int64) error
	ListSummaries(ctx context.Context, userID int64) ([]InterviewSummary, error)
	// ExportScorecard renders the per-turn results of an evaluated interview
	// as an xlsx workbook.
	ExportScorecard(ctx context.Context, interviewID int64) ([]byte, string, error)
}
