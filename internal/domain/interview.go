package domain

import (
	"context"
	"time"
)

// Interview status values. Transitions are monotonic:
// NEW -> DONE_ASKING_QUESTIONS -> AI_EVALUATION_DONE.
const (
	InterviewStatusNew        = "NEW"
	InterviewStatusDoneAsking = "DONE_ASKING_QUESTIONS"
	InterviewStatusEvaluated  = "AI_EVALUATION_DONE"
)

// Verdict values written once by the scoring engine.
const (
	VerdictPass = "Pass"
	VerdictFail = "Fail"
)

type Interview struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	Name               string    `json:"interview_name"`
	Status             string    `json:"status"`
	ScoreInPercentage  *string   `json:"score_in_percentage"`
	ClearedByCandidate *string   `json:"interview_cleared_by_candidate"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Evaluated reports whether the scoring engine has already finalized this
// interview. Score fields are write-once after this point.
func (i *Interview) Evaluated() bool {
	return i.Status == InterviewStatusEvaluated
}

// InterviewSummary is the read model for listing interviews with their
// outcome, used by the scorecard export.
type InterviewSummary struct {
	ID                 int64   `json:"id"`
	UserID             int64   `json:"user_id"`
	Name               string  `json:"interview_name"`
	Status             string  `json:"status"`
	ScoreInPercentage  *string `json:"score_in_percentage"`
	ClearedByCandidate *string `json:"interview_cleared_by_candidate"`
	CandidateName      string  `json:"candidate_name"`
	CandidateGrade     *string `json:"candidate_grade"`
}

type InterviewRepository interface {
	Create(ctx context.Context, interview *Interview) error
	GetByID(ctx context.Context, id int64) (*Interview, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	// FinalizeScore writes score, verdict and the terminal status in a single
	// statement, and only if the interview has not been evaluated yet.
	FinalizeScore(ctx context.Context, id int64, scorePercentage, verdict string) error
	ListByUserID(ctx context.Context, userID int64) ([]Interview, error)
}

type InterviewUsecase interface {
	CreateInterview(ctx context.Context, name string, userID int64) (*Interview, error)
	// Advance inspects persisted progress and either asks the next question,
	// issues the closing note, or confirms completion. It returns the
	// resulting interview status.
	Advance(ctx context.Context, interviewID int64) (string, error)
}
