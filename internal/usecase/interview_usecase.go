package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"go-interview-worker/internal/conversation"
	"go-interview-worker/internal/domain"
	"go-interview-worker/pkg/apperror"
	"go-interview-worker/pkg/logger"
	"go-interview-worker/pkg/retry"
)

// Locker hands out per-interview leases so concurrent deliveries for the
// same interview never interleave read-then-write cycles.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), acquired bool, err error)
}

type interviewUsecase struct {
	interviewRepo domain.InterviewRepository
	profileRepo   domain.ProfileRepository
	turnRepo      domain.TurnRepository
	llm           domain.Completer
	publisher     domain.Publisher
	locker        Locker
	maxQuestions  int
	callTimeout   time.Duration
	retryPolicy   retry.Policy
}

// NewInterviewUsecase creates the interview state machine.
func NewInterviewUsecase(
	interviewRepo domain.InterviewRepository,
	profileRepo domain.ProfileRepository,
	turnRepo domain.TurnRepository,
	llm domain.Completer,
	publisher domain.Publisher,
	locker Locker,
	maxQuestions int,
	callTimeout time.Duration,
	retryPolicy retry.Policy,
) domain.InterviewUsecase {
	return &interviewUsecase{
		interviewRepo: interviewRepo,
		profileRepo:   profileRepo,
		turnRepo:      turnRepo,
		llm:           llm,
		publisher:     publisher,
		locker:        locker,
		maxQuestions:  maxQuestions,
		callTimeout:   callTimeout,
		retryPolicy:   retryPolicy,
	}
}

func (uc *interviewUsecase) CreateInterview(ctx context.Context, name string, userID int64) (*domain.Interview, error) {
	interview := &domain.Interview{
		UserID: userID,
		Name:   name,
		Status: domain.InterviewStatusNew,
	}
	if err := uc.interviewRepo.Create(ctx, interview); err != nil {
		return nil, apperror.Internal(err)
	}
	logger.Log.Info("interview created", "interview_id", interview.ID, "user_id", userID)
	return interview, nil
}

// Advance is the central state-machine step: it recomputes progress from the
// persisted turns, then either asks the next question, issues the closing
// note, or confirms completion. Replays past the terminal state are no-ops.
func (uc *interviewUsecase) Advance(ctx context.Context, interviewID int64) (string, error) {
	release, acquired, err := uc.locker.Acquire(ctx, fmt.Sprintf("interview:%d", interviewID))
	if err != nil {
		return "", apperror.Internal(err)
	}
	if !acquired {
		return "", apperror.Duplicate(fmt.Sprintf("interview %d is already being advanced", interviewID))
	}
	defer release()

	interview, err := uc.interviewRepo.GetByID(ctx, interviewID)
	if err != nil {
		return "", apperror.Internal(err)
	}
	if interview == nil {
		return "", apperror.NotFound(fmt.Sprintf("interview %d not found", interviewID))
	}
	if interview.Evaluated() {
		return interview.Status, nil
	}

	turns, err := uc.turnRepo.ListByInterviewID(ctx, interviewID)
	if err != nil {
		return "", apperror.Internal(err)
	}

	// The authoritative progress counter: persisted turns with question
	// text, recomputed on every call. Never cached, never taken from
	// message order.
	questionCount := 0
	for _, turn := range turns {
		if turn.QuestionText != "" {
			questionCount++
		}
	}

	if questionCount >= uc.maxQuestions {
		return uc.confirmCompletion(ctx, interview)
	}

	profile, err := uc.profileRepo.GetByID(ctx, interview.UserID)
	if err != nil {
		return "", apperror.Internal(err)
	}
	if profile == nil {
		return "", apperror.NotFound(fmt.Sprintf("candidate %d not found", interview.UserID))
	}

	closing := questionCount == uc.maxQuestions-1
	system, history := conversation.Build(profile, turns, uc.maxQuestions, closing)

	var utterance string
	err = uc.retryPolicy.Do(ctx, "llm complete", func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, uc.callTimeout)
		defer cancel()
		var completeErr error
		utterance, completeErr = uc.llm.Complete(callCtx, system, history)
		return completeErr
	})
	if err != nil {
		return "", apperror.External("LLM capability call failed", err)
	}

	turn := &domain.QuestionAnswer{
		UserID:       interview.UserID,
		InterviewID:  interview.ID,
		QuestionID:   questionCount + 1,
		QuestionText: utterance,
		Status:       domain.TurnStatusNew,
	}
	if err := uc.turnRepo.Create(ctx, turn); err != nil {
		if errors.Is(err, domain.ErrDuplicateTurn) {
			// Another delivery of the same step won the insert race. The
			// storage constraint keeps the sequence intact, so this replay
			// is a success, not an error.
			logger.Log.Warn("duplicate turn insert rejected by storage",
				"interview_id", interview.ID,
				"question_id", turn.QuestionID,
			)
			return interview.Status, nil
		}
		return "", apperror.Internal(err)
	}

	logger.Log.Info("interview question persisted",
		"interview_id", interview.ID,
		"question_id", turn.QuestionID,
		"closing", closing,
	)

	if closing {
		return uc.confirmCompletion(ctx, interview)
	}
	return interview.Status, nil
}

// confirmCompletion marks the interview DONE_ASKING_QUESTIONS and enqueues
// the scoring task exactly once, on the transition. Called again after the
// transition it only re-confirms the terminal state.
func (uc *interviewUsecase) confirmCompletion(ctx context.Context, interview *domain.Interview) (string, error) {
	if interview.Status == domain.InterviewStatusDoneAsking {
		return interview.Status, nil
	}

	if err := uc.interviewRepo.UpdateStatus(ctx, interview.ID, domain.InterviewStatusDoneAsking); err != nil {
		return "", apperror.Internal(err)
	}
	interview.Status = domain.InterviewStatusDoneAsking
	logger.Log.Info("interview done asking questions", "interview_id", interview.ID)

	payload, err := json.Marshal(domain.QuestionPayload{
		InterviewID: domain.FlexInt(interview.ID),
	})
	if err != nil {
		return "", apperror.Internal(err)
	}

	message := &domain.TaskMessage{
		CorrelationID: uuid.NewString(),
		SessionID:     fmt.Sprintf("%d-%d", interview.UserID, interview.ID),
		ActionType:    domain.ActionPerformanceMeasure,
		UserID:        interview.UserID,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Status:        "interview ended",
		Payload:       payload,
	}
	if err := uc.publisher.Publish(ctx, message); err != nil {
		// Scoring can still be triggered by a replayed message; the
		// completed state itself is already durable.
		logger.Log.Error("failed to enqueue performance_measure task",
			"interview_id", interview.ID,
			"error", err,
		)
	}

	return interview.Status, nil
}
