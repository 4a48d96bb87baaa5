package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-interview-worker/internal/domain"
	"go-interview-worker/internal/usecase"
	"go-interview-worker/pkg/apperror"
)

func newScoringUC(
	interviewRepo *MockInterviewRepo,
	profileRepo *MockProfileRepo,
	turnRepo *MockTurnRepo,
	llm *MockCompleter,
	judge *MockJudge,
) domain.ScoringUsecase {
	return usecase.NewScoringUsecase(interviewRepo, profileRepo, turnRepo, llm, judge, time.Second)
}

func TestGradeCutoffs(t *testing.T) {
	cases := []struct {
		score float64
		grade string
	}{
		{10, "A"}, {9, "A"},
		{8.5, "B"}, {8, "B"},
		{7, "C"},
		{6.9, "D"}, {5, "D"},
		{4, "E"}, {3, "E"},
		{2.9, "F"}, {0, "F"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.grade, usecase.GradeForScore(tc.score), "score %.1f", tc.score)
	}
}

func TestMeasurePerformanceAggregates(t *testing.T) {
	interviewRepo := new(MockInterviewRepo)
	profileRepo := new(MockProfileRepo)
	turnRepo := new(MockTurnRepo)
	llm := new(MockCompleter)
	judge := new(MockJudge)
	uc := newScoringUC(interviewRepo, profileRepo, turnRepo, llm, judge)

	interview := &domain.Interview{ID: 1, UserID: 7, Status: domain.InterviewStatusDoneAsking}
	interviewRepo.On("GetByID", mock.Anything, int64(1)).Return(interview, nil)
	profileRepo.On("GetByID", mock.Anything, int64(7)).Return(completedProfile(), nil)

	turns := askedTurns(2)
	turnRepo.On("ListByInterviewID", mock.Anything, int64(1)).Return(turns, nil)
	llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("An ideal answer.", nil)

	judge.On("JudgeAnswer", mock.Anything, mock.Anything, "An ideal answer.", "Answer").
		Return(&domain.Judgment{Score: 9, Remark: "Strong answer."}, nil).Once()
	judge.On("JudgeAnswer", mock.Anything, mock.Anything, "An ideal answer.", "Answer").
		Return(&domain.Judgment{Score: 6, Remark: "Partial coverage."}, nil).Once()

	turnRepo.On("SetEvaluation", mock.Anything, int64(1), "An ideal answer.", "Strong answer.", 9.0, "A").Return(nil)
	turnRepo.On("SetEvaluation", mock.Anything, int64(2), "An ideal answer.", "Partial coverage.", 6.0, "D").Return(nil)

	// (9 + 6) / (2 * 10) = 75.00; both grades are above F, so Pass.
	interviewRepo.On("FinalizeScore", mock.Anything, int64(1), "75.00", domain.VerdictPass).Return(nil)

	err := uc.MeasurePerformance(context.Background(), 1)
	require.NoError(t, err)
	interviewRepo.AssertCalled(t, "FinalizeScore", mock.Anything, int64(1), "75.00", domain.VerdictPass)
}

func TestMeasurePerformanceMalformedJudgmentDegrades(t *testing.T) {
	interviewRepo := new(MockInterviewRepo)
	profileRepo := new(MockProfileRepo)
	turnRepo := new(MockTurnRepo)
	llm := new(MockCompleter)
	judge := new(MockJudge)
	uc := newScoringUC(interviewRepo, profileRepo, turnRepo, llm, judge)

	interview := &domain.Interview{ID: 1, UserID: 7, Status: domain.InterviewStatusDoneAsking}
	interviewRepo.On("GetByID", mock.Anything, int64(1)).Return(interview, nil)
	profileRepo.On("GetByID", mock.Anything, int64(7)).Return(completedProfile(), nil)
	turnRepo.On("ListByInterviewID", mock.Anything, int64(1)).Return(askedTurns(2), nil)
	llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("An ideal answer.", nil)

	// First judgment does not match the schema; second is fine. The batch
	// must continue past the malformed one.
	judge.On("JudgeAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperror.Malformed("judgment did not match expected schema", nil)).Once()
	judge.On("JudgeAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.Judgment{Score: 8, Remark: "Good."}, nil).Once()

	turnRepo.On("SetEvaluation", mock.Anything, int64(1), "An ideal answer.", mock.Anything, 0.0, "F").Return(nil)
	turnRepo.On("SetEvaluation", mock.Anything, int64(2), "An ideal answer.", "Good.", 8.0, "B").Return(nil)

	// (0 + 8) / 20 = 40.00; one of two turns is an F, so 0.5 < 0.6: Fail.
	interviewRepo.On("FinalizeScore", mock.Anything, int64(1), "40.00", domain.VerdictFail).Return(nil)

	err := uc.MeasurePerformance(context.Background(), 1)
	require.NoError(t, err)
	turnRepo.AssertNumberOfCalls(t, "SetEvaluation", 2)
}

func TestMeasurePerformanceJudgeFailureAborts(t *testing.T) {
	interviewRepo := new(MockInterviewRepo)
	profileRepo := new(MockProfileRepo)
	turnRepo := new(MockTurnRepo)
	llm := new(MockCompleter)
	judge := new(MockJudge)
	uc := newScoringUC(interviewRepo, profileRepo, turnRepo, llm, judge)

	interview := &domain.Interview{ID: 1, UserID: 7, Status: domain.InterviewStatusDoneAsking}
	interviewRepo.On("GetByID", mock.Anything, int64(1)).Return(interview, nil)
	profileRepo.On("GetByID", mock.Anything, int64(7)).Return(completedProfile(), nil)
	turnRepo.On("ListByInterviewID", mock.Anything, int64(1)).Return(askedTurns(1), nil)
	llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("An ideal answer.", nil)

	// A transient capability failure must not grade the turn 0/F and
	// finalize: the task stays retryable so a replay can rescore.
	judge.On("JudgeAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperror.External("llm timeout", errors.New("context deadline exceeded")))

	err := uc.MeasurePerformance(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindExternal))
	turnRepo.AssertNotCalled(t, "SetEvaluation",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	interviewRepo.AssertNotCalled(t, "FinalizeScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMeasurePerformanceNoScorableTurns(t *testing.T) {
	interviewRepo := new(MockInterviewRepo)
	profileRepo := new(MockProfileRepo)
	turnRepo := new(MockTurnRepo)
	uc := newScoringUC(interviewRepo, profileRepo, turnRepo, new(MockCompleter), new(MockJudge))

	interview := &domain.Interview{ID: 1, UserID: 7, Status: domain.InterviewStatusDoneAsking}
	interviewRepo.On("GetByID", mock.Anything, int64(1)).Return(interview, nil)
	profileRepo.On("GetByID", mock.Anything, int64(7)).Return(completedProfile(), nil)

	// Questions asked but never answered: nothing to score.
	turns := askedTurns(2)
	turns[0].AnswerText = nil
	turns[1].AnswerText = strPtr("")
	turnRepo.On("ListByInterviewID", mock.Anything, int64(1)).Return(turns, nil)

	interviewRepo.On("FinalizeScore", mock.Anything, int64(1), "0.00", domain.VerdictFail).Return(nil)

	err := uc.MeasurePerformance(context.Background(), 1)
	require.NoError(t, err)
	interviewRepo.AssertCalled(t, "FinalizeScore", mock.Anything, int64(1), "0.00", domain.VerdictFail)
}

func TestMeasurePerformanceAlreadyEvaluated(t *testing.T) {
	interviewRepo := new(MockInterviewRepo)
	uc := newScoringUC(interviewRepo, new(MockProfileRepo), new(MockTurnRepo), new(MockCompleter), new(MockJudge))

	interview := &domain.Interview{ID: 1, UserID: 7, Status: domain.InterviewStatusEvaluated}
	interviewRepo.On("GetByID", mock.Anything, int64(1)).Return(interview, nil)

	err := uc.MeasurePerformance(context.Background(), 1)
	require.NoError(t, err)
	interviewRepo.AssertNotCalled(t, "FinalizeScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMeasurePerformanceIdealAnswerFailureAborts(t *testing.T) {
	interviewRepo := new(MockInterviewRepo)
	profileRepo := new(MockProfileRepo)
	turnRepo := new(MockTurnRepo)
	llm := new(MockCompleter)
	uc := newScoringUC(interviewRepo, profileRepo, turnRepo, llm, new(MockJudge))

	interview := &domain.Interview{ID: 1, UserID: 7, Status: domain.InterviewStatusDoneAsking}
	interviewRepo.On("GetByID", mock.Anything, int64(1)).Return(interview, nil)
	profileRepo.On("GetByID", mock.Anything, int64(7)).Return(completedProfile(), nil)
	turnRepo.On("ListByInterviewID", mock.Anything, int64(1)).Return(askedTurns(1), nil)
	llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("model unavailable"))

	err := uc.MeasurePerformance(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindExternal))
	interviewRepo.AssertNotCalled(t, "FinalizeScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListSummaries(t *testing.T) {
	interviewRepo := new(MockInterviewRepo)
	profileRepo := new(MockProfileRepo)
	turnRepo := new(MockTurnRepo)
	uc := newScoringUC(interviewRepo, profileRepo, turnRepo, new(MockCompleter), new(MockJudge))

	profileRepo.On("GetByID", mock.Anything, int64(7)).Return(completedProfile(), nil)
	score := "75.00"
	verdict := domain.VerdictPass
	interviewRepo.On("ListByUserID", mock.Anything, int64(7)).Return([]domain.Interview{
		{ID: 1, UserID: 7, Name: "Screen", Status: domain.InterviewStatusEvaluated, ScoreInPercentage: &score, ClearedByCandidate: &verdict},
	}, nil)

	grade := "B"
	turns := askedTurns(2)
	turns[1].CandidateGrade = &grade
	turnRepo.On("ListByInterviewID", mock.Anything, int64(1)).Return(turns, nil)

	summaries, err := uc.ListSummaries(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "vijay", summaries[0].CandidateName)
	assert.Equal(t, &grade, summaries[0].CandidateGrade)
	assert.Equal(t, &score, summaries[0].ScoreInPercentage)
}
