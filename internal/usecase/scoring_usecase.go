package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"go-interview-worker/internal/domain"
	"go-interview-worker/pkg/apperror"
	"go-interview-worker/pkg/logger"
)

// passThreshold is the minimum fraction of non-F turns for a Pass verdict.
const passThreshold = 0.6

const idealAnswerSystem = `You are an expert interviewer for the role described below. Write the ideal answer a strong candidate would give to the interview question, grounded in the job description and the candidate resume. Answer with the ideal answer text only.

Job Description:
%s

Candidate Resume:
%s`

type scoringUsecase struct {
	interviewRepo domain.InterviewRepository
	profileRepo   domain.ProfileRepository
	turnRepo      domain.TurnRepository
	llm           domain.Completer
	judge         domain.Judge
	callTimeout   time.Duration
}

// NewScoringUsecase creates the post-interview grading engine.
func NewScoringUsecase(
	interviewRepo domain.InterviewRepository,
	profileRepo domain.ProfileRepository,
	turnRepo domain.TurnRepository,
	llm domain.Completer,
	judge domain.Judge,
	callTimeout time.Duration,
) domain.ScoringUsecase {
	return &scoringUsecase{
		interviewRepo: interviewRepo,
		profileRepo:   profileRepo,
		turnRepo:      turnRepo,
		llm:           llm,
		judge:         judge,
		callTimeout:   callTimeout,
	}
}

// GradeForScore maps a 0-10 judgment score onto the letter scale.
func GradeForScore(score float64) string {
	switch {
	case score >= 9:
		return "A"
	case score >= 8:
		return "B"
	case score >= 7:
		return "C"
	case score >= 5:
		return "D"
	case score >= 3:
		return "E"
	default:
		return "F"
	}
}

// MeasurePerformance grades every answered turn, aggregates the percentage
// and verdict, and finalizes the interview. Replays after finalization are
// no-ops.
func (uc *scoringUsecase) MeasurePerformance(ctx context.Context, interviewID int64) error {
	interview, err := uc.interviewRepo.GetByID(ctx, interviewID)
	if err != nil {
		return apperror.Internal(err)
	}
	if interview == nil {
		return apperror.NotFound(fmt.Sprintf("interview %d not found", interviewID))
	}
	if interview.Evaluated() {
		logger.Log.Info("interview already evaluated, skipping", "interview_id", interviewID)
		return nil
	}

	profile, err := uc.profileRepo.GetByID(ctx, interview.UserID)
	if err != nil {
		return apperror.Internal(err)
	}
	if profile == nil {
		return apperror.NotFound(fmt.Sprintf("candidate %d not found", interview.UserID))
	}

	turns, err := uc.turnRepo.ListByInterviewID(ctx, interviewID)
	if err != nil {
		return apperror.Internal(err)
	}

	scored := 0
	nonFailing := 0
	totalScore := 0.0

	for _, turn := range turns {
		if !turn.Scorable() {
			logger.Log.Debug("skipping turn without question or answer",
				"interview_id", interviewID, "question_id", turn.QuestionID)
			continue
		}

		idealAnswer, err := uc.idealAnswer(ctx, profile, turn.QuestionText)
		if err != nil {
			// A dead capability fails the whole task so a replay can rescore;
			// already-written per-turn evaluations are simply overwritten.
			return apperror.External(
				fmt.Sprintf("ideal answer generation failed for question %d", turn.QuestionID), err)
		}

		score, remark, err := uc.judgeTurn(ctx, turn, idealAnswer)
		if err != nil {
			// A dead judge capability also fails the whole task; only a
			// malformed judgment degrades, handled inside judgeTurn.
			return apperror.External(
				fmt.Sprintf("judgment failed for question %d", turn.QuestionID), err)
		}
		grade := GradeForScore(score)

		if err := uc.turnRepo.SetEvaluation(ctx, turn.ID, idealAnswer, remark, score, grade); err != nil {
			return apperror.Internal(err)
		}

		scored++
		totalScore += score
		if grade != "F" {
			nonFailing++
		}

		logger.Log.Info("turn evaluated",
			"interview_id", interviewID,
			"question_id", turn.QuestionID,
			"score", score,
			"grade", grade,
		)
	}

	percentage := "0.00"
	verdict := domain.VerdictFail
	if scored > 0 {
		percentage = fmt.Sprintf("%.2f", totalScore/(float64(scored)*10)*100)
		if float64(nonFailing)/float64(scored) >= passThreshold {
			verdict = domain.VerdictPass
		}
	}

	if err := uc.interviewRepo.FinalizeScore(ctx, interviewID, percentage, verdict); err != nil {
		return apperror.Internal(err)
	}

	logger.Log.Info("interview evaluated",
		"interview_id", interviewID,
		"turns_scored", scored,
		"score_in_percentage", percentage,
		"verdict", verdict,
	)
	return nil
}

func (uc *scoringUsecase) idealAnswer(ctx context.Context, profile *domain.CandidateProfile, question string) (string, error) {
	system := fmt.Sprintf(idealAnswerSystem,
		profile.DocumentText(domain.DocumentKindJD),
		profile.DocumentText(domain.DocumentKindResume),
	)
	history := []domain.Message{{Role: domain.RoleUser, Content: question}}

	callCtx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()
	return uc.llm.Complete(callCtx, system, history)
}

// judgeTurn returns the judged score and remark for one turn. A malformed
// judgment degrades to 0/F so a single bad response never aborts the batch;
// any other failure is returned so the task stays retryable instead of
// finalizing a default grade.
func (uc *scoringUsecase) judgeTurn(ctx context.Context, turn domain.QuestionAnswer, idealAnswer string) (float64, string, error) {
	callCtx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()

	judgment, err := uc.judge.JudgeAnswer(callCtx, turn.QuestionText, idealAnswer, *turn.AnswerText)
	if err != nil {
		if !apperror.IsKind(err, apperror.KindMalformed) {
			return 0, "", err
		}
		logger.Log.Warn("malformed judgment degraded to default score",
			"interview_id", turn.InterviewID,
			"question_id", turn.QuestionID,
			"error", err,
		)
		return 0, "Automatic grading failed for this answer.", nil
	}
	return judgment.Score, judgment.Remark, nil
}

func (uc *scoringUsecase) ListSummaries(ctx context.Context, userID int64) ([]domain.InterviewSummary, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if profile == nil {
		return nil, apperror.NotFound(fmt.Sprintf("user %d not found", userID))
	}

	interviews, err := uc.interviewRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	summaries := make([]domain.InterviewSummary, 0, len(interviews))
	for _, interview := range interviews {
		turns, err := uc.turnRepo.ListByInterviewID(ctx, interview.ID)
		if err != nil {
			return nil, apperror.Internal(err)
		}

		var grade *string
		for i := len(turns) - 1; i >= 0; i-- {
			if turns[i].CandidateGrade != nil {
				grade = turns[i].CandidateGrade
				break
			}
		}

		summaries = append(summaries, domain.InterviewSummary{
			ID:                 interview.ID,
			UserID:             interview.UserID,
			Name:               interview.Name,
			Status:             interview.Status,
			ScoreInPercentage:  interview.ScoreInPercentage,
			ClearedByCandidate: interview.ClearedByCandidate,
			CandidateName:      profile.Username,
			CandidateGrade:     grade,
		})
	}
	return summaries, nil
}

// ExportScorecard renders the per-turn results of an evaluated interview as
// an xlsx workbook.
func (uc *scoringUsecase) ExportScorecard(ctx context.Context, interviewID int64) ([]byte, string, error) {
	interview, err := uc.interviewRepo.GetByID(ctx, interviewID)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	if interview == nil {
		return nil, "", apperror.NotFound(fmt.Sprintf("interview %d not found", interviewID))
	}
	if !interview.Evaluated() {
		return nil, "", apperror.NotFound(fmt.Sprintf("interview %d has not been evaluated yet", interviewID))
	}

	turns, err := uc.turnRepo.ListByInterviewID(ctx, interviewID)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}

	f := excelize.NewFile()
	sheetName := "Scorecard"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"QUESTION #", "QUESTION", "ANSWER", "IDEAL ANSWER", "REMARK", "SCORE", "GRADE"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	row := 2
	for _, turn := range turns {
		values := []any{
			turn.QuestionID,
			turn.QuestionText,
			deref(turn.AnswerText),
			deref(turn.AIAnswer),
			deref(turn.AIRemark),
			derefFloat(turn.CandidateScore),
			deref(turn.CandidateGrade),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheetName, cell, value)
		}
		row++
	}

	// Summary block under the turn rows
	row++
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "SCORE IN PERCENTAGE")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), deref(interview.ScoreInPercentage))
	row++
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "VERDICT")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), deref(interview.ClearedByCandidate))

	for i := range headers {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 28)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("failed to write Excel file: %w", err))
	}

	filename := fmt.Sprintf("interview_%d_scorecard_%s.xlsx", interviewID, time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
