package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-interview-worker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code raised by the
// (interview_id, question_id) constraint.
const uniqueViolation = "23505"

type turnRepository struct {
	db *pgxpool.Pool
}

func NewTurnRepository(db *pgxpool.Pool) domain.TurnRepository {
	return &turnRepository{db: db}
}

func (r *turnRepository) Create(ctx context.Context, turn *domain.QuestionAnswer) error {
	query := `
		INSERT INTO question_answers
			(user_id, interview_id, question_id, question_text, status, recording_paths)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		turn.UserID, turn.InterviewID, turn.QuestionID,
		turn.QuestionText, turn.Status, pq.Array(turn.RecordingPaths),
	).Scan(&turn.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateTurn
		}
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

func (r *turnRepository) GetByInterviewAndQuestion(ctx context.Context, interviewID int64, questionID int) (*domain.QuestionAnswer, error) {
	query := `
		SELECT id, user_id, interview_id, question_id, question_text, status,
		       answer_text, audio_recording_path, recording_paths,
		       ai_answer, ai_remark, candidate_score, candidate_grade
		FROM question_answers
		WHERE interview_id = $1 AND question_id = $2`

	turn, err := scanTurn(r.db.QueryRow(ctx, query, interviewID, questionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return turn, nil
}

func (r *turnRepository) ListByInterviewID(ctx context.Context, interviewID int64) ([]domain.QuestionAnswer, error) {
	query := `
		SELECT id, user_id, interview_id, question_id, question_text, status,
		       answer_text, audio_recording_path, recording_paths,
		       ai_answer, ai_remark, candidate_score, candidate_grade
		FROM question_answers
		WHERE interview_id = $1
		ORDER BY question_id`

	rows, err := r.db.Query(ctx, query, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.QuestionAnswer
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, *turn)
	}
	return turns, rows.Err()
}

// AttachAnswer writes the transcript exactly once. The answer_text guard in
// the WHERE clause rejects a second write instead of overwriting.
func (r *turnRepository) AttachAnswer(ctx context.Context, turnID int64, answerText string) error {
	query := `
		UPDATE question_answers
		SET answer_text = $1, status = $2
		WHERE id = $3 AND (answer_text IS NULL OR answer_text = '')`

	tag, err := r.db.Exec(ctx, query, answerText, domain.TurnStatusTranscribed, turnID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAnswerExists
	}
	return nil
}

func (r *turnRepository) MarkAnswered(ctx context.Context, turnID int64) error {
	query := `UPDATE question_answers SET status = $1 WHERE id = $2 AND status = $3`
	_, err := r.db.Exec(ctx, query, domain.TurnStatusAnswered, turnID, domain.TurnStatusNew)
	return err
}

func (r *turnRepository) SetEvaluation(ctx context.Context, turnID int64, aiAnswer, aiRemark string, score float64, grade string) error {
	query := `
		UPDATE question_answers
		SET ai_answer = $1, ai_remark = $2, candidate_score = $3, candidate_grade = $4
		WHERE id = $5`

	_, err := r.db.Exec(ctx, query, aiAnswer, aiRemark, score, grade, turnID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTurn(row rowScanner) (*domain.QuestionAnswer, error) {
	var t domain.QuestionAnswer
	var recordingPaths []string
	err := row.Scan(
		&t.ID, &t.UserID, &t.InterviewID, &t.QuestionID, &t.QuestionText, &t.Status,
		&t.AnswerText, &t.AudioRecordingPath, pq.Array(&recordingPaths),
		&t.AIAnswer, &t.AIRemark, &t.CandidateScore, &t.CandidateGrade,
	)
	if err != nil {
		return nil, err
	}
	t.RecordingPaths = recordingPaths
	return &t, nil
}
