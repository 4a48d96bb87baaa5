package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-interview-worker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type interviewRepository struct {
	db *pgxpool.Pool
}

func NewInterviewRepository(db *pgxpool.Pool) domain.InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) Create(ctx context.Context, interview *domain.Interview) error {
	query := `
		INSERT INTO interviews (user_id, interview_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, interview.UserID, interview.Name, interview.Status).
		Scan(&interview.ID, &interview.CreatedAt, &interview.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert interview: %w", err)
	}
	return nil
}

func (r *interviewRepository) GetByID(ctx context.Context, id int64) (*domain.Interview, error) {
	query := `
		SELECT id, user_id, interview_name, status,
		       score_in_percentage, interview_cleared_by_candidate,
		       created_at, updated_at
		FROM interviews WHERE id = $1`

	var i domain.Interview
	err := r.db.QueryRow(ctx, query, id).Scan(
		&i.ID, &i.UserID, &i.Name, &i.Status,
		&i.ScoreInPercentage, &i.ClearedByCandidate,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &i, nil
}

func (r *interviewRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE interviews SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}

// FinalizeScore writes the aggregate score, verdict and terminal status in
// one statement. The status guard makes a replayed finalize a no-op instead
// of a second write.
func (r *interviewRepository) FinalizeScore(ctx context.Context, id int64, scorePercentage, verdict string) error {
	query := `
		UPDATE interviews
		SET score_in_percentage = $1,
		    interview_cleared_by_candidate = $2,
		    status = $3,
		    updated_at = NOW()
		WHERE id = $4 AND status <> $3`

	_, err := r.db.Exec(ctx, query, scorePercentage, verdict, domain.InterviewStatusEvaluated, id)
	return err
}

func (r *interviewRepository) ListByUserID(ctx context.Context, userID int64) ([]domain.Interview, error) {
	query := `
		SELECT id, user_id, interview_name, status,
		       score_in_percentage, interview_cleared_by_candidate,
		       created_at, updated_at
		FROM interviews WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	var interviews []domain.Interview
	for rows.Next() {
		var i domain.Interview
		err := rows.Scan(
			&i.ID, &i.UserID, &i.Name, &i.Status,
			&i.ScoreInPercentage, &i.ClearedByCandidate,
			&i.CreatedAt, &i.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, i)
	}
	return interviews, rows.Err()
}
