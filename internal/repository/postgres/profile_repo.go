package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-interview-worker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type profileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id int64) (*domain.CandidateProfile, error) {
	query := `
		SELECT id, username, jd_path, resume_path, jd_text, resume_text,
		       COALESCE(jd_status, 'PENDING'), COALESCE(resume_status, 'PENDING')
		FROM users WHERE id = $1`

	var p domain.CandidateProfile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Username, &p.JDPath, &p.ResumePath, &p.JDText, &p.ResumeText,
		&p.JDStatus, &p.ResumeStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// documentColumns whitelists the per-kind column pair so the kind coming off
// the wire never reaches the SQL text.
func documentColumns(kind string) (textCol, statusCol string, err error) {
	switch kind {
	case domain.DocumentKindJD:
		return "jd_text", "jd_status", nil
	case domain.DocumentKindResume:
		return "resume_text", "resume_status", nil
	default:
		return "", "", fmt.Errorf("unknown document kind: %s", kind)
	}
}

func (r *profileRepository) UpdateDocumentStatus(ctx context.Context, userID int64, kind, status string) error {
	_, statusCol, err := documentColumns(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE users SET %s = $1 WHERE id = $2`, statusCol)
	tag, err := r.db.Exec(ctx, query, status, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", userID)
	}
	return nil
}

func (r *profileRepository) SetDocumentText(ctx context.Context, userID int64, kind, text string) error {
	textCol, statusCol, err := documentColumns(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`UPDATE users SET %s = $1, %s = $2 WHERE id = $3`,
		textCol, statusCol,
	)
	tag, err := r.db.Exec(ctx, query, text, domain.DocStatusCompleted, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", userID)
	}
	return nil
}
