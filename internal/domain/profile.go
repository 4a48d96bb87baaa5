package domain

import "context"

// Document kinds a candidate uploads before the interview starts.
const (
	DocumentKindJD     = "jd"
	DocumentKindResume = "resume"
)

// Extraction status for an uploaded document. Text is only trusted by
// downstream consumers when the status is COMPLETED.
const (
	DocStatusPending    = "PENDING"
	DocStatusProcessing = "PROCESSING"
	DocStatusCompleted  = "COMPLETED"
	DocStatusFailed     = "FAILED"
)

// CandidateProfile holds the per-user state derived from uploaded documents.
type CandidateProfile struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	JDPath       *string `json:"jd_path"`
	ResumePath   *string `json:"resume_path"`
	JDText       *string `json:"jd_text"`
	ResumeText   *string `json:"resume_text"`
	JDStatus     string  `json:"jd_status"`
	ResumeStatus string  `json:"resume_status"`
}

// DocumentText returns the extracted text for the given kind, or "" unless
// extraction has COMPLETED. Absent or failed documents degrade to empty
// context and never block the interview.
func (p *CandidateProfile) DocumentText(kind string) string {
	switch kind {
	case DocumentKindJD:
		if p.JDStatus == DocStatusCompleted && p.JDText != nil {
			return *p.JDText
		}
	case DocumentKindResume:
		if p.ResumeStatus == DocStatusCompleted && p.ResumeText != nil {
			return *p.ResumeText
		}
	}
	return ""
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id int64) (*CandidateProfile, error)
	// UpdateDocumentStatus moves one document kind to the given status,
	// leaving text untouched.
	UpdateDocumentStatus(ctx context.Context, userID int64, kind, status string) error
	// SetDocumentText writes the extracted text together with the COMPLETED
	// status in one statement.
	SetDocumentText(ctx context.Context, userID int64, kind, text string) error
}

type DocumentUsecase interface {
	// ProcessUpload runs the extraction pipeline for one uploaded document:
	// PENDING -> PROCESSING -> COMPLETED or FAILED.
	ProcessUpload(ctx context.Context, userID int64, filePath, kind string) error
}
