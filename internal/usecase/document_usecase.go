package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-interview-worker/internal/domain"
	"go-interview-worker/pkg/apperror"
	"go-interview-worker/pkg/logger"
)

type documentUsecase struct {
	profileRepo domain.ProfileRepository
	extractor   domain.DocumentExtractor
	callTimeout time.Duration
}

// NewDocumentUsecase creates the document extraction pipeline.
func NewDocumentUsecase(
	profileRepo domain.ProfileRepository,
	extractor domain.DocumentExtractor,
	callTimeout time.Duration,
) domain.DocumentUsecase {
	return &documentUsecase{
		profileRepo: profileRepo,
		extractor:   extractor,
		callTimeout: callTimeout,
	}
}

// ProcessUpload runs extraction for one uploaded document. The status moves
// strictly PENDING -> PROCESSING -> COMPLETED or FAILED; text is written only
// together with COMPLETED.
func (uc *documentUsecase) ProcessUpload(ctx context.Context, userID int64, filePath, kind string) error {
	if kind != domain.DocumentKindJD && kind != domain.DocumentKindResume {
		return apperror.Malformed(fmt.Sprintf("unknown document kind: %s", kind), nil)
	}

	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.Internal(err)
	}
	if profile == nil {
		return apperror.NotFound(fmt.Sprintf("user %d not found", userID))
	}

	status := profile.JDStatus
	if kind == domain.DocumentKindResume {
		status = profile.ResumeStatus
	}
	if status == domain.DocStatusCompleted {
		// Replayed upload task for a document that already extracted.
		logger.Log.Info("document already extracted, skipping",
			"user_id", userID, "file_type", kind)
		return nil
	}

	if err := uc.profileRepo.UpdateDocumentStatus(ctx, userID, kind, domain.DocStatusProcessing); err != nil {
		return apperror.Internal(err)
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()

	text, err := uc.extractor.Extract(callCtx, filePath)
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("extraction produced no text for %s", filePath)
	}
	if err != nil {
		if statusErr := uc.profileRepo.UpdateDocumentStatus(ctx, userID, kind, domain.DocStatusFailed); statusErr != nil {
			logger.Log.Error("failed to mark document FAILED",
				"user_id", userID, "file_type", kind, "error", statusErr)
		}
		return apperror.External(fmt.Sprintf("extraction failed for %s", kind), err)
	}

	if err := uc.profileRepo.SetDocumentText(ctx, userID, kind, text); err != nil {
		return apperror.Internal(err)
	}

	logger.Log.Info("document extracted",
		"user_id", userID,
		"file_type", kind,
		"text_length", len(text),
	)
	return nil
}
