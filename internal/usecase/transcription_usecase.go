package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-interview-worker/internal/domain"
	"go-interview-worker/pkg/apperror"
	"go-interview-worker/pkg/logger"
)

type transcriptionUsecase struct {
	turnRepo    domain.TurnRepository
	transcriber domain.AudioTranscriber
	interviewUC domain.InterviewUsecase
	callTimeout time.Duration
}

// NewTranscriptionUsecase creates the answer pipeline: transcribe the
// recording, attach the text to its turn, then advance the interview.
func NewTranscriptionUsecase(
	turnRepo domain.TurnRepository,
	transcriber domain.AudioTranscriber,
	interviewUC domain.InterviewUsecase,
	callTimeout time.Duration,
) domain.TranscriptionUsecase {
	return &transcriptionUsecase{
		turnRepo:    turnRepo,
		transcriber: transcriber,
		interviewUC: interviewUC,
		callTimeout: callTimeout,
	}
}

func (uc *transcriptionUsecase) ProcessAnswer(ctx context.Context, interviewID int64, questionID int) error {
	turn, err := uc.turnRepo.GetByInterviewAndQuestion(ctx, interviewID, questionID)
	if err != nil {
		return apperror.Internal(err)
	}
	if turn == nil {
		return apperror.NotFound(fmt.Sprintf("turn %d/%d not found", interviewID, questionID))
	}

	if turn.Status == domain.TurnStatusTranscribed {
		// Re-delivered message for a turn that already has its transcript.
		// Still advance: the interview may have stalled between the attach
		// and the advance of the original delivery.
		logger.Log.Info("turn already transcribed, advancing only",
			"interview_id", interviewID, "question_id", questionID)
		return uc.advance(ctx, interviewID)
	}

	if turn.AudioRecordingPath == nil || *turn.AudioRecordingPath == "" {
		return apperror.NotFound(fmt.Sprintf("turn %d/%d has no audio recording", interviewID, questionID))
	}

	if err := uc.turnRepo.MarkAnswered(ctx, turn.ID); err != nil {
		return apperror.Internal(err)
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()

	text, err := uc.transcriber.Transcribe(callCtx, *turn.AudioRecordingPath)
	if err != nil {
		// The turn stays ANSWERED; a re-delivered message retries the
		// transcription.
		return apperror.External("audio transcription failed", err)
	}

	if err := uc.turnRepo.AttachAnswer(ctx, turn.ID, text); err != nil {
		if errors.Is(err, domain.ErrAnswerExists) {
			logger.Log.Warn("answer already attached, keeping existing transcript",
				"interview_id", interviewID, "question_id", questionID)
		} else {
			return apperror.Internal(err)
		}
	}

	logger.Log.Info("answer transcribed",
		"interview_id", interviewID,
		"question_id", questionID,
		"text_length", len(text),
	)

	return uc.advance(ctx, interviewID)
}

func (uc *transcriptionUsecase) advance(ctx context.Context, interviewID int64) error {
	_, err := uc.interviewUC.Advance(ctx, interviewID)
	if err != nil && apperror.IsKind(err, apperror.KindDuplicate) {
		return nil
	}
	return err
}
