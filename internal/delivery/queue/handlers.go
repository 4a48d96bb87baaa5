package queue

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"go-interview-worker/internal/domain"
	"go-interview-worker/pkg/apperror"
)

// TaskHandlers binds the usecases to their action tags.
type TaskHandlers struct {
	InterviewUC     domain.InterviewUsecase
	DocumentUC      domain.DocumentUsecase
	TranscriptionUC domain.TranscriptionUsecase
	ScoringUC       domain.ScoringUsecase

	validate *validator.Validate
}

func NewTaskHandlers(
	interviewUC domain.InterviewUsecase,
	documentUC domain.DocumentUsecase,
	transcriptionUC domain.TranscriptionUsecase,
	scoringUC domain.ScoringUsecase,
	validate *validator.Validate,
) *TaskHandlers {
	return &TaskHandlers{
		InterviewUC:     interviewUC,
		DocumentUC:      documentUC,
		TranscriptionUC: transcriptionUC,
		ScoringUC:       scoringUC,
		validate:        validate,
	}
}

// RegisterAll wires every action tag to its handler.
func (h *TaskHandlers) RegisterAll(d *Dispatcher) {
	d.Register(domain.ActionDocUpload, h.handleDocUpload)
	d.Register(domain.ActionProcessQuestion, h.handleProcessQuestion)
	d.Register(domain.ActionNextQuestion, h.handleNextQuestion)
	d.Register(domain.ActionPerformanceMeasure, h.handlePerformanceMeasure)
}

func (h *TaskHandlers) handleDocUpload(ctx context.Context, msg *domain.TaskMessage) error {
	var payload domain.DocUploadPayload
	if err := h.decodePayload(msg.Payload, &payload); err != nil {
		return err
	}
	return h.DocumentUC.ProcessUpload(ctx, msg.UserID, payload.FilePath, payload.FileType)
}

func (h *TaskHandlers) handleProcessQuestion(ctx context.Context, msg *domain.TaskMessage) error {
	var payload domain.QuestionPayload
	if err := h.decodePayload(msg.Payload, &payload); err != nil {
		return err
	}
	return h.TranscriptionUC.ProcessAnswer(ctx, payload.InterviewID.Int64(), payload.QuestionID.Int())
}

func (h *TaskHandlers) handleNextQuestion(ctx context.Context, msg *domain.TaskMessage) error {
	var payload domain.QuestionPayload
	if err := h.decodePayload(msg.Payload, &payload); err != nil {
		return err
	}
	_, err := h.InterviewUC.Advance(ctx, payload.InterviewID.Int64())
	return err
}

func (h *TaskHandlers) handlePerformanceMeasure(ctx context.Context, msg *domain.TaskMessage) error {
	var payload domain.QuestionPayload
	if err := h.decodePayload(msg.Payload, &payload); err != nil {
		return err
	}
	return h.ScoringUC.MeasurePerformance(ctx, payload.InterviewID.Int64())
}

func (h *TaskHandlers) decodePayload(raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return apperror.Malformed("payload does not match action_type", err)
	}
	if err := h.validate.Struct(out); err != nil {
		return apperror.Malformed("payload failed validation", err)
	}
	return nil
}
